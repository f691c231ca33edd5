package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/medterm/pkg/pipeline"
	"github.com/japaniel/medterm/pkg/table"
)

type runnerFunc func(ctx context.Context, req pipeline.Request) (*pipeline.Summary, error)

func (f runnerFunc) Run(ctx context.Context, req pipeline.Request) (*pipeline.Summary, error) {
	return f(ctx, req)
}

func drain(t *testing.T, ch <-chan Event) []Event {
	t.Helper()
	var out []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatalf("event stream not closed; got %v", out)
		}
	}
}

func kinds(evs []Event) []EventKind {
	out := make([]EventKind, len(evs))
	for i, ev := range evs {
		out[i] = ev.Kind
	}
	return out
}

func TestSuccessfulRunEventOrder(t *testing.T) {
	sum := &pipeline.Summary{InputPath: "in.pdf", OutputPath: "out.csv", Records: []table.Record{{Term: "血圧", Reading: "けつあつ", Romanization: "ketsuatsu"}}}
	s := New(runnerFunc(func(ctx context.Context, req pipeline.Request) (*pipeline.Summary, error) {
		req.Observer.Progress(10)
		req.Observer.Log("変換準備中...")
		req.Observer.Progress(100)
		return sum, nil
	}))

	ch, err := s.Start(context.Background(), pipeline.Request{InputPath: "in.pdf", OutputPath: "out.csv"})
	require.NoError(t, err)
	evs := drain(t, ch)

	assert.Equal(t, []EventKind{Progress, Log, Progress, Result, Success, Finished}, kinds(evs))
	assert.Equal(t, 10, evs[0].Percent)
	assert.Equal(t, "変換準備中...", evs[1].Text)
	assert.Same(t, sum, evs[3].Summary)
	assert.Contains(t, evs[3].Text, "1. 血圧 (けつあつ) -> ketsuatsu")
	assert.False(t, s.Running())
}

func TestFailedRunReportsError(t *testing.T) {
	cause := &pipeline.RunError{Stage: pipeline.StageScan, Kind: pipeline.ErrNoCandidates}
	s := New(runnerFunc(func(ctx context.Context, req pipeline.Request) (*pipeline.Summary, error) {
		req.Observer.Progress(10)
		return nil, cause
	}))

	ch, err := s.Start(context.Background(), pipeline.Request{})
	require.NoError(t, err)
	evs := drain(t, ch)

	assert.Equal(t, []EventKind{Progress, Error, Finished}, kinds(evs))
	assert.ErrorIs(t, evs[1].Err, pipeline.ErrNoCandidates)
	assert.Equal(t, "医療用語が見つかりませんでした", evs[1].Text)
}

func TestPanicBecomesError(t *testing.T) {
	s := New(runnerFunc(func(ctx context.Context, req pipeline.Request) (*pipeline.Summary, error) {
		panic("engine exploded")
	}))

	ch, err := s.Start(context.Background(), pipeline.Request{})
	require.NoError(t, err)
	evs := drain(t, ch)

	require.Equal(t, []EventKind{Error, Finished}, kinds(evs))
	assert.Contains(t, evs[0].Err.Error(), "engine exploded")
	assert.False(t, s.Running())
}

func TestSecondStartRejectedWhileRunning(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	s := New(runnerFunc(func(ctx context.Context, req pipeline.Request) (*pipeline.Summary, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return &pipeline.Summary{}, nil
	}))

	ch, err := s.Start(context.Background(), pipeline.Request{})
	require.NoError(t, err)
	assert.True(t, s.Running())

	_, err = s.Start(context.Background(), pipeline.Request{})
	assert.True(t, errors.Is(err, ErrBusy))

	close(release)
	drain(t, ch)
	s.Wait()
	assert.False(t, s.Running())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// A finished session accepts the next run.
	ch, err = s.Start(context.Background(), pipeline.Request{})
	require.NoError(t, err)
	evs := drain(t, ch)
	assert.Equal(t, Finished, evs[len(evs)-1].Kind)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "progress", Progress.String())
	assert.Equal(t, "finished", Finished.String())
	assert.Equal(t, "EventKind(42)", EventKind(42).String())
}
