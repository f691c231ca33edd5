// Package session runs pipeline invocations for an interactive front-end.
// A Session runs at most one invocation at a time on its own goroutine and
// reports back through an ordered event channel.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/japaniel/medterm/pkg/pipeline"
)

// Runner executes one pipeline invocation. Implemented by *pipeline.Runner.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Summary, error)
}

// EventKind tags an Event.
type EventKind uint8

const (
	Progress EventKind = iota
	Log
	Result
	Error
	Success
	Finished
)

func (k EventKind) String() string {
	switch k {
	case Progress:
		return "progress"
	case Log:
		return "log"
	case Result:
		return "result"
	case Error:
		return "error"
	case Success:
		return "success"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event is one message from a running invocation. Percent is set for
// Progress; Text for Log, Result, Error and Success; Summary for Result;
// Err for Error.
type Event struct {
	Kind    EventKind
	Percent int
	Text    string
	Summary *pipeline.Summary
	Err     error
}

// ErrBusy is returned by Start while an invocation is in flight.
var ErrBusy = &Error{"a conversion is already running"}

// Error is a typed session error.
type Error struct{ msg string }

func (e *Error) Error() string { return e.msg }

// DefaultBuffer is the event channel capacity.
const DefaultBuffer = 64

// Session serializes invocations of a Runner.
type Session struct {
	runner Runner
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for panics recovered from a run.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New creates a Session around runner.
func New(runner Runner, opts ...Option) *Session {
	s := &Session{
		runner: runner,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start begins an invocation and returns its event stream. The stream ends
// with exactly one Finished event, after which it is closed; the caller must
// drain it. A second Start while one is in flight fails with ErrBusy.
func (s *Session) Start(ctx context.Context, req pipeline.Request) (<-chan Event, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.running = true
	s.wg.Add(1)
	s.mu.Unlock()

	events := make(chan Event, DefaultBuffer)
	go s.run(ctx, req, events)
	return events, nil
}

// Running reports whether an invocation is in flight, so a front-end can
// warn before exiting.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Wait blocks until the in-flight invocation, if any, has finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

func (s *Session) run(ctx context.Context, req pipeline.Request, events chan<- Event) {
	defer s.wg.Done()
	defer close(events)
	defer func() {
		// Clear the flag first so a consumer reacting to Finished may start again.
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		events <- Event{Kind: Finished}
	}()
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			s.logger.Error("conversion panicked", "error", err)
			events <- Event{Kind: Error, Text: pipeline.Message(err), Err: err}
		}
	}()

	req.Observer = chanObserver(events)
	summary, err := s.runner.Run(ctx, req)
	if err != nil {
		events <- Event{Kind: Error, Text: pipeline.Message(err), Err: err}
		return
	}
	events <- Event{Kind: Result, Text: summary.Text(), Summary: summary}
	events <- Event{Kind: Success, Text: "変換が正常に完了しました"}
}

type chanObserver chan<- Event

func (c chanObserver) Progress(percent int) { c <- Event{Kind: Progress, Percent: percent} }
func (c chanObserver) Log(line string)      { c <- Event{Kind: Log, Text: line} }
