package translit

import (
	"errors"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/medterm/pkg/dictionary"
)

func TestRomanize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"しんでんず", "shindenzu"},
		{"けつあつ", "ketsuatsu"},
		{"のうこうそく", "noukousoku"},
		{"しゅじゅつ", "shujutsu"},
		{"ちゅうしゃ", "chuusha"},
		{"こっせつ", "kossetsu"},
		{"まっち", "matchi"},
		{"アレルギー", "arerugi-"},
		{"リハビリテーション", "rihabirite-shon"},
		{"びょうり", "byouri"},
		{"ct", "ct"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Romanize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRomanizeRejectsIdeographs(t *testing.T) {
	_, err := Romanize("しん電図")
	var ue *UnromanizableError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, '電', ue.Rune)
}

func TestCleanRomanization(t *testing.T) {
	assert.Equal(t, "arerugi", CleanRomanization("Arerugi-"))
	assert.Equal(t, "shindenzu", CleanRomanization("shin den zu"))
}

type fakeEngine struct {
	out   Output
	err   error
	panic bool
}

func (f fakeEngine) Transliterate(string) (Output, error) {
	if f.panic {
		panic("boom")
	}
	return f.out, f.err
}

func TestAdapterSuccess(t *testing.T) {
	a := NewAdapter(fakeEngine{out: Output{Reading: "しん でんず", Romanized: "Shin-Denzu"}}, nil)
	res := a.Transliterate("心電図")

	assert.False(t, res.Fallback)
	assert.NoError(t, res.Err)
	assert.Equal(t, "しんでんず", res.Reading)
	assert.Equal(t, "shindenzu", res.Romanization)
}

func TestAdapterFallback(t *testing.T) {
	tests := []struct {
		name    string
		engine  Engine
		wantErr error
	}{
		{"engine error", fakeEngine{err: ErrNoReading}, ErrNoReading},
		{"empty reading", fakeEngine{out: Output{Romanized: "x"}}, ErrUnusable},
		{"empty romanization", fakeEngine{out: Output{Reading: "ー", Romanized: "-"}}, ErrUnusable},
		{"engine panic", fakeEngine{panic: true}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewAdapter(tt.engine, nil).Transliterate("ABC検査")

			assert.True(t, res.Fallback)
			assert.Equal(t, "ABC検査", res.Reading)
			assert.Equal(t, "abc検査", res.Romanization)
			require.Error(t, res.Err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(res.Err, tt.wantErr))
			}
		})
	}
}

func TestKagomeEngine(t *testing.T) {
	e, err := NewKagomeEngine(nil)
	require.NoError(t, err)

	out, err := e.Transliterate("血圧")
	require.NoError(t, err)
	assert.Equal(t, "けつあつ", out.Reading)
	assert.Equal(t, "ketsuatsu", out.Romanized)

	out, err = e.Transliterate("アレルギー")
	require.NoError(t, err)
	assert.Equal(t, "あれるぎー", out.Reading)
}

func TestKagomeEngineReadingIsKana(t *testing.T) {
	e, err := NewKagomeEngine(nil)
	require.NoError(t, err)

	for _, term := range []string{"心電図", "糖尿病", "放射線治療", "手術"} {
		out, err := e.Transliterate(term)
		require.NoError(t, err, term)
		for _, r := range out.Reading {
			assert.True(t, unicode.In(r, unicode.Hiragana) || r == 'ー', "%s: reading %q", term, out.Reading)
		}
		for _, r := range out.Romanized {
			assert.True(t, r <= unicode.MaxASCII, "%s: romanized %q", term, out.Romanized)
		}
	}
}

func TestKagomeEnginePrefersDictionary(t *testing.T) {
	dict := dictionary.NewIndex([]dictionary.JMdictEntry{{
		Id:    "1",
		Kanji: []dictionary.JMdictElement{{Text: "生検"}},
		Kana:  []dictionary.JMdictElement{{Text: "セイケン", Common: true}},
	}})
	e, err := NewKagomeEngine(dict)
	require.NoError(t, err)

	out, err := e.Transliterate("生検")
	require.NoError(t, err)
	assert.Equal(t, "せいけん", out.Reading)
	assert.Equal(t, "seiken", out.Romanized)
}
