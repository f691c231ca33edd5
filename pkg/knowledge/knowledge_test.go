package knowledge

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	kb := Default()
	require.Equal(t, 30, kb.Len())

	gloss, ok := kb.Lookup("心電図")
	require.True(t, ok)
	assert.Equal(t, "心臓の電気的活動を記録する検査", gloss)

	_, ok = kb.Lookup("存在しない")
	assert.False(t, ok)

	terms := kb.Terms()
	assert.True(t, sort.StringsAreSorted(terms), "terms must be sorted")
	assert.Contains(t, terms, "リハビリテーション")
}

func TestTermsReturnsCopy(t *testing.T) {
	kb := Default()
	terms := kb.Terms()
	terms[0] = "改変"

	assert.NotEqual(t, "改変", kb.Terms()[0])
}

func TestNewSkipsBlankRows(t *testing.T) {
	kb := New([]Entry{
		{Term: "血圧", Gloss: "旧"},
		{Term: " ", Gloss: "空"},
		{Term: "骨折", Gloss: ""},
		{Term: "血圧", Gloss: "新"},
	})

	assert.Equal(t, 1, kb.Len())
	g, _ := kb.Lookup("血圧")
	assert.Equal(t, "新", g)
}

func TestLoadExtraFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "yaml",
			file:    "extra.yaml",
			content: "血圧: 上書きされた説明\n動脈硬化: 動脈の壁が硬くなる状態\n",
		},
		{
			name:    "json",
			file:    "extra.json",
			content: `{"血圧": "上書きされた説明", "動脈硬化": "動脈の壁が硬くなる状態"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			kb, err := Load(path)
			require.NoError(t, err)

			assert.Equal(t, 31, kb.Len())
			g, ok := kb.Lookup("動脈硬化")
			require.True(t, ok)
			assert.Equal(t, "動脈の壁が硬くなる状態", g)

			g, _ = kb.Lookup("血圧")
			assert.Equal(t, "上書きされた説明", g)

			// the shared default table is untouched
			g, _ = Default().Lookup("血圧")
			assert.Equal(t, "血管内の圧力", g)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "list.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- 血圧\n- 骨折\n"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoadEmptyPath(t *testing.T) {
	kb, err := Load("")
	require.NoError(t, err)
	assert.Same(t, Default(), kb)
}

func TestNewNormalizesCompatibilityForms(t *testing.T) {
	kb := New([]Entry{
		{Term: "ｱﾚﾙｷﾞｰ", Gloss: "過敏反応"},
		{Term: "Ｘ線検査", Gloss: "放射線による画像検査"},
	})

	assert.Equal(t, []string{"X線検査", "アレルギー"}, kb.Terms())
	for _, term := range []string{"アレルギー", "ｱﾚﾙｷﾞｰ", "X線検査", "Ｘ線検査"} {
		_, ok := kb.Lookup(term)
		assert.True(t, ok, term)
	}
}

func TestLoadJSONLineBreaks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"生検": "組織を採取して\r\n調べる検査"}`), 0o644))

	kb, err := Load(path)
	require.NoError(t, err)
	gloss, ok := kb.Lookup("生検")
	require.True(t, ok)
	assert.Equal(t, "組織を採取して\n調べる検査", gloss)
}
