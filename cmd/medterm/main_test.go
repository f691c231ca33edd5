package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/medterm/pkg/table"
)

const sampleReport = `検査所見
患者に心電図という検査を行う。
血圧は正常。肺線維症の疑いあり。
`

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConvertWritesTable(t *testing.T) {
	input := writeInput(t, "report.txt", sampleReport)
	output := filepath.Join(t.TempDir(), "terms.csv")

	code, stdout, stderr := runCLI(t, input, output)
	require.Equal(t, 0, code, "stderr:\n%s", stderr)

	records, err := table.ReadFile(output)
	require.NoError(t, err)
	byTerm := map[string]table.Record{}
	for _, r := range records {
		byTerm[r.Term] = r
	}
	require.Contains(t, byTerm, "心電図")
	assert.Equal(t, "心臓の電気的活動を記録する検査", byTerm["心電図"].Gloss)
	assert.Equal(t, "ketsuatsu", byTerm["血圧"].Romanization)
	assert.Equal(t, "肺線維に関連する症状や病気", byTerm["肺線維症"].Gloss)

	assert.Contains(t, stdout, "出力ファイル: terms.csv")
	assert.Contains(t, stderr, "変換完了!")
	assert.Contains(t, stderr, "変換が正常に完了しました")
}

func TestConvertDefaultOutput(t *testing.T) {
	input := writeInput(t, "report.txt", sampleReport)
	dir := t.TempDir()
	t.Chdir(dir)

	code, _, stderr := runCLI(t, input)
	require.Equal(t, 0, code, "stderr:\n%s", stderr)
	assert.FileExists(t, filepath.Join(dir, defaultOutput))
}

func TestConvertLengthFlags(t *testing.T) {
	input := writeInput(t, "report.txt", "放射線治療と血圧")
	output := filepath.Join(t.TempDir(), "out.csv")

	code, _, stderr := runCLI(t, "--max-length", "4", input, output)
	require.Equal(t, 0, code, "stderr:\n%s", stderr)

	records, err := table.ReadFile(output)
	require.NoError(t, err)
	for _, r := range records {
		assert.LessOrEqual(t, len([]rune(r.Term)), 4, r.Term)
	}
}

func TestConvertFailures(t *testing.T) {
	tests := []struct {
		name string
		args func(t *testing.T) []string
		msg  string
	}{
		{
			name: "missing input",
			args: func(t *testing.T) []string { return []string{filepath.Join(t.TempDir(), "none.pdf")} },
			msg:  "入力ファイルを開けませんでした",
		},
		{
			name: "wrong extension",
			args: func(t *testing.T) []string { return []string{writeInput(t, "slides.pptx", "x")} },
			msg:  "unsupported document type",
		},
		{
			name: "empty document",
			args: func(t *testing.T) []string {
				return []string{writeInput(t, "blank.txt", "  \n "), filepath.Join(t.TempDir(), "o.csv")}
			},
			msg: "テキストを抽出できませんでした",
		},
		{
			name: "invalid bounds",
			args: func(t *testing.T) []string {
				return []string{"--min-length", "5", "--max-length", "2", writeInput(t, "a.txt", "心電図")}
			},
			msg: "max_length",
		},
		{
			name: "no arguments",
			args: func(t *testing.T) []string { return nil },
			msg:  "Error:",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args(t)...)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, tt.msg)
		})
	}
}

func TestConvertNoTermsExitsZero(t *testing.T) {
	input := writeInput(t, "english.txt", "Only English text here.")
	output := filepath.Join(t.TempDir(), "out.csv")

	code, _, stderr := runCLI(t, input, output)
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "医療用語が見つかりませんでした")
	assert.NoFileExists(t, output)
}

func TestLibraryRoundTrip(t *testing.T) {
	input := writeInput(t, "report.txt", sampleReport)
	dbPath := filepath.Join(t.TempDir(), "terms.db")
	output := filepath.Join(t.TempDir(), "out.csv")

	code, _, stderr := runCLI(t, "--db", dbPath, input, output)
	require.Equal(t, 0, code, "stderr:\n%s", stderr)

	code, stdout, stderr := runCLI(t, "terms", "--db", dbPath, input)
	require.Equal(t, 0, code, "stderr:\n%s", stderr)

	stored, err := table.Read(strings.NewReader(stdout))
	require.NoError(t, err)
	written, err := table.ReadFile(output)
	require.NoError(t, err)
	assert.ElementsMatch(t, written, stored)
}

func TestTermsRequiresDB(t *testing.T) {
	code, _, stderr := runCLI(t, "terms", "report.pdf")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no term library")
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "medterm dev\n", stdout)

	code, stdout, _ = runCLI(t, "--version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "dev")
}
