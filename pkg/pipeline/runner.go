// Package pipeline turns a source document into a terminology table:
// extract text, scan for candidates, assemble and filter records, order
// them and write the table.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/japaniel/medterm/pkg/document"
	"github.com/japaniel/medterm/pkg/extract"
	"github.com/japaniel/medterm/pkg/gloss"
	"github.com/japaniel/medterm/pkg/knowledge"
	"github.com/japaniel/medterm/pkg/rules"
	"github.com/japaniel/medterm/pkg/table"
	"github.com/japaniel/medterm/pkg/translit"
)

// Observer receives a run's progress percentages and human-readable log
// lines, in order.
type Observer interface {
	Progress(percent int)
	Log(line string)
}

type nopObserver struct{}

func (nopObserver) Progress(int) {}
func (nopObserver) Log(string)   {}

// Archive persists a successful run's records. Implemented by store.Store.
type Archive interface {
	SaveRun(ctx context.Context, source string, records []table.Record) (string, error)
}

// ExtractorFunc selects the text extractor for a path.
type ExtractorFunc func(path string, opts document.Options) (document.Extractor, error)

// Deps are the Runner's collaborators. Zero fields take defaults: the
// built-in knowledge base and rule table, a gloss synthesizer over them,
// document.ForPath and a kagome transliterator without dictionary.
type Deps struct {
	Knowledge      *knowledge.Base
	Rules          *rules.Table
	Glosser        Glosser
	Transliterator Transliterator
	Extractors     ExtractorFunc
	// Archive is optional; when set, every written table is also archived.
	Archive Archive
	Logger  *slog.Logger
}

// Runner executes pipeline runs. The knowledge base and rule table are read
// only, so one Runner may serve sequential or concurrent runs.
type Runner struct {
	scanner    *extract.Scanner
	glosser    Glosser
	translit   Transliterator
	extractors ExtractorFunc
	archive    Archive
	logger     *slog.Logger
}

// NewRunner wires deps, filling in defaults.
func NewRunner(d Deps) (*Runner, error) {
	if d.Knowledge == nil {
		d.Knowledge = knowledge.Default()
	}
	if d.Rules == nil {
		d.Rules = rules.Default()
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	if d.Glosser == nil {
		d.Glosser = gloss.NewSynthesizer(d.Knowledge, d.Rules)
	}
	if d.Extractors == nil {
		d.Extractors = document.ForPath
	}
	if d.Transliterator == nil {
		engine, err := translit.NewKagomeEngine(nil)
		if err != nil {
			return nil, fmt.Errorf("create transliteration engine: %w", err)
		}
		d.Transliterator = translit.NewAdapter(engine, d.Logger)
	}
	return &Runner{
		scanner:    extract.NewScanner(d.Knowledge, d.Rules),
		glosser:    d.Glosser,
		translit:   d.Transliterator,
		extractors: d.Extractors,
		archive:    d.Archive,
		logger:     d.Logger,
	}, nil
}

// Summary describes a completed run.
type Summary struct {
	RunID      string
	InputPath  string
	OutputPath string
	Records    []table.Record
	Stats      Stats
}

const previewRows = 10

// Text renders the result summary shown to the user.
func (s *Summary) Text() string {
	var b strings.Builder
	b.WriteString("変換結果サマリー\n")
	b.WriteString(strings.Repeat("=", 30) + "\n")
	fmt.Fprintf(&b, "入力ファイル: %s\n", filepath.Base(s.InputPath))
	fmt.Fprintf(&b, "出力ファイル: %s\n", filepath.Base(s.OutputPath))
	fmt.Fprintf(&b, "抽出された用語数: %d\n", len(s.Records))
	if s.Stats.Degraded > 0 {
		fmt.Fprintf(&b, "読みを推定できなかった用語: %d\n", s.Stats.Degraded)
	}
	if s.Stats.FallbackGlosses > 0 {
		fmt.Fprintf(&b, "説明が汎用文の用語: %d\n", s.Stats.FallbackGlosses)
	}
	fmt.Fprintf(&b, "\n抽出された医療用語（最初の%d個）:\n", previewRows)
	for i, r := range s.Records {
		if i == previewRows {
			break
		}
		fmt.Fprintf(&b, "%2d. %s (%s) -> %s\n", i+1, r.Term, r.Reading, r.Romanization)
	}
	if n := len(s.Records) - previewRows; n > 0 {
		fmt.Fprintf(&b, "... 他 %d 個\n", n)
	}
	return b.String()
}

// Run executes one invocation. Failures are returned as *RunError; the
// output file is only created when the whole table was written.
func (r *Runner) Run(ctx context.Context, req Request) (*Summary, error) {
	obs := req.Observer
	if obs == nil {
		obs = nopObserver{}
	}
	log := r.logger.With("input", req.InputPath, "output", req.OutputPath)

	if err := req.validate(); err != nil {
		return nil, runErr(StageValidate, ErrConfiguration, err)
	}
	obs.Progress(10)
	obs.Log("変換準備中...")

	extractor, err := r.openSource(req.InputPath, obs)
	if err != nil {
		return nil, runErr(StageSource, ErrSourceUnavailable, err)
	}
	obs.Progress(20)
	obs.Log("ファイルを読み込み中...")

	pages, err := extractor.Extract(ctx, req.InputPath)
	if err != nil {
		log.Warn("text extraction failed", "error", err)
		return nil, runErr(StageExtract, ErrExtractionEmpty, err)
	}
	text := extract.Normalize(strings.Join(pages, "\n"))
	if text == "" {
		return nil, runErr(StageExtract, ErrExtractionEmpty, nil)
	}
	log.Debug("text extracted", "pages", len(pages), "runes", len([]rune(text)))
	obs.Progress(50)
	obs.Log("医療用語を抽出中...")

	candidates := r.scanner.Scan(text)
	if candidates.Len() == 0 {
		return nil, runErr(StageScan, ErrNoCandidates, nil)
	}
	log.Debug("candidates scanned", "count", candidates.Len())

	records, stats, err := Assemble(candidates.Terms(), req.Config, r.glosser, r.translit)
	if err != nil {
		return nil, err
	}
	obs.Progress(70)
	obs.Log(fmt.Sprintf("%d個の医療用語を抽出", len(records)))
	if stats.Degraded > 0 {
		log.Info("transliteration degraded", "count", stats.Degraded)
	}
	obs.Log("CSVデータを作成中...")

	records = Finalize(records, req.Config)
	obs.Progress(90)
	obs.Log("CSVファイルを保存中...")

	if err := table.WriteFile(req.OutputPath, records); err != nil {
		return nil, runErr(StageSerialize, ErrSink, err)
	}

	summary := &Summary{
		InputPath:  req.InputPath,
		OutputPath: req.OutputPath,
		Records:    records,
		Stats:      stats,
	}
	if r.archive != nil {
		id, err := r.archive.SaveRun(ctx, req.InputPath, records)
		if err != nil {
			// Archive failures do not fail the run.
			log.Warn("archive run failed", "error", err)
		} else {
			summary.RunID = id
		}
	}

	obs.Progress(100)
	obs.Log("変換完了!")
	log.Info("run complete", "records", len(records), "candidates", stats.Candidates,
		"filtered", stats.Filtered, "duplicates", stats.Duplicates,
		"glosses_knowledge", stats.KnowledgeGlosses, "glosses_rule", stats.RuleGlosses,
		"glosses_fallback", stats.FallbackGlosses)
	return summary, nil
}

// openSource checks that path is a readable file of a supported type.
func (r *Runner) openSource(path string, obs Observer) (document.Extractor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	ex, err := r.extractors(path, document.Options{
		OnPage: func(page, total int) {
			obs.Log(fmt.Sprintf("ページ %d/%d を読み込みました", page, total))
		},
	})
	if err != nil {
		if errors.Is(err, document.ErrUnsupported) {
			return nil, fmt.Errorf("%w (accepted: %s)", err, strings.Join(document.Extensions(), ", "))
		}
		return nil, err
	}
	return ex, nil
}
