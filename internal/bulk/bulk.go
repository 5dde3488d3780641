// Package bulk drives the translation pipeline over a folder of documents.
// Each file gets its own artifact directory and one row in a cumulative
// summary CSV; a failing file never stops the rest of the batch.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/valpere/pipetran/internal/markdown"
	"github.com/valpere/pipetran/internal/pipeline"
	"github.com/valpere/pipetran/internal/store"
)

// ErrDestinationConflict means a file's artifact directory cannot be created
// because a regular file already occupies its path.
var ErrDestinationConflict = errors.New("destination path exists and is not a directory")

// SummaryFilename is the cumulative CSV written at the source folder root.
const SummaryFilename = "translation_results.csv"

// Pipeliner is the part of the pipeline the runner needs. *pipeline.Pipeline
// satisfies it.
type Pipeliner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Preflighter is implemented by pipelines that can verify their configuration
// before any file is processed.
type Preflighter interface {
	Preflight(ctx context.Context) error
}

// Options configures a batch.
type Options struct {
	SourceLang     string
	CorrectGrammar bool
	Glossary       map[string]string

	// Workers bounds concurrent files. Zero or negative means 1.
	Workers int

	// FileTimeout bounds one file's pipeline run. Zero means no limit.
	FileTimeout time.Duration

	// ResumeID names an earlier run whose completed files are skipped.
	// Requires a store.
	ResumeID string
}

// Outcome records what happened to one input file.
type Outcome struct {
	Path    string
	Row     Row
	Skipped bool
	Err     error
}

// Report summarizes a batch.
type Report struct {
	RunID       string
	Outcomes    []Outcome
	Succeeded   int
	Failed      int
	Skipped     int
	SummaryPath string
}

type Runner struct {
	pipe    Pipeliner
	records *store.Store
	opts    Options
}

// New creates a runner. records may be nil; resume is then unavailable and no
// run history is kept.
func New(pipe Pipeliner, records *store.Store, opts Options) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Runner{pipe: pipe, records: records, opts: opts}
}

// Run processes every path in the caller's order, writing artifacts and the
// summary CSV under sourceFolder. It returns an error only for batch-level
// problems (bad configuration, unusable run records); per-file failures land
// in the report's outcomes.
func (r *Runner) Run(ctx context.Context, paths []string, targetLang, sourceFolder string) (*Report, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files")
	}
	if pf, ok := r.pipe.(Preflighter); ok {
		if err := pf.Preflight(ctx); err != nil {
			return nil, err
		}
	}

	done, runID, err := r.prepareRun(ctx, targetLang, sourceFolder)
	if err != nil {
		return nil, err
	}

	summaryPath := filepath.Join(sourceFolder, SummaryFilename)
	summary := newSummaryWriter(summaryPath)
	defer summary.Close()

	// Files are taken in the caller's order; with one worker that is also
	// the summary row order.
	outcomes := make([]Outcome, len(paths))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = r.processFile(ctx, paths[i], targetLang, sourceFolder, done, runID, summary)
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	report := &Report{RunID: runID, Outcomes: outcomes, SummaryPath: summaryPath}
	for _, o := range outcomes {
		switch {
		case o.Skipped:
			report.Skipped++
		case o.Err != nil:
			report.Failed++
		default:
			report.Succeeded++
		}
	}

	if r.records != nil && runID != "" && report.Failed == 0 {
		if err := r.records.CompleteBulkRun(ctx, runID); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to mark run %s complete: %v\n", runID, err)
		}
	}
	return report, nil
}

// prepareRun resolves the resume set and the run record to attribute file
// outcomes to.
func (r *Runner) prepareRun(ctx context.Context, targetLang, sourceFolder string) (done map[string]bool, runID string, err error) {
	if r.records == nil {
		if r.opts.ResumeID != "" {
			return nil, "", fmt.Errorf("resume requires a database")
		}
		return nil, "", nil
	}
	if r.opts.ResumeID != "" {
		if _, err := r.records.GetBulkRun(ctx, r.opts.ResumeID); err != nil {
			return nil, "", fmt.Errorf("failed to load run %s: %w", r.opts.ResumeID, err)
		}
		done, err = r.records.CompletedBulkFiles(ctx, r.opts.ResumeID)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load completed files: %w", err)
		}
		return done, r.opts.ResumeID, nil
	}
	runID, err = r.records.CreateBulkRun(ctx, sourceFolder, targetLang)
	if err != nil {
		return nil, "", fmt.Errorf("failed to record bulk run: %w", err)
	}
	return nil, runID, nil
}

func (r *Runner) processFile(ctx context.Context, path, targetLang, sourceFolder string, done map[string]bool, runID string, summary *summaryWriter) Outcome {
	name := filepath.Base(path)
	if done[path] {
		fmt.Fprintf(os.Stderr, "Skipping %s (already completed in run %s)\n", name, runID)
		return Outcome{Path: path, Skipped: true}
	}

	fmt.Fprintf(os.Stderr, "Processing %s...\n", name)
	row, err := r.translateFile(ctx, path, targetLang, sourceFolder, summary)
	outcome := Outcome{Path: path, Row: row, Err: err}

	if r.records != nil && runID != "" {
		status, errMsg := store.BulkFileDone, ""
		if err != nil {
			status, errMsg = store.BulkFileFailed, err.Error()
		}
		if saveErr := r.records.SaveBulkFile(ctx, runID, path, status, row.SourceCount, row.TargetCount, errMsg); saveErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record outcome for %s: %v\n", name, saveErr)
		}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", name, err)
	} else {
		fmt.Fprintf(os.Stderr, "Done %s: %d source, %d target sentences\n", name, row.SourceCount, row.TargetCount)
	}
	return outcome
}

func (r *Runner) translateFile(ctx context.Context, path, targetLang, sourceFolder string, summary *summaryWriter) (Row, error) {
	name := filepath.Base(path)
	row := Row{Filename: name}

	data, err := os.ReadFile(path)
	if err != nil {
		return row, fmt.Errorf("failed to read file: %w", err)
	}
	text := string(data)
	if markdown.IsMarkdownPath(path) {
		text = markdown.ToPlainText(data)
	}

	outDir, err := artifactDir(sourceFolder, name)
	if err != nil {
		return row, err
	}

	runCtx := ctx
	if r.opts.FileTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.opts.FileTimeout)
		defer cancel()
	}

	res, err := r.pipe.Run(runCtx, pipeline.Request{
		Text:           text,
		SourceLang:     r.opts.SourceLang,
		TargetLang:     targetLang,
		CorrectGrammar: r.opts.CorrectGrammar,
		Glossary:       r.opts.Glossary,
	})
	if err != nil {
		return row, err
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "Warning (%s): %s\n", name, w)
	}
	row.SourceCount = res.SourceCount()
	row.TargetCount = res.TargetCount()

	if err := writeSentences(filepath.Join(outDir, artifactName(r.opts.SourceLang, "Source")), res.SourceSentences); err != nil {
		return row, err
	}
	if err := writeSentences(filepath.Join(outDir, artifactName(targetLang, "Target")), res.TargetSentences); err != nil {
		return row, err
	}

	if err := summary.Append(row); err != nil {
		return row, fmt.Errorf("failed to append summary row: %w", err)
	}
	return row, nil
}

// artifactDir creates the per-file output directory, named after the input
// file without its extension.
func artifactDir(sourceFolder, filename string) (string, error) {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	dir := filepath.Join(sourceFolder, stem)
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrDestinationConflict, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return dir, nil
}

// artifactName builds the sentence file name for a language, e.g.
// "English Sentences.txt". Unknown or auto-detected languages fall back to a
// generic label.
func artifactName(lang, fallback string) string {
	label := fallback
	if lang != "" && lang != "auto" {
		label = pipeline.LanguageName(lang)
	}
	return label + " Sentences.txt"
}

func writeSentences(path string, sentences []string) error {
	content := strings.Join(sentences, "\n")
	if content != "" {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Discover lists the translatable files (.txt and .md) directly inside a
// folder, skipping artifact directories and the summary CSV from earlier
// runs.
func Discover(sourceFolder string) ([]string, error) {
	entries, err := os.ReadDir(sourceFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to read source folder: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".txt", ".md", ".markdown":
			paths = append(paths, filepath.Join(sourceFolder, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
