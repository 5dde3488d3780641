package bulk

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
)

// Row is one summary CSV record.
type Row struct {
	Filename    string
	SourceCount int
	TargetCount int
}

var summaryHeader = []string{"filename", "source_sentence_count", "target_sentence_count"}

// summaryWriter appends rows to the cumulative CSV. The file is not touched
// until the first row arrives, so a batch where every file fails leaves no
// summary behind; the header is written only when the file is created, and an
// existing summary from an earlier run is appended to. Appends are serialized
// and flushed per row so concurrent workers cannot interleave and a crash
// loses at most the in-flight row.
type summaryWriter struct {
	mu   sync.Mutex
	path string
	file *os.File
	cw   *csv.Writer
	seen map[string]bool
}

func newSummaryWriter(path string) *summaryWriter {
	return &summaryWriter{path: path, seen: make(map[string]bool)}
}

// open creates or reopens the CSV. Caller holds mu.
func (w *summaryWriter) open() error {
	_, statErr := os.Stat(w.path)
	fresh := errors.Is(statErr, os.ErrNotExist)

	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open summary file: %w", err)
	}

	w.file = file
	w.cw = csv.NewWriter(file)
	if fresh {
		w.cw.Write(summaryHeader)
		w.cw.Flush()
		if err := w.cw.Error(); err != nil {
			file.Close()
			w.file, w.cw = nil, nil
			return fmt.Errorf("failed to write summary header: %w", err)
		}
	}
	return nil
}

// Append writes one row. A filename seen earlier in this process gets another
// row, never an update, with a warning on stderr.
func (w *summaryWriter) Append(row Row) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		if err := w.open(); err != nil {
			return err
		}
	}

	if w.seen[row.Filename] {
		fmt.Fprintf(os.Stderr, "Warning: duplicate filename %q in summary, appending another row\n", row.Filename)
	}
	w.seen[row.Filename] = true

	record := []string{row.Filename, strconv.Itoa(row.SourceCount), strconv.Itoa(row.TargetCount)}
	if err := w.cw.Write(record); err != nil {
		return err
	}
	w.cw.Flush()
	return w.cw.Error()
}

func (w *summaryWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	w.cw.Flush()
	if err := w.cw.Error(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
