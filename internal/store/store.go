// Package store persists the pipeline's durable state in SQLite: the
// translation memory that lets repeated documents skip LLM calls, the
// terminology glossary injected into translation prompts, and bulk-run
// records that make interrupted batches resumable.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	-- pipeline_memory caches completed pipeline results per document text
	-- and language pair
	CREATE TABLE IF NOT EXISTS pipeline_memory (
		id TEXT PRIMARY KEY,
		source_text TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		corrected_text TEXT NOT NULL,
		translated_text TEXT NOT NULL,
		source_count INTEGER NOT NULL,
		target_count INTEGER NOT NULL,
		usage_count INTEGER DEFAULT 1,
		invalidated BOOLEAN DEFAULT FALSE,
		last_used TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_text, source_lang, target_lang)
	);

	-- glossary stores required term translations per language pair
	CREATE TABLE IF NOT EXISTS glossary (
		id TEXT PRIMARY KEY,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		source_term TEXT NOT NULL,
		target_term TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_lang, target_lang, source_term)
	);

	-- bulk_runs and bulk_files track batch progress for resume support
	CREATE TABLE IF NOT EXISTS bulk_runs (
		id TEXT PRIMARY KEY,
		source_folder TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		status TEXT DEFAULT 'running',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS bulk_files (
		run_id TEXT NOT NULL,
		path TEXT NOT NULL,
		status TEXT NOT NULL,
		source_count INTEGER DEFAULT 0,
		target_count INTEGER DEFAULT 0,
		error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (run_id, path),
		FOREIGN KEY (run_id) REFERENCES bulk_runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_memory_lookup ON pipeline_memory(source_text, source_lang, target_lang);
	CREATE INDEX IF NOT EXISTS idx_glossary_lookup ON glossary(source_lang, target_lang);
	CREATE INDEX IF NOT EXISTS idx_bulk_files_run ON bulk_files(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeKey trims and NFC-normalizes text for stable cache keys.
func normalizeKey(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

// MemoryEntry is a cached pipeline result.
type MemoryEntry struct {
	ID             string
	SourceText     string
	SourceLang     string
	TargetLang     string
	CorrectedText  string
	TranslatedText string
	SourceCount    int
	TargetCount    int
	UsageCount     int
	Invalidated    bool
	LastUsed       time.Time
}

// GetCachedResult returns the cached pipeline result for a document and
// language pair, bumping its usage counter on a hit.
func (s *Store) GetCachedResult(ctx context.Context, sourceText, sourceLang, targetLang string) (*MemoryEntry, bool, error) {
	key := normalizeKey(sourceText)

	var e MemoryEntry
	err := s.db.QueryRowContext(ctx,
		`SELECT id, corrected_text, translated_text, source_count, target_count, invalidated
		 FROM pipeline_memory WHERE source_text = ? AND source_lang = ? AND target_lang = ?`,
		key, sourceLang, targetLang).
		Scan(&e.ID, &e.CorrectedText, &e.TranslatedText, &e.SourceCount, &e.TargetCount, &e.Invalidated)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if e.Invalidated {
		return nil, false, nil
	}

	e.SourceText = key
	e.SourceLang = sourceLang
	e.TargetLang = targetLang

	_, err = s.db.ExecContext(ctx,
		`UPDATE pipeline_memory SET usage_count = usage_count + 1, last_used = ? WHERE id = ?`,
		time.Now(), e.ID)
	return &e, true, err
}

// SaveResult stores a completed pipeline result, replacing any previous
// entry for the same document and language pair.
func (s *Store) SaveResult(ctx context.Context, sourceText, sourceLang, targetLang, correctedText, translatedText string, sourceCount, targetCount int) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO pipeline_memory
		 (id, source_text, source_lang, target_lang, corrected_text, translated_text, source_count, target_count, usage_count, invalidated, last_used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, FALSE, ?, ?)`,
		uuid.New().String(), normalizeKey(sourceText), sourceLang, targetLang,
		correctedText, translatedText, sourceCount, targetCount, now, now)
	return err
}

// InvalidateResult marks a memory entry stale without deleting it.
func (s *Store) InvalidateResult(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE pipeline_memory SET invalidated = TRUE WHERE id = ?`, id)
	return err
}

// ClearMemory removes all memory entries and returns how many were deleted.
func (s *Store) ClearMemory(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pipeline_memory`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListMemory returns all memory entries, most recently used first.
func (s *Store) ListMemory(ctx context.Context) ([]MemoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_text, source_lang, target_lang, corrected_text, translated_text,
		        source_count, target_count, usage_count, invalidated, last_used
		 FROM pipeline_memory ORDER BY last_used DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []MemoryEntry
	for rows.Next() {
		var e MemoryEntry
		if err := rows.Scan(&e.ID, &e.SourceText, &e.SourceLang, &e.TargetLang,
			&e.CorrectedText, &e.TranslatedText, &e.SourceCount, &e.TargetCount,
			&e.UsageCount, &e.Invalidated, &e.LastUsed); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MemoryStats summarizes translation memory usage.
type MemoryStats struct {
	TotalEntries   int
	ActiveEntries  int
	InvalidEntries int
	TotalUsage     int
}

func (s *Store) Stats(ctx context.Context) (*MemoryStats, error) {
	stats := &MemoryStats{}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN NOT invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN invalidated THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(usage_count), 0)
		FROM pipeline_memory`).
		Scan(&stats.TotalEntries, &stats.ActiveEntries, &stats.InvalidEntries, &stats.TotalUsage)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// GlossaryEntry is one required term translation.
type GlossaryEntry struct {
	ID         string
	SourceLang string
	TargetLang string
	SourceTerm string
	TargetTerm string
	CreatedAt  time.Time
}

// AddGlossaryTerm inserts or replaces the required translation for a term.
func (s *Store) AddGlossaryTerm(ctx context.Context, sourceLang, targetLang, sourceTerm, targetTerm string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO glossary (id, source_lang, target_lang, source_term, target_term)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), sourceLang, targetLang, sourceTerm, targetTerm)
	return err
}

// GetGlossaryTerms returns the glossary for a language pair as a source-term
// to target-term map, ready to embed in a translation prompt.
func (s *Store) GetGlossaryTerms(ctx context.Context, sourceLang, targetLang string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_term, target_term FROM glossary WHERE source_lang = ? AND target_lang = ?`,
		sourceLang, targetLang)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	terms := make(map[string]string)
	for rows.Next() {
		var src, tgt string
		if err := rows.Scan(&src, &tgt); err != nil {
			return nil, err
		}
		terms[src] = tgt
	}
	return terms, rows.Err()
}

// ListGlossaryTerms returns glossary entries, optionally filtered by
// language pair (empty strings match everything).
func (s *Store) ListGlossaryTerms(ctx context.Context, sourceLang, targetLang string) ([]GlossaryEntry, error) {
	query := `SELECT id, source_lang, target_lang, source_term, target_term, created_at FROM glossary`
	var args []interface{}

	switch {
	case sourceLang != "" && targetLang != "":
		query += ` WHERE source_lang = ? AND target_lang = ?`
		args = append(args, sourceLang, targetLang)
	case sourceLang != "":
		query += ` WHERE source_lang = ?`
		args = append(args, sourceLang)
	case targetLang != "":
		query += ` WHERE target_lang = ?`
		args = append(args, targetLang)
	}
	query += ` ORDER BY source_lang, target_lang, source_term`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []GlossaryEntry
	for rows.Next() {
		var e GlossaryEntry
		if err := rows.Scan(&e.ID, &e.SourceLang, &e.TargetLang, &e.SourceTerm, &e.TargetTerm, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteGlossaryTerm removes a glossary entry by ID.
func (s *Store) DeleteGlossaryTerm(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM glossary WHERE id = ?`, id)
	return err
}

// Bulk file statuses.
const (
	BulkFileDone   = "done"
	BulkFileFailed = "failed"
)

// BulkRun is a batch processing record.
type BulkRun struct {
	ID           string
	SourceFolder string
	TargetLang   string
	Status       string
	CreatedAt    time.Time
}

// CreateBulkRun records the start of a batch and returns its ID.
func (s *Store) CreateBulkRun(ctx context.Context, sourceFolder, targetLang string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bulk_runs (id, source_folder, target_lang) VALUES (?, ?, ?)`,
		id, sourceFolder, targetLang)
	return id, err
}

// GetBulkRun retrieves a batch record by ID.
func (s *Store) GetBulkRun(ctx context.Context, runID string) (*BulkRun, error) {
	var run BulkRun
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source_folder, target_lang, status, created_at FROM bulk_runs WHERE id = ?`,
		runID).Scan(&run.ID, &run.SourceFolder, &run.TargetLang, &run.Status, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bulk run not found: %s", runID)
	}
	return &run, err
}

// SaveBulkFile records one file's outcome within a batch.
func (s *Store) SaveBulkFile(ctx context.Context, runID, path, status string, sourceCount, targetCount int, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO bulk_files (run_id, path, status, source_count, target_count, error)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, path, status, sourceCount, targetCount, errMsg)
	return err
}

// CompletedBulkFiles returns the set of paths already processed successfully
// in a batch, for resume.
func (s *Store) CompletedBulkFiles(ctx context.Context, runID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path FROM bulk_files WHERE run_id = ? AND status = ?`, runID, BulkFileDone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		done[path] = true
	}
	return done, rows.Err()
}

// CompleteBulkRun marks a batch finished.
func (s *Store) CompleteBulkRun(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE bulk_runs SET status = 'completed', updated_at = ? WHERE id = ?`,
		time.Now(), runID)
	return err
}
