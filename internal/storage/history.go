package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"transcription-studio/internal/jobs"
)

// HistoryDB is a SQLite index over finished jobs, kept alongside the
// per-job records so past runs remain queryable after their job
// directories are deleted.
type HistoryDB struct {
	db *sql.DB
}

// HistoryEntry is one archived terminal job
type HistoryEntry struct {
	JobID      string    `json:"job_id"`
	Filename   string    `json:"filename"`
	FileType   string    `json:"file_type"`
	Status     string    `json:"status"`
	Language   string    `json:"language"`
	Duration   float64   `json:"duration"`
	WordCount  int       `json:"word_count"`
	CreatedAt  time.Time `json:"created_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewHistoryDB opens (creating if needed) the history database
func NewHistoryDB(dbPath string) (*HistoryDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS transcripts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT NOT NULL UNIQUE,
		filename TEXT NOT NULL,
		file_type TEXT NOT NULL,
		status TEXT NOT NULL,
		language TEXT,
		duration REAL,
		word_count INTEGER,
		created_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_finished_at ON transcripts(finished_at);
	CREATE INDEX IF NOT EXISTS idx_filename ON transcripts(filename);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create transcripts table: %w", err)
	}

	return &HistoryDB{db: db}, nil
}

// Record upserts a terminal job. Re-recording the same job (a failed job
// whose summary is regenerated, for instance) replaces the earlier row.
func (h *HistoryDB) Record(job jobs.Job) error {
	duration := 0.0
	if n := len(job.Result.Segments); n > 0 {
		duration = job.Result.Segments[n-1].End
	}
	wordCount := len(strings.Fields(job.Result.Transcript))

	query := `
	INSERT INTO transcripts (job_id, filename, file_type, status, language, duration, word_count, created_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(job_id) DO UPDATE SET
		status = excluded.status,
		language = excluded.language,
		duration = excluded.duration,
		word_count = excluded.word_count,
		finished_at = excluded.finished_at
	`

	_, err := h.db.Exec(query, job.ID, job.Filename, string(job.FileType), string(job.Status),
		job.Result.Language, duration, wordCount, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to record job history: %w", err)
	}
	return nil
}

// Get retrieves one archived job by id
func (h *HistoryDB) Get(jobID string) (HistoryEntry, error) {
	query := `
	SELECT job_id, filename, file_type, status, language, duration, word_count, created_at, finished_at
	FROM transcripts WHERE job_id = ?
	`

	var entry HistoryEntry
	err := h.db.QueryRow(query, jobID).Scan(
		&entry.JobID, &entry.Filename, &entry.FileType, &entry.Status,
		&entry.Language, &entry.Duration, &entry.WordCount,
		&entry.CreatedAt, &entry.FinishedAt,
	)
	if err != nil {
		return HistoryEntry{}, fmt.Errorf("failed to get history entry: %w", err)
	}
	return entry, nil
}

// List returns the most recently finished jobs, newest first
func (h *HistoryDB) List(limit int) ([]HistoryEntry, error) {
	query := `
	SELECT job_id, filename, file_type, status, language, duration, word_count, created_at, finished_at
	FROM transcripts ORDER BY finished_at DESC LIMIT ?
	`

	rows, err := h.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		if err := rows.Scan(
			&entry.JobID, &entry.Filename, &entry.FileType, &entry.Status,
			&entry.Language, &entry.Duration, &entry.WordCount,
			&entry.CreatedAt, &entry.FinishedAt,
		); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Close closes the database connection
func (h *HistoryDB) Close() error {
	return h.db.Close()
}
