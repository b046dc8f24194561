package storage

import (
	"path/filepath"
	"testing"
	"time"

	"transcription-studio/internal/jobs"
	"transcription-studio/internal/types"
)

func newTestDB(t *testing.T) *HistoryDB {
	t.Helper()
	db, err := NewHistoryDB(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewHistoryDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func terminalJob(id string) jobs.Job {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return jobs.Job{
		ID:        id,
		Filename:  "meeting.mp3",
		FileType:  types.MediaAudio,
		Status:    types.StatusCompleted,
		CreatedAt: created,
		UpdatedAt: created.Add(5 * time.Minute),
		Result: types.JobResult{
			Transcript: "hello there general kenobi",
			Language:   "en",
			Segments: []types.Segment{
				{Start: 0, End: 2.5, Text: "hello there"},
				{Start: 2.5, End: 6.25, Text: "general kenobi"},
			},
		},
	}
}

func TestRecordAndGet(t *testing.T) {
	db := newTestDB(t)

	if err := db.Record(terminalJob("job-1")); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	entry, err := db.Get("job-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if entry.Filename != "meeting.mp3" || entry.Status != "completed" || entry.Language != "en" {
		t.Fatalf("entry = %+v", entry)
	}
	if entry.WordCount != 4 {
		t.Fatalf("word count = %d, want 4", entry.WordCount)
	}
	if entry.Duration != 6.25 {
		t.Fatalf("duration = %v, want 6.25", entry.Duration)
	}
}

func TestRecordUpsertsByJobID(t *testing.T) {
	db := newTestDB(t)

	job := terminalJob("job-1")
	job.Status = types.StatusFailed
	if err := db.Record(job); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	job.Status = types.StatusCompleted
	job.UpdatedAt = job.UpdatedAt.Add(time.Hour)
	if err := db.Record(job); err != nil {
		t.Fatalf("re-Record() error = %v", err)
	}

	entries, err := db.List(10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len = %d, want 1 row after upsert", len(entries))
	}
	if entries[0].Status != "completed" {
		t.Fatalf("status = %s, want completed", entries[0].Status)
	}
}

func TestListNewestFirst(t *testing.T) {
	db := newTestDB(t)

	older := terminalJob("job-old")
	newer := terminalJob("job-new")
	newer.UpdatedAt = older.UpdatedAt.Add(time.Hour)

	if err := db.Record(older); err != nil {
		t.Fatal(err)
	}
	if err := db.Record(newer); err != nil {
		t.Fatal(err)
	}

	entries, err := db.List(10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d", len(entries))
	}
	if entries[0].JobID != "job-new" || entries[1].JobID != "job-old" {
		t.Fatalf("order = %s, %s", entries[0].JobID, entries[1].JobID)
	}

	limited, err := db.List(1)
	if err != nil {
		t.Fatalf("List(1) error = %v", err)
	}
	if len(limited) != 1 || limited[0].JobID != "job-new" {
		t.Fatalf("limited = %+v", limited)
	}
}
