package jobs

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"transcription-studio/internal/types"
)

// jobRecordName is the per-job state file inside the job directory
const jobRecordName = "job.json"

func (s *Service) jobRecordPath(id string) string {
	return filepath.Join(s.root, id, jobRecordName)
}

// persistLocked writes the full job record. Called with the service
// lock held so the read-modify-persist sequence is atomic per job.
// Persistence failures are logged, never fatal to the worker.
func (s *Service) persistLocked(job *Job) {
	if err := writeJobRecord(s.jobRecordPath(job.ID), job); err != nil {
		log.Printf("Failed to persist job %s: %v", job.ID, err)
	}
}

// writeJobRecord writes the record atomically: a reader never observes
// a half-written file
func writeJobRecord(path string, job *Job) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create job directory: %w", err)
	}

	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode job record: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write job record: %w", err)
	}
	return os.Rename(tmp, path)
}

// loadFromDiskLocked rebuilds the in-memory store from per-job records.
// Jobs caught mid-flight by a restart are forced to failed/interrupted:
// inference state cannot be safely reconstructed, so partially executed
// work is never resumed.
func (s *Service) loadFromDiskLocked() error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return fmt.Errorf("failed to read jobs directory: %w", err)
	}

	loaded, interrupted := 0, 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		path := filepath.Join(s.root, entry.Name(), jobRecordName)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var job Job
		if err := json.Unmarshal(data, &job); err != nil {
			log.Printf("Skipping unreadable job record %s: %v", path, err)
			continue
		}
		if job.ID == "" {
			continue
		}

		if job.Status == types.StatusQueued || job.Status == types.StatusProcessing {
			job.Status = types.StatusFailed
			job.Progress = 100
			job.Step = types.StepInterrupted
			job.Error = "Server restarted before job completion."
			job.UpdatedAt = time.Now().UTC()
			job.pushEvent("Marked interrupted after restart.")
			if err := writeJobRecord(path, &job); err != nil {
				log.Printf("Failed to re-persist interrupted job %s: %v", job.ID, err)
			}
			interrupted++
		}

		s.jobs[job.ID] = &job
		loaded++
	}

	if loaded > 0 {
		log.Printf("Loaded %d persisted jobs (%d marked interrupted)", loaded, interrupted)
	}
	return nil
}
