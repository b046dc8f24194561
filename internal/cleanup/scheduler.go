package cleanup

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Scheduler periodically sweeps the jobs directory for leftovers: job
// directories without a record file (a submission that died before its
// first persist) and stale temp files from interrupted atomic writes.
type Scheduler struct {
	jobsDir         string
	intervalMinutes int
	maxAgeHours     int
	stopChan        chan struct{}
}

// NewScheduler creates a cleanup scheduler over the jobs directory
func NewScheduler(jobsDir string, intervalMinutes, maxAgeHours int) *Scheduler {
	return &Scheduler{
		jobsDir:         jobsDir,
		intervalMinutes: intervalMinutes,
		maxAgeHours:     maxAgeHours,
		stopChan:        make(chan struct{}),
	}
}

// Start runs one sweep immediately, then sweeps on the interval
func (s *Scheduler) Start() {
	log.Println("Running initial storage sweep...")
	s.sweep()

	ticker := time.NewTicker(time.Duration(s.intervalMinutes) * time.Minute)

	go func() {
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stopChan:
				ticker.Stop()
				return
			}
		}
	}()

	log.Printf("Cleanup scheduler started (interval: %dm, max age: %dh)",
		s.intervalMinutes, s.maxAgeHours)
}

// Stop stops the cleanup scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
	log.Println("Cleanup scheduler stopped")
}

// sweep removes orphaned job directories and stale .tmp files
func (s *Scheduler) sweep() {
	now := time.Now()
	maxAge := time.Duration(s.maxAgeHours) * time.Hour

	entries, err := os.ReadDir(s.jobsDir)
	if err != nil {
		log.Printf("Error reading jobs directory during sweep: %v", err)
		return
	}

	removedDirs, removedFiles := 0, 0
	for _, entry := range entries {
		path := filepath.Join(s.jobsDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}

		if !entry.IsDir() {
			// Loose files at the top level are never ours; only reap
			// interrupted atomic-write leftovers.
			if strings.HasSuffix(entry.Name(), ".tmp") && now.Sub(info.ModTime()) > maxAge {
				if err := os.Remove(path); err == nil {
					removedFiles++
				}
			}
			continue
		}

		if s.sweepJobDir(path, now, maxAge) {
			removedDirs++
		} else {
			removedFiles += removeStaleTempFiles(path, now, maxAge)
		}
	}

	if removedDirs > 0 || removedFiles > 0 {
		log.Printf("Sweep complete: %d orphaned job directories, %d stale temp files removed",
			removedDirs, removedFiles)
	}
}

// sweepJobDir deletes a job directory that has no record file and has
// not been touched within maxAge. Reports whether the directory was
// removed.
func (s *Scheduler) sweepJobDir(dir string, now time.Time, maxAge time.Duration) bool {
	if _, err := os.Stat(filepath.Join(dir, "job.json")); err == nil {
		return false
	}

	info, err := os.Stat(dir)
	if err != nil || now.Sub(info.ModTime()) <= maxAge {
		return false
	}

	if err := os.RemoveAll(dir); err != nil {
		log.Printf("Failed to remove orphaned job directory %s: %v", dir, err)
		return false
	}
	log.Printf("Removed orphaned job directory: %s", filepath.Base(dir))
	return true
}

func removeStaleTempFiles(dir string, now time.Time, maxAge time.Duration) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tmp") {
			continue
		}
		info, err := entry.Info()
		if err != nil || now.Sub(info.ModTime()) <= maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed
}

// EnsureDirExists creates the storage directory if it doesn't exist
func EnsureDirExists(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	log.Printf("Storage directory ready: %s", dir)
	return nil
}
