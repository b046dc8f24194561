package jobs

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"transcription-studio/internal/media"
	"transcription-studio/internal/transcription"
	"transcription-studio/internal/types"
)

// Transcriber produces a structured transcript for an audio file. The
// progress callback is invoked at stage boundaries; returning an error
// aborts the run.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, params types.JobParams, hfToken string, onProgress func(progress int, step, message string) error) (types.TranscriptionResult, error)
}

// Exporter writes output files for the requested formats and returns the
// format -> path mapping
type Exporter interface {
	WriteOutputs(dir, baseName string, result types.TranscriptionResult, formats []string) (map[string]string, error)
}

// Summarizer generates summary text for a transcript
type Summarizer interface {
	Summarize(ctx context.Context, transcript, style, stylePrompt string, settings types.GlobalSettings) (string, error)
}

// AudioConverter derives the audio form used for inference
type AudioConverter interface {
	ToAudio(ctx context.Context, sourcePath, jobDir string, mediaType types.MediaType) (string, error)
}

// SettingsSource resolves the current global settings
type SettingsSource interface {
	Get() types.GlobalSettings
}

// HistoryRecorder archives terminal jobs in the transcript history index
type HistoryRecorder interface {
	Record(job Job) error
}

// Deps bundles the external collaborators the service drives
type Deps struct {
	Converter   AudioConverter
	Transcriber Transcriber
	Exporter    Exporter
	Summarizer  Summarizer
	Settings    SettingsSource
	History     HistoryRecorder // optional
}

// Service owns the job map, the FIFO queue, and the single worker. All
// job mutations go through its mutex and are persisted before they are
// considered complete.
type Service struct {
	root string
	deps Deps

	mu        sync.Mutex
	jobs      map[string]*Job
	queue     *fifo
	currentID string

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewService creates a job service rooted at jobsDir
func NewService(jobsDir string, deps Deps) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		root:   jobsDir,
		deps:   deps,
		jobs:   make(map[string]*Job),
		queue:  newFIFO(),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Start loads persisted jobs from disk, marks interrupted ones, and
// spawns the worker loop
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	if err := os.MkdirAll(s.root, 0755); err != nil {
		return fmt.Errorf("failed to create jobs directory: %w", err)
	}
	if err := s.loadFromDiskLocked(); err != nil {
		return err
	}

	s.started = true
	go s.worker()
	return nil
}

// Stop signals the worker and waits for it to exit. In-flight external
// calls are aborted through the service context.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.cancel()
	s.queue.Close()
	<-s.done
}

// Submit admits a new job: it materializes the upload, classifies it,
// derives the audio form for video, persists the initial record, and
// enqueues the job id. Failures leave no record behind.
func (s *Service) Submit(ctx context.Context, filename string, content io.Reader, params types.JobParams) (string, error) {
	sourceName := filepath.Base(strings.TrimSpace(filename))
	if sourceName == "" || sourceName == "." || sourceName == string(filepath.Separator) {
		return "", fmt.Errorf("%w: missing filename", types.ErrInvalidInput)
	}

	id := uuid.New().String()
	jobDir := filepath.Join(s.root, id)
	sourcePath := filepath.Join(jobDir, sourceName)

	if err := media.SaveUpload(content, sourcePath); err != nil {
		os.RemoveAll(jobDir)
		return "", err
	}

	mediaType, err := media.DetectMediaType(sourcePath)
	if err != nil {
		os.RemoveAll(jobDir)
		return "", err
	}

	audioPath, err := s.deps.Converter.ToAudio(ctx, sourcePath, jobDir, mediaType)
	if err != nil {
		os.RemoveAll(jobDir)
		return "", err
	}

	now := time.Now().UTC()
	job := &Job{
		ID:         id,
		Filename:   sourceName,
		SourcePath: sourcePath,
		AudioPath:  audioPath,
		FileType:   mediaType,
		Status:     types.StatusQueued,
		Progress:   0,
		Step:       types.StepQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
		Params:     params,
		Result: types.JobResult{
			Segments:       []types.Segment{},
			Summaries:      map[string]string{},
			GeneratedFiles: map[string]string{},
		},
	}
	job.pushEvent("Job queued.")

	s.mu.Lock()
	s.jobs[id] = job
	s.persistLocked(job)
	s.mu.Unlock()

	s.queue.Enqueue(id)
	log.Printf("Job %s queued (file: %s, type: %s)", id, sourceName, mediaType)
	return id, nil
}

// Get returns a snapshot of one job
func (s *Service) Get(id string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, types.ErrNotFound
	}
	return job.clone(), nil
}

// List returns snapshots of all jobs ordered by updated_at descending
func (s *Service) List() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job.clone())
	}
	sort.Slice(out, func(i, k int) bool {
		return out[i].UpdatedAt.After(out[k].UpdatedAt)
	})
	return out
}

// Cancel requests cancellation. Terminal jobs are returned unchanged;
// queued jobs are driven straight to cancelled; a processing job only
// gets its flag flipped and resolves at the pipeline's next checkpoint.
func (s *Service) Cancel(id string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return Job{}, types.ErrNotFound
	}
	if job.Status.IsTerminal() {
		return job.clone(), nil
	}

	job.CancelRequested = true
	job.pushEvent("Cancellation requested.")

	if job.Status == types.StatusQueued {
		s.finalizeLocked(job, types.StatusCancelled, types.StepCancelled, "", "Cancelled before execution.")
	} else {
		job.Step = types.StepCancelling
		job.UpdatedAt = time.Now().UTC()
		s.persistLocked(job)
	}
	return job.clone(), nil
}

// ClearQueue cancels every queued job and, when includeActive is set,
// also the job currently processing. Returns the count of queued jobs
// cancelled; the active job is not counted.
func (s *Service) ClearQueue(includeActive bool) int {
	s.mu.Lock()
	queued := make([]string, 0, len(s.jobs))
	for id, job := range s.jobs {
		if job.Status == types.StatusQueued {
			queued = append(queued, id)
		}
	}
	active := s.currentID
	s.mu.Unlock()

	cleared := 0
	for _, id := range queued {
		if _, err := s.Cancel(id); err == nil {
			cleared++
		}
	}
	if includeActive && active != "" {
		s.Cancel(active)
	}
	return cleared
}

// Delete removes a terminal job's record and its storage directory. The
// confirmation text must match the job's filename exactly.
func (s *Service) Delete(id, confirmText string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return Job{}, types.ErrNotFound
	}
	if !job.Status.IsTerminal() {
		return Job{}, fmt.Errorf("%w: only completed, failed, or cancelled jobs can be deleted", types.ErrInvalidState)
	}
	if s.currentID == id {
		return Job{}, fmt.Errorf("%w: cannot delete the active job", types.ErrInvalidState)
	}
	if confirmText != job.Filename {
		return Job{}, fmt.Errorf("%w: confirmation text must exactly match the filename", types.ErrInvalidInput)
	}

	snapshot := job.clone()
	delete(s.jobs, id)
	if err := os.RemoveAll(filepath.Join(s.root, id)); err != nil {
		log.Printf("Failed to remove job directory %s: %v", id, err)
	}
	return snapshot, nil
}

// RegenerateSummary produces a new summary for a finished job in the
// given style. The transcript must be non-empty; status is not altered.
func (s *Service) RegenerateSummary(ctx context.Context, id, style string) (Job, error) {
	s.mu.Lock()
	job, ok := s.jobs[id]
	if !ok {
		s.mu.Unlock()
		return Job{}, types.ErrNotFound
	}
	if job.Status != types.StatusCompleted && job.Status != types.StatusFailed {
		s.mu.Unlock()
		return Job{}, fmt.Errorf("%w: summary can be generated after transcription finishes", types.ErrInvalidState)
	}

	transcript := transcriptForSummary(job)
	if transcript == "" {
		s.mu.Unlock()
		return Job{}, fmt.Errorf("%w: transcript is empty; cannot generate summary", types.ErrInvalidState)
	}

	job.Step = types.StepSummarizing
	job.UpdatedAt = time.Now().UTC()
	job.pushEvent(fmt.Sprintf("Generating %q summary.", style))
	s.persistLocked(job)
	s.mu.Unlock()

	cfg := s.deps.Settings.Get()
	summaryText, err := s.deps.Summarizer.Summarize(ctx, transcript, style, cfg.SummaryPromptTemplates[style], cfg)
	if err != nil {
		return Job{}, err
	}

	return s.mutate(id, func(j *Job) {
		j.Result.Summary = summaryText
		if j.Result.Summaries == nil {
			j.Result.Summaries = map[string]string{}
		}
		j.Result.Summaries[style] = summaryText
		if j.Status == types.StatusCompleted {
			j.Step = types.StepDone
		}
		j.pushEvent(fmt.Sprintf("Summary %q generated.", style))
	})
}

// ActiveJobID returns the id of the job currently processing, if any
func (s *Service) ActiveJobID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// QueueLength reports the number of jobs waiting to be dequeued
func (s *Service) QueueLength() int {
	return s.queue.Len()
}

// mutate applies fn to a job under the lock, bumps updated_at, persists,
// and returns a snapshot
func (s *Service) mutate(id string, fn func(*Job)) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return Job{}, types.ErrNotFound
	}
	fn(job)
	job.UpdatedAt = time.Now().UTC()
	s.persistLocked(job)
	return job.clone(), nil
}

// transcriptForSummary prefers a speaker-attributed transcript, falling
// back to the plain text or concatenated segment text. Caller holds the
// lock or owns the job copy.
func transcriptForSummary(j *Job) string {
	for _, seg := range j.Result.Segments {
		if seg.Speaker != "" {
			return transcription.SpeakerTranscript(j.Result.Segments, j.Params.SpeakerNames)
		}
	}

	if text := strings.TrimSpace(j.Result.Transcript); text != "" {
		return text
	}

	parts := make([]string, 0, len(j.Result.Segments))
	for _, seg := range j.Result.Segments {
		if t := strings.TrimSpace(seg.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
