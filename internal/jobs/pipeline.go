package jobs

import (
	"errors"
	"log"
	"path/filepath"
	"time"

	"transcription-studio/internal/transcription"
	"transcription-studio/internal/types"
)

// errCancelled unwinds the pipeline when a checkpoint observes the
// cancellation flag
var errCancelled = errors.New("cancellation requested")

// worker drains the FIFO one job at a time. Faults inside a job never
// terminate the loop.
func (s *Service) worker() {
	defer close(s.done)
	log.Println("Job worker started")

	for {
		id, ok := s.queue.Dequeue()
		if !ok {
			log.Println("Job worker stopped")
			return
		}
		s.process(id)
	}
}

// process drives one job through the pipeline and resolves its terminal
// state
func (s *Service) process(id string) {
	s.mu.Lock()
	job, ok := s.jobs[id]
	if !ok || job.Status == types.StatusCancelled {
		s.mu.Unlock()
		return
	}
	if job.CancelRequested {
		s.finalizeLocked(job, types.StatusCancelled, types.StepCancelled, "", "Cancelled before processing started.")
		s.mu.Unlock()
		return
	}

	s.currentID = id
	job.Status = types.StatusProcessing
	job.Progress = 10
	job.Step = types.StepPreparing
	job.UpdatedAt = time.Now().UTC()
	job.pushEvent("Started processing.")
	s.persistLocked(job)

	jobDir := filepath.Join(s.root, id)
	audioPath := job.AudioPath
	params := job.Params
	s.mu.Unlock()

	err := s.runPipeline(id, jobDir, audioPath, params)
	switch {
	case err == nil:
		// terminal state applied inside runPipeline
	case errors.Is(err, errCancelled):
		s.finalize(id, types.StatusCancelled, types.StepCancelled, "", "Cancelled by user.")
	default:
		log.Printf("Job %s failed: %v", id, err)
		s.finalize(id, types.StatusFailed, types.StepFailed, err.Error(), "Failed: "+err.Error())
	}

	s.mu.Lock()
	if s.currentID == id {
		s.currentID = ""
	}
	s.mu.Unlock()
}

// runPipeline sequences transcribe -> export -> summarize -> finalize.
// Each stage entry advances progress and step, appends an event,
// persists, and checks for cancellation.
func (s *Service) runPipeline(id, jobDir, audioPath string, params types.JobParams) error {
	cfg := s.deps.Settings.Get()
	stylePrompt := cfg.SummaryPromptTemplates[params.SummaryStyle]

	onProgress := func(progress int, step, message string) error {
		if err := s.checkpoint(id); err != nil {
			return err
		}
		s.mutate(id, func(j *Job) {
			if progress > j.Progress {
				j.Progress = progress
			}
			j.Step = step
			j.pushEvent(message)
		})
		return nil
	}

	result, err := s.deps.Transcriber.Transcribe(s.ctx, audioPath, params, cfg.HFToken, onProgress)
	if err != nil {
		return err
	}
	result.Segments = transcription.ApplySpeakerNames(result.Segments, params.SpeakerNames)

	s.mutate(id, func(j *Job) {
		if j.Progress < 70 {
			j.Progress = 70
		}
		j.Step = types.StepExporting
		j.Result.Transcript = result.Text
		j.Result.Segments = result.Segments
		j.Result.Language = result.Language
		j.pushEvent("Generating output files.")
	})
	if err := s.checkpoint(id); err != nil {
		return err
	}

	outputs, err := s.deps.Exporter.WriteOutputs(jobDir, "transcript", result, params.OutputFormats)
	if err != nil {
		return err
	}
	s.mutate(id, func(j *Job) {
		j.Result.GeneratedFiles = outputs
	})

	if params.SummaryEnabled {
		if err := s.checkpoint(id); err != nil {
			return err
		}
		s.mutate(id, func(j *Job) {
			if j.Progress < 85 {
				j.Progress = 85
			}
			j.Step = types.StepSummarizing
			j.pushEvent("Generating summary.")
		})

		transcript := summaryTranscript(result, params)
		summaryText, err := s.deps.Summarizer.Summarize(s.ctx, transcript, params.SummaryStyle, stylePrompt, cfg)
		if err != nil {
			return err
		}
		s.mutate(id, func(j *Job) {
			j.Result.Summary = summaryText
			if j.Result.Summaries == nil {
				j.Result.Summaries = map[string]string{}
			}
			j.Result.Summaries[params.SummaryStyle] = summaryText
		})
	}

	// A cancellation flag raised after this point loses the race: once
	// output exists, the terminal state wins.
	s.finalize(id, types.StatusCompleted, types.StepDone, "", "Completed successfully.")
	return nil
}

// checkpoint returns errCancelled when the job's cancellation flag is set
func (s *Service) checkpoint(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok && job.CancelRequested {
		return errCancelled
	}
	return nil
}

// finalize applies a terminal transition: state fields, retention,
// event, persist, and history archival
func (s *Service) finalize(id string, status types.JobStatus, step, errMsg, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		s.finalizeLocked(job, status, step, errMsg, message)
	}
}

func (s *Service) finalizeLocked(job *Job, status types.JobStatus, step, errMsg, message string) {
	job.Status = status
	job.Progress = 100
	job.Step = step
	job.Error = errMsg
	job.UpdatedAt = time.Now().UTC()
	applyRetention(job)
	job.pushEvent(message)
	s.persistLocked(job)

	if s.deps.History != nil {
		if err := s.deps.History.Record(job.clone()); err != nil {
			log.Printf("Failed to archive job %s to history: %v", job.ID, err)
		}
	}
}

// summaryTranscript builds the text handed to the summarizer for the
// in-flight result
func summaryTranscript(result types.TranscriptionResult, params types.JobParams) string {
	for _, seg := range result.Segments {
		if seg.Speaker != "" {
			return transcription.SpeakerTranscript(result.Segments, params.SpeakerNames)
		}
	}
	return result.Text
}
