package jobs

import (
	"time"

	"transcription-studio/internal/types"
)

// Most recent events kept per job
const maxEvents = 120

// Job is one submitted media-processing request and its accumulated state.
// The service owns every mutation; callers only ever see copies.
type Job struct {
	ID              string           `json:"id"`
	Filename        string           `json:"filename"`
	SourcePath      string           `json:"source_path"`
	AudioPath       string           `json:"audio_path"`
	FileType        types.MediaType  `json:"file_type"`
	Status          types.JobStatus  `json:"status"`
	Progress        int              `json:"progress"`
	Step            string           `json:"step"`
	Error           string           `json:"error,omitempty"`
	Events          []string         `json:"events"`
	CancelRequested bool             `json:"cancel_requested"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Params          types.JobParams  `json:"params"`
	Result          types.JobResult  `json:"result"`
}

// pushEvent appends a timestamped message, suppressing consecutive
// duplicates and trimming to the most recent maxEvents entries
func (j *Job) pushEvent(message string) {
	entry := "[" + time.Now().UTC().Format("15:04:05") + "] " + message
	if n := len(j.Events); n > 0 && j.Events[n-1] == entry {
		return
	}
	j.Events = append(j.Events, entry)
	if len(j.Events) > maxEvents {
		j.Events = append([]string(nil), j.Events[len(j.Events)-maxEvents:]...)
	}
}

// clone returns a deep copy safe to hand to callers while the worker
// keeps mutating the original
func (j *Job) clone() Job {
	out := *j
	out.Events = append([]string(nil), j.Events...)
	out.Params.OutputFormats = append([]string(nil), j.Params.OutputFormats...)
	out.Params.SpeakerNames = copyStringMap(j.Params.SpeakerNames)
	out.Result.Segments = append([]types.Segment(nil), j.Result.Segments...)
	out.Result.Summaries = copyStringMap(j.Result.Summaries)
	out.Result.GeneratedFiles = copyStringMap(j.Result.GeneratedFiles)
	return out
}

func copyStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
