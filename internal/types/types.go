package types

// MediaType classifies an upload by its container kind
type MediaType string

const (
	MediaAudio MediaType = "audio"
	MediaVideo MediaType = "video"
)

// JobStatus is the lifecycle state of a job
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusCancelled  JobStatus = "cancelled"
)

// IsTerminal reports whether no further automatic transitions occur
func (s JobStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Pipeline step labels, distinct from status
const (
	StepQueued       = "queued"
	StepPreparing    = "preparing"
	StepTranscribing = "transcribing"
	StepDiarizing    = "diarizing"
	StepExporting    = "exporting"
	StepSummarizing  = "summarizing"
	StepDone         = "done"
	StepFailed       = "failed"
	StepCancelling   = "cancelling"
	StepCancelled    = "cancelled"
	StepInterrupted  = "interrupted"
)

// Segment represents a timestamped slice of the transcript
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}

// TranscriptionResult is the strict schema produced at the inference boundary
type TranscriptionResult struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// Duration returns the end time of the last segment in seconds
func (r TranscriptionResult) Duration() float64 {
	if len(r.Segments) == 0 {
		return 0
	}
	return r.Segments[len(r.Segments)-1].End
}

// JobParams is the immutable configuration a job runs under
type JobParams struct {
	ModelName            string            `json:"model_name"`
	Language             string            `json:"language"`
	BatchSize            int               `json:"batch_size"`
	Device               string            `json:"device"`
	ComputeType          string            `json:"compute_type"`
	Diarization          bool              `json:"diarization"`
	SummaryEnabled       bool              `json:"summary_enabled"`
	SummaryStyle         string            `json:"summary_style"`
	OutputFormats        []string          `json:"output_formats"`
	RetainSourceFiles    bool              `json:"retain_source_files"`
	RetainProcessedAudio bool              `json:"retain_processed_audio"`
	RetainExportFiles    bool              `json:"retain_export_files"`
	SpeakerNames         map[string]string `json:"speaker_names,omitempty"`
}

// JobResult accumulates pipeline output as stages complete
type JobResult struct {
	Transcript     string            `json:"transcript,omitempty"`
	Segments       []Segment         `json:"segments"`
	Language       string            `json:"language,omitempty"`
	Summary        string            `json:"summary,omitempty"`
	Summaries      map[string]string `json:"summaries"`
	GeneratedFiles map[string]string `json:"generated_files"`
}

// GlobalSettings holds the persisted defaults applied to new jobs and to
// each summarization call
type GlobalSettings struct {
	DefaultModel           string            `json:"default_model"`
	DefaultLanguage        string            `json:"default_language"`
	DefaultBatchSize       int               `json:"default_batch_size"`
	DefaultDevice          string            `json:"default_device"`
	ComputeType            string            `json:"compute_type"`
	LLMAPIBase             string            `json:"llm_api_base"`
	LLMAPIKey              string            `json:"llm_api_key"`
	LLMModel               string            `json:"llm_model"`
	RetainSourceFiles      bool              `json:"retain_source_files"`
	RetainProcessedAudio   bool              `json:"retain_processed_audio"`
	RetainExportFiles      bool              `json:"retain_export_files"`
	SummaryPromptTemplates map[string]string `json:"summary_prompt_templates"`
	HFToken                string            `json:"hf_token"`
}

// GlobalSettingsPatch is a partial update; nil fields are left unchanged
type GlobalSettingsPatch struct {
	DefaultModel           *string           `json:"default_model,omitempty"`
	DefaultLanguage        *string           `json:"default_language,omitempty"`
	DefaultBatchSize       *int              `json:"default_batch_size,omitempty"`
	DefaultDevice          *string           `json:"default_device,omitempty"`
	ComputeType            *string           `json:"compute_type,omitempty"`
	LLMAPIBase             *string           `json:"llm_api_base,omitempty"`
	LLMAPIKey              *string           `json:"llm_api_key,omitempty"`
	LLMModel               *string           `json:"llm_model,omitempty"`
	RetainSourceFiles      *bool             `json:"retain_source_files,omitempty"`
	RetainProcessedAudio   *bool             `json:"retain_processed_audio,omitempty"`
	RetainExportFiles      *bool             `json:"retain_export_files,omitempty"`
	SummaryPromptTemplates map[string]string `json:"summary_prompt_templates,omitempty"`
	HFToken                *string           `json:"hf_token,omitempty"`
}
