package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"transcription-studio/internal/types"
)

// WhisperX runs WhisperX through its Python CLI and parses the JSON it
// writes. A single mutex serializes runs because one accelerator is
// assumed shared.
type WhisperX struct {
	pythonBin string
	mu        sync.Mutex
}

// NewWhisperX creates a transcriber invoking `python -m whisperx`
func NewWhisperX(pythonBin string) *WhisperX {
	if pythonBin == "" {
		pythonBin = "python"
	}
	return &WhisperX{pythonBin: pythonBin}
}

// Transcribe processes an audio file and returns the structured transcript.
// onProgress is invoked at stage boundaries; a non-nil return aborts the run.
func (w *WhisperX) Transcribe(ctx context.Context, audioPath string, params types.JobParams, hfToken string, onProgress func(progress int, step, message string) error) (types.TranscriptionResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if params.Diarization && hfToken == "" {
		return types.TranscriptionResult{}, fmt.Errorf("%w: diarization requested but no HF token is set", types.ErrNotConfigured)
	}

	if onProgress != nil {
		if err := onProgress(30, types.StepTranscribing, "Transcribing audio."); err != nil {
			return types.TranscriptionResult{}, err
		}
	}

	tempDir, err := os.MkdirTemp("", "whisperx-output-*")
	if err != nil {
		return types.TranscriptionResult{}, fmt.Errorf("failed to create whisperx output dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	args := buildWhisperXArgs(audioPath, params, hfToken, tempDir)
	cmd := exec.CommandContext(ctx, w.pythonBin, args...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return types.TranscriptionResult{}, fmt.Errorf("whisperx transcription failed: %v\nOutput: %s", err, string(output))
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(tempDir, baseName+".json")

	jsonData, err := os.ReadFile(jsonPath)
	if err != nil {
		return types.TranscriptionResult{}, fmt.Errorf("failed to read whisperx output: %w", err)
	}

	result, err := parseWhisperXOutput(jsonData)
	if err != nil {
		return types.TranscriptionResult{}, err
	}

	if onProgress != nil {
		if params.Diarization {
			if err := onProgress(75, types.StepDiarizing, "Speaker labels assigned."); err != nil {
				return types.TranscriptionResult{}, err
			}
		} else {
			if err := onProgress(55, types.StepTranscribing, "Transcript ready."); err != nil {
				return types.TranscriptionResult{}, err
			}
		}
	}

	log.Printf("Transcription completed: %d segments, %.2fs duration", len(result.Segments), result.Duration())
	return result, nil
}

// buildWhisperXArgs builds the CLI invocation for one run
func buildWhisperXArgs(audioPath string, params types.JobParams, hfToken, outputDir string) []string {
	args := []string{
		"-m", "whisperx",
		audioPath,
		"--model", params.ModelName,
		"--device", params.Device,
		"--batch_size", strconv.Itoa(params.BatchSize),
		"--compute_type", params.ComputeType,
		"--output_dir", outputDir,
		"--output_format", "json",
	}

	if lang := strings.TrimSpace(params.Language); lang != "" && !strings.EqualFold(lang, "auto") {
		args = append(args, "--language", lang)
	}
	if params.Diarization {
		args = append(args, "--diarize", "--hf_token", hfToken)
	}
	return args
}

// whisperXOutput matches the JSON document WhisperX writes
type whisperXOutput struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start   float64 `json:"start"`
		End     float64 `json:"end"`
		Text    string  `json:"text"`
		Speaker string  `json:"speaker"`
	} `json:"segments"`
}

// parseWhisperXOutput converts raw CLI output into the strict result schema.
// WhisperX omits the full text field, so it is rebuilt from segments when
// missing.
func parseWhisperXOutput(data []byte) (types.TranscriptionResult, error) {
	var raw whisperXOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return types.TranscriptionResult{}, fmt.Errorf("failed to parse whisperx JSON: %w", err)
	}

	segments := make([]types.Segment, len(raw.Segments))
	parts := make([]string, 0, len(raw.Segments))
	for i, seg := range raw.Segments {
		segments[i] = types.Segment{
			Start:   seg.Start,
			End:     seg.End,
			Text:    strings.TrimSpace(seg.Text),
			Speaker: seg.Speaker,
		}
		if segments[i].Text != "" {
			parts = append(parts, segments[i].Text)
		}
	}

	text := strings.TrimSpace(raw.Text)
	if text == "" {
		text = strings.Join(parts, " ")
	}

	return types.TranscriptionResult{
		Text:     text,
		Language: raw.Language,
		Segments: segments,
	}, nil
}
