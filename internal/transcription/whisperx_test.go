package transcription

import (
	"context"
	"errors"
	"strings"
	"testing"

	"transcription-studio/internal/types"
)

func TestBuildWhisperXArgs(t *testing.T) {
	params := types.JobParams{
		ModelName:   "small",
		Language:    "en",
		BatchSize:   16,
		Device:      "cpu",
		ComputeType: "float32",
	}

	args := buildWhisperXArgs("/tmp/audio.mp3", params, "", "/tmp/out")
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-m whisperx",
		"/tmp/audio.mp3",
		"--model small",
		"--device cpu",
		"--batch_size 16",
		"--compute_type float32",
		"--output_format json",
		"--language en",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
	if strings.Contains(joined, "--diarize") {
		t.Errorf("diarization flags present without diarization: %s", joined)
	}
}

func TestBuildWhisperXArgsAutoLanguage(t *testing.T) {
	for _, lang := range []string{"", "auto", "AUTO", "  "} {
		params := types.JobParams{ModelName: "small", Language: lang, BatchSize: 8, Device: "cpu", ComputeType: "int8"}
		args := buildWhisperXArgs("a.mp3", params, "", "out")
		if strings.Contains(strings.Join(args, " "), "--language") {
			t.Errorf("language %q should not emit --language flag", lang)
		}
	}
}

func TestBuildWhisperXArgsDiarization(t *testing.T) {
	params := types.JobParams{ModelName: "small", BatchSize: 8, Device: "cuda", ComputeType: "float16", Diarization: true}
	joined := strings.Join(buildWhisperXArgs("a.mp3", params, "hf-secret", "out"), " ")

	if !strings.Contains(joined, "--diarize") || !strings.Contains(joined, "--hf_token hf-secret") {
		t.Errorf("diarization flags missing: %s", joined)
	}
}

func TestParseWhisperXOutput(t *testing.T) {
	data := []byte(`{
		"language": "en",
		"segments": [
			{"start": 0.0, "end": 2.1, "text": " hello there ", "speaker": "SPEAKER_00"},
			{"start": 2.1, "end": 4.0, "text": "general kenobi", "speaker": "SPEAKER_01"}
		]
	}`)

	result, err := parseWhisperXOutput(data)
	if err != nil {
		t.Fatalf("parseWhisperXOutput() error = %v", err)
	}

	// Full text is absent from the document and rebuilt from segments
	if result.Text != "hello there general kenobi" {
		t.Fatalf("text = %q", result.Text)
	}
	if result.Language != "en" {
		t.Fatalf("language = %q", result.Language)
	}
	if len(result.Segments) != 2 || result.Segments[0].Speaker != "SPEAKER_00" {
		t.Fatalf("segments = %+v", result.Segments)
	}
	if result.Segments[0].Text != "hello there" {
		t.Fatalf("segment text not trimmed: %q", result.Segments[0].Text)
	}
	if result.Duration() != 4.0 {
		t.Fatalf("duration = %v", result.Duration())
	}
}

func TestParseWhisperXOutputMalformed(t *testing.T) {
	if _, err := parseWhisperXOutput([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestTranscribeDiarizationRequiresToken(t *testing.T) {
	w := NewWhisperX("python3")
	params := types.JobParams{ModelName: "small", BatchSize: 8, Device: "cpu", ComputeType: "int8", Diarization: true}

	_, err := w.Transcribe(context.Background(), "a.mp3", params, "", nil)
	if !errors.Is(err, types.ErrNotConfigured) {
		t.Fatalf("error = %v, want ErrNotConfigured", err)
	}
}
