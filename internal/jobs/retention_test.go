package jobs

import (
	"os"
	"path/filepath"
	"testing"

	"transcription-studio/internal/types"
)

func writeArtifact(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("artifact"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestRetentionSharedSourceAndAudio(t *testing.T) {
	dir := t.TempDir()
	shared := writeArtifact(t, dir, "meeting.mp3")

	tests := []struct {
		name                 string
		retainSource         bool
		retainAudio          bool
		wantKept             bool
	}{
		{"both flags false deletes once", false, false, false},
		{"source flag alone keeps the file", true, false, true},
		{"audio flag alone keeps the file", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := shared
			if !fileExists(path) {
				path = writeArtifact(t, dir, "meeting.mp3")
			}
			job := &Job{
				SourcePath: path,
				AudioPath:  path,
				Params: types.JobParams{
					RetainSourceFiles:    tt.retainSource,
					RetainProcessedAudio: tt.retainAudio,
					RetainExportFiles:    true,
				},
			}

			applyRetention(job)

			if fileExists(path) != tt.wantKept {
				t.Fatalf("file kept = %v, want %v", fileExists(path), tt.wantKept)
			}
			if !tt.wantKept && (job.SourcePath != "" || job.AudioPath != "") {
				t.Fatalf("paths not cleared: %q/%q", job.SourcePath, job.AudioPath)
			}
			if tt.wantKept && (job.SourcePath == "" || job.AudioPath == "") {
				t.Fatal("paths cleared despite retention flag")
			}
		})
	}
}

func TestRetentionIndependentSourceAndAudio(t *testing.T) {
	dir := t.TempDir()
	source := writeArtifact(t, dir, "clip.mp4")
	audio := writeArtifact(t, dir, "input.mp3")

	job := &Job{
		SourcePath: source,
		AudioPath:  audio,
		Params: types.JobParams{
			RetainSourceFiles:    false,
			RetainProcessedAudio: true,
			RetainExportFiles:    true,
		},
	}

	applyRetention(job)

	if fileExists(source) {
		t.Fatal("source should have been removed")
	}
	if !fileExists(audio) {
		t.Fatal("processed audio should have been kept")
	}
	if job.SourcePath != "" || job.AudioPath != audio {
		t.Fatalf("paths = %q/%q", job.SourcePath, job.AudioPath)
	}
}

func TestRetentionExportFiles(t *testing.T) {
	dir := t.TempDir()
	txt := writeArtifact(t, dir, "transcript.txt")
	srt := writeArtifact(t, dir, "transcript.srt")

	job := &Job{
		Params: types.JobParams{RetainSourceFiles: true, RetainProcessedAudio: true},
		Result: types.JobResult{
			GeneratedFiles: map[string]string{"txt": txt, "srt": srt},
		},
	}

	applyRetention(job)

	if fileExists(txt) || fileExists(srt) {
		t.Fatal("export files should have been removed")
	}
	if len(job.Result.GeneratedFiles) != 0 {
		t.Fatalf("generated files = %v", job.Result.GeneratedFiles)
	}
}

func TestRetentionToleratesMissingFiles(t *testing.T) {
	job := &Job{
		SourcePath: "/nonexistent/source.mp3",
		AudioPath:  "/nonexistent/source.mp3",
		Result: types.JobResult{
			GeneratedFiles: map[string]string{"txt": "/nonexistent/out.txt"},
		},
	}

	// Must not panic or error; paths still cleared.
	applyRetention(job)

	if job.SourcePath != "" || len(job.Result.GeneratedFiles) != 0 {
		t.Fatalf("state not cleared: %+v", job)
	}
}
