package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"transcription-studio/internal/types"
)

var videoExtensions = []string{".mp4", ".mov", ".mkv", ".avi", ".webm", ".m4v"}
var audioExtensions = []string{".mp3", ".wav", ".m4a", ".flac", ".aac", ".ogg"}

// SaveUpload streams uploaded bytes to destination, creating parent directories
func SaveUpload(content io.Reader, destination string) error {
	if err := os.MkdirAll(filepath.Dir(destination), 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	out, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("failed to create upload file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, content); err != nil {
		return fmt.Errorf("failed to write upload: %w", err)
	}
	return nil
}

// DetectMediaType classifies a file as audio or video by extension
func DetectMediaType(path string) (types.MediaType, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, v := range videoExtensions {
		if ext == v {
			return types.MediaVideo, nil
		}
	}
	for _, a := range audioExtensions {
		if ext == a {
			return types.MediaAudio, nil
		}
	}
	return "", fmt.Errorf("%w: unsupported file extension %q", types.ErrInvalidInput, ext)
}

// Converter derives an audio rendition from video uploads via FFmpeg
type Converter struct {
	FFmpegBin string
}

// NewConverter creates a converter using the given ffmpeg binary
func NewConverter(ffmpegBin string) *Converter {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	return &Converter{FFmpegBin: ffmpegBin}
}

// ToAudio returns the path of the audio form used for inference. Audio
// uploads are returned as-is; video uploads are transcoded to MP3 inside
// the job directory.
func (c *Converter) ToAudio(ctx context.Context, sourcePath, jobDir string, mediaType types.MediaType) (string, error) {
	if mediaType == types.MediaAudio {
		return sourcePath, nil
	}

	target := filepath.Join(jobDir, "input.mp3")
	cmd := exec.CommandContext(ctx, c.FFmpegBin,
		"-y",
		"-i", sourcePath,
		"-vn",
		"-acodec", "libmp3lame",
		"-ar", "44100",
		"-ac", "2",
		"-b:a", "192k",
		target,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg conversion failed: %v\nOutput: %s", err, string(output))
	}
	return target, nil
}
