package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"transcription-studio/internal/types"
)

// Writer renders transcription results into the requested output formats
type Writer struct{}

// NewWriter creates an output writer
func NewWriter() *Writer {
	return &Writer{}
}

// WriteOutputs writes one file per requested format into dir and returns
// the mapping of format to generated file path. Unknown formats are skipped.
func (w *Writer) WriteOutputs(dir, baseName string, result types.TranscriptionResult, formats []string) (map[string]string, error) {
	files := make(map[string]string)

	text := strings.TrimSpace(result.Text)
	if text == "" && len(result.Segments) > 0 {
		parts := make([]string, 0, len(result.Segments))
		for _, seg := range result.Segments {
			if s := strings.TrimSpace(seg.Text); s != "" {
				parts = append(parts, s)
			}
		}
		text = strings.Join(parts, " ")
	}

	for _, format := range formats {
		path := filepath.Join(dir, baseName+"."+format)
		var err error

		switch format {
		case "txt":
			err = os.WriteFile(path, []byte(text+"\n"), 0644)
		case "json":
			var data []byte
			data, err = json.MarshalIndent(result, "", "  ")
			if err == nil {
				err = os.WriteFile(path, data, 0644)
			}
		case "srt":
			err = os.WriteFile(path, []byte(renderSRT(result.Segments)), 0644)
		case "vtt":
			err = os.WriteFile(path, []byte(renderVTT(result.Segments)), 0644)
		case "tsv":
			err = os.WriteFile(path, []byte(renderTSV(result.Segments)), 0644)
		default:
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to write %s output: %w", format, err)
		}
		files[format] = path
	}

	return files, nil
}

func renderSRT(segments []types.Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", formatTimestamp(seg.Start, true), formatTimestamp(seg.End, true))
		b.WriteString(speakerPrefix(seg) + strings.TrimSpace(seg.Text) + "\n\n")
	}
	return b.String()
}

func renderVTT(segments []types.Segment) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, seg := range segments {
		fmt.Fprintf(&b, "%s --> %s\n", formatTimestamp(seg.Start, false), formatTimestamp(seg.End, false))
		b.WriteString(speakerPrefix(seg) + strings.TrimSpace(seg.Text) + "\n\n")
	}
	return b.String()
}

func renderTSV(segments []types.Segment) string {
	var b strings.Builder
	b.WriteString("start\tend\tspeaker\ttext\n")
	for _, seg := range segments {
		fmt.Fprintf(&b, "%.3f\t%.3f\t%s\t%s\n", seg.Start, seg.End, seg.Speaker, strings.TrimSpace(seg.Text))
	}
	return b.String()
}

func speakerPrefix(seg types.Segment) string {
	if seg.Speaker == "" {
		return ""
	}
	return "[" + seg.Speaker + "] "
}

// formatTimestamp renders seconds as HH:MM:SS,mmm for SRT or HH:MM:SS.mmm
// for VTT
func formatTimestamp(seconds float64, srt bool) string {
	ms := int(seconds*1000) % 1000
	total := int(seconds)
	hrs := total / 3600
	mins := (total % 3600) / 60
	secs := total % 60

	sep := "."
	if srt {
		sep = ","
	}
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", hrs, mins, secs, sep, ms)
}
