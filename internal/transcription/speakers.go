package transcription

import (
	"regexp"
	"strings"

	"transcription-studio/internal/types"
)

// Raw diarization labels look like SPEAKER_00, SPEAKER_01, ...
var speakerIDPattern = regexp.MustCompile(`(?i)^SPEAKER_\d{2}$`)

// NormalizeSpeakerOverrides returns a mapping from raw speaker IDs to
// custom names. Overrides supplied as custom-name -> speaker-ID are
// detected and flipped.
func NormalizeSpeakerOverrides(overrides map[string]string) map[string]string {
	if len(overrides) == 0 {
		return nil
	}

	hasIDKeys := false
	for k := range overrides {
		if speakerIDPattern.MatchString(strings.TrimSpace(k)) {
			hasIDKeys = true
			break
		}
	}

	normalized := make(map[string]string, len(overrides))
	for k, v := range overrides {
		key, val := strings.TrimSpace(k), strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		if hasIDKeys {
			normalized[key] = val
		} else {
			normalized[val] = key
		}
	}
	return normalized
}

// ApplySpeakerNames returns a copy of segments with speaker labels
// replaced by custom names where an override exists
func ApplySpeakerNames(segments []types.Segment, overrides map[string]string) []types.Segment {
	normalized := NormalizeSpeakerOverrides(overrides)
	if len(normalized) == 0 {
		return segments
	}

	out := make([]types.Segment, len(segments))
	for i, seg := range segments {
		if name, ok := normalized[strings.TrimSpace(seg.Speaker)]; ok {
			seg.Speaker = name
		}
		out[i] = seg
	}
	return out
}

// SpeakerTranscript builds a "Name: line" transcript suitable for
// summarization, using custom names where overrides exist
func SpeakerTranscript(segments []types.Segment, overrides map[string]string) string {
	if len(segments) == 0 {
		return ""
	}

	normalized := NormalizeSpeakerOverrides(overrides)
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}

		speaker := strings.TrimSpace(seg.Speaker)
		if speaker == "" {
			lines = append(lines, text)
			continue
		}
		if name, ok := normalized[speaker]; ok {
			speaker = name
		}
		lines = append(lines, speaker+": "+text)
	}
	return strings.Join(lines, "\n")
}
