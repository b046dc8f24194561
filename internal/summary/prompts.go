package summary

import (
	"regexp"
	"strings"
)

// Built-in prompt templates keyed by summary style.
var defaultTemplates = map[string]string{
	"short":        "Give a concise 3-5 sentence summary.",
	"detailed":     "Provide a detailed structured summary with key context and decisions.",
	"bullet":       "Provide a bullet-point summary of key points.",
	"action_items": "Extract clear action items with owners if mentioned and deadlines if present.",
}

var (
	styleSeparators = regexp.MustCompile(`[\s\-]+`)
	styleInvalid    = regexp.MustCompile(`[^a-z0-9_]`)
	styleRepeats    = regexp.MustCompile(`_+`)
)

// DefaultPromptTemplates returns a fresh copy of the built-in templates
func DefaultPromptTemplates() map[string]string {
	out := make(map[string]string, len(defaultTemplates))
	for k, v := range defaultTemplates {
		out[k] = v
	}
	return out
}

// NormalizeStyleKey reduces a user-supplied style name to snake_case
func NormalizeStyleKey(value string) string {
	cleaned := strings.ToLower(strings.TrimSpace(value))
	cleaned = styleSeparators.ReplaceAllString(cleaned, "_")
	cleaned = styleInvalid.ReplaceAllString(cleaned, "")
	cleaned = styleRepeats.ReplaceAllString(cleaned, "_")
	return strings.Trim(cleaned, "_")
}

// MergePromptTemplates layers user overrides over the defaults. Empty or
// unnormalizable keys and blank prompts are dropped.
func MergePromptTemplates(overrides map[string]string) map[string]string {
	merged := DefaultPromptTemplates()
	for style, prompt := range overrides {
		key := NormalizeStyleKey(style)
		if key == "" {
			continue
		}
		if cleaned := strings.TrimSpace(prompt); cleaned != "" {
			merged[key] = cleaned
		}
	}
	return merged
}
