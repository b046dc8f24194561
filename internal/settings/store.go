package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"transcription-studio/internal/summary"
	"transcription-studio/internal/types"
)

// Store persists global settings in a single JSON file on disk. Missing
// or unreadable files fall back to the configured defaults.
type Store struct {
	mu       sync.Mutex
	path     string
	defaults types.GlobalSettings
}

// NewStore creates a JSON-backed settings store
func NewStore(path string, defaults types.GlobalSettings) *Store {
	if defaults.SummaryPromptTemplates == nil {
		defaults.SummaryPromptTemplates = summary.DefaultPromptTemplates()
	}
	return &Store{path: path, defaults: defaults}
}

// Get returns the current settings, layering the persisted record over
// the defaults
func (s *Store) Get() types.GlobalSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() types.GlobalSettings {
	current := s.defaults

	data, err := os.ReadFile(s.path)
	if err != nil {
		return current
	}
	if err := json.Unmarshal(data, &current); err != nil {
		return s.defaults
	}

	current.SummaryPromptTemplates = summary.MergePromptTemplates(current.SummaryPromptTemplates)
	return current
}

// Update applies a partial patch with read-modify-write semantics and
// persists the merged record
func (s *Store) Update(patch types.GlobalSettingsPatch) (types.GlobalSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.loadLocked()
	applyPatch(&current, patch)

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return types.GlobalSettings{}, fmt.Errorf("failed to create settings directory: %w", err)
	}
	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return types.GlobalSettings{}, fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return types.GlobalSettings{}, fmt.Errorf("failed to write settings: %w", err)
	}
	return current, nil
}

func applyPatch(current *types.GlobalSettings, patch types.GlobalSettingsPatch) {
	if patch.DefaultModel != nil {
		current.DefaultModel = *patch.DefaultModel
	}
	if patch.DefaultLanguage != nil {
		current.DefaultLanguage = *patch.DefaultLanguage
	}
	if patch.DefaultBatchSize != nil {
		current.DefaultBatchSize = *patch.DefaultBatchSize
	}
	if patch.DefaultDevice != nil {
		current.DefaultDevice = *patch.DefaultDevice
	}
	if patch.ComputeType != nil {
		current.ComputeType = *patch.ComputeType
	}
	if patch.LLMAPIBase != nil {
		current.LLMAPIBase = *patch.LLMAPIBase
	}
	if patch.LLMAPIKey != nil {
		current.LLMAPIKey = *patch.LLMAPIKey
	}
	if patch.LLMModel != nil {
		current.LLMModel = *patch.LLMModel
	}
	if patch.RetainSourceFiles != nil {
		current.RetainSourceFiles = *patch.RetainSourceFiles
	}
	if patch.RetainProcessedAudio != nil {
		current.RetainProcessedAudio = *patch.RetainProcessedAudio
	}
	if patch.RetainExportFiles != nil {
		current.RetainExportFiles = *patch.RetainExportFiles
	}
	if patch.SummaryPromptTemplates != nil {
		current.SummaryPromptTemplates = summary.MergePromptTemplates(patch.SummaryPromptTemplates)
	}
	if patch.HFToken != nil {
		current.HFToken = *patch.HFToken
	}
}
