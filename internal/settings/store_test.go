package settings

import (
	"os"
	"path/filepath"
	"testing"

	"transcription-studio/internal/types"
)

func testDefaults() types.GlobalSettings {
	return types.GlobalSettings{
		DefaultModel:         "small",
		DefaultLanguage:      "en",
		DefaultBatchSize:     16,
		DefaultDevice:        "auto",
		ComputeType:          "float32",
		LLMModel:             "gpt-4o-mini",
		RetainSourceFiles:    true,
		RetainProcessedAudio: true,
		RetainExportFiles:    true,
	}
}

// TestGetMissingFileReturnsDefaults checks first-run behavior.
func TestGetMissingFileReturnsDefaults(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing", "settings.json"), testDefaults())

	got := store.Get()
	if got.DefaultModel != "small" {
		t.Fatalf("model = %q, want small", got.DefaultModel)
	}
	if got.SummaryPromptTemplates["short"] == "" {
		t.Fatal("defaults should carry built-in prompt templates")
	}
}

// TestGetCorruptFileReturnsDefaults checks parse-failure fallback.
func TestGetCorruptFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not-json"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewStore(path, testDefaults())
	if got := store.Get(); got.DefaultModel != "small" {
		t.Fatalf("model = %q, want defaults back", got.DefaultModel)
	}
}

// TestUpdateAppliesPartialPatch checks merge semantics and persistence.
func TestUpdateAppliesPartialPatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	store := NewStore(path, testDefaults())

	model := "large-v3"
	retain := false
	got, err := store.Update(types.GlobalSettingsPatch{
		DefaultModel:      &model,
		RetainExportFiles: &retain,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.DefaultModel != "large-v3" {
		t.Fatalf("model = %q", got.DefaultModel)
	}
	if got.RetainExportFiles {
		t.Fatal("retain_export_files should be false")
	}
	if got.DefaultLanguage != "en" {
		t.Fatalf("untouched field changed: %q", got.DefaultLanguage)
	}

	// A fresh store over the same file must see the persisted values.
	reloaded := NewStore(path, testDefaults()).Get()
	if reloaded.DefaultModel != "large-v3" || reloaded.RetainExportFiles {
		t.Fatalf("reloaded = %+v", reloaded)
	}
}

// TestUpdateMergesPromptTemplates checks custom prompts layer over defaults.
func TestUpdateMergesPromptTemplates(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "settings.json"), testDefaults())

	got, err := store.Update(types.GlobalSettingsPatch{
		SummaryPromptTemplates: map[string]string{"Short": "My short prompt."},
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.SummaryPromptTemplates["short"] != "My short prompt." {
		t.Fatalf("short prompt = %q", got.SummaryPromptTemplates["short"])
	}
	if got.SummaryPromptTemplates["bullet"] == "" {
		t.Fatal("built-in styles must survive the merge")
	}
}
