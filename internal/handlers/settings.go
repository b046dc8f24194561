package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"transcription-studio/internal/settings"
	"transcription-studio/internal/types"
)

// SettingsHandler exposes the global settings document
type SettingsHandler struct {
	store *settings.Store
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(store *settings.Store) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// Get returns the effective settings with secrets masked
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	cfg := h.store.Get()
	return c.JSON(maskSecrets(cfg))
}

// Update applies a partial settings patch and returns the merged result
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var patch types.GlobalSettingsPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid settings payload",
			"code":  "ERR_INVALID_PARAMS",
		})
	}

	cfg, err := h.store.Update(patch)
	if err != nil {
		log.Printf("Failed to update settings: %v", err)
		return errorResponse(c, err)
	}
	return c.JSON(maskSecrets(cfg))
}

// maskSecrets blanks credential values before they leave the server.
// Presence is still signalled so the UI can show configured state.
func maskSecrets(cfg types.GlobalSettings) fiber.Map {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}

	return fiber.Map{
		"default_model":            cfg.DefaultModel,
		"default_language":         cfg.DefaultLanguage,
		"default_batch_size":       cfg.DefaultBatchSize,
		"default_device":           cfg.DefaultDevice,
		"compute_type":             cfg.ComputeType,
		"llm_api_base":             cfg.LLMAPIBase,
		"llm_api_key":              mask(cfg.LLMAPIKey),
		"llm_model":                cfg.LLMModel,
		"retain_source_files":      cfg.RetainSourceFiles,
		"retain_processed_audio":   cfg.RetainProcessedAudio,
		"retain_export_files":      cfg.RetainExportFiles,
		"summary_prompt_templates": cfg.SummaryPromptTemplates,
		"hf_token":                 mask(cfg.HFToken),
	}
}
