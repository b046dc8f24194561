package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"transcription-studio/internal/jobs"
	"transcription-studio/internal/summary"
	"transcription-studio/internal/types"
)

// JobsHandler exposes the job lifecycle over HTTP
type JobsHandler struct {
	service   *jobs.Service
	settings  SettingsSource
	maxSizeMB int
}

// SettingsSource resolves current settings for per-job defaults
type SettingsSource interface {
	Get() types.GlobalSettings
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(service *jobs.Service, settings SettingsSource, maxSizeMB int) *JobsHandler {
	return &JobsHandler{
		service:   service,
		settings:  settings,
		maxSizeMB: maxSizeMB,
	}
}

// Submit handles media upload and job creation
func (h *JobsHandler) Submit(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "No file uploaded",
			"code":  "ERR_NO_FILE",
		})
	}

	maxSize := int64(h.maxSizeMB) * 1024 * 1024
	if file.Size > maxSize {
		return c.Status(400).JSON(fiber.Map{
			"error": fmt.Sprintf("File too large (max %dMB)", h.maxSizeMB),
			"code":  "ERR_FILE_TOO_LARGE",
		})
	}

	params, err := h.parseJobParams(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "ERR_INVALID_PARAMS",
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Printf("Failed to open uploaded file: %v", err)
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to read upload",
			"code":  "ERR_SAVE_FAILED",
		})
	}
	defer src.Close()

	id, err := h.service.Submit(c.Context(), file.Filename, src, params)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"job_id":  id,
		"status":  "queued",
		"message": "File uploaded successfully, processing queued",
	})
}

// List returns all jobs, most recently updated first
func (h *JobsHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"jobs":       h.service.List(),
		"active_job": h.service.ActiveJobID(),
		"queued":     h.service.QueueLength(),
	})
}

// Get returns one job snapshot
func (h *JobsHandler) Get(c *fiber.Ctx) error {
	job, err := h.service.Get(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(job)
}

// Cancel requests cancellation of a job
func (h *JobsHandler) Cancel(c *fiber.Ctx) error {
	job, err := h.service.Cancel(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(job)
}

// ClearQueue cancels all queued jobs, optionally the active one too
func (h *JobsHandler) ClearQueue(c *fiber.Ctx) error {
	includeActive := c.QueryBool("include_active", false)
	cleared := h.service.ClearQueue(includeActive)
	return c.JSON(fiber.Map{
		"cleared": cleared,
	})
}

// Delete removes a terminal job after filename confirmation
func (h *JobsHandler) Delete(c *fiber.Ctx) error {
	var body struct {
		Confirm string `json:"confirm"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
			"code":  "ERR_INVALID_PARAMS",
		})
	}

	job, err := h.service.Delete(c.Params("id"), body.Confirm)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"deleted": job.ID,
	})
}

// RegenerateSummary produces a new summary for a finished job
func (h *JobsHandler) RegenerateSummary(c *fiber.Ctx) error {
	var body struct {
		Style string `json:"style"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
			"code":  "ERR_INVALID_PARAMS",
		})
	}

	style := summary.NormalizeStyleKey(body.Style)
	if style == "" {
		style = "short"
	}

	job, err := h.service.RegenerateSummary(c.Context(), c.Params("id"), style)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(job)
}

// Download streams one generated output file
func (h *JobsHandler) Download(c *fiber.Ctx) error {
	job, err := h.service.Get(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}

	format := c.Params("format")
	path, ok := job.Result.GeneratedFiles[format]
	if !ok {
		return c.Status(404).JSON(fiber.Map{
			"error": fmt.Sprintf("No %s output for this job", format),
			"code":  "ERR_NOT_FOUND",
		})
	}
	return c.Download(path, job.Filename+"."+format)
}

// parseJobParams builds JobParams from the multipart form, falling back
// to the global settings for anything the client omitted
func (h *JobsHandler) parseJobParams(c *fiber.Ctx) (types.JobParams, error) {
	cfg := h.settings.Get()

	params := types.JobParams{
		ModelName:            formValueOr(c, "model_name", cfg.DefaultModel),
		Language:             formValueOr(c, "language", cfg.DefaultLanguage),
		BatchSize:            cfg.DefaultBatchSize,
		Device:               formValueOr(c, "device", cfg.DefaultDevice),
		ComputeType:          formValueOr(c, "compute_type", cfg.ComputeType),
		SummaryStyle:         "short",
		OutputFormats:        []string{"txt", "json"},
		RetainSourceFiles:    cfg.RetainSourceFiles,
		RetainProcessedAudio: cfg.RetainProcessedAudio,
		RetainExportFiles:    cfg.RetainExportFiles,
	}

	if v := c.FormValue("batch_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return params, fmt.Errorf("invalid batch_size %q", v)
		}
		params.BatchSize = n
	}

	var err error
	if params.Diarization, err = formBool(c, "diarization", false); err != nil {
		return params, err
	}
	if params.SummaryEnabled, err = formBool(c, "summary_enabled", false); err != nil {
		return params, err
	}
	if params.RetainSourceFiles, err = formBool(c, "retain_source_files", params.RetainSourceFiles); err != nil {
		return params, err
	}
	if params.RetainProcessedAudio, err = formBool(c, "retain_processed_audio", params.RetainProcessedAudio); err != nil {
		return params, err
	}
	if params.RetainExportFiles, err = formBool(c, "retain_export_files", params.RetainExportFiles); err != nil {
		return params, err
	}

	if style := c.FormValue("summary_style"); style != "" {
		if key := summary.NormalizeStyleKey(style); key != "" {
			params.SummaryStyle = key
		}
	}

	if v := c.FormValue("output_formats"); v != "" {
		var formats []string
		if err := json.Unmarshal([]byte(v), &formats); err != nil {
			return params, fmt.Errorf("output_formats must be a JSON array of strings")
		}
		if len(formats) > 0 {
			params.OutputFormats = formats
		}
	}

	if v := c.FormValue("speaker_names"); v != "" {
		var names map[string]string
		if err := json.Unmarshal([]byte(v), &names); err != nil {
			return params, fmt.Errorf("speaker_names must be a JSON object")
		}
		params.SpeakerNames = names
	}

	return params, nil
}

func formValueOr(c *fiber.Ctx, key, fallback string) string {
	if v := c.FormValue(key); v != "" {
		return v
	}
	return fallback
}

func formBool(c *fiber.Ctx, key string, fallback bool) (bool, error) {
	v := c.FormValue(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("invalid boolean for %s: %q", key, v)
	}
	return b, nil
}

// errorResponse maps service errors onto HTTP statuses
func errorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error(), "code": "ERR_NOT_FOUND"})
	case errors.Is(err, types.ErrInvalidInput):
		return c.Status(400).JSON(fiber.Map{"error": err.Error(), "code": "ERR_INVALID_INPUT"})
	case errors.Is(err, types.ErrInvalidState):
		return c.Status(409).JSON(fiber.Map{"error": err.Error(), "code": "ERR_INVALID_STATE"})
	case errors.Is(err, types.ErrNotConfigured):
		return c.Status(503).JSON(fiber.Map{"error": err.Error(), "code": "ERR_NOT_CONFIGURED"})
	default:
		log.Printf("Internal error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": err.Error(), "code": "ERR_INTERNAL"})
	}
}
