package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"transcription-studio/internal/cleanup"
	"transcription-studio/internal/export"
	"transcription-studio/internal/handlers"
	"transcription-studio/internal/jobs"
	"transcription-studio/internal/media"
	"transcription-studio/internal/settings"
	"transcription-studio/internal/storage"
	"transcription-studio/internal/summary"
	"transcription-studio/internal/transcription"
	"transcription-studio/internal/types"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Host string `yaml:"host"`
	} `yaml:"server"`

	Storage struct {
		JobsDir      string `yaml:"jobs_dir"`
		Database     string `yaml:"database"`
		SettingsFile string `yaml:"settings_file"`
	} `yaml:"storage"`

	FFmpeg struct {
		Binary string `yaml:"binary"`
	} `yaml:"ffmpeg"`

	Whisper struct {
		PythonBin        string   `yaml:"python_bin"`
		DefaultModel     string   `yaml:"default_model"`
		DefaultLanguage  string   `yaml:"default_language"`
		DefaultBatchSize int      `yaml:"default_batch_size"`
		DefaultDevice    string   `yaml:"default_device"`
		ComputeType      string   `yaml:"compute_type"`
		Models           []string `yaml:"models"`
	} `yaml:"whisper"`

	Formats []string `yaml:"formats"`

	Summary struct {
		LLMAPIBase string `yaml:"llm_api_base"`
		LLMModel   string `yaml:"llm_model"`
	} `yaml:"summary"`

	Limits struct {
		MaxUploadSizeMB int `yaml:"max_upload_size_mb"`
	} `yaml:"limits"`

	Cleanup struct {
		IntervalMinutes int `yaml:"interval_minutes"`
		MaxAgeHours     int `yaml:"max_age_hours"`
	} `yaml:"cleanup"`
}

func main() {
	// Optional .env for local development; secrets never live in the yaml
	godotenv.Load()

	config, err := loadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cleanup.EnsureDirExists(config.Storage.JobsDir); err != nil {
		log.Fatalf("Failed to create jobs directory: %v", err)
	}

	// Custom logger setup
	logBuffer := &LogBuffer{
		lines: make([]string, 0, 1000),
	}
	multiWriter := io.MultiWriter(os.Stdout, logBuffer)
	log.SetOutput(multiWriter)

	log.Println("Initializing components...")

	// Settings store, seeded from config with secrets from the environment
	settingsStore := settings.NewStore(config.Storage.SettingsFile, types.GlobalSettings{
		DefaultModel:         config.Whisper.DefaultModel,
		DefaultLanguage:      config.Whisper.DefaultLanguage,
		DefaultBatchSize:     config.Whisper.DefaultBatchSize,
		DefaultDevice:        config.Whisper.DefaultDevice,
		ComputeType:          config.Whisper.ComputeType,
		LLMAPIBase:           config.Summary.LLMAPIBase,
		LLMAPIKey:            os.Getenv("LLM_API_KEY"),
		LLMModel:             config.Summary.LLMModel,
		HFToken:              os.Getenv("HF_TOKEN"),
		RetainSourceFiles:    true,
		RetainProcessedAudio: true,
		RetainExportFiles:    true,
	})

	// History index
	db, err := storage.NewHistoryDB(config.Storage.Database)
	if err != nil {
		log.Fatalf("Failed to initialize history database: %v", err)
	}
	defer db.Close()

	// Job service and its collaborators
	service := jobs.NewService(config.Storage.JobsDir, jobs.Deps{
		Converter:   media.NewConverter(config.FFmpeg.Binary),
		Transcriber: transcription.NewWhisperX(config.Whisper.PythonBin),
		Exporter:    export.NewWriter(),
		Summarizer:  summary.NewClient(),
		Settings:    settingsStore,
		History:     db,
	})
	if err := service.Start(); err != nil {
		log.Fatalf("Failed to start job service: %v", err)
	}
	defer service.Stop()

	// Cleanup scheduler
	cleanupScheduler := cleanup.NewScheduler(
		config.Storage.JobsDir,
		config.Cleanup.IntervalMinutes,
		config.Cleanup.MaxAgeHours,
	)
	cleanupScheduler.Start()
	defer cleanupScheduler.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: config.Limits.MaxUploadSizeMB * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Initialize handlers
	jobsHandler := handlers.NewJobsHandler(service, settingsStore, config.Limits.MaxUploadSizeMB)
	settingsHandler := handlers.NewSettingsHandler(settingsStore)
	eventsHandler := handlers.NewEventsHandler(service)

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	app.Post("/api/jobs", jobsHandler.Submit)
	app.Get("/api/jobs", jobsHandler.List)
	app.Get("/api/jobs/:id", jobsHandler.Get)
	app.Post("/api/jobs/:id/cancel", jobsHandler.Cancel)
	app.Delete("/api/jobs/:id", jobsHandler.Delete)
	app.Post("/api/jobs/:id/summary", jobsHandler.RegenerateSummary)
	app.Get("/api/jobs/:id/files/:format", jobsHandler.Download)
	app.Post("/api/queue/clear", jobsHandler.ClearQueue)

	app.Get("/api/settings", settingsHandler.Get)
	app.Patch("/api/settings", settingsHandler.Update)

	// WebSocket route
	app.Get("/ws/jobs/:id", websocket.New(eventsHandler.Watch))

	// Static capabilities for the UI
	app.Get("/api/config", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"models":             config.Whisper.Models,
			"output_formats":     config.Formats,
			"max_upload_size_mb": config.Limits.MaxUploadSizeMB,
		})
	})

	// History of finished jobs, survives job deletion
	app.Get("/api/history", func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 50)
		entries, err := db.List(limit)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"history": entries})
	})

	// Get server logs
	app.Get("/api/logs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"logs": logBuffer.GetLogs(),
		})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	log.Printf("Server starting on %s", addr)
	log.Println("Endpoints:")
	log.Println("   POST   /api/jobs              - Upload media and queue a job")
	log.Println("   GET    /api/jobs              - List jobs")
	log.Println("   GET    /api/jobs/:id          - Job detail")
	log.Println("   POST   /api/jobs/:id/cancel   - Cancel a job")
	log.Println("   DELETE /api/jobs/:id          - Delete a finished job")
	log.Println("   POST   /api/jobs/:id/summary  - Regenerate summary")
	log.Println("   GET    /api/jobs/:id/files/:format - Download output")
	log.Println("   POST   /api/queue/clear       - Cancel queued jobs")
	log.Println("   GET    /ws/jobs/:id           - Watch job progress")
	log.Println("   GET    /api/settings          - Global settings")
	log.Println("   GET    /api/history           - Finished job history")
	log.Println("   GET    /api/logs              - View server logs")
	log.Println("   GET    /health                - Health check")

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down gracefully...")
		app.Shutdown()
	}()

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// LogBuffer captures logs in memory
type LogBuffer struct {
	lines []string
	mu    sync.Mutex
}

func (lb *LogBuffer) Write(p []byte) (n int, err error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.lines = append(lb.lines, string(p))

	// Keep last 1000 lines
	if len(lb.lines) > 1000 {
		lb.lines = lb.lines[len(lb.lines)-1000:]
	}

	return len(p), nil
}

func (lb *LogBuffer) GetLogs() []string {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	logs := make([]string, len(lb.lines))
	copy(logs, lb.lines)
	return logs
}

// loadConfig loads configuration from YAML file
func loadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
