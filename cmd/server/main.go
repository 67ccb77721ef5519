package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zmikicdroin/jobtracker/api"
	dbfs "github.com/zmikicdroin/jobtracker/db"
	"github.com/zmikicdroin/jobtracker/internal/ai"
	"github.com/zmikicdroin/jobtracker/internal/config"
	"github.com/zmikicdroin/jobtracker/internal/db"
	"github.com/zmikicdroin/jobtracker/internal/storage"
	"github.com/zmikicdroin/jobtracker/pkg/ollama"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Starting jobtracker server version %s (built at %s)", version, buildTime)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	api.SetLogger(logger)
	ollama.SetLogger(logger)

	ctx := context.Background()

	// Open database connection and apply migrations
	database, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	files, err := storage.New(cfg.UploadDir, logger)
	if err != nil {
		log.Fatalf("Failed to init upload storage: %v", err)
	}

	// The draft engine is optional; without an ollama base URL the endpoint
	// answers 503.
	var engine *ai.Engine
	if cfg.EngineConfig.Ollama.BaseURL != "" {
		client, err := ollama.NewClient(cfg.EngineConfig.Ollama, nil)
		if err != nil {
			log.Fatalf("Failed to create ollama client: %v", err)
		}
		defer client.Close()

		engine, err = ai.NewEngine(client, cfg.EngineConfig)
		if err != nil {
			log.Fatalf("Failed to create draft engine: %v", err)
		}
	}

	handler := api.SetupRoutes(cfg, version, buildTime, database, files, engine)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Close database connection
	if err := database.Close(); err != nil {
		log.Printf("Error closing DB: %v", err)
	}

	log.Println("Server exited")
}
