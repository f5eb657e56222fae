// Package main is the entry point for the travel calendar server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/travel-calendar/backend/internal/api"
	"github.com/travel-calendar/backend/internal/config"
	"github.com/travel-calendar/backend/internal/logger"
	"github.com/travel-calendar/backend/internal/remote"
	"github.com/travel-calendar/backend/internal/share"
	"github.com/travel-calendar/backend/internal/storage"
	"github.com/travel-calendar/backend/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
// Defaults to "dev" when not provided.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to config file (optional, env vars used otherwise)")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := runHealthCheck(cfg.Listen); err != nil {
			fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Allow overriding version via environment (e.g., injected by container build/runtime)
	if envVer := os.Getenv("VERSION"); envVer != "" {
		version = envVer
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting travel calendar server", zap.String("version", version))

	// Initialize database
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatal("Failed to create data directory", zap.String("dir", cfg.DataDir), zap.Error(err))
	}
	dbPath := cfg.DataDir + "/travel-calendar.db"
	db, err := storage.NewDB(dbPath, log.Logger)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := storage.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database migrations complete")

	// Initialize WebSocket hub
	hub := websocket.NewHub(log.Logger)
	go hub.Run()

	// Initialize repositories
	eventRepo := storage.NewEventRepository(db)
	personRepo := storage.NewPersonRepository(db)
	comparisonRepo := storage.NewComparisonRepository(db)

	// Initialize share codec and remote comparison services
	codec := share.NewCodec(log.Logger)
	fetcher := remote.NewFetcher(log.Logger)
	scheduler := remote.NewScheduler(
		fetcher,
		codec,
		eventRepo,
		comparisonRepo,
		hub,
		cfg.DefaultRefreshMin,
		log.Logger,
	)

	if err := scheduler.Start(context.Background()); err != nil {
		log.Warn("Failed to start comparison scheduler", zap.Error(err))
	}

	// Initialize HTTP router with services
	router := api.NewRouter(api.Services{
		DB:           db,
		Events:       eventRepo,
		People:       personRepo,
		Comparisons:  comparisonRepo,
		Codec:        codec,
		Fetcher:      fetcher,
		Scheduler:    scheduler,
		Hub:          hub,
		Logger:       log.Logger,
		ShareBaseURL: cfg.ShareBaseURL,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Info("Server listening", zap.String("addr", cfg.Listen))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")

	scheduler.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped")
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	url := "http://localhost" + addr + "/api/health"
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return http.ErrAbortHandler
	}
	return nil
}
