package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	httpapi "github.com/langouL/meteopad/internal/api/http"
	"github.com/langouL/meteopad/internal/config"
	"github.com/langouL/meteopad/internal/feed"
	"github.com/langouL/meteopad/internal/jobs"
	"github.com/langouL/meteopad/internal/logger"
	"github.com/langouL/meteopad/internal/repository"
	"github.com/langouL/meteopad/internal/repository/memory"
	"github.com/langouL/meteopad/internal/repository/postgres"
	"github.com/langouL/meteopad/internal/scheduler"
	"github.com/langouL/meteopad/internal/security"
	"github.com/langouL/meteopad/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting MeteoPAD backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Ledger configuration", "backend", cfg.Ledger.Backend, "grant_window_seconds", cfg.Ledger.GrantWindowSeconds)

	// Initialize ledger storage
	var repo repository.AccessRequestRepository
	switch cfg.Ledger.Backend {
	case "postgres":
		logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
		db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			logger.Error("Failed to ping database", "error", err)
			log.Fatalf("Failed to ping database: %v", err)
		}
		logger.Info("Database connection established")

		store := postgres.NewStore(db)
		if err := store.EnsureSchema(context.Background()); err != nil {
			logger.Error("Failed to ensure schema", "error", err)
			log.Fatalf("Failed to ensure schema: %v", err)
		}
		repo = store
	case "memory":
		logger.Warn("Using in-memory ledger storage; requests are lost on restart")
		repo = memory.NewAccessRequestRepository()
	}

	// Initialize Email Service
	var emailSvc service.EmailService
	if cfg.SendGrid.APIKey != "" {
		emailSvc = service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	} else {
		logger.Warn("SendGrid API key not configured; decision notifications disabled")
	}

	// Initialize Services
	ledgerSvc := service.NewLedgerService(
		repo,
		emailSvc,
		time.Duration(cfg.Ledger.GrantWindowSeconds)*time.Second,
		nil,
	)
	feedClient := feed.NewClient(cfg.Feed.BaseURL, cfg.Feed.Limit, time.Duration(cfg.Feed.TimeoutSeconds)*time.Second)
	obsSvc := service.NewObservationService(feedClient)

	// Initial snapshot; the scheduler keeps it fresh afterwards.
	if err := obsSvc.Refresh(context.Background()); err != nil {
		logger.Warn("Initial observation refresh failed; serving empty snapshot", "error", err)
	}

	// Initialize Security
	tokenManager := security.NewTokenManager(
		cfg.Admin.JWTSecret,
		cfg.Admin.PasswordHash,
		time.Duration(cfg.Admin.TokenTTLMinutes)*time.Minute,
	)

	// Start feed refresh scheduler
	jobRunner := jobs.NewJobRunner(cfg, obsSvc)
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()
	defer sched.Stop()

	// Set up HTTP server
	ledgerHandler := httpapi.NewLedgerHandler(ledgerSvc, obsSvc, tokenManager)
	obsHandler := httpapi.NewObservationHandler(obsSvc)
	authMiddleware := httpapi.NewAuthMiddleware(tokenManager)
	router := httpapi.NewRouter(ledgerHandler, obsHandler, authMiddleware)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
