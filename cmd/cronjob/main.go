package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/langouL/meteopad/internal/config"
	"github.com/langouL/meteopad/internal/feed"
	"github.com/langouL/meteopad/internal/jobs"
	"github.com/langouL/meteopad/internal/logger"
	"github.com/langouL/meteopad/internal/scheduler"
	"github.com/langouL/meteopad/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'refresh-feed')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting MeteoPAD cronjob runner...", "log_level", cfg.Log.Level)

	// Initialize Services
	feedClient := feed.NewClient(cfg.Feed.BaseURL, cfg.Feed.Limit, time.Duration(cfg.Feed.TimeoutSeconds)*time.Second)
	obsSvc := service.NewObservationService(feedClient)
	jobRunner := jobs.NewJobRunner(cfg, obsSvc)

	if *runOnce != "" {
		switch *runOnce {
		case "refresh-feed":
			jobRunner.RefreshFeed()
		default:
			logger.Error("Unknown job", "job", *runOnce)
			os.Exit(1)
		}
		return
	}

	// Run the scheduler until interrupted
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	sched.Stop()
}
