package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/config"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/metrics"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/monitoring"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/notes"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/tracing"
	"github.com/therealutkarshpriyadarshi/studynotes/pkg/models"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}
	logger = logger.WithField("service", "worker")

	_, closer, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName + "-worker",
		Endpoint:    cfg.Tracing.Endpoint,
	})
	if err != nil {
		logger.WithError(err).Warn("Tracing disabled")
	} else {
		defer closer.Close()
	}

	// Handle shutdown gracefully
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Queue.Enabled = true
	components, err := notes.Bootstrap(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize: %v", err)
	}
	defer components.Close()

	if components.Queue == nil {
		logger.Fatal("Worker needs the message queue")
	}
	if components.Cache == nil {
		logger.Warn("Running without Redis: job status will not be visible to the API")
	}

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(cfg.Metrics.Port)
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.WithError(err).Error("Metrics server failed")
			}
		}()
		defer metricsServer.Shutdown(context.Background())
	}

	monitor := monitoring.NewMonitor(components.Queue, monitoring.DefaultThresholds(), cfg.Queue.MonitorInterval, logger)
	go monitor.Start(ctx)

	service := components.Service

	// Job handler
	jobHandler := func(ctx context.Context, job *models.Job) error {
		jobLogger := logger.WithJobID(job.ID).WithUserID(job.UserID)
		jobLogger.Infof("Processing job (attempt %d)", job.RetryCount+1)

		jobCtx := ctx
		if cfg.Queue.JobTimeout > 0 {
			var cancel context.CancelFunc
			jobCtx, cancel = context.WithTimeout(ctx, cfg.Queue.JobTimeout)
			defer cancel()
		}

		err := service.ProcessJob(jobCtx, job)
		monitor.ObserveJob(err)
		if err != nil {
			jobLogger.WithError(err).Warn("Job failed")
			return err
		}

		jobLogger.Info("Job processed")
		return nil
	}

	// Start consuming jobs
	logger.Info("Worker started, waiting for jobs...")
	if err := components.Queue.ConsumeJobs(ctx, cfg.Queue.Prefetch, jobHandler); err != nil {
		logger.Fatalf("Failed to consume jobs: %v", err)
	}

	// Wait for shutdown
	<-ctx.Done()
	logger.Info("Worker stopped")
}
