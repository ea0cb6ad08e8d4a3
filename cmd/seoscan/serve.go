package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nao1215/seoscan/internal/config"
	"github.com/nao1215/seoscan/internal/metrics"
	"github.com/nao1215/seoscan/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve audit reports over an HTTP API",
		Long: `Serve starts the HTTP API on top of the local database.

Reports are analyzed on first request on a bounded worker pool and cached.
When all workers are busy and the queue is full, requests are answered
with 503; analyses exceeding the timeout are answered with 504.

Environment variables are read after loading .env.development or .env:
  PORT                      listen port (overrides --addr)
  SEOSCAN_DB_DIR            database directory
  SEOSCAN_WORKERS           concurrent analyses
  SEOSCAN_QUEUE_SIZE        analyses waiting for a worker
  SEOSCAN_ANALYSIS_TIMEOUT  timeout of one analysis (e.g. 45s)
  GIN_MODE                  gin mode (default: release)

Endpoints:
  GET /api/health
  GET /api/projects
  GET /api/projects/:project/scans
  GET /api/projects/:project/scans/:scan/report
  GET /api/projects/:project/scans/:scan/{architecture|technical|content|media}
  GET /api/projects/:project/scans/:scan/export/:dataset.csv
  GET /api/projects/:project/compare?scan1=&scan2=
  GET /metrics`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().String("addr", config.DefaultListenAddress, "Listen address")
	cmd.Flags().Int("workers", 0, "Concurrent analyses (default: number of CPUs)")
	cmd.Flags().Int("queue", 0, "Analyses waiting for a worker (default: 4 x workers)")
	cmd.Flags().Duration("timeout", config.DefaultAnalysisTimeout, "Timeout of one analysis")
	cmd.Flags().Duration("cache-ttl", config.DefaultReportCacheTTL, "Lifetime of cached reports (0 disables caching)")
	cmd.Flags().Float64("rate", config.DefaultRateLimit, "Requests per second allowed per client")
	cmd.Flags().Int("burst", config.DefaultRateBurst, "Request burst allowed per client")

	return cmd
}

// loadEnv loads .env.development, falling back to .env.
func loadEnv(logger *slog.Logger) {
	if err := godotenv.Load(".env.development"); err != nil {
		if err := godotenv.Load(); err != nil {
			logger.Debug("no .env file found, using environment variables")
		}
	}
}

// setupGinMode sets the gin mode from GIN_MODE, defaulting to release.
func setupGinMode() {
	mode := os.Getenv("GIN_MODE")
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	logger := setupLogger(cmd, slog.LevelInfo)
	loadEnv(logger)
	setupGinMode()

	cfg, err := buildServeConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	srv, err := server.New(db, cfg,
		server.WithLogger(logger),
		server.WithMetrics(metrics.New()),
	)
	if err != nil {
		return err
	}
	defer srv.Close()

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("serving",
		"addr", cfg.ListenAddress,
		"db", db.Path(),
		"workers", cfg.Workers,
		"queue", cfg.QueueSize,
	)
	return srv.Run(ctx, cfg.ListenAddress)
}

// buildServeConfig layers flags and environment variables over the base
// configuration. Environment variables win over flags.
func buildServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}

	if cfg.ListenAddress, err = cmd.Flags().GetString("addr"); err != nil {
		return nil, err
	}
	workers, err := cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}
	if workers > 0 {
		cfg.Workers = workers
		cfg.QueueSize = workers * config.DefaultQueueFactor
	}
	queue, err := cmd.Flags().GetInt("queue")
	if err != nil {
		return nil, err
	}
	if queue > 0 {
		cfg.QueueSize = queue
	}
	if cfg.AnalysisTimeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.ReportCacheTTL, err = cmd.Flags().GetDuration("cache-ttl"); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = cmd.Flags().GetFloat64("rate"); err != nil {
		return nil, err
	}
	if cfg.RateBurst, err = cmd.Flags().GetInt("burst"); err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}
