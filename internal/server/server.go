package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/seoscan/internal/analysis"
	"github.com/nao1215/seoscan/internal/compare"
	"github.com/nao1215/seoscan/internal/config"
	"github.com/nao1215/seoscan/internal/metrics"
	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/pipeline"
)

// shutdownTimeout bounds the graceful shutdown of Run.
const shutdownTimeout = 10 * time.Second

// Store is the persistence the API reads from.
type Store interface {
	compare.Store
	pipeline.Store
	ListProjects(ctx context.Context) ([]model.Project, error)
	ListScans(ctx context.Context, projectID string) ([]model.Scan, error)
}

// Server is the HTTP API.
type Server struct {
	store    Store
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	pool     *pipeline.Pool
	limiter  *RateLimiter
	cache    *reportCache
	comparer *compare.Comparer
	engine   *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics the server records into and exposes on
// /metrics. A private registry is created when not set.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithPool replaces the worker pool sized from the configuration.
func WithPool(p *pipeline.Pool) Option {
	return func(s *Server) {
		s.pool = p
	}
}

// WithRateLimiter replaces the limiter built from the configuration.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(s *Server) {
		s.limiter = rl
	}
}

// New creates a Server reading from store.
func New(store Store, cfg *config.Config, opts ...Option) (*Server, error) {
	if store == nil {
		return nil, errors.New("server: store is required")
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}

	s := &Server{store: store, cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.pool == nil {
		s.pool = pipeline.NewPool(cfg.Workers, cfg.QueueSize,
			pipeline.WithPoolLogger(s.logger),
			pipeline.WithPoolObserver(s.metrics),
		)
	}
	if s.limiter == nil {
		s.limiter = NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
	}

	cache, err := newReportCache(cfg.ReportCacheTTL)
	if err != nil {
		return nil, err
	}
	s.cache = cache
	s.comparer = compare.New(store, compare.WithLogger(s.logger))
	s.engine = s.routes()

	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Recovery(s.logger), RequestLogger(s.logger))

	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := r.Group("/api")
	api.GET("/health", s.handleHealth)

	limited := api.Group("", s.limiter.Middleware())
	{
		limited.GET("/projects", s.handleProjects)
		limited.GET("/projects/:project/scans", s.handleScans)
		limited.GET("/projects/:project/compare", s.handleCompare)

		scan := limited.Group("/projects/:project/scans/:scan")
		scan.GET("/report", s.handleReport)
		scan.GET("/architecture", s.handleSection(sectionArchitecture))
		scan.GET("/technical", s.handleSection(sectionTechnical))
		scan.GET("/content", s.handleSection(sectionContent))
		scan.GET("/media", s.handleSection(sectionMedia))
		scan.GET("/export/:dataset", s.handleExport)
	}

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// Close releases the report cache.
func (s *Server) Close() error {
	return s.cache.close()
}

// report returns the audit report of a scan, analyzing it on the pool
// when it is not cached.
func (s *Server) report(ctx context.Context, projectID string, scanID int64) (*model.AuditReport, error) {
	key := reportKey(projectID, scanID)
	if data, ok := s.cache.get(key); ok {
		var r model.AuditReport
		if err := json.Unmarshal(data, &r); err == nil {
			return &r, nil
		}
		s.logger.Warn("discarding unreadable cached report", "key", key)
	}

	var report *model.AuditReport
	err := s.pool.Submit(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.AnalysisTimeout)
		defer cancel()

		analyzer := analysis.New(s.cfg.ThresholdsFor(projectID),
			analysis.WithLogger(s.logger),
			analysis.WithObserver(s.metrics),
		)
		p := pipeline.NewAnalysisPipeline(s.store, analyzer, pipeline.WithLogger(s.logger))
		job := &pipeline.Job{ProjectID: projectID, ScanID: scanID}
		if err := p.Execute(ctx, job); err != nil {
			return err
		}
		report = job.Report
		return nil
	})
	s.recordOutcome(err)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(report)
	if err != nil {
		return nil, model.Internal("server.report", err)
	}
	switch err := s.cache.set(key, data); {
	case errors.Is(err, errReportTooLarge):
		s.logger.Info("report not cached", "key", key, "bytes", len(data))
	case err != nil:
		s.logger.Warn("report not cached", "key", key, "error", err)
	}
	return report, nil
}

func (s *Server) recordOutcome(err error) {
	switch {
	case err == nil:
		s.metrics.AnalysisFinished(metrics.OutcomeSuccess)
	case errors.Is(err, pipeline.ErrQueueFull):
		// counted by the pool observer
	case errors.Is(err, context.DeadlineExceeded):
		s.metrics.AnalysisFinished(metrics.OutcomeTimeout)
	default:
		s.metrics.AnalysisFinished(metrics.OutcomeError)
	}
}
