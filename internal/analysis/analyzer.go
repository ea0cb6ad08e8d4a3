package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/seoscan/internal/model"
	"golang.org/x/sync/errgroup"
)

// Component names reported to observers and logs.
const (
	ComponentArchitecture = "architecture"
	ComponentTechnical    = "technical"
	ComponentContent      = "content"
	ComponentMedia        = "media"
)

// Observer receives the duration of every analysis component.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveComponent(component string, d time.Duration)
}

// Analyzer runs the four analyses over one crawl.
// An Analyzer holds no per-crawl state and may be shared between goroutines.
type Analyzer struct {
	thresholds Thresholds
	logger     *slog.Logger
	observer   Observer
	now        func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger used for component timings.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// WithObserver registers an observer for component durations.
func WithObserver(o Observer) Option {
	return func(a *Analyzer) {
		a.observer = o
	}
}

// WithClock overrides the clock used for GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

// New creates an Analyzer using t. Unset thresholds take their defaults.
func New(t Thresholds, opts ...Option) *Analyzer {
	a := &Analyzer{
		thresholds: t.WithDefaults(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Thresholds returns the effective thresholds of the analyzer.
func (a *Analyzer) Thresholds() Thresholds {
	return a.thresholds
}

// Analyze runs the four analyses concurrently and assembles the report.
//
// The crawl is only read. Either every component completes and a full
// report is returned, or an error is returned and no report at all: a
// cancelled or expired context yields an error wrapping ctx.Err().
func (a *Analyzer) Analyze(ctx context.Context, crawl *model.Crawl) (*model.AuditReport, error) {
	if crawl == nil {
		return nil, model.Internal("analyze", fmt.Errorf("nil crawl"))
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analyze scan %d: %w", crawl.ScanID, err)
	}

	var (
		architecture model.SiteArchitectureData
		technical    model.TechnicalHealthData
		content      model.ContentIntelligenceData
		media        model.MediaAnalysisData
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer a.track(crawl, ComponentArchitecture, time.Now())
		architecture = Architecture(crawl.Pages, crawl.Links, a.thresholds)
		return nil
	})
	g.Go(func() error {
		defer a.track(crawl, ComponentTechnical, time.Now())
		technical = Technical(crawl.Pages, crawl.Links, a.thresholds)
		return nil
	})
	g.Go(func() error {
		defer a.track(crawl, ComponentContent, time.Now())
		var err error
		content, err = Content(gctx, crawl.Pages, a.thresholds)
		return err
	})
	g.Go(func() error {
		defer a.track(crawl, ComponentMedia, time.Now())
		media = Media(crawl.Pages, a.thresholds)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyze scan %d: %w", crawl.ScanID, err)
	}
	// A component may have finished just as the deadline passed.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analyze scan %d: %w", crawl.ScanID, err)
	}

	return &model.AuditReport{
		ProjectID:    crawl.ProjectID,
		ScanID:       crawl.ScanID,
		GeneratedAt:  a.now().UTC(),
		Architecture: architecture,
		Technical:    technical,
		Content:      content,
		Media:        media,
		Summary: architecture.Severity.
			Add(technical.Severity).
			Add(content.Severity).
			Add(media.Severity),
		AvgSeoScore: AvgSeoScore(crawl.Pages, crawl.Issues),
		Issues:      CountIssues(crawl.Issues),
	}, nil
}

func (a *Analyzer) track(crawl *model.Crawl, component string, start time.Time) {
	d := time.Since(start)
	a.logger.Debug("analysis component completed",
		"project", crawl.ProjectID,
		"scan", crawl.ScanID,
		"component", component,
		"elapsed", d,
	)
	if a.observer != nil {
		a.observer.ObserveComponent(component, d)
	}
}

// Analyze runs a default Analyzer configured with t.
func Analyze(ctx context.Context, crawl *model.Crawl, t Thresholds) (*model.AuditReport, error) {
	return New(t).Analyze(ctx, crawl)
}

// Snapshot reduces a report to the point-in-time metrics persisted for
// later scan comparison.
func Snapshot(r *model.AuditReport) model.ScanSnapshot {
	return model.ScanSnapshot{
		ScanID: r.ScanID,
		Metrics: model.SnapshotMetrics{
			TotalPages:  r.Architecture.Summary.TotalPages,
			BrokenLinks: r.Technical.Summary.BrokenLinks,
			AvgSeoScore: r.AvgSeoScore,
		},
		Issues:    r.Issues,
		CreatedAt: r.GeneratedAt,
	}
}
