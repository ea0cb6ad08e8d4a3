package pipeline

import (
	"context"
	"fmt"

	"github.com/nao1215/seoscan/internal/analysis"
	"github.com/nao1215/seoscan/internal/model"
)

// CrawlLoader reads the crawl of a stored scan.
type CrawlLoader interface {
	LoadCrawl(ctx context.Context, projectID string, scanID int64) (*model.Crawl, error)
}

// SnapshotSaver persists scan snapshots.
type SnapshotSaver interface {
	SaveSnapshot(ctx context.Context, snap model.ScanSnapshot) error
}

// LoadStep loads the crawl of the job's scan. It does nothing when the
// job already carries a crawl.
type LoadStep struct {
	store CrawlLoader
}

// NewLoadStep creates a LoadStep reading from store.
func NewLoadStep(store CrawlLoader) *LoadStep {
	return &LoadStep{store: store}
}

// Name implements Step.
func (s *LoadStep) Name() string { return "load" }

// Do implements Step.
func (s *LoadStep) Do(ctx context.Context, job *Job) error {
	if job.Crawl != nil {
		return nil
	}
	crawl, err := s.store.LoadCrawl(ctx, job.ProjectID, job.ScanID)
	if err != nil {
		return fmt.Errorf("load scan %d: %w", job.ScanID, err)
	}
	job.Crawl = crawl
	return nil
}

// AnalyzeStep runs the analyzer over the job's crawl.
type AnalyzeStep struct {
	analyzer *analysis.Analyzer
}

// NewAnalyzeStep creates an AnalyzeStep using analyzer.
func NewAnalyzeStep(analyzer *analysis.Analyzer) *AnalyzeStep {
	return &AnalyzeStep{analyzer: analyzer}
}

// Name implements Step.
func (s *AnalyzeStep) Name() string { return "analyze" }

// Do implements Step.
func (s *AnalyzeStep) Do(ctx context.Context, job *Job) error {
	if job.Crawl == nil {
		return model.Internal("pipeline.analyze", fmt.Errorf("scan %d has no crawl loaded", job.ScanID))
	}
	report, err := s.analyzer.Analyze(ctx, job.Crawl)
	if err != nil {
		return err
	}
	job.Report = report
	snap := analysis.Snapshot(report)
	job.Snapshot = &snap
	return nil
}

// SnapshotStep saves the job's snapshot so later comparisons can skip
// recomputation.
type SnapshotStep struct {
	store SnapshotSaver
}

// NewSnapshotStep creates a SnapshotStep writing to store.
func NewSnapshotStep(store SnapshotSaver) *SnapshotStep {
	return &SnapshotStep{store: store}
}

// Name implements Step.
func (s *SnapshotStep) Name() string { return "snapshot" }

// Do implements Step.
func (s *SnapshotStep) Do(ctx context.Context, job *Job) error {
	if job.Snapshot == nil {
		return model.Internal("pipeline.snapshot", fmt.Errorf("scan %d has no report", job.ScanID))
	}
	if err := s.store.SaveSnapshot(ctx, *job.Snapshot); err != nil {
		return fmt.Errorf("save snapshot of scan %d: %w", job.ScanID, err)
	}
	return nil
}

// Store is the storage needed by a full analysis pipeline.
type Store interface {
	CrawlLoader
	SnapshotSaver
}

// NewAnalysisPipeline returns the load, analyze and snapshot pipeline.
// A nil store leaves out the storage steps, so jobs must carry a crawl.
func NewAnalysisPipeline(store Store, analyzer *analysis.Analyzer, opts ...Option) *Pipeline {
	p := New(opts...)
	if store != nil {
		p.AddStep(NewLoadStep(store))
	}
	p.AddStep(NewAnalyzeStep(analyzer))
	if store != nil {
		p.AddStep(NewSnapshotStep(store))
	}
	return p
}
