package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nao1215/seoscan/internal/analysis"
	"github.com/nao1215/seoscan/internal/model"
)

// memoryStore is an in-memory Store.
type memoryStore struct {
	mu        sync.Mutex
	crawls    map[int64]*model.Crawl
	snapshots map[int64]model.ScanSnapshot
	saveErr   error
}

func newMemoryStore(crawls ...*model.Crawl) *memoryStore {
	s := &memoryStore{
		crawls:    make(map[int64]*model.Crawl),
		snapshots: make(map[int64]model.ScanSnapshot),
	}
	for _, c := range crawls {
		s.crawls[c.ScanID] = c
	}
	return s
}

func (s *memoryStore) LoadCrawl(_ context.Context, projectID string, scanID int64) (*model.Crawl, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.crawls[scanID]
	if !ok || c.ProjectID != projectID {
		return nil, model.NotFound("test.load", "scan %d", scanID)
	}
	return c, nil
}

func (s *memoryStore) SaveSnapshot(_ context.Context, snap model.ScanSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.snapshots[snap.ScanID] = snap
	return nil
}

func smallCrawl(scanID int64) *model.Crawl {
	dest := int64(2)
	return &model.Crawl{
		ProjectID: "acme",
		ScanID:    scanID,
		Pages: []model.Page{
			{ID: 1, URL: "https://acme.example/", Title: "Home", MetaDescription: "Home page", HTTPStatus: 200, WordCount: 500, IsIndexable: true},
			{ID: 2, URL: "https://acme.example/a", Title: "A", MetaDescription: "Page A", HTTPStatus: 200, WordCount: 500, Depth: 1, IsIndexable: true},
		},
		Links: []model.Link{
			{SourcePageID: 1, DestinationPageID: &dest, DestinationURL: "https://acme.example/a"},
		},
		Issues: []model.Issue{
			{PageID: 2, Severity: model.IssueHigh},
		},
	}
}

func TestAnalysisPipeline(t *testing.T) {
	t.Parallel()

	t.Run("loads, analyzes and saves a snapshot", func(t *testing.T) {
		t.Parallel()

		store := newMemoryStore(smallCrawl(7))
		p := NewAnalysisPipeline(store, analysis.New(analysis.DefaultThresholds()))

		if got := p.StepNames(); len(got) != 3 {
			t.Fatalf("expected 3 steps, got %v", got)
		}

		job := &Job{ProjectID: "acme", ScanID: 7}
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if job.Report == nil || job.Report.ScanID != 7 {
			t.Fatalf("expected report for scan 7, got %+v", job.Report)
		}
		snap, ok := store.snapshots[7]
		if !ok {
			t.Fatal("snapshot was not saved")
		}
		if snap.Metrics.TotalPages != 2 || snap.Issues.High != 1 {
			t.Errorf("unexpected snapshot %+v", snap)
		}
		// (100 + 85) / 2
		if snap.Metrics.AvgSeoScore != 92.5 {
			t.Errorf("AvgSeoScore = %v, want 92.5", snap.Metrics.AvgSeoScore)
		}
	})

	t.Run("without store analyzes the given crawl", func(t *testing.T) {
		t.Parallel()

		p := NewAnalysisPipeline(nil, analysis.New(analysis.DefaultThresholds()))
		if got := p.StepNames(); len(got) != 1 || got[0] != "analyze" {
			t.Fatalf("unexpected steps %v", got)
		}

		job := &Job{ProjectID: "acme", Crawl: smallCrawl(0)}
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if job.Snapshot == nil {
			t.Error("expected snapshot to be derived")
		}
	})

	t.Run("unknown scan is not found", func(t *testing.T) {
		t.Parallel()

		p := NewAnalysisPipeline(newMemoryStore(), analysis.New(analysis.DefaultThresholds()))
		job := &Job{ProjectID: "acme", ScanID: 99}
		err := p.Execute(context.Background(), job)
		if !errors.Is(err, model.ErrNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
		if job.Report != nil {
			t.Error("no report expected")
		}
	})

	t.Run("snapshot failure is reported", func(t *testing.T) {
		t.Parallel()

		store := newMemoryStore(smallCrawl(3))
		store.saveErr = errors.New("disk full")
		p := NewAnalysisPipeline(store, analysis.New(analysis.DefaultThresholds()))

		err := p.Execute(context.Background(), &Job{ProjectID: "acme", ScanID: 3})
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestAnalyzeStep_NoCrawl(t *testing.T) {
	t.Parallel()

	step := NewAnalyzeStep(analysis.New(analysis.DefaultThresholds()))
	err := step.Do(context.Background(), &Job{ScanID: 1})
	if !errors.Is(err, model.ErrInternal) {
		t.Errorf("expected internal error, got %v", err)
	}
}
