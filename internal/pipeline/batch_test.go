package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/seoscan/internal/analysis"
	"github.com/nao1215/seoscan/internal/model"
)

func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	t.Run("creates processor with defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() })
		if bp.concurrency != 10 {
			t.Errorf("expected default concurrency 10, got %d", bp.concurrency)
		}
		if bp.logger == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() }, WithConcurrency(0))
		if bp.concurrency != 10 {
			t.Errorf("expected concurrency 10, got %d", bp.concurrency)
		}

		bp = NewBatchProcessor(func() *Pipeline { return New() }, WithConcurrency(3))
		if bp.concurrency != 3 {
			t.Errorf("expected concurrency 3, got %d", bp.concurrency)
		}
	})
}

func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("analyzes every scan and keeps failures per job", func(t *testing.T) {
		t.Parallel()

		store := newMemoryStore(smallCrawl(1), smallCrawl(2))
		analyzer := analysis.New(analysis.DefaultThresholds())
		bp := NewBatchProcessor(func() *Pipeline {
			return NewAnalysisPipeline(store, analyzer)
		}, WithConcurrency(2))

		jobs := []*Job{
			{ProjectID: "acme", ScanID: 1},
			{ProjectID: "acme", ScanID: 404},
			{ProjectID: "acme", ScanID: 2},
		}
		got, err := bp.ProcessBatch(context.Background(), jobs)
		if err != nil {
			t.Fatalf("ProcessBatch() error = %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 jobs, got %d", len(got))
		}
		if got[0].Err != nil || got[0].Report == nil {
			t.Errorf("scan 1 should succeed: %v", got[0].Err)
		}
		if !errors.Is(got[1].Err, model.ErrNotFound) {
			t.Errorf("scan 404 should be not found, got %v", got[1].Err)
		}
		if got[2].Err != nil || got[2].Report == nil {
			t.Errorf("scan 2 should succeed: %v", got[2].Err)
		}
		if len(store.snapshots) != 2 {
			t.Errorf("expected 2 snapshots, got %d", len(store.snapshots))
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var running, peak atomic.Int64
		slow := stepFunc(func(context.Context, *Job) error {
			n := running.Add(1)
			for {
				cur := peak.Load()
				if n <= cur || peak.CompareAndSwap(cur, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return nil
		})
		bp := NewBatchProcessor(func() *Pipeline {
			p := New()
			p.AddStep(slow)
			return p
		}, WithConcurrency(2))

		jobs := make([]*Job, 8)
		for i := range jobs {
			jobs[i] = &Job{ScanID: int64(i + 1)}
		}
		if _, err := bp.ProcessBatch(context.Background(), jobs); err != nil {
			t.Fatalf("ProcessBatch() error = %v", err)
		}
		if peak.Load() > 2 {
			t.Errorf("peak concurrency %d exceeds limit 2", peak.Load())
		}
	})

	t.Run("reports cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		bp := NewBatchProcessor(func() *Pipeline { return New() })
		_, err := bp.ProcessBatch(ctx, []*Job{{ScanID: 1}})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

// stepFunc adapts a function to Step without shared counters.
type stepFunc func(ctx context.Context, job *Job) error

func (f stepFunc) Do(ctx context.Context, job *Job) error { return f(ctx, job) }

func (f stepFunc) Name() string { return "func" }
