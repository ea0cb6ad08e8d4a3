package analysis

import (
	"slices"
	"testing"

	"github.com/nao1215/seoscan/internal/model"
)

func TestDepthDistribution(t *testing.T) {
	t.Parallel()

	t.Run("every page lands in exactly one bucket", func(t *testing.T) {
		t.Parallel()

		pages := []model.Page{page(3, 2), page(1, 0), page(2, 1), page(4, 2), page(5, 7)}
		buckets := DepthDistribution(pages)

		sum := 0
		for _, b := range buckets {
			sum += b.Count
			if b.Count != len(b.Pages) {
				t.Errorf("bucket %d: count %d but %d pages", b.Depth, b.Count, len(b.Pages))
			}
		}
		if sum != len(pages) {
			t.Errorf("expected bucket counts to sum to %d, got %d", len(pages), sum)
		}

		depths := make([]int, len(buckets))
		for i, b := range buckets {
			depths[i] = b.Depth
		}
		if !slices.Equal(depths, []int{0, 1, 2, 7}) {
			t.Errorf("unexpected bucket order %v", depths)
		}
	})

	t.Run("pages within a bucket are sorted by URL", func(t *testing.T) {
		t.Parallel()

		b := page(1, 1)
		b.URL = "https://example.com/b"
		a := page(2, 1)
		a.URL = "https://example.com/a"

		buckets := DepthDistribution([]model.Page{b, a})
		if len(buckets) != 1 {
			t.Fatalf("expected 1 bucket, got %d", len(buckets))
		}
		if got := refIDs(buckets[0].Pages); !slices.Equal(got, []int64{2, 1}) {
			t.Errorf("expected [2 1], got %v", got)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		if got := DepthDistribution(nil); len(got) != 0 {
			t.Errorf("expected no buckets, got %v", got)
		}
	})
}

func TestOrphanPages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		pages []model.Page
		links []model.Link
		want  []int64
	}{
		{
			name:  "unlinked non-root page is an orphan",
			pages: []model.Page{page(1, 0), page(2, 1), page(3, 1)},
			links: []model.Link{link(1, 2)},
			want:  []int64{3},
		},
		{
			name:  "root page without inbound links is exempt",
			pages: []model.Page{page(1, 0)},
			want:  []int64{},
		},
		{
			name:  "external links do not count as inbound",
			pages: []model.Page{page(1, 0), page(2, 2)},
			links: []model.Link{externalLink(1, "https://other.example/p2", 200)},
			want:  []int64{2},
		},
		{
			name:  "self link counts as inbound",
			pages: []model.Page{page(1, 0), page(2, 3)},
			links: []model.Link{link(2, 2)},
			want:  []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := refIDs(OrphanPages(tt.pages, tt.links))
			if !slices.Equal(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDeepPages(t *testing.T) {
	t.Parallel()

	pages := []model.Page{page(1, 4), page(2, 6), page(3, 2), page(4, 4), page(5, 5)}

	t.Run("sorted by depth descending, stable on ties", func(t *testing.T) {
		t.Parallel()

		got := DeepPages(pages, 4)
		ids := make([]int64, len(got))
		for i, d := range got {
			ids[i] = d.ID
		}
		if !slices.Equal(ids, []int64{2, 5, 1, 4}) {
			t.Errorf("unexpected order %v", ids)
		}
	})

	t.Run("non-positive threshold uses default", func(t *testing.T) {
		t.Parallel()

		if got, want := len(DeepPages(pages, 0)), len(DeepPages(pages, DefaultDeepPageThreshold)); got != want {
			t.Errorf("expected %d pages, got %d", want, got)
		}
	})
}

func TestLinkStats(t *testing.T) {
	t.Parallel()

	pages := []model.Page{page(1, 0), page(2, 1), page(3, 1)}
	links := []model.Link{
		link(1, 2),
		link(1, 3),
		link(2, 3),
		externalLink(3, "https://other.example/", 200),
		link(99, 1), // source not in the crawl
	}

	stats := LinkStats(pages, links)
	if len(stats) != len(pages) {
		t.Fatalf("expected one entry per page, got %d", len(stats))
	}

	want := map[int64][2]int{
		1: {1, 2},
		2: {1, 1},
		3: {2, 1},
	}
	for _, s := range stats {
		w := want[s.ID]
		if s.Inbound != w[0] || s.Outbound != w[1] {
			t.Errorf("page %d: expected in=%d out=%d, got in=%d out=%d", s.ID, w[0], w[1], s.Inbound, s.Outbound)
		}
	}

	t.Run("pages without links are present with zero counts", func(t *testing.T) {
		t.Parallel()

		stats := LinkStats([]model.Page{page(7, 1)}, nil)
		if len(stats) != 1 || stats[0].Inbound != 0 || stats[0].Outbound != 0 {
			t.Errorf("unexpected stats %+v", stats)
		}
	})
}

func TestRankByLinkCount(t *testing.T) {
	t.Parallel()

	stats := []model.LinkStat{
		{PageRef: model.PageRef{ID: 1}, Inbound: 1, Outbound: 1},
		{PageRef: model.PageRef{ID: 2}, Inbound: 5, Outbound: 0},
		{PageRef: model.PageRef{ID: 3}, Inbound: 0, Outbound: 0},
		{PageRef: model.PageRef{ID: 4}, Inbound: 2, Outbound: 0},
	}

	ids := func(s []model.LinkStat) []int64 {
		out := make([]int64, len(s))
		for i, v := range s {
			out[i] = v.ID
		}
		return out
	}

	if got := ids(RankByLinkCount(stats, RankMost, 2)); !slices.Equal(got, []int64{2, 1}) {
		t.Errorf("most: expected [2 1], got %v", got)
	}
	if got := ids(RankByLinkCount(stats, RankFewest, 0)); !slices.Equal(got, []int64{3, 1, 4, 2}) {
		t.Errorf("fewest: expected [3 1 4 2], got %v", got)
	}
	if stats[0].ID != 1 {
		t.Error("input slice must not be reordered")
	}
}

func TestArchitecture(t *testing.T) {
	t.Parallel()

	pages := []model.Page{page(1, 0), page(2, 1), page(3, 1), page(4, 5), page(5, 4)}
	links := []model.Link{link(1, 2), link(2, 4)}

	data := Architecture(pages, links, Thresholds{})

	if data.Summary.TotalPages != 5 {
		t.Errorf("expected 5 pages, got %d", data.Summary.TotalPages)
	}
	if data.Summary.AvgDepth != 2.2 {
		t.Errorf("expected avg depth 2.2, got %v", data.Summary.AvgDepth)
	}
	if data.Summary.MaxDepth != 5 {
		t.Errorf("expected max depth 5, got %d", data.Summary.MaxDepth)
	}
	if got := refIDs(data.OrphanPages); !slices.Equal(got, []int64{3, 5}) {
		t.Errorf("expected orphans [3 5], got %v", got)
	}

	// 3 and 5 are orphans, 4 is deep but linked.
	want := model.Summary{Critical: 2, Warning: 1, Passed: 2}
	if data.Severity != want {
		t.Errorf("expected severity %+v, got %+v", want, data.Severity)
	}

	t.Run("empty crawl", func(t *testing.T) {
		t.Parallel()

		data := Architecture(nil, nil, Thresholds{})
		if data.Summary.AvgDepth != 0 || data.Summary.TotalPages != 0 {
			t.Errorf("unexpected summary %+v", data.Summary)
		}
		if data.Severity != (model.Summary{}) {
			t.Errorf("unexpected severity %+v", data.Severity)
		}
	})
}
