package analysis

import (
	"cmp"
	"math"
	"slices"
	"sort"

	"github.com/nao1215/seoscan/internal/model"
)

// RankMode selects the ordering of RankByLinkCount.
type RankMode string

// Rank modes.
const (
	RankMost   RankMode = "most"
	RankFewest RankMode = "fewest"
)

// DepthDistribution groups pages by depth. Every page appears in exactly
// one bucket, buckets are sorted by ascending depth, and pages inside a
// bucket are sorted by URL.
func DepthDistribution(pages []model.Page) []model.DepthBucket {
	byDepth := make(map[int][]model.Page)
	for _, p := range pages {
		byDepth[p.Depth] = append(byDepth[p.Depth], p)
	}

	depths := make([]int, 0, len(byDepth))
	for d := range byDepth {
		depths = append(depths, d)
	}
	slices.Sort(depths)

	buckets := make([]model.DepthBucket, 0, len(depths))
	for _, d := range depths {
		members := byDepth[d]
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].URL < members[j].URL
		})
		refs := make([]model.PageRef, len(members))
		for i, p := range members {
			refs[i] = p.Ref()
		}
		buckets = append(buckets, model.DepthBucket{Depth: d, Count: len(refs), Pages: refs})
	}
	return buckets
}

// OrphanPages returns the non-root pages that no internal link targets.
// Pages at depth 0 are never orphans. External links (nil destination)
// never count as inbound links.
func OrphanPages(pages []model.Page, links []model.Link) []model.PageRef {
	linked := make(map[int64]struct{}, len(links))
	for _, l := range links {
		if l.IsInternal() {
			linked[*l.DestinationPageID] = struct{}{}
		}
	}

	orphans := make([]model.PageRef, 0)
	for _, p := range pages {
		if p.Depth <= 0 {
			continue
		}
		if _, ok := linked[p.ID]; !ok {
			orphans = append(orphans, p.Ref())
		}
	}
	return orphans
}

// DeepPages returns the pages with depth >= threshold, deepest first.
// Pages at equal depth keep their input order. A non-positive threshold
// uses DefaultDeepPageThreshold.
func DeepPages(pages []model.Page, threshold int) []model.DepthPage {
	if threshold <= 0 {
		threshold = DefaultDeepPageThreshold
	}

	deep := make([]model.DepthPage, 0)
	for _, p := range pages {
		if p.Depth >= threshold {
			deep = append(deep, model.DepthPage{PageRef: p.Ref(), Depth: p.Depth})
		}
	}
	slices.SortStableFunc(deep, func(a, b model.DepthPage) int {
		return cmp.Compare(b.Depth, a.Depth)
	})
	return deep
}

// LinkStats counts the inbound and outbound links of every page.
// The result has one entry per page, in input order, including pages
// without any links. Each link adds one outbound to its source and, when
// its destination is set, one inbound to the destination.
func LinkStats(pages []model.Page, links []model.Link) []model.LinkStat {
	stats := make([]model.LinkStat, len(pages))
	index := make(map[int64]int, len(pages))
	for i, p := range pages {
		stats[i] = model.LinkStat{PageRef: p.Ref()}
		index[p.ID] = i
	}

	for _, l := range links {
		if i, ok := index[l.SourcePageID]; ok {
			stats[i].Outbound++
		}
		if !l.IsInternal() {
			continue
		}
		if i, ok := index[*l.DestinationPageID]; ok {
			stats[i].Inbound++
		}
	}
	return stats
}

// RankByLinkCount orders stats by total link count, descending for
// RankMost and ascending for RankFewest, and keeps at most limit entries.
// Ties keep their input order. A non-positive limit keeps everything.
func RankByLinkCount(stats []model.LinkStat, mode RankMode, limit int) []model.LinkStat {
	ranked := slices.Clone(stats)
	slices.SortStableFunc(ranked, func(a, b model.LinkStat) int {
		if mode == RankFewest {
			return cmp.Compare(a.Total(), b.Total())
		}
		return cmp.Compare(b.Total(), a.Total())
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	if ranked == nil {
		ranked = make([]model.LinkStat, 0)
	}
	return ranked
}

// roundTo1 rounds v to one decimal place.
func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Architecture builds the site architecture report.
//
// Severity: orphan pages are critical and deep pages that are not
// orphans are warnings. Every other page passes, so the three counts add
// up to the number of pages.
func Architecture(pages []model.Page, links []model.Link, t Thresholds) model.SiteArchitectureData {
	t = t.WithDefaults()

	distribution := DepthDistribution(pages)
	orphans := OrphanPages(pages, links)
	deep := DeepPages(pages, t.DeepPageThreshold)
	stats := LinkStats(pages, links)

	summary := model.ArchitectureSummary{
		OrphanCount:   len(orphans),
		DeepPageCount: len(deep),
	}
	depthSum := 0
	for _, b := range distribution {
		summary.TotalPages += b.Count
		depthSum += b.Depth * b.Count
		if b.Depth > summary.MaxDepth {
			summary.MaxDepth = b.Depth
		}
	}
	if summary.TotalPages > 0 {
		summary.AvgDepth = roundTo1(float64(depthSum) / float64(summary.TotalPages))
	}

	orphanIDs := make(map[int64]struct{}, len(orphans))
	for _, o := range orphans {
		orphanIDs[o.ID] = struct{}{}
	}
	severity := model.Summary{Critical: len(orphans)}
	for _, d := range deep {
		if _, ok := orphanIDs[d.ID]; !ok {
			severity.Warning++
		}
	}
	severity.Passed = summary.TotalPages - severity.Critical - severity.Warning

	return model.SiteArchitectureData{
		Summary:           summary,
		DepthDistribution: distribution,
		OrphanPages:       orphans,
		DeepPages:         deep,
		LinkStats:         stats,
		MostLinked:        RankByLinkCount(stats, RankMost, t.LinkRankLimit),
		FewestLinked:      RankByLinkCount(stats, RankFewest, t.LinkRankLimit),
		Severity:          severity,
	}
}
