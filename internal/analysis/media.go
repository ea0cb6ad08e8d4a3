package analysis

import (
	"cmp"
	"math"
	"slices"

	"github.com/nao1215/seoscan/internal/model"
)

// Alt coverage bands used by the media severity rollup.
const (
	criticalCoveragePercent = 50
	warningCoveragePercent  = 80
	// pageCriticalMissingAlt is the per-page missing alt count above which
	// the page is critical.
	pageCriticalMissingAlt = 5
)

// AltCoverage returns round(100 * withAlt / total), or 100 when there
// are no images.
func AltCoverage(withAlt, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(100 * float64(withAlt) / float64(total)))
}

// PageMediaStats returns the image statistics of every page, in input order.
func PageMediaStats(pages []model.Page) []model.PageMedia {
	stats := make([]model.PageMedia, 0, len(pages))
	for _, p := range pages {
		missingAlt := 0
		for _, img := range p.Images {
			if !img.HasAlt() {
				missingAlt++
			}
		}
		stats = append(stats, model.PageMedia{
			PageRef:            p.Ref(),
			ImageCount:         len(p.Images),
			MissingAltCount:    missingAlt,
			AltCoveragePercent: AltCoverage(len(p.Images)-missingAlt, len(p.Images)),
		})
	}
	return stats
}

// ImageHeavyPages returns the pages with images sorted by image count,
// largest first, capped at limit. Ties keep their input order.
func ImageHeavyPages(stats []model.PageMedia, limit int) []model.PageMedia {
	if limit <= 0 {
		limit = DefaultImageHeavyLimit
	}
	heavy := make([]model.PageMedia, 0, len(stats))
	for _, s := range stats {
		if s.ImageCount > 0 {
			heavy = append(heavy, s)
		}
	}
	slices.SortStableFunc(heavy, func(a, b model.PageMedia) int {
		return cmp.Compare(b.ImageCount, a.ImageCount)
	})
	if len(heavy) > limit {
		heavy = heavy[:limit]
	}
	return heavy
}

// MissingAltImages flattens every (page, image) pair lacking alt text.
func MissingAltImages(pages []model.Page) []model.MissingAltImage {
	result := make([]model.MissingAltImage, 0)
	for _, p := range pages {
		for _, img := range p.Images {
			if !img.HasAlt() {
				result = append(result, model.MissingAltImage{Page: p.Ref(), Src: img.Src})
			}
		}
	}
	return result
}

// Media builds the media accessibility report.
//
// Severity: a page missing more than five alt texts is critical and a
// page missing one to five is a warning. A site-wide coverage below 50%
// adds floor((50-coverage)/10) to critical; a coverage in [50,80) adds
// floor((80-coverage)/10) to warning. Pages without missing alt pass.
func Media(pages []model.Page, t Thresholds) model.MediaAnalysisData {
	t = t.WithDefaults()

	stats := PageMediaStats(pages)
	summary := model.MediaSummary{}
	severity := model.Summary{}
	for _, s := range stats {
		summary.TotalImages += s.ImageCount
		summary.MissingAlt += s.MissingAltCount
		if s.ImageCount > 0 {
			summary.PagesWithImages++
		}
		switch {
		case s.MissingAltCount > pageCriticalMissingAlt:
			summary.PagesWithMissingAlt++
			severity.Critical++
		case s.MissingAltCount > 0:
			summary.PagesWithMissingAlt++
			severity.Warning++
		default:
			severity.Passed++
		}
	}
	summary.ImagesWithAlt = summary.TotalImages - summary.MissingAlt
	summary.AltCoveragePercent = AltCoverage(summary.ImagesWithAlt, summary.TotalImages)

	switch c := summary.AltCoveragePercent; {
	case c < criticalCoveragePercent:
		severity.Critical += (criticalCoveragePercent - c) / 10
	case c < warningCoveragePercent:
		severity.Warning += (warningCoveragePercent - c) / 10
	}

	return model.MediaAnalysisData{
		Summary:         summary,
		Pages:           stats,
		ImageHeavyPages: ImageHeavyPages(stats, t.ImageHeavyLimit),
		MissingAlt:      MissingAltImages(pages),
		Severity:        severity,
	}
}
