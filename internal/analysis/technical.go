package analysis

import (
	"cmp"
	"math"
	"slices"

	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/normalize"
)

// ClassifyStatus returns the status class of an HTTP status code.
func ClassifyStatus(code int) model.StatusClass {
	switch {
	case code >= 200 && code < 300:
		return model.Status2xx
	case code >= 300 && code < 400:
		return model.Status3xx
	case code >= 400 && code < 500:
		return model.Status4xx
	case code >= 500 && code < 600:
		return model.Status5xx
	default:
		return model.StatusOther
	}
}

// isErrorStatus reports whether code is a 4xx or 5xx status.
func isErrorStatus(code int) bool {
	return code >= 400 && code < 600
}

// StatusBuckets groups pages by status class. The 2xx to 5xx buckets are
// always present in that order; the "other" bucket only when non-empty.
func StatusBuckets(pages []model.Page) []model.StatusBucket {
	order := []model.StatusClass{model.Status2xx, model.Status3xx, model.Status4xx, model.Status5xx, model.StatusOther}
	grouped := make(map[model.StatusClass][]model.StatusPage, len(order))
	for _, p := range pages {
		class := ClassifyStatus(p.HTTPStatus)
		grouped[class] = append(grouped[class], model.StatusPage{PageRef: p.Ref(), Status: p.HTTPStatus})
	}

	buckets := make([]model.StatusBucket, 0, len(order))
	for _, class := range order {
		members := grouped[class]
		if class == model.StatusOther && len(members) == 0 {
			continue
		}
		if members == nil {
			members = make([]model.StatusPage, 0)
		}
		buckets = append(buckets, model.StatusBucket{Class: class, Count: len(members), Pages: members})
	}
	return buckets
}

// Redirects returns the 3xx pages that declare a redirect target.
func Redirects(pages []model.Page) []model.RedirectPage {
	redirects := make([]model.RedirectPage, 0)
	for _, p := range pages {
		if ClassifyStatus(p.HTTPStatus) != model.Status3xx || normalize.IsBlank(p.RedirectURL) {
			continue
		}
		redirects = append(redirects, model.RedirectPage{
			PageRef: p.Ref(),
			Status:  p.HTTPStatus,
			Target:  p.RedirectURL,
		})
	}
	return redirects
}

// BrokenLinks returns the links whose resolved status is 4xx or 5xx.
// The resolved status is the destination page's status when the link
// points at a crawled page, otherwise the status recorded on the link.
func BrokenLinks(pages []model.Page, links []model.Link) []model.BrokenLink {
	byID := make(map[int64]model.Page, len(pages))
	for _, p := range pages {
		byID[p.ID] = p
	}

	broken := make([]model.BrokenLink, 0)
	for _, l := range links {
		status := l.HTTPStatus
		destURL := l.DestinationURL
		if l.IsInternal() {
			if dest, ok := byID[*l.DestinationPageID]; ok {
				status = dest.HTTPStatus
				if destURL == "" {
					destURL = dest.URL
				}
			}
		}
		if !isErrorStatus(status) {
			continue
		}
		broken = append(broken, model.BrokenLink{
			Source:            byID[l.SourcePageID].Ref(),
			DestinationPageID: l.DestinationPageID,
			DestinationURL:    destURL,
			AnchorText:        l.AnchorText,
			Status:            status,
		})
	}
	return broken
}

// performance returns the performance figures of p.
func performance(p model.Page) model.PerformancePage {
	return model.PerformancePage{
		PageRef:         p.Ref(),
		LoadTimeMs:      p.LoadTimeMs,
		FirstByteTimeMs: p.FirstByteTimeMs,
		SizeBytes:       p.SizeBytes,
	}
}

// SlowPages returns the pages whose load time exceeds slowPageMs,
// slowest first.
func SlowPages(pages []model.Page, slowPageMs int64) []model.PerformancePage {
	slow := make([]model.PerformancePage, 0)
	for _, p := range pages {
		if p.LoadTimeMs > slowPageMs {
			slow = append(slow, performance(p))
		}
	}
	slices.SortStableFunc(slow, func(a, b model.PerformancePage) int {
		return cmp.Compare(b.LoadTimeMs, a.LoadTimeMs)
	})
	return slow
}

// LargePages returns the pages whose size exceeds largePageBytes,
// largest first.
func LargePages(pages []model.Page, largePageBytes int64) []model.PerformancePage {
	large := make([]model.PerformancePage, 0)
	for _, p := range pages {
		if p.SizeBytes > largePageBytes {
			large = append(large, performance(p))
		}
	}
	slices.SortStableFunc(large, func(a, b model.PerformancePage) int {
		return cmp.Compare(b.SizeBytes, a.SizeBytes)
	})
	return large
}

// CanonicalMismatch reports whether p declares a canonical URL that is
// different from its own URL once both are normalized.
func CanonicalMismatch(p model.Page) bool {
	if normalize.IsBlank(p.CanonicalURL) {
		return false
	}
	return !normalize.SameURL(normalize.Resolve(p.URL, p.CanonicalURL), p.URL)
}

// IndexabilityReason returns the single reason p cannot be indexed.
// When several apply, precedence is not_indexable, then noindex, then
// canonical_mismatch.
func IndexabilityReason(p model.Page) (model.IndexabilityReason, bool) {
	switch {
	case !p.IsIndexable:
		return model.ReasonNotIndexable, true
	case p.HasRobotsNoindex:
		return model.ReasonNoindex, true
	case CanonicalMismatch(p):
		return model.ReasonCanonicalMismatch, true
	default:
		return "", false
	}
}

// NonIndexable returns every page with an indexability reason.
func NonIndexable(pages []model.Page) []model.NonIndexablePage {
	result := make([]model.NonIndexablePage, 0)
	for _, p := range pages {
		reason, ok := IndexabilityReason(p)
		if !ok {
			continue
		}
		result = append(result, model.NonIndexablePage{
			PageRef:      p.Ref(),
			Reason:       reason,
			CanonicalURL: p.CanonicalURL,
		})
	}
	return result
}

// Technical builds the technical health report.
//
// Severity: critical = 5xx pages + not_indexable pages; warning = 4xx
// pages + redirects + slow pages + large pages + canonical_mismatch
// pages; passed = pages that hit none of the checks (noindex pages are
// neither counted nor passed).
func Technical(pages []model.Page, links []model.Link, t Thresholds) model.TechnicalHealthData {
	t = t.WithDefaults()

	buckets := StatusBuckets(pages)
	redirects := Redirects(pages)
	broken := BrokenLinks(pages, links)
	slow := SlowPages(pages, t.SlowPageMs)
	large := LargePages(pages, t.LargePageBytes)
	nonIndexable := NonIndexable(pages)

	summary := model.TechnicalSummary{
		TotalPages:   len(pages),
		Redirects:    len(redirects),
		BrokenLinks:  len(broken),
		SlowPages:    len(slow),
		LargePages:   len(large),
		NonIndexable: len(nonIndexable),
	}
	for _, b := range buckets {
		switch b.Class {
		case model.Status2xx:
			summary.Status2xx = b.Count
		case model.Status3xx:
			summary.Status3xx = b.Count
		case model.Status4xx:
			summary.Status4xx = b.Count
		case model.Status5xx:
			summary.Status5xx = b.Count
		case model.StatusOther:
			summary.StatusOther = b.Count
		}
	}
	for _, n := range nonIndexable {
		switch n.Reason {
		case model.ReasonNotIndexable:
			summary.NotIndexable++
		case model.ReasonNoindex:
			summary.Noindex++
		case model.ReasonCanonicalMismatch:
			summary.CanonicalMismatch++
		}
	}

	var loadSum, ttfbSum int64
	for _, p := range pages {
		loadSum += p.LoadTimeMs
		ttfbSum += p.FirstByteTimeMs
	}
	if len(pages) > 0 {
		summary.AvgLoadTimeMs = int64(math.Round(float64(loadSum) / float64(len(pages))))
		summary.AvgFirstByteMs = int64(math.Round(float64(ttfbSum) / float64(len(pages))))
	}

	flagged := make(map[int64]struct{})
	for _, p := range pages {
		class := ClassifyStatus(p.HTTPStatus)
		if class == model.Status4xx || class == model.Status5xx {
			flagged[p.ID] = struct{}{}
		}
	}
	for _, r := range redirects {
		flagged[r.ID] = struct{}{}
	}
	for _, s := range slow {
		flagged[s.ID] = struct{}{}
	}
	for _, l := range large {
		flagged[l.ID] = struct{}{}
	}
	for _, n := range nonIndexable {
		flagged[n.ID] = struct{}{}
	}

	severity := model.Summary{
		Critical: summary.Status5xx + summary.NotIndexable,
		Warning:  summary.Status4xx + summary.Redirects + summary.SlowPages + summary.LargePages + summary.CanonicalMismatch,
		Passed:   len(pages) - len(flagged),
	}

	return model.TechnicalHealthData{
		Summary:      summary,
		StatusCodes:  buckets,
		Redirects:    redirects,
		BrokenLinks:  broken,
		SlowPages:    slow,
		LargePages:   large,
		NonIndexable: nonIndexable,
		Severity:     severity,
	}
}
