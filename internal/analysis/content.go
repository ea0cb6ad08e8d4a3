package analysis

import (
	"cmp"
	"context"
	"slices"

	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/normalize"
)

// ThinContent returns the pages with fewer than thin words and, as a
// subset, those with fewer than critical words. Both lists are sorted by
// ascending word count, then URL.
func ThinContent(pages []model.Page, thin, critical int) (all, criticalOnly []model.ThinPage) {
	if thin <= 0 {
		thin = DefaultThinContentWords
	}
	if critical <= 0 {
		critical = DefaultCriticalThinContentWords
	}

	all = make([]model.ThinPage, 0)
	criticalOnly = make([]model.ThinPage, 0)
	for _, p := range pages {
		if p.WordCount >= thin {
			continue
		}
		tp := model.ThinPage{PageRef: p.Ref(), WordCount: p.WordCount, Critical: p.WordCount < critical}
		all = append(all, tp)
		if tp.Critical {
			criticalOnly = append(criticalOnly, tp)
		}
	}

	byWords := func(a, b model.ThinPage) int {
		if c := cmp.Compare(a.WordCount, b.WordCount); c != 0 {
			return c
		}
		return cmp.Compare(a.URL, b.URL)
	}
	slices.SortStableFunc(all, byWords)
	slices.SortStableFunc(criticalOnly, byWords)
	return all, criticalOnly
}

// MissingTitles returns the pages whose title is empty or blank.
func MissingTitles(pages []model.Page) []model.PageRef {
	return missing(pages, func(p model.Page) string { return p.Title })
}

// MissingDescriptions returns the pages whose meta description is empty or blank.
func MissingDescriptions(pages []model.Page) []model.PageRef {
	return missing(pages, func(p model.Page) string { return p.MetaDescription })
}

func missing(pages []model.Page, field func(model.Page) string) []model.PageRef {
	refs := make([]model.PageRef, 0)
	for _, p := range pages {
		if normalize.IsBlank(field(p)) {
			refs = append(refs, p.Ref())
		}
	}
	return refs
}

// DuplicateTitles groups pages sharing the same normalized title.
func DuplicateTitles(pages []model.Page) []model.DuplicateGroup {
	return duplicates(pages, func(p model.Page) string { return p.Title })
}

// DuplicateDescriptions groups pages sharing the same normalized meta description.
func DuplicateDescriptions(pages []model.Page) []model.DuplicateGroup {
	return duplicates(pages, func(p model.Page) string { return p.MetaDescription })
}

// duplicates groups pages by the trimmed, lower-cased value of field.
// Blank values are ignored and only groups with two or more pages are
// returned. Groups are sorted by value and members by URL.
func duplicates(pages []model.Page, field func(model.Page) string) []model.DuplicateGroup {
	byValue := make(map[string][]model.PageRef)
	for _, p := range pages {
		v := normalize.Text(field(p))
		if v == "" {
			continue
		}
		byValue[v] = append(byValue[v], p.Ref())
	}

	groups := make([]model.DuplicateGroup, 0)
	for v, refs := range byValue {
		if len(refs) < 2 {
			continue
		}
		slices.SortStableFunc(refs, func(a, b model.PageRef) int {
			return cmp.Compare(a.URL, b.URL)
		})
		groups = append(groups, model.DuplicateGroup{Value: v, Pages: refs})
	}
	slices.SortFunc(groups, func(a, b model.DuplicateGroup) int {
		return cmp.Compare(a.Value, b.Value)
	})
	return groups
}

// Content builds the content intelligence report.
//
// Severity: critical = missing titles + duplicate title groups +
// duplicate description groups; warning = thin pages + missing
// descriptions + similarity groups; passed = pages that appear in none
// of the lists.
func Content(ctx context.Context, pages []model.Page, t Thresholds) (model.ContentIntelligenceData, error) {
	t = t.WithDefaults()

	thin, criticalThin := ThinContent(pages, t.ThinContentWords, t.CriticalThinContentWords)
	missingTitles := MissingTitles(pages)
	missingDescriptions := MissingDescriptions(pages)
	dupTitles := DuplicateTitles(pages)
	dupDescriptions := DuplicateDescriptions(pages)
	similar, err := SimilarContent(ctx, pages, t.SimilarityThreshold, t.SimilarityBucketKeywords)
	if err != nil {
		return model.ContentIntelligenceData{}, err
	}

	summary := model.ContentSummary{
		TotalPages:                 len(pages),
		ThinContent:                len(thin),
		CriticalThinContent:        len(criticalThin),
		MissingTitles:              len(missingTitles),
		MissingDescriptions:        len(missingDescriptions),
		DuplicateTitleGroups:       len(dupTitles),
		DuplicateDescriptionGroups: len(dupDescriptions),
		SimilarGroups:              len(similar),
	}
	if len(pages) > 0 {
		words := 0
		for _, p := range pages {
			words += p.WordCount
		}
		summary.AvgWordCount = words / len(pages)
	}

	flagged := make(map[int64]struct{})
	mark := func(refs ...model.PageRef) {
		for _, r := range refs {
			flagged[r.ID] = struct{}{}
		}
	}
	for _, tp := range thin {
		mark(tp.PageRef)
	}
	mark(missingTitles...)
	mark(missingDescriptions...)
	for _, g := range dupTitles {
		mark(g.Pages...)
	}
	for _, g := range dupDescriptions {
		mark(g.Pages...)
	}
	for _, g := range similar {
		mark(g.Pages...)
	}

	return model.ContentIntelligenceData{
		Summary:               summary,
		ThinContent:           thin,
		CriticalThinContent:   criticalThin,
		MissingTitles:         missingTitles,
		MissingDescriptions:   missingDescriptions,
		DuplicateTitles:       dupTitles,
		DuplicateDescriptions: dupDescriptions,
		SimilarContent:        similar,
		Severity: model.Summary{
			Critical: len(missingTitles) + len(dupTitles) + len(dupDescriptions),
			Warning:  len(thin) + len(missingDescriptions) + len(similar),
			Passed:   len(pages) - len(flagged),
		},
	}, nil
}
