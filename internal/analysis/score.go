package analysis

import "github.com/nao1215/seoscan/internal/model"

// Score penalties per issue severity.
const (
	maxPageScore    = 100
	penaltyCritical = 25
	penaltyHigh     = 15
	penaltyMedium   = 8
	penaltyLow      = 3
)

// PageScore returns the SEO score (0-100) of a page carrying the given
// issue counts.
func PageScore(c model.IssueCounts) int {
	score := maxPageScore -
		penaltyCritical*c.Critical -
		penaltyHigh*c.High -
		penaltyMedium*c.Medium -
		penaltyLow*c.Low
	return max(score, 0)
}

// CountIssues tallies issues by severity. Unknown severities only count
// towards the total.
func CountIssues(issues []model.Issue) model.IssueCounts {
	var c model.IssueCounts
	for _, is := range issues {
		c.Add(is.Severity)
	}
	return c
}

// AvgSeoScore returns the mean page score rounded to one decimal, or 0
// when there are no pages. Issues on unknown pages are ignored.
func AvgSeoScore(pages []model.Page, issues []model.Issue) float64 {
	if len(pages) == 0 {
		return 0
	}
	perPage := make(map[int64]*model.IssueCounts, len(pages))
	for _, p := range pages {
		perPage[p.ID] = &model.IssueCounts{}
	}
	for _, is := range issues {
		if c, ok := perPage[is.PageID]; ok {
			c.Add(is.Severity)
		}
	}

	total := 0
	for _, p := range pages {
		total += PageScore(*perPage[p.ID])
	}
	return roundTo1(float64(total) / float64(len(pages)))
}
