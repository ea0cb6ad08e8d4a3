package analysis

import (
	"testing"

	"github.com/nao1215/seoscan/internal/model"
)

func TestPageScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		counts model.IssueCounts
		want   int
	}{
		{name: "no issues", want: 100},
		{name: "mixed", counts: model.IssueCounts{Critical: 1, High: 1}, want: 60},
		{name: "low only", counts: model.IssueCounts{Low: 2}, want: 94},
		{name: "floored at zero", counts: model.IssueCounts{Critical: 5}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := PageScore(tt.counts); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestAvgSeoScore(t *testing.T) {
	t.Parallel()

	pages := []model.Page{page(1, 0), page(2, 1), page(3, 1)}
	issues := []model.Issue{
		{PageID: 1, Severity: model.IssueCritical},
		{PageID: 2, Severity: model.IssueLow},
		{PageID: 42, Severity: model.IssueCritical},
	}

	if got := AvgSeoScore(pages, issues); got != 90.7 {
		t.Errorf("expected 90.7, got %v", got)
	}
	if got := AvgSeoScore(nil, issues); got != 0 {
		t.Errorf("expected 0 for no pages, got %v", got)
	}
}

func TestCountIssues(t *testing.T) {
	t.Parallel()

	got := CountIssues([]model.Issue{
		{Severity: model.IssueCritical},
		{Severity: model.IssueMedium},
		{Severity: model.IssueMedium},
	})
	want := model.IssueCounts{Total: 3, Critical: 1, Medium: 2}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}
