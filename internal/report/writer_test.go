package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/seoscan/internal/model"
)

// createTestReport creates a report with sample data for testing.
func createTestReport() *model.AuditReport {
	home := model.PageRef{ID: 1, URL: "https://acme.example/", Title: "Home"}
	orphan := model.PageRef{ID: 3, URL: "https://acme.example/lost", Title: "Lost"}
	dest := int64(9)

	r := &model.AuditReport{
		ProjectID:   "acme",
		ScanID:      42,
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		AvgSeoScore: 81.5,
		Issues:      model.IssueCounts{Total: 4, Critical: 1, High: 2, Low: 1},
		Architecture: model.SiteArchitectureData{
			Summary:     model.ArchitectureSummary{TotalPages: 3, AvgDepth: 0.7, MaxDepth: 1, OrphanCount: 1},
			OrphanPages: []model.PageRef{orphan},
			DepthDistribution: []model.DepthBucket{
				{Depth: 0, Count: 1, Pages: []model.PageRef{home}},
				{Depth: 1, Count: 2},
			},
			LinkStats: []model.LinkStat{
				{PageRef: home, Outbound: 2},
				{PageRef: orphan},
			},
			Severity: model.Summary{Critical: 1, Passed: 2},
		},
		Technical: model.TechnicalHealthData{
			Summary: model.TechnicalSummary{TotalPages: 3, Status2xx: 2, Status3xx: 1, Redirects: 1, BrokenLinks: 1},
			Redirects: []model.RedirectPage{
				{PageRef: model.PageRef{ID: 2, URL: "https://acme.example/old"}, Status: 301, Target: "https://acme.example/new"},
			},
			BrokenLinks: []model.BrokenLink{
				{Source: home, DestinationPageID: &dest, DestinationURL: "https://acme.example/missing", AnchorText: "Missing, gone", Status: 404},
			},
			Severity: model.Summary{Warning: 2, Passed: 1},
		},
		Content: model.ContentIntelligenceData{
			Summary: model.ContentSummary{TotalPages: 3, AvgWordCount: 240, ThinContent: 1, SimilarGroups: 1},
			ThinContent: []model.ThinPage{
				{PageRef: orphan, WordCount: 80, Critical: true},
			},
			SimilarContent: []model.SimilarityGroup{
				{Similarity: 75, Pages: []model.PageRef{home, orphan}, SharedKeywords: []string{"anvil", "rocket"}},
			},
			Severity: model.Summary{Warning: 2, Passed: 1},
		},
		Media: model.MediaAnalysisData{
			Summary: model.MediaSummary{TotalImages: 4, ImagesWithAlt: 3, MissingAlt: 1, AltCoveragePercent: 75},
			ImageHeavyPages: []model.PageMedia{
				{PageRef: home, ImageCount: 4, MissingAltCount: 1, AltCoveragePercent: 75},
			},
			MissingAlt: []model.MissingAltImage{{Page: home, Src: "https://acme.example/hero.png"}},
			Severity:   model.Summary{Warning: 1},
		},
	}
	r.Summary = r.Architecture.Severity.Add(r.Technical.Severity).Add(r.Content.Severity).Add(r.Media.Severity)
	return r
}

func createTestComparison() *model.Comparison {
	return &model.Comparison{
		ProjectID: "acme",
		Scan1: model.ComparedScan{
			ID:      1,
			Date:    time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
			Metrics: model.ComparisonMetrics{TotalPages: 10, TotalIssues: 15, CriticalIssues: 3, AvgScore: 70},
			Source:  model.SourceSnapshot,
		},
		Scan2: model.ComparedScan{
			ID:      2,
			Date:    time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
			Metrics: model.ComparisonMetrics{TotalPages: 12, TotalIssues: 10, CriticalIssues: 1, AvgScore: 78.5},
			Source:  model.SourceLive,
		},
		Changes: model.Changes{FixedIssues: 5, NewPages: 2},
	}
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}

		output := buf.String()
		for _, want := range []string{
			"SEO AUDIT REPORT",
			"Project:        acme",
			"Avg SEO score:  81.5",
			"SEVERITY SUMMARY",
			"Overall: CRITICAL",
			"https://acme.example/lost",
			"acme.example/missing (404)",
			"75% similar: 2 pages sharing anvil, rocket",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("hides empty lists unless asked", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.Architecture.DeepPages = nil

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "Deep pages:\n") {
			t.Error("empty list should be hidden")
		}

		buf.Reset()
		if _, err := NewSimpleWriter(&buf, WithShowEmpty(true)).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Deep pages:\n    none") {
			t.Error("empty list should be shown with WithShowEmpty")
		}
	})

	t.Run("caps long lists unless verbose", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.Architecture.OrphanPages = make([]model.PageRef, maxListRows+5)
		for i := range report.Architecture.OrphanPages {
			report.Architecture.OrphanPages[i] = model.PageRef{ID: int64(i), URL: "https://acme.example/o"}
		}

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "... and 5 more") {
			t.Error("expected truncated list")
		}

		buf.Reset()
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "more (use --verbose)") {
			t.Error("verbose output should list everything")
		}
	})

	t.Run("writes comparison", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteComparison(createTestComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		for _, want := range []string{
			"Scan Comparison: acme",
			"(snapshot)",
			"(live)",
			"Issues        15          10          -5",
			"Avg score     70.0        78.5        +8.5",
			"Fixed issues:  5",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected comparison to contain %q\n%s", want, output)
			}
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		for _, want := range []string{
			"# SEO Audit Report",
			"## Severity Summary",
			"```mermaid",
			"pie",
			"[!CAUTION]",
			"### Orphan Pages",
			"### Broken Links",
			"### Similar Content",
			"75%",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected markdown to contain %q", want)
			}
		}
	})

	t.Run("clean report gets a tip", func(t *testing.T) {
		t.Parallel()

		report := &model.AuditReport{ProjectID: "acme", Summary: model.Summary{Passed: 3}}
		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "[!TIP]") {
			t.Error("expected tip alert")
		}
	})

	t.Run("writes comparison table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteComparison(createTestComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		for _, want := range []string{"# Scan Comparison: acme", "Scan 1 (snapshot)", "-5", "+2", "Fixed issues: 5"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected markdown comparison to contain %q", want)
			}
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("compact JSON should be a single line")
		}

		var decoded model.AuditReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.ScanID != 42 || decoded.Architecture.Summary.OrphanCount != 1 {
			t.Errorf("unexpected decoded report: %+v", decoded.Architecture.Summary)
		}
	})

	t.Run("pretty output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).WriteComparison(createTestComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"projectId\": \"acme\"") {
			t.Errorf("expected indented output, got %s", buf.String())
		}
	})

	t.Run("full writer wraps version", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewFullJSONWriter(&buf, "v1.2.3").Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var decoded JSONReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Version != "v1.2.3" || decoded.Report == nil || decoded.Report.ProjectID != "acme" {
			t.Errorf("unexpected wrapper %+v", decoded)
		}
	})
}

type failingWriter struct{}

func (failingWriter) Write(*model.AuditReport) (int, error) { return 0, errors.New("fail") }
func (failingWriter) WriteComparison(*model.Comparison) (int, error) { return 0, errors.New("fail") }

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&a), NewJSONWriter(&b))
	n, err := mw.Write(createTestReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != a.Len()+b.Len() {
		t.Errorf("expected %d bytes, got %d", a.Len()+b.Len(), n)
	}

	var c bytes.Buffer
	mw = NewMultiWriter(failingWriter{}, NewSimpleWriter(&c))
	if _, err := mw.WriteComparison(createTestComparison()); err == nil {
		t.Error("expected error from failing writer")
	}
	if c.Len() != 0 {
		t.Error("writers after a failure must not run")
	}
}

func TestFormatDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want string
	}{
		{5, "+5"},
		{-3, "-3"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := formatDelta(tt.in); got != tt.want {
			t.Errorf("formatDelta(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := formatDeltaFloat(-0.01); got != "0.0" {
		t.Errorf("formatDeltaFloat(-0.01) = %q, want 0.0", got)
	}
}
