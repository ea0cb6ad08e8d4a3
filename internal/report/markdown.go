package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/normalize"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.AuditReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeArchitecture(md, &report.Architecture)
	w.writeTechnical(md, &report.Technical)
	w.writeContent(md, &report.Content)
	w.writeMedia(md, &report.Media)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with scan information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.AuditReport) {
	md.H1("SEO Audit Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Project", "`" + report.ProjectID + "`"},
			{"Scan", strconv.FormatInt(report.ScanID, 10)},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages", strconv.Itoa(report.Architecture.Summary.TotalPages)},
			{"Average SEO score", strconv.FormatFloat(report.AvgSeoScore, 'f', 1, 64)},
			{"Crawler issues", strconv.Itoa(report.Issues.Total)},
		},
	})
	md.PlainText("")
}

// writeSummary writes the per-component severity table and chart.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.AuditReport) {
	md.H2("Severity Summary")
	md.PlainText("")

	row := func(name string, s model.Summary) []string {
		return []string{name, strconv.Itoa(s.Critical), strconv.Itoa(s.Warning), strconv.Itoa(s.Passed)}
	}
	total := row("**Total**", report.Summary)
	for i := 1; i < len(total); i++ {
		total[i] = "**" + total[i] + "**"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Component", "🔴 Critical", "🟡 Warning", "🟢 Passed"},
		Rows: [][]string{
			row("Site architecture", report.Architecture.Severity),
			row("Technical health", report.Technical.Severity),
			row("Content", report.Content.Severity),
			row("Media", report.Media.Severity),
			total,
		},
	})
	md.PlainText("")

	if report.Summary.Critical+report.Summary.Warning+report.Summary.Passed > 0 {
		w.writePieChart(md, report.Summary)
	}

	w.writeAlert(md, report.Summary)
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Severity Distribution"),
		piechart.WithShowData(true),
	)

	if s.Critical > 0 {
		chart.LabelAndIntValue("Critical", uint64(s.Critical))
	}
	if s.Warning > 0 {
		chart.LabelAndIntValue("Warning", uint64(s.Warning))
	}
	if s.Passed > 0 {
		chart.LabelAndIntValue("Passed", uint64(s.Passed))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert matching the worst severity.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, s model.Summary) {
	switch s.Level() {
	case model.SeverityCritical:
		md.Cautionf("%d critical finding(s) block indexing or break pages for visitors.", s.Critical)
	case model.SeverityWarning:
		md.Warningf("%d warning(s) may hurt rankings.", s.Warning)
	default:
		md.Tip("No SEO problems detected.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeArchitecture(md *markdown.Markdown, a *model.SiteArchitectureData) {
	md.H2("Site Architecture")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Average depth", strconv.FormatFloat(a.Summary.AvgDepth, 'f', 1, 64)},
			{"Max depth", strconv.Itoa(a.Summary.MaxDepth)},
			{"Orphan pages", strconv.Itoa(a.Summary.OrphanCount)},
			{"Deep pages", strconv.Itoa(a.Summary.DeepPageCount)},
		},
	})
	md.PlainText("")

	if len(a.DepthDistribution) > 0 {
		rows := make([][]string, 0, len(a.DepthDistribution))
		for _, b := range a.DepthDistribution {
			rows = append(rows, []string{strconv.Itoa(b.Depth), strconv.Itoa(b.Count)})
		}
		md.PlainText("### Depth Distribution")
		md.PlainText("")
		md.Table(markdown.TableSet{Header: []string{"Depth", "Pages"}, Rows: rows})
		md.PlainText("")
	}

	if len(a.OrphanPages) > 0 {
		md.PlainText("### Orphan Pages")
		md.PlainText("")
		items := make([]string, 0, min(len(a.OrphanPages), maxListRows))
		for _, p := range a.OrphanPages[:min(len(a.OrphanPages), maxListRows)] {
			items = append(items, "`"+p.URL+"`")
		}
		md.BulletList(items...)
		w.writeMore(md, len(a.OrphanPages))
	}

	if len(a.MostLinked) > 0 {
		rows := make([][]string, 0, len(a.MostLinked))
		for _, s := range a.MostLinked {
			rows = append(rows, []string{
				normalize.DisplayURL(s.URL, 60), strconv.Itoa(s.Inbound), strconv.Itoa(s.Outbound),
			})
		}
		md.PlainText("### Most Linked Pages")
		md.PlainText("")
		md.Table(markdown.TableSet{Header: []string{"URL", "Inbound", "Outbound"}, Rows: rows})
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeTechnical(md *markdown.Markdown, t *model.TechnicalHealthData) {
	md.H2("Technical Health")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"2xx / 3xx / 4xx / 5xx", fmt.Sprintf("%d / %d / %d / %d",
				t.Summary.Status2xx, t.Summary.Status3xx, t.Summary.Status4xx, t.Summary.Status5xx)},
			{"Redirects", strconv.Itoa(t.Summary.Redirects)},
			{"Broken links", strconv.Itoa(t.Summary.BrokenLinks)},
			{"Slow pages", strconv.Itoa(t.Summary.SlowPages)},
			{"Large pages", strconv.Itoa(t.Summary.LargePages)},
			{"Non-indexable", strconv.Itoa(t.Summary.NonIndexable)},
			{"Average load time", fmt.Sprintf("%d ms", t.Summary.AvgLoadTimeMs)},
		},
	})
	md.PlainText("")

	if len(t.BrokenLinks) > 0 {
		n := min(len(t.BrokenLinks), maxListRows)
		rows := make([][]string, 0, n)
		for _, b := range t.BrokenLinks[:n] {
			rows = append(rows, []string{
				normalize.DisplayURL(b.Source.URL, 50),
				normalize.DisplayURL(b.DestinationURL, 50),
				strconv.Itoa(b.Status),
			})
		}
		md.PlainText("### Broken Links")
		md.PlainText("")
		md.Table(markdown.TableSet{Header: []string{"Source", "Destination", "Status"}, Rows: rows})
		w.writeMore(md, len(t.BrokenLinks))
	}

	if len(t.NonIndexable) > 0 {
		n := min(len(t.NonIndexable), maxListRows)
		rows := make([][]string, 0, n)
		for _, p := range t.NonIndexable[:n] {
			rows = append(rows, []string{normalize.DisplayURL(p.URL, 60), string(p.Reason)})
		}
		md.PlainText("### Non-indexable Pages")
		md.PlainText("")
		md.Table(markdown.TableSet{Header: []string{"URL", "Reason"}, Rows: rows})
		w.writeMore(md, len(t.NonIndexable))
	}
}

func (w *MarkdownWriter) writeContent(md *markdown.Markdown, c *model.ContentIntelligenceData) {
	md.H2("Content")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Average word count", strconv.Itoa(c.Summary.AvgWordCount)},
			{"Thin pages", fmt.Sprintf("%d (%d critical)", c.Summary.ThinContent, c.Summary.CriticalThinContent)},
			{"Missing titles", strconv.Itoa(c.Summary.MissingTitles)},
			{"Missing descriptions", strconv.Itoa(c.Summary.MissingDescriptions)},
			{"Duplicate title groups", strconv.Itoa(c.Summary.DuplicateTitleGroups)},
			{"Duplicate description groups", strconv.Itoa(c.Summary.DuplicateDescriptionGroups)},
			{"Similar content groups", strconv.Itoa(c.Summary.SimilarGroups)},
		},
	})
	md.PlainText("")

	if len(c.DuplicateTitles) > 0 {
		md.PlainText("### Duplicate Titles")
		md.PlainText("")
		for _, g := range c.DuplicateTitles {
			md.PlainTextf("**%s** (%d pages)", normalize.Truncate(g.Value, 80), len(g.Pages))
			md.PlainText("")
			md.BulletList(pageURLs(g.Pages)...)
		}
		md.PlainText("")
	}

	if len(c.SimilarContent) > 0 {
		n := min(len(c.SimilarContent), maxListRows)
		rows := make([][]string, 0, n)
		for _, g := range c.SimilarContent[:n] {
			rows = append(rows, []string{
				strconv.Itoa(g.Similarity) + "%",
				strconv.Itoa(len(g.Pages)),
				normalize.Truncate(strings.Join(g.SharedKeywords, ", "), 60),
			})
		}
		md.PlainText("### Similar Content")
		md.PlainText("")
		md.Table(markdown.TableSet{Header: []string{"Similarity", "Pages", "Shared keywords"}, Rows: rows})
		w.writeMore(md, len(c.SimilarContent))
	}
}

func (w *MarkdownWriter) writeMedia(md *markdown.Markdown, m *model.MediaAnalysisData) {
	md.H2("Media")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Images", strconv.Itoa(m.Summary.TotalImages)},
			{"Missing alt text", strconv.Itoa(m.Summary.MissingAlt)},
			{"Alt coverage", strconv.Itoa(m.Summary.AltCoveragePercent) + "%"},
			{"Pages with missing alt", strconv.Itoa(m.Summary.PagesWithMissingAlt)},
		},
	})
	md.PlainText("")

	if len(m.ImageHeavyPages) > 0 {
		rows := make([][]string, 0, len(m.ImageHeavyPages))
		for _, p := range m.ImageHeavyPages {
			rows = append(rows, []string{
				normalize.DisplayURL(p.URL, 60),
				strconv.Itoa(p.ImageCount),
				strconv.Itoa(p.AltCoveragePercent) + "%",
			})
		}
		md.PlainText("### Image-heavy Pages")
		md.PlainText("")
		md.Table(markdown.TableSet{Header: []string{"URL", "Images", "Alt coverage"}, Rows: rows})
		md.PlainText("")
	}
}

// writeMore notes how many rows were left out of a capped list.
func (w *MarkdownWriter) writeMore(md *markdown.Markdown, total int) {
	if total > maxListRows {
		md.PlainTextf("*... and %d more*", total-maxListRows)
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [seoscan](https://github.com/nao1215/seoscan)*")
}

// WriteComparison outputs the comparison as a Markdown table.
func (w *MarkdownWriter) WriteComparison(c *model.Comparison) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Scan Comparison: " + c.ProjectID)
	md.PlainText("")

	rows := [][]string{{
		"Date",
		c.Scan1.Date.Format("2006-01-02 15:04"),
		c.Scan2.Date.Format("2006-01-02 15:04"),
		"-",
	}}
	for _, r := range comparisonRows(c) {
		rows = append(rows, []string{r.label, r.before, r.after, r.delta})
	}
	md.Table(markdown.TableSet{
		Header: []string{
			"Metric",
			fmt.Sprintf("Scan %d (%s)", c.Scan1.ID, c.Scan1.Source),
			fmt.Sprintf("Scan %d (%s)", c.Scan2.ID, c.Scan2.Source),
			"Change",
		},
		Rows: rows,
	})
	md.PlainText("")

	md.H2("Changes")
	md.PlainText("")
	md.BulletList(
		fmt.Sprintf("New issues: %d", c.Changes.NewIssues),
		fmt.Sprintf("Fixed issues: %d", c.Changes.FixedIssues),
		fmt.Sprintf("New pages: %d", c.Changes.NewPages),
		fmt.Sprintf("Removed pages: %d", c.Changes.RemovedPages),
	)
	md.PlainText("")

	switch {
	case c.Changes.NewIssues > c.Changes.FixedIssues:
		md.Warningf("%d more issue(s) than in scan %d.", c.Changes.NewIssues, c.Scan1.ID)
	case c.Changes.FixedIssues > c.Changes.NewIssues:
		md.Tip(fmt.Sprintf("%d issue(s) fixed since scan %d.", c.Changes.FixedIssues, c.Scan1.ID))
	default:
		md.Note("Issue count unchanged.")
	}

	return len(md.String()), md.Build()
}

func pageURLs(pages []model.PageRef) []string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, "`"+p.URL+"`")
	}
	return out
}
