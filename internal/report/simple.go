package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/normalize"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with nothing to list are shown.
	showEmpty bool

	// verbose lists every entry instead of the first maxListRows.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.AuditReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeArchitecture(&sb, &report.Architecture)
	w.writeTechnical(&sb, &report.Technical)
	w.writeContent(&sb, &report.Content)
	w.writeMedia(&sb, &report.Media)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with scan information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.AuditReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        SEO AUDIT REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Project:        %s\n", report.ProjectID)
	fmt.Fprintf(sb, "Scan:           %d\n", report.ScanID)
	fmt.Fprintf(sb, "Generated:      %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Pages:          %d\n", report.Architecture.Summary.TotalPages)
	fmt.Fprintf(sb, "Avg SEO score:  %.1f\n", report.AvgSeoScore)
	sb.WriteString("\n")
}

func (w *SimpleWriter) section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeSummary writes the severity summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.AuditReport) {
	w.section(sb, "SEVERITY SUMMARY")

	fmt.Fprintf(sb, "  %-20s  %8s  %8s  %8s\n", "Component", "CRITICAL", "WARNING", "PASSED")
	line := func(name string, s model.Summary) {
		fmt.Fprintf(sb, "  %-20s  %8d  %8d  %8d\n", name, s.Critical, s.Warning, s.Passed)
	}
	line("Site architecture", report.Architecture.Severity)
	line("Technical health", report.Technical.Severity)
	line("Content", report.Content.Severity)
	line("Media", report.Media.Severity)
	sb.WriteString("  " + strings.Repeat("-", 50) + "\n")
	line("Total", report.Summary)
	sb.WriteString("\n")

	fmt.Fprintf(sb, "  Overall: %s\n\n", strings.ToUpper(report.Summary.Level().String()))
}

func (w *SimpleWriter) writeArchitecture(sb *strings.Builder, a *model.SiteArchitectureData) {
	w.section(sb, "SITE ARCHITECTURE")

	fmt.Fprintf(sb, "  Average depth:  %.1f\n", a.Summary.AvgDepth)
	fmt.Fprintf(sb, "  Max depth:      %d\n", a.Summary.MaxDepth)
	fmt.Fprintf(sb, "  Orphan pages:   %d\n", a.Summary.OrphanCount)
	fmt.Fprintf(sb, "  Deep pages:     %d\n", a.Summary.DeepPageCount)
	sb.WriteString("\n")

	refs := make([]string, 0, len(a.OrphanPages))
	for _, p := range a.OrphanPages {
		refs = append(refs, p.URL)
	}
	w.writeList(sb, "Orphan pages", "[!!!]", refs)

	deep := make([]string, 0, len(a.DeepPages))
	for _, p := range a.DeepPages {
		deep = append(deep, fmt.Sprintf("%s (depth %d)", p.URL, p.Depth))
	}
	w.writeList(sb, "Deep pages", "[!]", deep)
}

func (w *SimpleWriter) writeTechnical(sb *strings.Builder, t *model.TechnicalHealthData) {
	w.section(sb, "TECHNICAL HEALTH")

	fmt.Fprintf(sb, "  2xx: %d  3xx: %d  4xx: %d  5xx: %d  other: %d\n",
		t.Summary.Status2xx, t.Summary.Status3xx, t.Summary.Status4xx, t.Summary.Status5xx, t.Summary.StatusOther)
	fmt.Fprintf(sb, "  Redirects:      %d\n", t.Summary.Redirects)
	fmt.Fprintf(sb, "  Broken links:   %d\n", t.Summary.BrokenLinks)
	fmt.Fprintf(sb, "  Slow pages:     %d\n", t.Summary.SlowPages)
	fmt.Fprintf(sb, "  Large pages:    %d\n", t.Summary.LargePages)
	fmt.Fprintf(sb, "  Non-indexable:  %d\n", t.Summary.NonIndexable)
	sb.WriteString("\n")

	broken := make([]string, 0, len(t.BrokenLinks))
	for _, b := range t.BrokenLinks {
		broken = append(broken, fmt.Sprintf("%s -> %s (%d)",
			normalize.DisplayURL(b.Source.URL, 40), normalize.DisplayURL(b.DestinationURL, 40), b.Status))
	}
	w.writeList(sb, "Broken links", "[!!]", broken)

	nonIndexable := make([]string, 0, len(t.NonIndexable))
	for _, p := range t.NonIndexable {
		nonIndexable = append(nonIndexable, fmt.Sprintf("%s (%s)", p.URL, p.Reason))
	}
	w.writeList(sb, "Non-indexable pages", "[!]", nonIndexable)
}

func (w *SimpleWriter) writeContent(sb *strings.Builder, c *model.ContentIntelligenceData) {
	w.section(sb, "CONTENT")

	fmt.Fprintf(sb, "  Average words:        %d\n", c.Summary.AvgWordCount)
	fmt.Fprintf(sb, "  Thin pages:           %d (%d critical)\n", c.Summary.ThinContent, c.Summary.CriticalThinContent)
	fmt.Fprintf(sb, "  Missing titles:       %d\n", c.Summary.MissingTitles)
	fmt.Fprintf(sb, "  Missing descriptions: %d\n", c.Summary.MissingDescriptions)
	fmt.Fprintf(sb, "  Duplicate titles:     %d group(s)\n", c.Summary.DuplicateTitleGroups)
	fmt.Fprintf(sb, "  Duplicate descr.:     %d group(s)\n", c.Summary.DuplicateDescriptionGroups)
	fmt.Fprintf(sb, "  Similar content:      %d group(s)\n", c.Summary.SimilarGroups)
	sb.WriteString("\n")

	similar := make([]string, 0, len(c.SimilarContent))
	for _, g := range c.SimilarContent {
		similar = append(similar, fmt.Sprintf("%d%% similar: %d pages sharing %s",
			g.Similarity, len(g.Pages), normalize.Truncate(strings.Join(g.SharedKeywords, ", "), 50)))
	}
	w.writeList(sb, "Similar content", "[!]", similar)
}

func (w *SimpleWriter) writeMedia(sb *strings.Builder, m *model.MediaAnalysisData) {
	w.section(sb, "MEDIA")

	fmt.Fprintf(sb, "  Images:          %d\n", m.Summary.TotalImages)
	fmt.Fprintf(sb, "  Missing alt:     %d\n", m.Summary.MissingAlt)
	fmt.Fprintf(sb, "  Alt coverage:    %d%%\n", m.Summary.AltCoveragePercent)
	sb.WriteString("\n")

	heavy := make([]string, 0, len(m.ImageHeavyPages))
	for _, p := range m.ImageHeavyPages {
		heavy = append(heavy, fmt.Sprintf("%s (%d images, %d%% alt)", p.URL, p.ImageCount, p.AltCoveragePercent))
	}
	w.writeList(sb, "Image-heavy pages", "[i]", heavy)
}

// writeList writes a titled list, capped unless verbose.
func (w *SimpleWriter) writeList(sb *strings.Builder, title, marker string, items []string) {
	if len(items) == 0 && !w.showEmpty {
		return
	}
	fmt.Fprintf(sb, "  %s:\n", title)
	if len(items) == 0 {
		sb.WriteString("    none\n\n")
		return
	}
	shown := items
	if !w.verbose && len(shown) > maxListRows {
		shown = shown[:maxListRows]
	}
	for _, item := range shown {
		fmt.Fprintf(sb, "    %s %s\n", marker, item)
	}
	if len(shown) < len(items) {
		fmt.Fprintf(sb, "    ... and %d more (use --verbose)\n", len(items)-len(shown))
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by seoscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// WriteComparison outputs the comparison in human-readable text format.
func (w *SimpleWriter) WriteComparison(c *model.Comparison) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Scan Comparison: %s\n", c.ProjectID)
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Scan 1: #%-6d %s  (%s)\n", c.Scan1.ID, c.Scan1.Date.Format(dateFormat), c.Scan1.Source)
	fmt.Fprintf(&sb, "Scan 2: #%-6d %s  (%s)\n", c.Scan2.ID, c.Scan2.Date.Format(dateFormat), c.Scan2.Source)

	sb.WriteString("\nMetrics:\n")
	fmt.Fprintf(&sb, "  %-12s  %-10s  %-10s  %-10s\n", "Metric", "Scan 1", "Scan 2", "Change")
	sb.WriteString("  " + strings.Repeat("-", 45) + "\n")
	for _, r := range comparisonRows(c) {
		fmt.Fprintf(&sb, "  %-12s  %-10s  %-10s  %-10s\n", r.label, r.before, r.after, r.delta)
	}

	sb.WriteString("\nChanges:\n")
	fmt.Fprintf(&sb, "  [+] New issues:    %d\n", c.Changes.NewIssues)
	fmt.Fprintf(&sb, "  [-] Fixed issues:  %d\n", c.Changes.FixedIssues)
	fmt.Fprintf(&sb, "  [+] New pages:     %d\n", c.Changes.NewPages)
	fmt.Fprintf(&sb, "  [-] Removed pages: %d\n", c.Changes.RemovedPages)

	return w.output.Write([]byte(sb.String()))
}
