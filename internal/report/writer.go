package report

import (
	"io"
	"strconv"

	"github.com/nao1215/seoscan/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs an audit report.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.AuditReport) (int, error)

	// WriteComparison outputs the comparison of two scans.
	WriteComparison(c *model.Comparison) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.AuditReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteComparison outputs the comparison to all configured Writers.
func (m *MultiWriter) WriteComparison(c *model.Comparison) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteComparison(c)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// maxListRows caps the rows rendered per list in text and Markdown output.
const maxListRows = 20

// dateFormat is the timestamp layout of human-readable output.
const dateFormat = "2006-01-02 15:04:05"

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}

// formatDeltaFloat formats a score delta with one decimal.
func formatDeltaFloat(delta float64) string {
	s := strconv.FormatFloat(delta, 'f', 1, 64)
	if delta > 0 {
		return "+" + s
	}
	if s == "-0.0" {
		return "0.0"
	}
	return s
}

// comparisonRow is one metric line of a comparison table.
type comparisonRow struct {
	label         string
	before, after string
	delta         string
}

func comparisonRows(c *model.Comparison) []comparisonRow {
	m1, m2 := c.Scan1.Metrics, c.Scan2.Metrics
	intRow := func(label string, a, b int) comparisonRow {
		return comparisonRow{label, strconv.Itoa(a), strconv.Itoa(b), formatDelta(b - a)}
	}
	return []comparisonRow{
		intRow("Pages", m1.TotalPages, m2.TotalPages),
		intRow("Issues", m1.TotalIssues, m2.TotalIssues),
		intRow("Critical", m1.CriticalIssues, m2.CriticalIssues),
		intRow("Warning", m1.WarningIssues, m2.WarningIssues),
		intRow("Broken links", m1.BrokenLinks, m2.BrokenLinks),
		{
			"Avg score",
			strconv.FormatFloat(m1.AvgScore, 'f', 1, 64),
			strconv.FormatFloat(m2.AvgScore, 'f', 1, 64),
			formatDeltaFloat(m2.AvgScore - m1.AvgScore),
		},
	}
}
