// Package report renders audit reports and scan comparisons.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - MarkdownWriter: GitHub-flavored Markdown with tables, alerts and a
//     mermaid severity chart
//   - JSONWriter: Structured JSON output for tool integration
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output. The CSV exporter
// flattens single report datasets (orphans, broken links, ...) for
// spreadsheets.
package report
