package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/nao1215/seoscan/internal/model"
)

// utf8BOM lets spreadsheet applications detect UTF-8.
const utf8BOM = "\ufeff"

// Row is one record of a CSV export, keyed by column key.
type Row map[string]any

// Column describes one CSV column.
type Column struct {
	// Key selects the value from each Row.
	Key string

	// Header is the column title written in the first line.
	Header string

	// Format converts the value to text. When nil, FormatValue is used.
	Format func(v any) string
}

// EncodeCSV renders rows as CSV: a BOM, the header line, then one line
// per row. Lines are joined by "\n" without a trailing newline.
func EncodeCSV(rows []Row, columns []Column) string {
	lines := make([]string, 0, len(rows)+1)

	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = EscapeCSV(c.Header)
	}
	lines = append(lines, strings.Join(headers, ","))

	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			format := c.Format
			if format == nil {
				format = FormatValue
			}
			cells[i] = EscapeCSV(format(row[c.Key]))
		}
		lines = append(lines, strings.Join(cells, ","))
	}

	return utf8BOM + strings.Join(lines, "\n")
}

// WriteCSV writes EncodeCSV(rows, columns) to w.
func WriteCSV(w io.Writer, rows []Row, columns []Column) (int, error) {
	return io.WriteString(w, EncodeCSV(rows, columns))
}

// EscapeCSV quotes s when it contains a comma, a double quote or a line
// break, doubling the quotes inside.
func EscapeCSV(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// FormatValue is the default cell formatter.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *string:
		if x == nil {
			return ""
		}
		return *x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case *int64:
		if x == nil {
			return ""
		}
		return strconv.FormatInt(*x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []string:
		return strings.Join(x, "; ")
	default:
		return fmt.Sprint(x)
	}
}

// Dataset names a CSV export.
type Dataset string

// Export datasets.
const (
	DatasetPages          Dataset = "pages"
	DatasetOrphans        Dataset = "orphans"
	DatasetBrokenLinks    Dataset = "broken-links"
	DatasetRedirects      Dataset = "redirects"
	DatasetThinContent    Dataset = "thin-content"
	DatasetMissingAlt     Dataset = "missing-alt"
	DatasetSimilarContent Dataset = "similar-content"
)

// datasetColumns holds the columns of every dataset.
var datasetColumns = map[Dataset][]Column{
	DatasetPages: {
		{Key: "url", Header: "URL"},
		{Key: "title", Header: "Title"},
		{Key: "status", Header: "Status"},
		{Key: "depth", Header: "Depth"},
		{Key: "word_count", Header: "Word Count"},
		{Key: "indexable", Header: "Indexable", Format: yesNo},
		{Key: "load_time_ms", Header: "Load Time (ms)"},
		{Key: "size_bytes", Header: "Size (bytes)"},
		{Key: "inbound", Header: "Inbound Links"},
		{Key: "outbound", Header: "Outbound Links"},
	},
	DatasetOrphans: {
		{Key: "url", Header: "URL"},
		{Key: "title", Header: "Title"},
	},
	DatasetBrokenLinks: {
		{Key: "source", Header: "Source URL"},
		{Key: "destination", Header: "Destination URL"},
		{Key: "anchor", Header: "Anchor Text"},
		{Key: "status", Header: "Status"},
	},
	DatasetRedirects: {
		{Key: "url", Header: "URL"},
		{Key: "status", Header: "Status"},
		{Key: "target", Header: "Redirect Target"},
	},
	DatasetThinContent: {
		{Key: "url", Header: "URL"},
		{Key: "title", Header: "Title"},
		{Key: "word_count", Header: "Word Count"},
		{Key: "critical", Header: "Critical", Format: yesNo},
	},
	DatasetMissingAlt: {
		{Key: "page", Header: "Page URL"},
		{Key: "src", Header: "Image URL"},
	},
	DatasetSimilarContent: {
		{Key: "group", Header: "Group"},
		{Key: "similarity", Header: "Similarity (%)"},
		{Key: "url", Header: "URL"},
		{Key: "keywords", Header: "Shared Keywords"},
	},
}

// Datasets returns every dataset name in sorted order.
func Datasets() []Dataset {
	out := make([]Dataset, 0, len(datasetColumns))
	for d := range datasetColumns {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseDataset validates a dataset name. A ".csv" suffix is accepted.
func ParseDataset(name string) (Dataset, error) {
	d := Dataset(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".csv"))
	if _, ok := datasetColumns[d]; !ok {
		return "", model.Validation("report.dataset", "unknown dataset %q", name)
	}
	return d, nil
}

// ExportCSV writes one dataset of an analyzed scan as CSV. The pages
// dataset reads the crawl; every other dataset reads the report only.
func ExportCSV(w io.Writer, d Dataset, crawl *model.Crawl, report *model.AuditReport) (int, error) {
	columns, ok := datasetColumns[d]
	if !ok {
		return 0, model.Validation("report.export", "unknown dataset %q", d)
	}
	if report == nil {
		return 0, model.Internal("report.export", fmt.Errorf("no report for dataset %s", d))
	}
	return WriteCSV(w, datasetRows(d, crawl, report), columns)
}

func datasetRows(d Dataset, crawl *model.Crawl, r *model.AuditReport) []Row {
	var rows []Row
	switch d {
	case DatasetPages:
		if crawl == nil {
			return nil
		}
		stats := make(map[int64]model.LinkStat, len(r.Architecture.LinkStats))
		for _, s := range r.Architecture.LinkStats {
			stats[s.ID] = s
		}
		for _, p := range crawl.Pages {
			rows = append(rows, Row{
				"url": p.URL, "title": p.Title, "status": p.HTTPStatus, "depth": p.Depth,
				"word_count": p.WordCount, "indexable": p.IsIndexable,
				"load_time_ms": p.LoadTimeMs, "size_bytes": p.SizeBytes,
				"inbound": stats[p.ID].Inbound, "outbound": stats[p.ID].Outbound,
			})
		}
	case DatasetOrphans:
		for _, p := range r.Architecture.OrphanPages {
			rows = append(rows, Row{"url": p.URL, "title": p.Title})
		}
	case DatasetBrokenLinks:
		for _, b := range r.Technical.BrokenLinks {
			rows = append(rows, Row{
				"source": b.Source.URL, "destination": b.DestinationURL,
				"anchor": b.AnchorText, "status": b.Status,
			})
		}
	case DatasetRedirects:
		for _, p := range r.Technical.Redirects {
			rows = append(rows, Row{"url": p.URL, "status": p.Status, "target": p.Target})
		}
	case DatasetThinContent:
		for _, p := range r.Content.ThinContent {
			rows = append(rows, Row{"url": p.URL, "title": p.Title, "word_count": p.WordCount, "critical": p.Critical})
		}
	case DatasetMissingAlt:
		for _, m := range r.Media.MissingAlt {
			rows = append(rows, Row{"page": m.Page.URL, "src": m.Src})
		}
	case DatasetSimilarContent:
		for i, g := range r.Content.SimilarContent {
			for _, p := range g.Pages {
				rows = append(rows, Row{
					"group": i + 1, "similarity": g.Similarity, "url": p.URL, "keywords": g.SharedKeywords,
				})
			}
		}
	}
	return rows
}

func yesNo(v any) string {
	if b, ok := v.(bool); ok && b {
		return "yes"
	}
	return "no"
}
