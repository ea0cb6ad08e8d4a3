package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/nao1215/seoscan/internal/model"
	"gopkg.in/yaml.v3"
)

// Format is the serialization of a crawl export.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath guesses the format from a file extension. Anything that
// is not .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ProjectRecord identifies the project of an export.
type ProjectRecord struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// ScanRecord describes the scan of an export.
type ScanRecord struct {
	CreatedAt *time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// PageRecord is a page as written by the crawler. Pointer fields are
// optional: when nil they are extracted from HTMLFile, or defaulted.
type PageRecord struct {
	ID                int64           `json:"id" yaml:"id"`
	URL               string          `json:"url" yaml:"url"`
	Title             *string         `json:"title" yaml:"title"`
	HTTPStatus        int             `json:"http_status" yaml:"http_status"`
	WordCount         *int            `json:"word_count" yaml:"word_count"`
	Depth             int             `json:"depth" yaml:"depth"`
	IsIndexable       *bool           `json:"is_indexable" yaml:"is_indexable"`
	HasRobotsNoindex  *bool           `json:"has_robots_noindex" yaml:"has_robots_noindex"`
	HasRobotsNofollow *bool           `json:"has_robots_nofollow" yaml:"has_robots_nofollow"`
	CanonicalURL      *string         `json:"canonical_url" yaml:"canonical_url"`
	RedirectURL       string          `json:"redirect_url" yaml:"redirect_url"`
	LoadTimeMs        int64           `json:"load_time_ms" yaml:"load_time_ms"`
	FirstByteTimeMs   int64           `json:"first_byte_time_ms" yaml:"first_byte_time_ms"`
	SizeBytes         int64           `json:"size_bytes" yaml:"size_bytes"`
	MetaDescription   *string         `json:"meta_description" yaml:"meta_description"`
	Images            []model.Image   `json:"images" yaml:"images"`
	Keywords          []model.Keyword `json:"keywords" yaml:"keywords"`

	// HTMLFile is the saved body of the page, relative to the export.
	HTMLFile string `json:"html_file,omitempty" yaml:"html_file,omitempty"`
}

// Export is a decoded crawl export.
type Export struct {
	Project  ProjectRecord       `json:"project" yaml:"project"`
	Scan     ScanRecord          `json:"scan" yaml:"scan"`
	Pages    []PageRecord        `json:"pages" yaml:"pages"`
	Links    []model.Link        `json:"links" yaml:"links"`
	Issues   []model.Issue       `json:"issues" yaml:"issues"`
	Snapshot *model.ScanSnapshot `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
}

// Decode reads an export in the given format. Malformed documents are
// internal errors: the input shape itself is wrong.
func Decode(r io.Reader, format Format) (*Export, error) {
	var exp Export
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&exp); err != nil && err != io.EOF {
			return nil, model.Internal("ingest.decode", fmt.Errorf("invalid YAML export: %w", err))
		}
	case FormatJSON, "":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&exp); err != nil {
			return nil, model.Internal("ingest.decode", fmt.Errorf("invalid JSON export: %w", err))
		}
	default:
		return nil, model.Validation("ingest.decode", "unsupported format %q", format)
	}
	return &exp, nil
}
