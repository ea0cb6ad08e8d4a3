package model

import "strings"

// Page is a single crawled page of a scan.
// Page.ID is unique within a scan. Depth is the number of internal link
// hops from a root page, and root pages have depth 0.
type Page struct {
	// ID identifies the page within its scan.
	ID int64 `json:"id" yaml:"id"`

	// URL is the absolute URL the crawler fetched.
	URL string `json:"url" yaml:"url"`

	// Title is the content of the <title> element. Empty when missing.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// HTTPStatus is the final HTTP status code of the fetch.
	HTTPStatus int `json:"http_status" yaml:"http_status"`

	// WordCount is the number of words in the visible text.
	WordCount int `json:"word_count" yaml:"word_count"`

	// Depth is the crawl depth, 0 for root pages.
	Depth int `json:"depth" yaml:"depth"`

	// IsIndexable is false when the crawler decided the page cannot be indexed.
	IsIndexable bool `json:"is_indexable" yaml:"is_indexable"`

	// HasRobotsNoindex reports a robots noindex directive.
	HasRobotsNoindex bool `json:"has_robots_noindex" yaml:"has_robots_noindex"`

	// HasRobotsNofollow reports a robots nofollow directive.
	HasRobotsNofollow bool `json:"has_robots_nofollow" yaml:"has_robots_nofollow"`

	// CanonicalURL is the declared canonical URL, empty when absent.
	CanonicalURL string `json:"canonical_url,omitempty" yaml:"canonical_url,omitempty"`

	// RedirectURL is the redirect target, empty when the page does not redirect.
	RedirectURL string `json:"redirect_url,omitempty" yaml:"redirect_url,omitempty"`

	// LoadTimeMs is the full load time in milliseconds.
	LoadTimeMs int64 `json:"load_time_ms" yaml:"load_time_ms"`

	// FirstByteTimeMs is the time to first byte in milliseconds.
	FirstByteTimeMs int64 `json:"first_byte_time_ms" yaml:"first_byte_time_ms"`

	// SizeBytes is the response body size.
	SizeBytes int64 `json:"size_bytes" yaml:"size_bytes"`

	// MetaDescription is the content of <meta name="description">.
	MetaDescription string `json:"meta_description,omitempty" yaml:"meta_description,omitempty"`

	// Images are the <img> elements found on the page.
	Images []Image `json:"images,omitempty" yaml:"images,omitempty"`

	// Keywords are the most frequent words of the page with their counts.
	Keywords []Keyword `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// Image is an image referenced by a page.
// Alt is nil when the alt attribute is absent.
type Image struct {
	Src string  `json:"src" yaml:"src"`
	Alt *string `json:"alt" yaml:"alt"`
}

// HasAlt reports whether the image carries non-blank alt text.
func (i Image) HasAlt() bool {
	return i.Alt != nil && strings.TrimSpace(*i.Alt) != ""
}

// Keyword is a word and its number of occurrences on a page.
type Keyword struct {
	Word  string `json:"word" yaml:"word"`
	Count int    `json:"count" yaml:"count"`
}

// Link is a hyperlink found on a page.
// A nil DestinationPageID means the link is external (or its target was
// not crawled); such a link can never count as an inbound internal link.
type Link struct {
	SourcePageID      int64  `json:"source_page_id" yaml:"source_page_id"`
	DestinationPageID *int64 `json:"destination_page_id" yaml:"destination_page_id"`

	// DestinationURL is the href as resolved by the crawler. Informational.
	DestinationURL string `json:"destination_url,omitempty" yaml:"destination_url,omitempty"`
	AnchorText     string `json:"anchor_text,omitempty" yaml:"anchor_text,omitempty"`

	// HTTPStatus is the status the crawler recorded for the link target.
	HTTPStatus int `json:"http_status" yaml:"http_status"`
}

// IsInternal reports whether the link points at a crawled page.
func (l Link) IsInternal() bool {
	return l.DestinationPageID != nil
}

// IssueSeverity is the severity of a crawler-reported issue.
type IssueSeverity string

// Issue severities reported by the crawler.
const (
	IssueCritical IssueSeverity = "critical"
	IssueHigh     IssueSeverity = "high"
	IssueMedium   IssueSeverity = "medium"
	IssueLow      IssueSeverity = "low"
)

// Valid reports whether s is a known issue severity.
func (s IssueSeverity) Valid() bool {
	switch s {
	case IssueCritical, IssueHigh, IssueMedium, IssueLow:
		return true
	default:
		return false
	}
}

// Issue is a problem the crawler attached to a page.
type Issue struct {
	PageID   int64         `json:"page_id" yaml:"page_id"`
	Severity IssueSeverity `json:"severity" yaml:"severity"`
	Type     string        `json:"type,omitempty" yaml:"type,omitempty"`
	Message  string        `json:"message,omitempty" yaml:"message,omitempty"`
}

// IssueCounts holds issue counts per severity.
type IssueCounts struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// Add counts one issue of the given severity.
func (c *IssueCounts) Add(s IssueSeverity) {
	c.Total++
	switch s {
	case IssueCritical:
		c.Critical++
	case IssueHigh:
		c.High++
	case IssueMedium:
		c.Medium++
	case IssueLow:
		c.Low++
	}
}

// Crawl is the immutable input of one analysis: everything the crawler
// produced for a single scan.
type Crawl struct {
	ProjectID string  `json:"project_id"`
	ScanID    int64   `json:"scan_id"`
	Pages     []Page  `json:"pages"`
	Links     []Link  `json:"links"`
	Issues    []Issue `json:"issues"`
}

// PageRef is the compact page reference used in report lists.
type PageRef struct {
	ID    int64  `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// Ref returns the compact reference of p.
func (p Page) Ref() PageRef {
	return PageRef{ID: p.ID, URL: p.URL, Title: p.Title}
}
