package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/normalize"
)

// ValidationError lists every problem found in an export.
type ValidationError struct {
	Problems []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid crawl export: %s", strings.Join(e.Problems, "; "))
}

// Unwrap makes errors.Is(err, model.ErrValidation) hold.
func (e *ValidationError) Unwrap() error {
	return model.ErrValidation
}

func (e *ValidationError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// validateOptions configures Validate.
type validateOptions struct {
	htmlRoot fs.FS
	now      func() time.Time
}

// Option configures Validate.
type Option func(*validateOptions)

// WithHTMLRoot sets the file system html_file paths are read from.
// Without it, records referencing HTML files are rejected.
func WithHTMLRoot(fsys fs.FS) Option {
	return func(o *validateOptions) {
		o.htmlRoot = fsys
	}
}

// WithClock sets the clock used when the export has no scan date.
func WithClock(now func() time.Time) Option {
	return func(o *validateOptions) {
		o.now = now
	}
}

// Validate converts an export to a crawl.
//
// It rejects pages with an empty URL, a duplicate id or a negative depth,
// issues with an unknown severity or page, and links whose source page is
// unknown. All problems are reported together in a *ValidationError.
// Negative timings and sizes become 0, strings are trimmed, and a link
// destination id that matches no page is treated as external.
//
// Anchors extracted from a page's html_file become links when the export
// lists no links from that page. They point at the page with the same
// normalized URL, or are external when no page matches.
func Validate(exp *Export, opts ...Option) (*model.Crawl, error) {
	o := &validateOptions{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	if exp == nil {
		return nil, model.Internal("ingest.validate", errors.New("nil export"))
	}

	verr := &ValidationError{}
	projectID := strings.TrimSpace(exp.Project.ID)
	if projectID == "" {
		verr.add("project.id is required")
	}

	crawl := &model.Crawl{
		ProjectID: projectID,
		Pages:     make([]model.Page, 0, len(exp.Pages)),
		Links:     make([]model.Link, 0, len(exp.Links)),
		Issues:    make([]model.Issue, 0, len(exp.Issues)),
	}

	ids := make(map[int64]struct{}, len(exp.Pages))
	anchors := make(map[int64][]ExtractedLink)
	for i, rec := range exp.Pages {
		if _, dup := ids[rec.ID]; dup {
			verr.add("pages[%d]: duplicate id %d", i, rec.ID)
			continue
		}
		ids[rec.ID] = struct{}{}

		page, found, err := o.convertPage(rec)
		if err != nil {
			verr.add("pages[%d]: %v", i, err)
			continue
		}
		crawl.Pages = append(crawl.Pages, page)
		if len(found) > 0 {
			anchors[page.ID] = found
		}
	}

	for i, l := range exp.Links {
		if _, ok := ids[l.SourcePageID]; !ok {
			verr.add("links[%d]: unknown source page %d", i, l.SourcePageID)
			continue
		}
		if l.DestinationPageID != nil {
			if _, ok := ids[*l.DestinationPageID]; !ok {
				l.DestinationPageID = nil
			}
		}
		l.DestinationURL = strings.TrimSpace(l.DestinationURL)
		l.AnchorText = strings.TrimSpace(l.AnchorText)
		crawl.Links = append(crawl.Links, l)
	}
	crawl.Links = append(crawl.Links, anchorLinks(crawl.Pages, crawl.Links, anchors)...)

	for i, is := range exp.Issues {
		is.Severity = model.IssueSeverity(strings.ToLower(strings.TrimSpace(string(is.Severity))))
		if !is.Severity.Valid() {
			verr.add("issues[%d]: unknown severity %q", i, is.Severity)
			continue
		}
		if _, ok := ids[is.PageID]; !ok {
			verr.add("issues[%d]: unknown page %d", i, is.PageID)
			continue
		}
		crawl.Issues = append(crawl.Issues, is)
	}

	if len(verr.Problems) > 0 {
		return nil, verr
	}
	return crawl, nil
}

// anchorLinks turns extracted anchors into links for pages that have no
// link listed in the export. Pages are visited in order.
func anchorLinks(pages []model.Page, listed []model.Link, anchors map[int64][]ExtractedLink) []model.Link {
	if len(anchors) == 0 {
		return nil
	}
	hasLinks := make(map[int64]struct{}, len(listed))
	for _, l := range listed {
		hasLinks[l.SourcePageID] = struct{}{}
	}
	byURL := make(map[string]int64, len(pages))
	for _, p := range pages {
		key := normalize.URL(p.URL)
		if _, dup := byURL[key]; !dup {
			byURL[key] = p.ID
		}
	}

	links := make([]model.Link, 0)
	for _, p := range pages {
		if _, ok := hasLinks[p.ID]; ok {
			continue
		}
		for _, a := range anchors[p.ID] {
			l := model.Link{
				SourcePageID:   p.ID,
				DestinationURL: a.URL,
				AnchorText:     a.AnchorText,
			}
			if id, ok := byURL[normalize.URL(a.URL)]; ok {
				l.DestinationPageID = &id
			}
			links = append(links, l)
		}
	}
	return links
}

// convertPage validates one page record and fills its optional fields. It
// also returns the anchors found in the record's html_file.
func (o *validateOptions) convertPage(rec PageRecord) (model.Page, []ExtractedLink, error) {
	url := strings.TrimSpace(rec.URL)
	if url == "" {
		return model.Page{}, nil, errors.New("url is required")
	}
	if rec.Depth < 0 {
		return model.Page{}, nil, fmt.Errorf("negative depth %d", rec.Depth)
	}

	page := model.Page{
		ID:              rec.ID,
		URL:             url,
		HTTPStatus:      rec.HTTPStatus,
		Depth:           rec.Depth,
		IsIndexable:     true,
		RedirectURL:     strings.TrimSpace(rec.RedirectURL),
		LoadTimeMs:      max(rec.LoadTimeMs, 0),
		FirstByteTimeMs: max(rec.FirstByteTimeMs, 0),
		SizeBytes:       max(rec.SizeBytes, 0),
		Images:          rec.Images,
		Keywords:        rec.Keywords,
	}

	var anchors []ExtractedLink
	if rec.HTMLFile != "" {
		var err error
		if anchors, err = o.extract(&page, rec.HTMLFile); err != nil {
			return model.Page{}, nil, err
		}
	}

	// Explicit record fields win over extracted ones.
	if rec.Title != nil {
		page.Title = strings.TrimSpace(*rec.Title)
	}
	if rec.MetaDescription != nil {
		page.MetaDescription = strings.TrimSpace(*rec.MetaDescription)
	}
	if rec.CanonicalURL != nil {
		page.CanonicalURL = strings.TrimSpace(*rec.CanonicalURL)
	}
	if rec.WordCount != nil {
		page.WordCount = max(*rec.WordCount, 0)
	}
	if rec.IsIndexable != nil {
		page.IsIndexable = *rec.IsIndexable
	}
	if rec.HasRobotsNoindex != nil {
		page.HasRobotsNoindex = *rec.HasRobotsNoindex
	}
	if rec.HasRobotsNofollow != nil {
		page.HasRobotsNofollow = *rec.HasRobotsNofollow
	}
	if page.Images == nil {
		page.Images = make([]model.Image, 0)
	}
	if page.Keywords == nil {
		page.Keywords = make([]model.Keyword, 0)
	}
	return page, anchors, nil
}

// extract fills page from its saved HTML and returns the anchors found.
// Images and keywords given in the record are kept.
func (o *validateOptions) extract(page *model.Page, name string) ([]ExtractedLink, error) {
	if o.htmlRoot == nil {
		return nil, fmt.Errorf("html_file %q given but no HTML root configured", name)
	}
	f, err := o.htmlRoot.Open(strings.TrimPrefix(name, "./"))
	if err != nil {
		return nil, fmt.Errorf("open html_file: %w", err)
	}
	defer f.Close()

	ext, err := ExtractHTML(page.URL, f)
	if err != nil {
		return nil, fmt.Errorf("parse html_file %q: %w", name, err)
	}

	page.Title = ext.Title
	page.MetaDescription = ext.MetaDescription
	page.CanonicalURL = ext.CanonicalURL
	page.HasRobotsNoindex = ext.RobotsNoindex
	page.HasRobotsNofollow = ext.RobotsNofollow
	page.WordCount = ext.WordCount
	if page.Images == nil {
		page.Images = ext.Images
	}
	if page.Keywords == nil {
		page.Keywords = ext.Keywords
	}
	return ext.Links, nil
}

// ScanTime returns the scan date of the export, or now when absent.
func ScanTime(exp *Export, opts ...Option) time.Time {
	o := &validateOptions{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	if exp != nil && exp.Scan.CreatedAt != nil {
		return exp.Scan.CreatedAt.UTC()
	}
	return o.now().UTC()
}
