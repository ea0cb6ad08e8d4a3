package ingest

import (
	"cmp"
	"io"
	"net/url"
	"slices"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/seoscan/internal/analysis"
	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/normalize"
	"golang.org/x/net/html"
)

const (
	// maxKeywords caps the keywords kept per page.
	maxKeywords = 20

	// minKeywordLength drops short tokens such as "a" or "of".
	minKeywordLength = 3
)

// invisibleElements hold text that is never rendered.
var invisibleElements = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"template": {},
	"head":     {},
}

// Extract holds the page fields found in an HTML document.
type Extract struct {
	Title           string
	MetaDescription string
	CanonicalURL    string
	RobotsNoindex   bool
	RobotsNofollow  bool
	Images          []model.Image
	Links           []ExtractedLink
	WordCount       int
	Keywords        []model.Keyword
}

// ExtractedLink is an anchor found in the document.
type ExtractedLink struct {
	URL        string
	AnchorText string
}

// Parser extracts SEO relevant fields from HTML pages.
type Parser struct {
	// baseURL resolves relative links and image sources.
	baseURL *url.URL
}

// NewParser creates a Parser for a page served at baseURL.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: u}, nil
}

// ExtractHTML parses the document read from r, served at pageURL.
func ExtractHTML(pageURL string, r io.Reader) (*Extract, error) {
	p, err := NewParser(pageURL)
	if err != nil {
		return nil, err
	}
	return p.Parse(r)
}

// Parse parses an HTML document.
func (p *Parser) Parse(r io.Reader) (*Extract, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	ext := &Extract{
		Title:  strings.TrimSpace(doc.Find("title").First().Text()),
		Images: make([]model.Image, 0),
		Links:  make([]ExtractedLink, 0),
	}

	description, _ := doc.Find("meta[name=description]").First().Attr("content")
	ext.MetaDescription = strings.TrimSpace(description)

	doc.Find("meta[name=robots]").Each(func(_ int, s *goquery.Selection) {
		content, _ := s.Attr("content")
		for _, directive := range strings.Split(strings.ToLower(content), ",") {
			switch strings.TrimSpace(directive) {
			case "noindex":
				ext.RobotsNoindex = true
			case "nofollow":
				ext.RobotsNofollow = true
			case "none":
				ext.RobotsNoindex = true
				ext.RobotsNofollow = true
			}
		}
	})

	if href, ok := doc.Find("link[rel=canonical]").First().Attr("href"); ok {
		ext.CanonicalURL = p.resolveURL(href)
	}

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			return
		}
		img := model.Image{Src: p.resolveURL(src)}
		if img.Src == "" {
			img.Src = strings.TrimSpace(src)
		}
		if alt, ok := s.Attr("alt"); ok {
			img.Alt = &alt
		}
		ext.Images = append(ext.Images, img)
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved := p.resolveURL(href)
		if resolved == "" {
			return
		}
		ext.Links = append(ext.Links, ExtractedLink{
			URL:        resolved,
			AnchorText: strings.Join(strings.Fields(s.Text()), " "),
		})
	})

	words := make([]string, 0)
	for _, n := range doc.Nodes {
		words = collectWords(n, words)
	}
	ext.WordCount = len(words)
	ext.Keywords = topKeywords(words, maxKeywords)

	return ext, nil
}

// collectWords appends the words of every visible text node under n.
func collectWords(n *html.Node, words []string) []string {
	if n.Type == html.ElementNode {
		if _, skip := invisibleElements[n.Data]; skip {
			return words
		}
	}
	if n.Type == html.TextNode {
		words = append(words, tokenize(n.Data)...)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		words = collectWords(c, words)
	}
	return words
}

// tokenize splits s into words made of letters and digits.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\'' && r != '-'
	})
}

// topKeywords counts the normalized words and returns the limit most
// frequent ones, ties broken alphabetically. Stopwords, short words and
// numbers are not keywords.
func topKeywords(words []string, limit int) []model.Keyword {
	counts := make(map[string]int)
	for _, w := range words {
		w = normalize.Text(strings.Trim(w, "'-"))
		if len([]rune(w)) < minKeywordLength || analysis.IsStopword(w) || isNumber(w) {
			continue
		}
		counts[w]++
	}

	keywords := make([]model.Keyword, 0, len(counts))
	for w, c := range counts {
		keywords = append(keywords, model.Keyword{Word: w, Count: c})
	}
	slices.SortFunc(keywords, func(a, b model.Keyword) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Word, b.Word)
	})
	if len(keywords) > limit {
		keywords = keywords[:limit]
	}
	return keywords
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsNumber(r) {
			return false
		}
	}
	return s != ""
}

// resolveURL resolves href against the page URL. Fragment-only links and
// non-navigational schemes return "".
func (p *Parser) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	lower := strings.ToLower(href)
	for _, scheme := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return ""
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return p.baseURL.ResolveReference(u).String()
}
