package model

import "time"

// DepthBucket groups the pages found at one crawl depth.
type DepthBucket struct {
	Depth int       `json:"depth"`
	Count int       `json:"count"`
	Pages []PageRef `json:"pages"`
}

// DepthPage is a page together with its crawl depth.
type DepthPage struct {
	PageRef
	Depth int `json:"depth"`
}

// LinkStat holds the internal link counters of one page.
type LinkStat struct {
	PageRef
	Inbound  int `json:"inbound"`
	Outbound int `json:"outbound"`
}

// Total returns inbound plus outbound links.
func (s LinkStat) Total() int {
	return s.Inbound + s.Outbound
}

// ArchitectureSummary aggregates the site graph metrics.
type ArchitectureSummary struct {
	TotalPages    int     `json:"totalPages"`
	AvgDepth      float64 `json:"avgDepth"`
	MaxDepth      int     `json:"maxDepth"`
	OrphanCount   int     `json:"orphanCount"`
	DeepPageCount int     `json:"deepPageCount"`
}

// SiteArchitectureData is the graph metrics report.
type SiteArchitectureData struct {
	Summary           ArchitectureSummary `json:"summary"`
	DepthDistribution []DepthBucket       `json:"depthDistribution"`
	OrphanPages       []PageRef           `json:"orphanPages"`
	DeepPages         []DepthPage         `json:"deepPages"`
	LinkStats         []LinkStat          `json:"linkStats"`
	MostLinked        []LinkStat          `json:"mostLinked"`
	FewestLinked      []LinkStat          `json:"fewestLinked"`
	Severity          Summary             `json:"severity"`
}

// IndexabilityReason explains why a page cannot be indexed.
type IndexabilityReason string

// Indexability reasons in precedence order: a page qualifying for several
// reasons is reported with the first one only.
const (
	ReasonNotIndexable      IndexabilityReason = "not_indexable"
	ReasonNoindex           IndexabilityReason = "noindex"
	ReasonCanonicalMismatch IndexabilityReason = "canonical_mismatch"
)

// StatusClass is an HTTP status class such as "2xx".
type StatusClass string

// Status classes.
const (
	Status2xx   StatusClass = "2xx"
	Status3xx   StatusClass = "3xx"
	Status4xx   StatusClass = "4xx"
	Status5xx   StatusClass = "5xx"
	StatusOther StatusClass = "other"
)

// StatusPage is a page with its HTTP status.
type StatusPage struct {
	PageRef
	Status int `json:"status"`
}

// StatusBucket groups pages by status class.
type StatusBucket struct {
	Class StatusClass  `json:"class"`
	Count int          `json:"count"`
	Pages []StatusPage `json:"pages"`
}

// RedirectPage is a 3xx page with its redirect target.
type RedirectPage struct {
	PageRef
	Status int    `json:"status"`
	Target string `json:"target"`
}

// BrokenLink is a link whose resolved status is 4xx or 5xx.
type BrokenLink struct {
	Source            PageRef `json:"source"`
	DestinationPageID *int64  `json:"destinationPageId"`
	DestinationURL    string  `json:"destinationUrl,omitempty"`
	AnchorText        string  `json:"anchorText,omitempty"`
	Status            int     `json:"status"`
}

// PerformancePage carries the timing and size figures of a page.
type PerformancePage struct {
	PageRef
	LoadTimeMs      int64 `json:"loadTimeMs"`
	FirstByteTimeMs int64 `json:"firstByteTimeMs"`
	SizeBytes       int64 `json:"sizeBytes"`
}

// NonIndexablePage is a page that search engines will not index.
type NonIndexablePage struct {
	PageRef
	Reason       IndexabilityReason `json:"reason"`
	CanonicalURL string             `json:"canonicalUrl,omitempty"`
}

// TechnicalSummary aggregates the technical health counters.
type TechnicalSummary struct {
	TotalPages        int   `json:"totalPages"`
	Status2xx         int   `json:"status2xx"`
	Status3xx         int   `json:"status3xx"`
	Status4xx         int   `json:"status4xx"`
	Status5xx         int   `json:"status5xx"`
	StatusOther       int   `json:"statusOther"`
	Redirects         int   `json:"redirects"`
	BrokenLinks       int   `json:"brokenLinks"`
	SlowPages         int   `json:"slowPages"`
	LargePages        int   `json:"largePages"`
	NonIndexable      int   `json:"nonIndexable"`
	NotIndexable      int   `json:"notIndexable"`
	Noindex           int   `json:"noindex"`
	CanonicalMismatch int   `json:"canonicalMismatch"`
	AvgLoadTimeMs     int64 `json:"avgLoadTimeMs"`
	AvgFirstByteMs    int64 `json:"avgFirstByteMs"`
}

// TechnicalHealthData is the technical health report.
type TechnicalHealthData struct {
	Summary      TechnicalSummary   `json:"summary"`
	StatusCodes  []StatusBucket     `json:"statusCodes"`
	Redirects    []RedirectPage     `json:"redirects"`
	BrokenLinks  []BrokenLink       `json:"brokenLinks"`
	SlowPages    []PerformancePage  `json:"slowPages"`
	LargePages   []PerformancePage  `json:"largePages"`
	NonIndexable []NonIndexablePage `json:"nonIndexable"`
	Severity     Summary            `json:"severity"`
}

// ThinPage is a page below the thin content threshold.
type ThinPage struct {
	PageRef
	WordCount int  `json:"wordCount"`
	Critical  bool `json:"critical"`
}

// DuplicateGroup is a set of at least two pages sharing the same
// normalized title or description.
type DuplicateGroup struct {
	Value string    `json:"value"`
	Pages []PageRef `json:"pages"`
}

// SimilarityGroup is a connected component of pages whose keyword sets
// overlap above the similarity threshold. Similarity is the minimum
// pairwise score among the members.
type SimilarityGroup struct {
	Similarity     int       `json:"similarity"`
	Pages          []PageRef `json:"pages"`
	SharedKeywords []string  `json:"sharedKeywords"`
}

// ContentSummary aggregates the content quality counters.
type ContentSummary struct {
	TotalPages                 int `json:"totalPages"`
	AvgWordCount               int `json:"avgWordCount"`
	ThinContent                int `json:"thinContent"`
	CriticalThinContent        int `json:"criticalThinContent"`
	MissingTitles              int `json:"missingTitles"`
	MissingDescriptions        int `json:"missingDescriptions"`
	DuplicateTitleGroups       int `json:"duplicateTitleGroups"`
	DuplicateDescriptionGroups int `json:"duplicateDescriptionGroups"`
	SimilarGroups              int `json:"similarGroups"`
}

// ContentIntelligenceData is the content quality report.
type ContentIntelligenceData struct {
	Summary               ContentSummary    `json:"summary"`
	ThinContent           []ThinPage        `json:"thinContent"`
	CriticalThinContent   []ThinPage        `json:"criticalThinContent"`
	MissingTitles         []PageRef         `json:"missingTitles"`
	MissingDescriptions   []PageRef         `json:"missingDescriptions"`
	DuplicateTitles       []DuplicateGroup  `json:"duplicateTitles"`
	DuplicateDescriptions []DuplicateGroup  `json:"duplicateDescriptions"`
	SimilarContent        []SimilarityGroup `json:"similarContent"`
	Severity              Summary           `json:"severity"`
}

// PageMedia holds the image statistics of one page.
type PageMedia struct {
	PageRef
	ImageCount         int `json:"imageCount"`
	MissingAltCount    int `json:"missingAltCount"`
	AltCoveragePercent int `json:"altCoveragePercent"`
}

// MissingAltImage is one image lacking alt text.
type MissingAltImage struct {
	Page PageRef `json:"page"`
	Src  string  `json:"src"`
}

// MediaSummary aggregates the media accessibility counters.
type MediaSummary struct {
	TotalImages         int `json:"totalImages"`
	ImagesWithAlt       int `json:"imagesWithAlt"`
	MissingAlt          int `json:"missingAlt"`
	AltCoveragePercent  int `json:"altCoveragePercent"`
	PagesWithImages     int `json:"pagesWithImages"`
	PagesWithMissingAlt int `json:"pagesWithMissingAlt"`
}

// MediaAnalysisData is the media accessibility report.
type MediaAnalysisData struct {
	Summary         MediaSummary      `json:"summary"`
	Pages           []PageMedia       `json:"pages"`
	ImageHeavyPages []PageMedia       `json:"imageHeavyPages"`
	MissingAlt      []MissingAltImage `json:"missingAlt"`
	Severity        Summary           `json:"severity"`
}

// AuditReport bundles the four analysis reports of one scan.
type AuditReport struct {
	ProjectID    string                  `json:"projectId"`
	ScanID       int64                   `json:"scanId"`
	GeneratedAt  time.Time               `json:"generatedAt"`
	Architecture SiteArchitectureData    `json:"architecture"`
	Technical    TechnicalHealthData     `json:"technical"`
	Content      ContentIntelligenceData `json:"content"`
	Media        MediaAnalysisData       `json:"media"`
	Summary      Summary                 `json:"summary"`
	AvgSeoScore  float64                 `json:"avgSeoScore"`
	Issues       IssueCounts             `json:"issues"`
}
