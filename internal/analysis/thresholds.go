package analysis

// Default thresholds.
const (
	// DefaultSlowPageMs marks pages whose load time exceeds it as slow.
	DefaultSlowPageMs = 3000

	// DefaultLargePageBytes marks pages whose body exceeds it as large.
	DefaultLargePageBytes = 2 * 1024 * 1024 // 2 MiB

	// DefaultThinContentWords marks pages below it as thin content.
	DefaultThinContentWords = 300

	// DefaultCriticalThinContentWords marks pages below it as critically thin.
	DefaultCriticalThinContentWords = 100

	// DefaultSimilarityThreshold is the minimum keyword similarity score
	// (0-100) for two pages to be linked in a similarity group.
	DefaultSimilarityThreshold = 70

	// DefaultDeepPageThreshold marks pages at or beyond this depth as deep.
	DefaultDeepPageThreshold = 4

	// DefaultLinkRankLimit caps the most/fewest linked page lists.
	DefaultLinkRankLimit = 10

	// DefaultImageHeavyLimit caps the image heavy page list.
	DefaultImageHeavyLimit = 10

	// DefaultSimilarityBucketKeywords is how many of a page's most frequent
	// keywords are used to pre-bucket similarity candidates.
	DefaultSimilarityBucketKeywords = 5
)

// Thresholds configures the classification boundaries of the analyses.
// Zero or negative values fall back to the defaults.
type Thresholds struct {
	SlowPageMs               int64 `yaml:"slowPageMs,omitempty" json:"slowPageMs"`
	LargePageBytes           int64 `yaml:"largePageBytes,omitempty" json:"largePageBytes"`
	ThinContentWords         int   `yaml:"thinContentWords,omitempty" json:"thinContentWords"`
	CriticalThinContentWords int   `yaml:"criticalThinContentWords,omitempty" json:"criticalThinContentWords"`
	SimilarityThreshold      int   `yaml:"similarityThreshold,omitempty" json:"similarityThreshold"`
	DeepPageThreshold        int   `yaml:"deepPageThreshold,omitempty" json:"deepPageThreshold"`
	LinkRankLimit            int   `yaml:"linkRankLimit,omitempty" json:"linkRankLimit"`
	ImageHeavyLimit          int   `yaml:"imageHeavyLimit,omitempty" json:"imageHeavyLimit"`
	SimilarityBucketKeywords int   `yaml:"similarityBucketKeywords,omitempty" json:"similarityBucketKeywords"`
}

// DefaultThresholds returns the thresholds used when nothing is configured.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SlowPageMs:               DefaultSlowPageMs,
		LargePageBytes:           DefaultLargePageBytes,
		ThinContentWords:         DefaultThinContentWords,
		CriticalThinContentWords: DefaultCriticalThinContentWords,
		SimilarityThreshold:      DefaultSimilarityThreshold,
		DeepPageThreshold:        DefaultDeepPageThreshold,
		LinkRankLimit:            DefaultLinkRankLimit,
		ImageHeavyLimit:          DefaultImageHeavyLimit,
		SimilarityBucketKeywords: DefaultSimilarityBucketKeywords,
	}
}

// WithDefaults returns t with every unset field replaced by its default.
func (t Thresholds) WithDefaults() Thresholds {
	d := DefaultThresholds()
	if t.SlowPageMs <= 0 {
		t.SlowPageMs = d.SlowPageMs
	}
	if t.LargePageBytes <= 0 {
		t.LargePageBytes = d.LargePageBytes
	}
	if t.ThinContentWords <= 0 {
		t.ThinContentWords = d.ThinContentWords
	}
	if t.CriticalThinContentWords <= 0 {
		t.CriticalThinContentWords = d.CriticalThinContentWords
	}
	if t.SimilarityThreshold <= 0 {
		t.SimilarityThreshold = d.SimilarityThreshold
	}
	if t.DeepPageThreshold <= 0 {
		t.DeepPageThreshold = d.DeepPageThreshold
	}
	if t.LinkRankLimit <= 0 {
		t.LinkRankLimit = d.LinkRankLimit
	}
	if t.ImageHeavyLimit <= 0 {
		t.ImageHeavyLimit = d.ImageHeavyLimit
	}
	if t.SimilarityBucketKeywords <= 0 {
		t.SimilarityBucketKeywords = d.SimilarityBucketKeywords
	}
	return t
}

// Merge returns t with every field set in o taking precedence.
func (t Thresholds) Merge(o Thresholds) Thresholds {
	if o.SlowPageMs > 0 {
		t.SlowPageMs = o.SlowPageMs
	}
	if o.LargePageBytes > 0 {
		t.LargePageBytes = o.LargePageBytes
	}
	if o.ThinContentWords > 0 {
		t.ThinContentWords = o.ThinContentWords
	}
	if o.CriticalThinContentWords > 0 {
		t.CriticalThinContentWords = o.CriticalThinContentWords
	}
	if o.SimilarityThreshold > 0 {
		t.SimilarityThreshold = o.SimilarityThreshold
	}
	if o.DeepPageThreshold > 0 {
		t.DeepPageThreshold = o.DeepPageThreshold
	}
	if o.LinkRankLimit > 0 {
		t.LinkRankLimit = o.LinkRankLimit
	}
	if o.ImageHeavyLimit > 0 {
		t.ImageHeavyLimit = o.ImageHeavyLimit
	}
	if o.SimilarityBucketKeywords > 0 {
		t.SimilarityBucketKeywords = o.SimilarityBucketKeywords
	}
	return t
}
