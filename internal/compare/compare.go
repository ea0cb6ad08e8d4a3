package compare

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/nao1215/seoscan/internal/model"
)

// Store is the persistence the comparison reads from.
type Store interface {
	// FindScans returns every scan row with the given id in the project.
	FindScans(ctx context.Context, projectID string, scanID int64) ([]model.Scan, error)

	// GetSnapshot returns the snapshot of a scan, or nil when there is none.
	GetSnapshot(ctx context.Context, scanID int64) (*model.ScanSnapshot, error)

	// IssueCounts returns the live issue counts of a scan by severity.
	IssueCounts(ctx context.Context, scanID int64) (model.IssueCounts, error)
}

// Comparer compares scans stored in a Store.
type Comparer struct {
	store  Store
	logger *slog.Logger
}

// Option configures a Comparer.
type Option func(*Comparer)

// WithLogger sets the logger used to report recovered upstream failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Comparer) {
		c.logger = logger
	}
}

// New creates a Comparer reading from store.
func New(store Store, opts ...Option) *Comparer {
	c := &Comparer{store: store}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// ParseScanID parses a scan id parameter. An absent parameter or one that
// is not a positive integer is a validation error.
func ParseScanID(name, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, model.Validation("compare.params", "%s is required", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, model.Validation("compare.params", "%s must be a positive integer, got %q", name, raw)
	}
	return id, nil
}

// CompareParams parses both raw scan id parameters and compares the scans.
func (c *Comparer) CompareParams(ctx context.Context, projectID, scan1, scan2 string) (*model.Comparison, error) {
	id1, err := ParseScanID("scan1", scan1)
	if err != nil {
		return nil, err
	}
	id2, err := ParseScanID("scan2", scan2)
	if err != nil {
		return nil, err
	}
	return c.Compare(ctx, projectID, id1, id2)
}

// Compare compares scan1 (the baseline) with scan2 within projectID.
func (c *Comparer) Compare(ctx context.Context, projectID string, scan1, scan2 int64) (*model.Comparison, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, model.Validation("compare.params", "project is required")
	}
	if scan1 <= 0 || scan2 <= 0 {
		return nil, model.Validation("compare.params", "scan1 and scan2 are required")
	}

	s1, err := c.resolve(ctx, projectID, scan1)
	if err != nil {
		return nil, err
	}
	s2, err := c.resolve(ctx, projectID, scan2)
	if err != nil {
		return nil, err
	}

	side1 := c.side(ctx, s1)
	side2 := c.side(ctx, s2)

	return &model.Comparison{
		ProjectID: projectID,
		Scan1:     side1,
		Scan2:     side2,
		Changes:   Diff(side1.Metrics, side2.Metrics),
	}, nil
}

// resolve returns the single scan with the id in the project.
func (c *Comparer) resolve(ctx context.Context, projectID string, scanID int64) (model.Scan, error) {
	scans, err := c.store.FindScans(ctx, projectID, scanID)
	if err != nil {
		return model.Scan{}, model.Internal("compare.resolve", err)
	}
	if len(scans) != 1 {
		return model.Scan{}, model.NotFound("compare.resolve", "scan %d in project %s", scanID, projectID)
	}
	return scans[0], nil
}

// side builds one side of the comparison. It never fails.
func (c *Comparer) side(ctx context.Context, scan model.Scan) model.ComparedScan {
	snap, err := c.store.GetSnapshot(ctx, scan.ID)
	if err != nil {
		c.logger.Warn("snapshot unavailable, using live counters",
			"scan", scan.ID,
			"error", model.Upstream("compare.snapshot", err),
		)
	}
	if err == nil && snap != nil {
		return model.ComparedScan{
			ID:      scan.ID,
			Date:    scan.CreatedAt,
			Metrics: FromSnapshot(*snap),
			Source:  model.SourceSnapshot,
		}
	}

	counts, err := c.store.IssueCounts(ctx, scan.ID)
	if err != nil {
		c.logger.Warn("live issue counts unavailable, using scan counters",
			"scan", scan.ID,
			"error", model.Upstream("compare.issues", err),
		)
		counts = model.IssueCounts{}
	}
	return model.ComparedScan{
		ID:      scan.ID,
		Date:    scan.CreatedAt,
		Metrics: FromLive(scan, counts),
		Source:  model.SourceLive,
	}
}

// FromSnapshot returns the comparison metrics stored in a snapshot.
func FromSnapshot(s model.ScanSnapshot) model.ComparisonMetrics {
	return model.ComparisonMetrics{
		TotalPages:     s.Metrics.TotalPages,
		TotalIssues:    s.Issues.Total,
		CriticalIssues: s.Issues.Critical,
		WarningIssues:  s.Issues.High + s.Issues.Medium,
		BrokenLinks:    s.Metrics.BrokenLinks,
		AvgScore:       s.Metrics.AvgSeoScore,
	}
}

// FromLive returns the coarse metrics of a scan without a snapshot. The
// page and issue totals are the counters recorded on the scan; the issue
// total falls back to the live count when the counter was never set.
// Broken links and the average score are unknown and reported as 0.
func FromLive(scan model.Scan, counts model.IssueCounts) model.ComparisonMetrics {
	total := scan.IssuesCount
	if total == 0 {
		total = counts.Total
	}
	return model.ComparisonMetrics{
		TotalPages:     scan.PagesCount,
		TotalIssues:    total,
		CriticalIssues: counts.Critical,
		WarningIssues:  counts.High + counts.Medium,
	}
}

// Diff returns the clamped changes from before to after.
func Diff(before, after model.ComparisonMetrics) model.Changes {
	return model.Changes{
		NewIssues:    max(0, after.TotalIssues-before.TotalIssues),
		FixedIssues:  max(0, before.TotalIssues-after.TotalIssues),
		NewPages:     max(0, after.TotalPages-before.TotalPages),
		RemovedPages: max(0, before.TotalPages-after.TotalPages),
	}
}
