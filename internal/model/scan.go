package model

import "time"

// ScanStatus is the lifecycle state of a scan row.
type ScanStatus string

// Scan statuses.
const (
	ScanStatusCompleted ScanStatus = "completed"
	ScanStatusAnalyzed  ScanStatus = "analyzed"
)

// Project groups the scans of one site.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Scan is one completed crawl of a project.
// PagesCount and IssuesCount are the counters recorded at import time;
// they are the coarse fallback used when no snapshot exists.
type Scan struct {
	ID          int64      `json:"id"`
	ProjectID   string     `json:"project_id"`
	CreatedAt   time.Time  `json:"created_at"`
	Status      ScanStatus `json:"status"`
	PagesCount  int        `json:"pages_count"`
	IssuesCount int        `json:"issues_count"`
}

// SnapshotMetrics are the aggregate metrics stored in a snapshot.
type SnapshotMetrics struct {
	TotalPages  int     `json:"totalPages" yaml:"totalPages"`
	BrokenLinks int     `json:"brokenLinks" yaml:"brokenLinks"`
	AvgSeoScore float64 `json:"avgSeoScore" yaml:"avgSeoScore"`
}

// ScanSnapshot is a persisted point-in-time aggregate of a scan, used to
// avoid recomputation when comparing historical scans.
type ScanSnapshot struct {
	ScanID    int64           `json:"scan_id" yaml:"scan_id"`
	Metrics   SnapshotMetrics `json:"metrics" yaml:"metrics"`
	Issues    IssueCounts     `json:"issues" yaml:"issues"`
	CreatedAt time.Time       `json:"created_at" yaml:"created_at"`
}
