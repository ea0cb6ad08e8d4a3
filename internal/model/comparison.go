package model

import "time"

// MetricsSource tells where the metrics of a compared scan came from.
type MetricsSource string

// Metrics sources.
const (
	SourceSnapshot MetricsSource = "snapshot"
	SourceLive     MetricsSource = "live"
)

// ComparisonMetrics are the aggregate metrics of one side of a comparison.
type ComparisonMetrics struct {
	TotalPages     int     `json:"totalPages"`
	TotalIssues    int     `json:"totalIssues"`
	CriticalIssues int     `json:"criticalIssues"`
	WarningIssues  int     `json:"warningIssues"`
	BrokenLinks    int     `json:"brokenLinks"`
	AvgScore       float64 `json:"avgScore"`
}

// ComparedScan is one side of a comparison.
type ComparedScan struct {
	ID      int64             `json:"id"`
	Date    time.Time         `json:"date"`
	Metrics ComparisonMetrics `json:"metrics"`
	Source  MetricsSource     `json:"source"`
}

// Changes are the clamped deltas from scan1 to scan2.
type Changes struct {
	NewIssues    int `json:"newIssues"`
	FixedIssues  int `json:"fixedIssues"`
	NewPages     int `json:"newPages"`
	RemovedPages int `json:"removedPages"`
}

// Comparison is the result of comparing two scans of one project.
type Comparison struct {
	ProjectID string       `json:"projectId"`
	Scan1     ComparedScan `json:"scan1"`
	Scan2     ComparedScan `json:"scan2"`
	Changes   Changes      `json:"changes"`
}
