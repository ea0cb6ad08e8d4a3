package model

// Severity is the outcome level used by the analysis reports.
// Crawler issue severities (IssueSeverity) are a separate, finer scale.
type Severity int

const (
	// SeverityPassed indicates a check found nothing to report.
	SeverityPassed Severity = iota

	// SeverityWarning indicates problems that hurt rankings but do not
	// block indexing.
	SeverityWarning

	// SeverityCritical indicates problems that block indexing or break
	// the site for visitors.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityPassed:
		return "passed"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Summary is the severity rollup every analysis report carries.
type Summary struct {
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	Passed   int `json:"passed"`
}

// Add returns the element-wise sum of s and o.
func (s Summary) Add(o Summary) Summary {
	return Summary{
		Critical: s.Critical + o.Critical,
		Warning:  s.Warning + o.Warning,
		Passed:   s.Passed + o.Passed,
	}
}

// Level returns the worst severity present in the summary.
func (s Summary) Level() Severity {
	switch {
	case s.Critical > 0:
		return SeverityCritical
	case s.Warning > 0:
		return SeverityWarning
	default:
		return SeverityPassed
	}
}
