package model

import "testing"

func TestSeverityString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityPassed, "passed"},
		{SeverityWarning, "warning"},
		{SeverityCritical, "critical"},
		{Severity(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSummaryAddAndLevel(t *testing.T) {
	t.Parallel()

	a := Summary{Critical: 1, Warning: 2, Passed: 3}
	b := Summary{Warning: 4, Passed: 5}

	sum := a.Add(b)
	if sum != (Summary{Critical: 1, Warning: 6, Passed: 8}) {
		t.Errorf("unexpected sum %+v", sum)
	}
	if sum.Level() != SeverityCritical {
		t.Errorf("expected critical level, got %v", sum.Level())
	}
	if b.Level() != SeverityWarning {
		t.Errorf("expected warning level, got %v", b.Level())
	}
	if (Summary{Passed: 9}).Level() != SeverityPassed {
		t.Error("expected passed level")
	}
}
