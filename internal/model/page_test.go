package model

import "testing"

func strPtr(s string) *string { return &s }

func TestImageHasAlt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		alt  *string
		want bool
	}{
		{name: "nil alt", alt: nil, want: false},
		{name: "empty alt", alt: strPtr(""), want: false},
		{name: "whitespace alt", alt: strPtr(" \t\n"), want: false},
		{name: "real alt", alt: strPtr("A red bicycle"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			img := Image{Src: "/a.png", Alt: tt.alt}
			if got := img.HasAlt(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestIssueCountsAdd(t *testing.T) {
	t.Parallel()

	var c IssueCounts
	for _, s := range []IssueSeverity{IssueCritical, IssueHigh, IssueHigh, IssueMedium, IssueLow, IssueLow, IssueLow} {
		c.Add(s)
	}

	want := IssueCounts{Total: 7, Critical: 1, High: 2, Medium: 1, Low: 3}
	if c != want {
		t.Errorf("expected %+v, got %+v", want, c)
	}
}

func TestIssueSeverityValid(t *testing.T) {
	t.Parallel()

	for _, s := range []IssueSeverity{IssueCritical, IssueHigh, IssueMedium, IssueLow} {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if IssueSeverity("urgent").Valid() {
		t.Error("expected unknown severity to be invalid")
	}
}

func TestLinkIsInternal(t *testing.T) {
	t.Parallel()

	id := int64(2)
	if !(Link{SourcePageID: 1, DestinationPageID: &id}).IsInternal() {
		t.Error("expected link with destination to be internal")
	}
	if (Link{SourcePageID: 1}).IsInternal() {
		t.Error("expected link without destination to be external")
	}
}
