// Package compare computes the differences between two scans of a project.
//
// Each side of a comparison prefers the scan's persisted snapshot. When no
// snapshot exists, or reading it fails, the side falls back to the live
// issue counts and the counters recorded on the scan row. The fallback
// never fails the comparison; only bad parameters and unknown scans do.
package compare
