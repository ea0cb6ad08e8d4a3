// Package normalize canonicalizes URLs and text for comparison and
// shortens strings for display. Every analysis component compares URLs
// and titles through this package so that equality means the same thing
// everywhere.
package normalize

import (
	"net"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ellipsis is appended to truncated strings.
const ellipsis = "..."

// defaultPorts maps schemes to the port that is implied when omitted.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// URL returns the canonical form of raw:
//   - scheme and host lower-cased
//   - default port removed
//   - fragment removed
//   - empty path becomes "/", trailing slash removed from other paths
//
// Values that do not parse as absolute URLs are returned trimmed.
func URL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = canonicalHost(u.Scheme, u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	u.ForceQuery = false

	switch {
	case u.Path == "":
		u.Path = "/"
		u.RawPath = ""
	case len(u.Path) > 1 && strings.HasSuffix(u.Path, "/"):
		u.Path = strings.TrimRight(u.Path, "/")
		if u.Path == "" {
			u.Path = "/"
		}
		u.RawPath = ""
	}

	return u.String()
}

// canonicalHost lower-cases host and strips the scheme's default port.
func canonicalHost(scheme, host string) string {
	host = strings.ToLower(host)
	h, port, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}
	if defaultPorts[scheme] == port {
		if strings.Contains(h, ":") {
			return "[" + h + "]"
		}
		return h
	}
	return host
}

// Resolve resolves ref against base and returns the canonical result.
// A ref that cannot be resolved is returned in canonical form on its own.
func Resolve(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	b, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return URL(ref)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return URL(ref)
	}
	return URL(b.ResolveReference(r).String())
}

// SameURL reports whether a and b are equal after canonicalization.
func SameURL(a, b string) bool {
	return URL(a) == URL(b)
}

// Text returns s trimmed and lower-cased with Unicode case rules.
// It is the key used for exact duplicate detection.
func Text(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// A Caser keeps state and must not be shared between goroutines.
	return cases.Lower(language.Und).String(s)
}

// IsBlank reports whether s is empty after trimming.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Truncate shortens s to at most maxLen runes, ending with "..." when
// it had to cut. A non-positive maxLen returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= len(ellipsis) {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-len(ellipsis)]) + ellipsis
}

// DisplayURL drops the scheme of raw and truncates it to maxLen runes.
func DisplayURL(raw string, maxLen int) string {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	return Truncate(s, maxLen)
}
