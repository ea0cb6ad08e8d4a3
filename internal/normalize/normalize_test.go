package normalize

import "testing"

func TestURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "  ", want: ""},
		{name: "adds root path", in: "https://Example.com", want: "https://example.com/"},
		{name: "lower-cases scheme and host", in: "HTTPS://WWW.Example.COM/About", want: "https://www.example.com/About"},
		{name: "drops default https port", in: "https://example.com:443/a", want: "https://example.com/a"},
		{name: "drops default http port", in: "http://example.com:80/a", want: "http://example.com/a"},
		{name: "keeps other port", in: "http://example.com:8080/a", want: "http://example.com:8080/a"},
		{name: "drops fragment", in: "https://example.com/a#top", want: "https://example.com/a"},
		{name: "drops trailing slash", in: "https://example.com/blog/", want: "https://example.com/blog"},
		{name: "keeps query", in: "https://example.com/s?q=go", want: "https://example.com/s?q=go"},
		{name: "drops empty query marker", in: "https://example.com/s?", want: "https://example.com/s"},
		{name: "relative value returned trimmed", in: " /about ", want: "/about"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := URL(tt.in); got != tt.want {
				t.Errorf("URL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base string
		ref  string
		want string
	}{
		{name: "relative path", base: "https://example.com/blog/post", ref: "/blog/post/", want: "https://example.com/blog/post"},
		{name: "absolute ref", base: "https://example.com/a", ref: "https://Other.com/b", want: "https://other.com/b"},
		{name: "empty ref", base: "https://example.com/a", ref: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Resolve(tt.base, tt.ref); got != tt.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
			}
		})
	}
}

func TestSameURL(t *testing.T) {
	t.Parallel()

	if !SameURL("https://example.com", "https://EXAMPLE.com:443/") {
		t.Error("expected URLs to be equal after normalization")
	}
	if SameURL("https://example.com/a", "https://example.com/b") {
		t.Error("expected different paths to differ")
	}
}

func TestText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"  Hello World ", "hello world"},
		{"ÜBER Uns", "über uns"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := Text(tt.in); got != tt.want {
			t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{name: "short string unchanged", in: "abc", maxLen: 10, want: "abc"},
		{name: "exact length unchanged", in: "abcde", maxLen: 5, want: "abcde"},
		{name: "long string cut", in: "abcdefghij", maxLen: 6, want: "abc..."},
		{name: "tiny limit cuts without ellipsis", in: "abcdef", maxLen: 2, want: "ab"},
		{name: "multibyte runes", in: "日本語のテキスト", maxLen: 5, want: "日本..."},
		{name: "non-positive limit", in: "abc", maxLen: 0, want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Truncate(tt.in, tt.maxLen); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestDisplayURL(t *testing.T) {
	t.Parallel()

	if got := DisplayURL("https://example.com/a", 40); got != "example.com/a" {
		t.Errorf("unexpected display url %q", got)
	}
	if got := DisplayURL("https://example.com/very/long/path", 12); got != "example.c..." {
		t.Errorf("unexpected display url %q", got)
	}
}
