package main

import (
	"bytes"
	"encoding/json"
	"runtime"
	"strings"
	"testing"
)

func TestCurrentVersion(t *testing.T) {
	t.Parallel()

	info := currentVersion()
	if info.Version == "" {
		t.Error("expected non-empty version")
	}
	if info.Commit == "" || len(info.Commit) > 7 {
		t.Errorf("unexpected commit %q", info.Commit)
	}
	if info.BuiltAt == "" {
		t.Error("expected non-empty build date")
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("expected %s, got %s", runtime.Version(), info.GoVersion)
	}
}

func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	t.Run("text output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		cmd := NewVersionCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"seoscan version", "commit:", "built:", "go:"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got %q", want, output)
			}
		}
	})

	t.Run("json output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		cmd := NewVersionCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--json"})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var info versionInfo
		if err := json.Unmarshal(buf.Bytes(), &info); err != nil {
			t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
		}
		if info.Version == "" {
			t.Error("expected version in JSON output")
		}
	})
}
