package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLogger_JSONKeyValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, FormatJSON, LevelInfo).With("run_id", "run-1")
	logger.Warn("fixture skipped", "league", "Premier League", "home", 3, "error", errors.New("team not found"))

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("decode log line: %v (raw=%s)", err, buf.String())
	}
	if line["msg"] != "fixture skipped" {
		t.Fatalf("unexpected msg: %v", line["msg"])
	}
	if line["level"] != "WARN" {
		t.Fatalf("unexpected level: %v", line["level"])
	}
	if line["run_id"] != "run-1" || line["league"] != "Premier League" {
		t.Fatalf("missing fields: %+v", line)
	}
	if line["error"] != "team not found" {
		t.Fatalf("unexpected error field: %v", line["error"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, FormatJSON, LevelWarn)
	logger.Info("hidden")
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %s", buf.String())
	}

	logger.Error("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected error line, got %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]Level{
		"debug":   LevelDebug,
		"WARNING": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for raw, want := range cases {
		if got := ParseLevel(raw); got != want {
			t.Fatalf("ParseLevel(%q)=%s want %s", raw, got, want)
		}
	}
}

func TestLogger_NilSafe(t *testing.T) {
	t.Parallel()

	var logger *Logger
	logger.Info("no panic")
	logger.With("k", "v").Warn("still no panic")
}

func TestLogger_RedactsSecrets(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, FormatJSON, LevelInfo)
	logger.Info("credential loaded", "provider", "football-data", "api_key", "abc123", "Token", "xyz")

	out := buf.String()
	if strings.Contains(out, "abc123") || strings.Contains(out, "xyz") {
		t.Fatalf("secret leaked: %s", out)
	}
	if !strings.Contains(out, redacted) {
		t.Fatalf("expected redaction marker, got %s", out)
	}
}

func TestLogger_SyncOnce(t *testing.T) {
	t.Parallel()

	logger := NewWithWriter(&bytes.Buffer{}, FormatJSON, LevelInfo)
	child := logger.Named("reconciler").With("run_id", "r1")
	if err := child.Sync(); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if !logger.synced.Load() {
		t.Fatalf("expected derived logger to share sync state")
	}
}
