package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultLoggerIsSilent(t *testing.T) {
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("default logger should be disabled")
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	Logger().Debug("font parsed", "name", "goregular")
	if !strings.Contains(buf.String(), "name=goregular") {
		t.Fatalf("expected record in output, got %q", buf.String())
	}

	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("SetLogger(nil) should restore the silent logger")
	}
}

func TestOr(t *testing.T) {
	own := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if Or(own) != own {
		t.Fatalf("Or should prefer the explicit logger")
	}
	if Or(nil) != Logger() {
		t.Fatalf("Or(nil) should fall back to the default")
	}
}
