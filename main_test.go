package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/textfit/layout"
)

func TestRunWritesPDFAndDebug(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out", "card.pdf")
	debug := filepath.Join(dir, "debug", "card.json")
	data := map[string]any{"person": map[string]any{
		"name":   "Grace Brewster Murray Hopper",
		"role":   "Rear Admiral",
		"street": "1 Navy Yard",
		"city":   "Arlington",
	}}

	err := run(context.Background(), options{
		inputPath:  filepath.Join("examples", "card.textfit"),
		outputPath: out,
		debugPath:  debug,
		backend:    "sfnt",
		data:       data,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	pdf, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}

	raw, err := os.ReadFile(debug)
	if err != nil {
		t.Fatalf("read debug: %v", err)
	}
	var dbg layout.Debug
	if err := json.Unmarshal(raw, &dbg); err != nil {
		t.Fatalf("decode debug: %v", err)
	}
	if len(dbg.Computations) != 3 {
		t.Fatalf("expected 3 computations, got %d", len(dbg.Computations))
	}
	name := dbg.Computations[0]
	if name.Field != "name" || name.Size() < 8 || name.Size() > 36 {
		t.Fatalf("unexpected name computation: %+v", name)
	}
	if name.Content != "Grace Brewster Murray Hopper" {
		t.Fatalf("content not bound: %q", name.Content)
	}
}

func TestRunRejectsUnknownBackend(t *testing.T) {
	dir := t.TempDir()
	err := run(context.Background(), options{
		inputPath:  filepath.Join("examples", "card.textfit"),
		outputPath: filepath.Join(dir, "card.pdf"),
		backend:    "freetype",
	})
	if err == nil {
		t.Fatalf("expected unknown backend error")
	}
}
