package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pixelgraph/internal/logger"
	"pixelgraph/internal/packio"
)

func TestOpenReader(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pack.mcmeta"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	r, closeFn, err := openReader(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()
	if !r.FileExists("pack.mcmeta") {
		t.Error("expected pack.mcmeta in directory reader")
	}

	if _, _, err := openReader(filepath.Join(dir, "pack.mcmeta")); err == nil {
		t.Error("expected error for a plain file")
	}
	if _, _, err := openReader(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for a missing path")
	}
}

func TestOpenWriter(t *testing.T) {
	tests := []struct {
		path string
		zip  bool
	}{
		{"out/pack.zip", true},
		{"out/PACK.ZIP", true},
		{"out/pack", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, isZip := openWriter(tt.path).(*packio.ZipWriter)
			if isZip != tt.zip {
				t.Errorf("expected zip %v, got %v", tt.zip, isZip)
			}
		})
	}
}

func TestCloseLogged(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New("info", logger.FileConfig{}, &buf)

	closeLogged(log, "reader", func() error { return nil })
	_ = log.Sync()
	if buf.Len() != 0 {
		t.Errorf("expected no output for a clean close, got %q", buf.String())
	}

	closeLogged(log, "reader", func() error { return errors.New("archive truncated") })
	_ = log.Sync()
	out := buf.String()
	for _, want := range []string{"closing reader", "archive truncated"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}
