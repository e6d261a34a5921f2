package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	if err := os.WriteFile(path, []byte("plain text pretending to be a pdf"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	l := NewLoader()
	if _, err := l.Load(context.Background(), path); err == nil {
		t.Fatal("Load accepted a non-PDF file")
	}
}

func TestLoadMissingFile(t *testing.T) {
	l := NewLoader()
	if _, err := l.Load(context.Background(), filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Fatal("Load accepted a missing file")
	}
}

func TestLoadHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewLoader()
	if _, err := l.Load(ctx, "unused.pdf"); err == nil {
		t.Fatal("Load ignored canceled context")
	}
}
