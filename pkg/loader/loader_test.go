package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDirMissingDirectory(t *testing.T) {
	l := NewDirLoader()
	_, err := l.LoadDir(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("LoadDir accepted a missing directory")
	}
}

func TestLoadDirEmptyDirectory(t *testing.T) {
	l := NewDirLoader()
	_, err := l.LoadDir(context.Background(), t.TempDir())
	if !errors.Is(err, ErrNoDocuments) {
		t.Fatalf("LoadDir error = %v, want ErrNoDocuments", err)
	}
}

func TestLoadDirTextAndMarkdown(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "Alpha document body.")
	writeFile(t, dir, "b.md", "# Beta\n\nBeta document body.")
	writeFile(t, dir, "c.bin", "binary noise")

	l := NewDirLoader()
	docs, err := l.LoadDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	if !strings.HasSuffix(docs[0].Path, "a.txt") || !strings.HasSuffix(docs[1].Path, "b.md") {
		t.Errorf("documents out of lexical order: %q, %q", docs[0].Path, docs[1].Path)
	}
	for _, d := range docs {
		if d.Page != 0 {
			t.Errorf("%s: Page = %d, want 0", d.Path, d.Page)
		}
		if d.FileID == "" {
			t.Errorf("%s: empty FileID", d.Path)
		}
	}
	if docs[0].FileID == docs[1].FileID {
		t.Error("distinct files share a FileID")
	}
}

func TestLoadDirSkipsUnparseableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.pdf", "this is not a pdf")
	writeFile(t, dir, "good.txt", "Readable text.")

	l := NewDirLoader()
	docs, err := l.LoadDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}
	if !strings.HasSuffix(docs[0].Path, "good.txt") {
		t.Errorf("unexpected document %q", docs[0].Path)
	}
}

func TestLoadDirAllFilesFail(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.pdf", "this is not a pdf")

	l := NewDirLoader()
	_, err := l.LoadDir(context.Background(), dir)
	if !errors.Is(err, ErrNoDocuments) {
		t.Fatalf("LoadDir error = %v, want ErrNoDocuments", err)
	}
}

func TestLoadDirSkipsBlankFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "blank.txt", "   \n\t\n")
	writeFile(t, dir, "real.txt", "content")

	l := NewDirLoader()
	docs, err := l.LoadDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}
}

func TestLoadDirSanitizesText(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dirty.txt", "line one\r\nwith\x00null")

	l := NewDirLoader()
	docs, err := l.LoadDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}
	if strings.ContainsRune(docs[0].Text, '\x00') {
		t.Error("document text still contains NUL bytes")
	}
	if strings.Contains(docs[0].Text, "\r\n") {
		t.Error("document text still contains CRLF line endings")
	}
}

func TestLoadDirWalksSubdirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, sub, "deep.txt", "nested content")

	l := NewDirLoader()
	docs, err := l.LoadDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}
}

func TestLoadDirHonorsCancellation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "content")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewDirLoader()
	_, err := l.LoadDir(ctx, dir)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("LoadDir error = %v, want context.Canceled", err)
	}
}
