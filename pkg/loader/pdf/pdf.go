package pdf

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/OFFIS-RIT/trellis/pkg/logger"

	pdfapi "github.com/ledongthuc/pdf"
	"golang.org/x/sync/singleflight"
)

// Page is the extracted text of a single PDF page. Number is the 1-based
// page number in the source file; pages whose text extraction fails do not
// appear in the result.
type Page struct {
	Number int
	Text   string
}

// Loader extracts per-page text from PDF files. Results are cached per
// path, and concurrent loads of the same file are collapsed into one parse.
type Loader struct {
	cache   map[string][]Page
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewLoader creates a PDF loader with an empty cache.
func NewLoader() *Loader {
	return &Loader{
		cache: make(map[string][]Page),
	}
}

// Load extracts the text of every page in the PDF at path. Pages that fail
// text extraction or contain no text are skipped with a warning; the
// remaining pages keep their original page numbers.
func (l *Loader) Load(ctx context.Context, path string) ([]Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.cacheMu.RLock()
	if cached, ok := l.cache[path]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(path, func() (any, error) {
		l.cacheMu.RLock()
		if cached, ok := l.cache[path]; ok {
			l.cacheMu.RUnlock()
			return cached, nil
		}
		l.cacheMu.RUnlock()

		pages, err := extractPages(path)
		if err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[path] = pages
		l.cacheMu.Unlock()

		return pages, nil
	})

	if err != nil {
		return nil, err
	}

	return result.([]Page), nil
}

func extractPages(path string) ([]Page, error) {
	f, reader, err := pdfapi.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF '%s': %w", path, err)
	}
	defer f.Close()

	totalPages := reader.NumPage()
	pages := make([]Page, 0, totalPages)

	for i := 1; i <= totalPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("[Loader] Failed to extract PDF page", "file", path, "page", i, "err", err)
			continue
		}

		if strings.TrimSpace(text) == "" {
			continue
		}

		pages = append(pages, Page{Number: i, Text: text})
	}

	return pages, nil
}
