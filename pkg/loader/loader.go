// Package loader reads a corpus directory into the uniform Document
// representation consumed by graph extraction. PDF files contribute one
// Document per page; plain text and markdown files contribute a single
// Document. Unsupported extensions are ignored.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/OFFIS-RIT/trellis/internal/util"
	"github.com/OFFIS-RIT/trellis/pkg/common"
	"github.com/OFFIS-RIT/trellis/pkg/loader/pdf"
	"github.com/OFFIS-RIT/trellis/pkg/loader/text"
	"github.com/OFFIS-RIT/trellis/pkg/logger"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ErrNoDocuments is returned when the input directory exists but yields no
// readable documents, either because it is empty or because every file
// failed to parse.
var ErrNoDocuments = errors.New("no readable documents in input directory")

// DirLoader turns the files of a directory into Documents. File contents
// are cached per path by the underlying loaders, so loading the same
// directory twice within a process parses each file once.
type DirLoader struct {
	pdf  *pdf.Loader
	text *text.Loader
}

// NewDirLoader creates a loader for PDF, plain text, and markdown files.
func NewDirLoader() *DirLoader {
	return &DirLoader{
		pdf:  pdf.NewLoader(),
		text: text.NewLoader(),
	}
}

// LoadDir reads every supported file under dir into Documents. Files are
// visited in lexical path order so repeated runs produce identical
// chunking. Files that fail to parse are skipped with a warning; if
// nothing remains, ErrNoDocuments is returned before any downstream work
// happens.
func (l *DirLoader) LoadDir(ctx context.Context, dir string) ([]common.Document, error) {
	paths, err := scanDir(dir)
	if err != nil {
		return nil, err
	}

	docs := make([]common.Document, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fileID, err := gonanoid.New()
		if err != nil {
			return nil, err
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".pdf":
			pages, err := l.pdf.Load(ctx, path)
			if err != nil {
				logger.Warn("[Loader] Skipping unreadable file", "file", path, "err", err)
				continue
			}
			for _, page := range pages {
				content := util.SanitizeText(page.Text)
				if strings.TrimSpace(content) == "" {
					continue
				}
				docs = append(docs, common.Document{
					FileID: fileID,
					Path:   path,
					Page:   page.Number,
					Text:   content,
				})
			}
		case ".txt", ".md":
			content, err := l.text.Load(ctx, path)
			if err != nil {
				logger.Warn("[Loader] Skipping unreadable file", "file", path, "err", err)
				continue
			}
			content = util.SanitizeText(content)
			if strings.TrimSpace(content) == "" {
				continue
			}
			docs = append(docs, common.Document{
				FileID: fileID,
				Path:   path,
				Page:   0,
				Text:   content,
			})
		}
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: '%s'", ErrNoDocuments, dir)
	}

	logger.Info("[Loader] Corpus loaded", "dir", dir, "files", len(paths), "documents", len(docs))
	return docs, nil
}

func scanDir(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".pdf", ".txt", ".md":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory '%s': %w", dir, err)
	}
	return paths, nil
}
