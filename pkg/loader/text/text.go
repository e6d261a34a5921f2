package text

import (
	"context"
	"os"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Loader reads plain text and markdown files from the local filesystem
// with caching. Concurrent loads of the same file are collapsed into one
// read.
type Loader struct {
	cache   map[string]string
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewLoader creates a new filesystem-based text loader.
func NewLoader() *Loader {
	return &Loader{
		cache: make(map[string]string),
	}
}

// Load reads the file content at path with line endings normalized to LF.
// Results are cached.
func (l *Loader) Load(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
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

		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		text := strings.ReplaceAll(string(content), "\r\n", "\n")

		l.cacheMu.Lock()
		l.cache[path] = text
		l.cacheMu.Unlock()

		return text, nil
	})

	if err != nil {
		return "", err
	}

	return result.(string), nil
}
