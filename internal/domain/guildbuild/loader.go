package guildbuild

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

var ErrTemplateNotFound = errors.New("template file not found")

// TemplateLoader reads the template file at Path. Concurrent loads share one
// read, and the parsed template is reused until the file changes.
type TemplateLoader struct {
	Path string

	group singleflight.Group

	mu       sync.Mutex
	cached   *Template
	cachedAt time.Time
}

func NewTemplateLoader(path string) *TemplateLoader {
	return &TemplateLoader{Path: path}
}

func (l *TemplateLoader) Load() (*Template, error) {
	info, err := os.Stat(l.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at path %s", ErrTemplateNotFound, l.Path)
		}
		return nil, err
	}

	l.mu.Lock()
	if l.cached != nil && l.cachedAt.Equal(info.ModTime()) {
		template := l.cached
		l.mu.Unlock()
		return template, nil
	}
	l.mu.Unlock()

	result, err, _ := l.group.Do(l.Path, func() (any, error) {
		data, err := os.ReadFile(l.Path)
		if err != nil {
			return nil, err
		}

		template, err := ParseTemplate(data)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.cached = template
		l.cachedAt = info.ModTime()
		l.mu.Unlock()

		return template, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*Template), nil
}
