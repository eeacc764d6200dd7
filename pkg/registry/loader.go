package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/ports"
	"github.com/aretw0/guidepost/pkg/schema"
	"github.com/fsnotify/fsnotify"
)

// FileLoader implements ports.ScriptLoader over a YAML or JSON script file.
type FileLoader struct {
	Path string
}

// NewFileLoader creates a loader for path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path}
}

// LoadScript reads, validates and converts the script file.
func (l *FileLoader) LoadScript(ctx context.Context) (*domain.Script, error) {
	script, errs := ValidateFile(l.Path, nil)
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid script %s: %w", l.Path, schema.Aggregate(errs))
	}
	return script, nil
}

// Watch signals on the returned channel whenever the file is written or
// replaced. The parent directory is watched so editors that save through a
// rename are followed. The channel is closed when ctx is done.
func (l *FileLoader) Watch(ctx context.Context) (<-chan struct{}, error) {
	path, err := filepath.Abs(l.Path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", l.Path, err)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("watch %s: %w", l.Path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", l.Path, err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", l.Path, err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				select {
				case ch <- struct{}{}:
				default:
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return ch, nil
}

var (
	_ ports.ScriptLoader = (*FileLoader)(nil)
	_ ports.Watchable    = (*FileLoader)(nil)
)
