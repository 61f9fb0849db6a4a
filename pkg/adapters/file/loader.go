// Package file loads event models from a directory and exports slice artifacts to one.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/eventmodel/pkg/domain"
	"github.com/aretw0/eventmodel/pkg/export"
	"github.com/fsnotify/fsnotify"
)

// Extensions lists the model document extensions the loader recognizes.
var Extensions = []string{".json", ".yaml", ".yml"}

// Loader implements ports.ModelLoader and ports.Watchable over a flat directory.
// Model IDs are file names without extension.
type Loader struct {
	Dir      string
	debounce time.Duration
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithDebounce sets how long the watcher waits for a burst of writes to settle.
func WithDebounce(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.debounce = d
	}
}

// NewLoader creates a loader for dir.
func NewLoader(dir string, opts ...LoaderOption) *Loader {
	l := &Loader{
		Dir:      dir,
		debounce: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// modelID returns the ID for a file name and whether the file is a model document.
func modelID(name string) (string, bool) {
	ext := filepath.Ext(name)
	if !isModelExt(ext) {
		return "", false
	}
	id := strings.TrimSuffix(name, ext)
	if export.Ignored(id) {
		return "", false
	}
	return id, true
}

func isModelExt(ext string) bool {
	for _, e := range Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// scan maps every model ID in the directory to its file name.
func (l *Loader) scan() (map[string]string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read model directory: %w", err)
	}

	found := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, ok := modelID(entry.Name())
		if !ok {
			continue
		}
		if existing, dup := found[id]; dup {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existing, entry.Name())
		}
		found[id] = entry.Name()
	}
	return found, nil
}

// GetModel reads the document for id.
func (l *Loader) GetModel(id string) ([]byte, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == ".." {
		return nil, fmt.Errorf("%w: %q", domain.ErrModelNotFound, id)
	}

	found, err := l.scan()
	if err != nil {
		return nil, err
	}
	name, ok := found[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrModelNotFound, id)
	}

	data, err := os.ReadFile(filepath.Join(l.Dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read model %s: %w", id, err)
	}
	return data, nil
}

// ListModels returns the sorted model IDs in the directory.
func (l *Loader) ListModels() ([]string, error) {
	found, err := l.scan()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(found))
	for id := range found {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Watch implements ports.Watchable. Bursts of events for the same model are
// coalesced into one notification once the debounce window passes.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(l.Dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch directory: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		defer watcher.Close()

		pending := make(map[string]bool)
		timer := time.NewTimer(l.debounce)
		if !timer.Stop() {
			<-timer.C
		}

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				id, ok := modelID(filepath.Base(event.Name))
				if !ok {
					continue
				}
				pending[id] = true
				timer.Reset(l.debounce)

			case <-timer.C:
				ids := make([]string, 0, len(pending))
				for id := range pending {
					ids = append(ids, id)
				}
				sort.Strings(ids)
				clear(pending)
				for _, id := range ids {
					select {
					case ch <- id:
					case <-ctx.Done():
						return
					}
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
