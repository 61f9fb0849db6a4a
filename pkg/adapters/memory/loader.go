package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/eventmodel/pkg/domain"
)

// Loader implements ports.ModelLoader and ports.Watchable using an in-memory map.
// Safe for concurrent use.
type Loader struct {
	mu       sync.RWMutex
	models   map[string][]byte
	watchers []chan string
}

// NewLoader creates a new Loader with the provided raw documents (JSON or YAML strings).
func NewLoader(data map[string]string) *Loader {
	models := make(map[string][]byte)
	for k, v := range data {
		models[k] = []byte(v)
	}
	return &Loader{
		models: models,
	}
}

// NewFromModels creates a new Loader from domain objects.
// This handles serialization automatically, improving DX for tests.
func NewFromModels(models ...domain.Model) (*Loader, error) {
	data := make(map[string][]byte)
	for _, m := range models {
		if m.ID == "" {
			return nil, fmt.Errorf("model missing ID")
		}
		bytes, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal model %s: %w", m.ID, err)
		}
		data[m.ID] = bytes
	}
	return &Loader{models: data}, nil
}

// GetModel retrieves the raw definition of a model by ID.
func (l *Loader) GetModel(id string) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	content, ok := l.models[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrModelNotFound, id)
	}
	return content, nil
}

// ListModels returns all available model IDs.
func (l *Loader) ListModels() ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	keys := make([]string, 0, len(l.models))
	for k := range l.models {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}

// Put replaces the document for id and notifies watchers.
func (l *Loader) Put(id string, data []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.models[id] = append([]byte(nil), data...)

	for _, ch := range l.watchers {
		select {
		case ch <- id:
		default:
			// Slow watcher; it will pick up the latest document on its next rebuild.
		}
	}
}

// Watch returns a channel receiving the ID of every model changed through Put.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	ch := make(chan string, 16)

	l.mu.Lock()
	l.watchers = append(l.watchers, ch)
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, w := range l.watchers {
			if w == ch {
				l.watchers = append(l.watchers[:i], l.watchers[i+1:]...)
				break
			}
		}
		close(ch)
	}()

	return ch, nil
}
