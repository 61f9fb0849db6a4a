package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/eventmodel/pkg/domain"
)

// Exporter implements ports.Exporter in memory.
// Safe for concurrent use.
type Exporter struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewExporter creates a new in-memory exporter.
func NewExporter() *Exporter {
	return &Exporter{
		data: make(map[string][]byte),
	}
}

// Name identifies the sink.
func (e *Exporter) Name() string { return "memory" }

// Export stores the JSON form of the view, which also isolates it from later mutation.
func (e *Exporter) Export(ctx context.Context, modelID string, view *domain.View) error {
	payload, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to marshal slices for %s: %w", modelID, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.data[modelID] = payload
	return nil
}

// Get returns the stored payload for modelID.
func (e *Exporter) Get(ctx context.Context, modelID string) ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	payload, ok := e.data[modelID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrModelNotFound, modelID)
	}
	return append([]byte(nil), payload...), nil
}

// List returns the exported model IDs.
func (e *Exporter) List(ctx context.Context) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := make([]string, 0, len(e.data))
	for id := range e.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
