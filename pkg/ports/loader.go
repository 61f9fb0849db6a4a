package ports

import (
	"context"

	"github.com/aretw0/eventmodel/pkg/domain"
)

// ModelLoader defines how the engine retrieves model documents.
// This allows the storage layer (Loam, FS, Memory) to be decoupled.
type ModelLoader interface {
	// GetModel retrieves the raw definition of a model by ID.
	// It returns the raw bytes (which the compiler will parse) or an error
	// wrapping domain.ErrModelNotFound.
	GetModel(id string) ([]byte, error)

	// ListModels returns the IDs of all models the loader can serve, sorted.
	ListModels() ([]string, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that receives the ID of a model whose document changed.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}

// ModelParser turns a raw model document into a domain model.
type ModelParser interface {
	Parse(data []byte) (*domain.Model, error)
}
