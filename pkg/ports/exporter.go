package ports

import (
	"context"

	"github.com/aretw0/eventmodel/pkg/domain"
)

// Exporter publishes a built slice collection to a sink.
// Export replaces whatever the sink held for the same model ID.
type Exporter interface {
	Export(ctx context.Context, modelID string, view *domain.View) error

	// Name identifies the sink in logs and CLI flags (e.g. "file", "redis").
	Name() string
}
