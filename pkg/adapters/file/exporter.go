package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/eventmodel/pkg/domain"
	"github.com/aretw0/eventmodel/pkg/export"
)

// Exporter implements ports.Exporter by writing "<id>.slices.<format>" files.
type Exporter struct {
	BasePath string
	Format   export.Format
}

// NewExporter creates a new Exporter with the given base path.
// If basePath is empty, it defaults to ".eventmodel/slices".
func NewExporter(basePath string, format export.Format) *Exporter {
	if basePath == "" {
		basePath = filepath.Join(".eventmodel", "slices")
	}
	if format == "" {
		format = export.FormatJSON
	}
	return &Exporter{BasePath: basePath, Format: format}
}

// Name identifies the sink.
func (e *Exporter) Name() string { return "file" }

// Path returns the artifact path for modelID.
func (e *Exporter) Path(modelID string) string {
	return filepath.Join(e.BasePath, export.ArtifactName(modelID, e.Format))
}

// Export writes the artifact atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (e *Exporter) Export(ctx context.Context, modelID string, view *domain.View) error {
	if modelID == "" {
		return fmt.Errorf("modelID cannot be empty")
	}

	if err := os.MkdirAll(e.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure export directory: %w", err)
	}

	data, err := export.Encode(view, e.Format)
	if err != nil {
		return err
	}

	destPath := e.Path(modelID)

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(e.BasePath, "tmp-"+modelID+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op after a successful rename
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}

	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing artifact for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to artifact: %w", err)
	}

	return nil
}
