package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/eventmodel/internal/presentation/tui"
	"github.com/aretw0/eventmodel/pkg/domain"
)

// RenderSlices writes the slice view as markdown, styled with glamour when requested.
func RenderSlices(w io.Writer, view *domain.View, styled bool) error {
	out, err := tui.NewRenderer(styled)(tui.Markdown(view))
	if err != nil {
		return fmt.Errorf("render slices: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
