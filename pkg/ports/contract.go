package ports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/eventmodel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ReadBack fetches the JSON payload an Exporter stored for a model.
type ReadBack func(ctx context.Context, modelID string) ([]byte, error)

// RunExporterContract runs a suite of tests to verify that an Exporter implementation
// stores one replaceable JSON payload per model ID.
func RunExporterContract(t *testing.T, exp Exporter, read ReadBack) {
	ctx := context.Background()
	modelID := "contract-" + time.Now().Format("20060102150405")

	view := &domain.View{
		Model: modelID,
		Slices: []domain.Slice{{
			Kind:  domain.SliceState,
			Name:  "Inventory",
			Ticks: []int{10},
			SourcedFrom: []domain.EventRef{
				{Name: "ItemAdded", Ticks: []int{5}},
			},
			Produces:           []domain.EventRef{},
			StateOccurrences:   []domain.StateOccurrence{},
			CommandOccurrences: []domain.CommandOccurrence{},
			Scenarios:          []domain.Scenario{},
		}},
		Actors: []domain.Actor{},
	}

	t.Run("Name", func(t *testing.T) {
		assert.NotEmpty(t, exp.Name())
	})

	t.Run("Export and Read", func(t *testing.T) {
		require.NoError(t, exp.Export(ctx, modelID, view), "Export should not return error")

		raw, err := read(ctx, modelID)
		require.NoError(t, err)

		var got domain.View
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, modelID, got.Model)
		require.Len(t, got.Slices, 1)
		assert.Equal(t, "Inventory", got.Slices[0].Name)
	})

	t.Run("Export Replaces", func(t *testing.T) {
		next := *view
		next.Slices = append([]domain.Slice{}, view.Slices...)
		next.Slices = append(next.Slices, domain.Slice{Kind: domain.SliceCommand, Name: "AddItem", Ticks: []int{3}})

		require.NoError(t, exp.Export(ctx, modelID, &next))

		raw, err := read(ctx, modelID)
		require.NoError(t, err)

		var got domain.View
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Len(t, got.Slices, 2)
	})
}
