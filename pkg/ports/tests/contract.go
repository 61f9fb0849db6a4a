package tests

import (
	"errors"
	"testing"

	"github.com/aretw0/eventmodel/pkg/domain"
	"github.com/aretw0/eventmodel/pkg/ports"
)

// ModelLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.ModelLoader.
func ModelLoaderContractTest(t *testing.T, loader ports.ModelLoader, setupData map[string][]byte) {
	t.Helper()

	// 1. Test GetModel (Success)
	t.Run("GetModel_Success", func(t *testing.T) {
		for id, expectedContent := range setupData {
			content, err := loader.GetModel(id)
			if err != nil {
				t.Fatalf("unexpected error getting model %s: %v", id, err)
			}
			if string(content) != string(expectedContent) {
				t.Errorf("content mismatch for %s. got %q, want %q", id, content, expectedContent)
			}
		}
	})

	// 2. Test GetModel (NotFound)
	t.Run("GetModel_NotFound", func(t *testing.T) {
		_, err := loader.GetModel("non-existent-model")
		if err == nil {
			t.Fatal("expected error for non-existent model, got nil")
		}
		if !errors.Is(err, domain.ErrModelNotFound) {
			t.Errorf("expected ErrModelNotFound, got %v", err)
		}
	})

	// 3. Test ListModels
	t.Run("ListModels", func(t *testing.T) {
		ids, err := loader.ListModels()
		if err != nil {
			t.Fatalf("unexpected error listing models: %v", err)
		}

		if len(ids) != len(setupData) {
			t.Errorf("expected %d models, got %d", len(setupData), len(ids))
		}

		lookup := make(map[string]bool)
		for i, id := range ids {
			lookup[id] = true
			if i > 0 && ids[i-1] > id {
				t.Errorf("list is not sorted: %q before %q", ids[i-1], id)
			}
		}

		for id := range setupData {
			if !lookup[id] {
				t.Errorf("model %s missing from list", id)
			}
		}
	})
}
