package loam

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/eventmodel/internal/testutils"
	"github.com/aretw0/eventmodel/pkg/ports/tests"
	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Contract(t *testing.T) {
	_, repo := testutils.SetupTestRepo(t)
	ctx := context.Background()

	setupData := map[string][]byte{
		"orders": []byte(`{"id":"orders","name":"Orders","timeline":[{"name":"OrderPlaced","tick":1,"type":"event"}]}`),
		"empty":  []byte(`{"id":"empty","timeline":[]}`),
	}

	docA := core.Document{
		ID: "orders.md",
		Content: `---
id: orders
name: Orders
timeline:
  - type: event
    name: OrderPlaced
    tick: 1
---
Notes about the ordering flow.`,
	}

	docB := core.Document{
		ID: "empty.md",
		Content: `---
id: empty
---
Nothing on the timeline yet.`,
	}

	require.NoError(t, repo.Save(ctx, docA))
	require.NoError(t, repo.Save(ctx, docB))

	typedRepo := loam.NewTypedRepository[ModelMetadata](repo)
	loader := New(typedRepo)

	tests.ModelLoaderContractTest(t, loader, setupData)
}

func TestLoader_ListModels_NormalizesIDs(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)

	testutils.WriteFiles(t, tmpDir, map[string]string{
		"orders.md": `---
id: orders.md
timeline: []
---
`,
		"billing.json": `{
  "id": "billing.json",
  "timeline": []
}`,
		"implicit.md": `---
timeline: []
---
ID is implied from filename`,
	})

	typedRepo := loam.NewTypedRepository[ModelMetadata](repo)
	loader := New(typedRepo)

	ids, err := loader.ListModels()
	require.NoError(t, err)

	assert.Equal(t, []string{"billing", "implicit", "orders"}, ids)
}

func TestLoader_ListModels_DetectsCollisions(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)

	testutils.WriteFiles(t, tmpDir, map[string]string{
		"foo.md": `---
id: foo
timeline: []
---
Explicit ID`,
		"foo.json": `{
  "id": "foo",
  "timeline": []
}`,
	})

	typedRepo := loam.NewTypedRepository[ModelMetadata](repo)
	loader := New(typedRepo)

	_, err := loader.ListModels()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
	assert.Contains(t, err.Error(), "foo")
}

func TestLoader_GetModel_KeepsNestedPayloads(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)

	testutils.WriteFiles(t, tmpDir, map[string]string{
		"cart.json": `{
  "timeline": [
    {"type": "command", "name": "AddItem", "tick": 1, "example": {"sku": "A-1", "qty": 2}},
    {"type": "event", "name": "ItemAdded", "tick": 2, "producedBy": "AddItem-1"}
  ],
  "specifications": [
    {"name": "AddItem", "type": "command", "scenarios": [{"name": "adds"}]}
  ]
}`,
	})

	typedRepo := loam.NewTypedRepository[ModelMetadata](repo)
	loader := New(typedRepo)

	data, err := loader.GetModel("cart")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "cart", doc["id"])

	timeline := doc["timeline"].([]any)
	require.Len(t, timeline, 2)
	example := timeline[0].(map[string]any)["example"].(map[string]any)
	assert.Equal(t, "A-1", example["sku"])
	assert.Equal(t, "AddItem-1", timeline[1].(map[string]any)["producedBy"])

	specs := doc["specifications"].([]any)
	assert.Len(t, specs, 1)
}

func TestLoader_Watch(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, tmpDir, map[string]string{
		"orders.json": `{"timeline": []}`,
	})

	typedRepo := loam.NewTypedRepository[ModelMetadata](repo)
	loader := New(typedRepo)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := loader.Watch(ctx)
	require.NoError(t, err)

	// Give the watcher a moment to subscribe before touching the file.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "orders.json"),
		[]byte(`{"timeline": [{"type": "event", "name": "E", "tick": 1}]}`), 0644))

	select {
	case id := <-ch:
		assert.Equal(t, "orders", id)
	case <-ctx.Done():
		t.Fatal("timeout waiting for change notification")
	}
}
