package memory_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/eventmodel/pkg/adapters/memory"
	"github.com/aretw0/eventmodel/pkg/domain"
	contract "github.com/aretw0/eventmodel/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLoader_Contract(t *testing.T) {
	data := map[string]string{
		"orders":    `{"timeline": []}`,
		"inventory": `timeline: []`,
	}

	bytesData := make(map[string][]byte)
	for k, v := range data {
		bytesData[k] = []byte(v)
	}

	loader := memory.NewLoader(data)

	contract.ModelLoaderContractTest(t, loader, bytesData)
}

func TestNewFromModels(t *testing.T) {
	loader, err := memory.NewFromModels(domain.Model{
		ID: "orders",
		Timeline: domain.Timeline{
			domain.Command{Name: "PlaceOrder", Tick: 1},
			domain.Event{Name: "OrderPlaced", Tick: 2, ProducedBy: &domain.ProducerKey{Command: "PlaceOrder", Tick: 1}},
		},
	})
	require.NoError(t, err)

	raw, err := loader.GetModel("orders")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	timeline := doc["timeline"].([]any)
	require.Len(t, timeline, 2)
	assert.Equal(t, "PlaceOrder-1", timeline[1].(map[string]any)["producedBy"])

	_, err = memory.NewFromModels(domain.Model{})
	assert.Error(t, err)
}

func TestLoader_WatchNotifiesOnPut(t *testing.T) {
	loader := memory.NewLoader(map[string]string{})
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := loader.Watch(ctx)
	require.NoError(t, err)

	loader.Put("orders", []byte(`{"timeline": []}`))

	select {
	case id := <-ch:
		assert.Equal(t, "orders", id)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for change notification")
	}

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should close after cancel")
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
