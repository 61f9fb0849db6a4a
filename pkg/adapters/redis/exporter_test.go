package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/eventmodel/pkg/adapters/redis"
	"github.com/aretw0/eventmodel/pkg/domain"
	"github.com/aretw0/eventmodel/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "Failed to start miniredis")
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return mr, client
}

func emptyView(id string) *domain.View {
	return &domain.View{Model: id, Slices: []domain.Slice{}, Actors: []domain.Actor{}}
}

func TestRedisExporter_Contract(t *testing.T) {
	_, client := setup(t)

	exp := redis.NewFromClient(client)
	ports.RunExporterContract(t, exp, exp.Get)
}

func TestRedisExporter_TTL_Expiration(t *testing.T) {
	mr, client := setup(t)

	exp := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	require.NoError(t, exp.Export(ctx, "orders", emptyView("orders")))

	ids, err := exp.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "orders")

	mr.FastForward(2 * time.Second)

	_, err = exp.Get(ctx, "orders")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)

	// The index prunes by wall clock, so wait past the TTL.
	time.Sleep(1200 * time.Millisecond)

	ids, err = exp.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisExporter_Prefix(t *testing.T) {
	mr, client := setup(t)

	exp := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, exp.Export(ctx, "orders", emptyView("orders")))

	assert.True(t, mr.Exists("custom:app:orders"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")
	assert.Equal(t, "custom:app:orders", exp.Key("orders"))
}

func TestRedisExporter_DefaultKeys(t *testing.T) {
	mr, client := setup(t)
	exp := redis.NewFromClient(client)
	ctx := context.Background()

	require.NoError(t, exp.Export(ctx, "orders", emptyView("orders")))
	assert.True(t, mr.Exists("eventmodel:slices:orders"))

	require.NoError(t, exp.Delete(ctx, "orders"))
	assert.False(t, mr.Exists("eventmodel:slices:orders"))

	ids, err := exp.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisExporter_ReservedID(t *testing.T) {
	_, client := setup(t)
	exp := redis.NewFromClient(client)

	assert.Error(t, exp.Export(context.Background(), "index", emptyView("index")))
}
