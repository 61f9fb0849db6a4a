// Package redis publishes slice collections to Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/eventmodel/pkg/domain"
	"github.com/aretw0/eventmodel/pkg/export"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the exporter.
const DefaultPrefix = "eventmodel:slices:"

// indexMember is reserved for the index of exported models.
const indexMember = "index"

// Exporter implements ports.Exporter using Redis.
// Each model is stored as a JSON string under "<prefix><id>"; a sorted set at
// "<prefix>index" lists exported models scored by expiry.
type Exporter struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Exporter)

// WithTTL sets the expiration for exported slices.
func WithTTL(ttl time.Duration) Option {
	return func(e *Exporter) {
		e.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(e *Exporter) {
		e.prefix = prefix
	}
}

// New creates a new Redis exporter with options.
func New(address, password string, db int, opts ...Option) *Exporter {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis exporter from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Exporter {
	exp := &Exporter{
		client: client,
		prefix: DefaultPrefix,
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(exp)
	}

	return exp
}

// Name identifies the sink.
func (e *Exporter) Name() string { return "redis" }

// Key returns the key holding the slices of modelID.
func (e *Exporter) Key(modelID string) string {
	return e.prefix + modelID
}

func (e *Exporter) indexKey() string {
	return e.prefix + indexMember
}

// Export stores the JSON form of the view and records the model in the index.
func (e *Exporter) Export(ctx context.Context, modelID string, view *domain.View) error {
	if modelID == "" || modelID == indexMember {
		return fmt.Errorf("model ID %q cannot be exported to redis", modelID)
	}

	data, err := export.Encode(view, export.FormatJSON)
	if err != nil {
		return err
	}

	pipe := e.client.Pipeline()

	// Use 0 for no expiration if ttl is not set.
	pipe.Set(ctx, e.Key(modelID), data, e.ttl)

	// Score = Now + TTL. If TTL = 0, Score = far future.
	score := float64(time.Now().Add(e.ttl).Unix())
	if e.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}

	pipe.ZAdd(ctx, e.indexKey(), backend.Z{
		Score:  score,
		Member: modelID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to export to redis: %w", err)
	}

	return nil
}

// Get retrieves the exported payload for modelID.
func (e *Exporter) Get(ctx context.Context, modelID string) ([]byte, error) {
	val, err := e.client.Get(ctx, e.Key(modelID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrModelNotFound, modelID)
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return val, nil
}

// Delete removes the exported slices of modelID.
func (e *Exporter) Delete(ctx context.Context, modelID string) error {
	pipe := e.client.Pipeline()

	pipe.Del(ctx, e.Key(modelID))
	pipe.ZRem(ctx, e.indexKey(), modelID)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns exported model IDs, pruning expired entries from the index first.
func (e *Exporter) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())

	err := e.client.ZRemRangeByScore(ctx, e.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired exports: %w", err)
	}

	ids, err := e.client.ZRange(ctx, e.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}

	return ids, nil
}

// Close closes the redis client.
func (e *Exporter) Close() error {
	return e.client.Close()
}
