package eventmodel

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/eventmodel/internal/compiler"
	loamAdapter "github.com/aretw0/eventmodel/pkg/adapters/loam"
	"github.com/aretw0/eventmodel/pkg/domain"
	"github.com/aretw0/eventmodel/pkg/ports"
	"github.com/aretw0/eventmodel/pkg/slices"
	"github.com/aretw0/loam"
)

// Engine is the high-level entry point for the eventmodel library.
// It loads model documents, builds their slice views and caches the result
// until the model changes.
type Engine struct {
	loader ports.ModelLoader
	parser ports.ModelParser
	hooks  domain.BuildHooks
	logger *slog.Logger
	Name   string

	mu      sync.RWMutex
	entries map[string]entry
	// gens and epoch count invalidations; a build only caches its result
	// when no invalidation happened while it was loading.
	gens  map[string]uint64
	epoch uint64
}

// entry is a model and the view built from the same load.
type entry struct {
	model *domain.Model
	view  *domain.View
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithHooks registers observability hooks.
func WithHooks(hooks domain.BuildHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLoader injects a custom ModelLoader, bypassing the default Loam initialization.
func WithLoader(l ports.ModelLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithParser replaces the schema-validating parser.
func WithParser(p ports.ModelParser) Option {
	return func(e *Engine) {
		e.parser = p
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes a new Engine.
// By default, it uses a Loam repository at the given path.
// If WithLoader option is provided, repoPath can be empty and Loam is skipped.
func New(repoPath string, opts ...Option) (*Engine, error) {
	eng := &Engine{
		entries: make(map[string]entry),
		gens:    make(map[string]uint64),
	}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		if repoPath == "" {
			return nil, fmt.Errorf("repoPath is required when no custom loader is provided")
		}

		absPath, err := filepath.Abs(repoPath)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}

		eng.Name = filepath.Base(absPath)

		// Strict mode makes JSON and Markdown/YAML documents agree on numeric types (json.Number).
		// The engine never writes models, so the repository is opened read-only.
		repo, err := loam.Init(absPath,
			loam.WithStrict(true),
			loam.WithReadOnly(true),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize loam: %w", err)
		}

		typedRepo := loam.NewTypedRepository[loamAdapter.ModelMetadata](repo)
		eng.loader = loamAdapter.New(typedRepo)
	} else if repoPath != "" {
		eng.Name = filepath.Base(repoPath)
	}

	if eng.parser == nil {
		p, err := compiler.NewParser()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize parser: %w", err)
		}
		eng.parser = p
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	if eng.Name != "" {
		eng.logger = eng.logger.With("project", eng.Name)
	}

	return eng, nil
}

// Models lists the model IDs the loader can serve.
func (e *Engine) Models() ([]string, error) {
	return e.loader.ListModels()
}

// Load reads and parses a model. The model ID defaults to the loader ID.
func (e *Engine) Load(ctx context.Context, id string) (*domain.Model, error) {
	raw, err := e.loader.GetModel(id)
	if err != nil {
		e.fail(ctx, id, err)
		return nil, err
	}

	model, err := e.parser.Parse(raw)
	if err != nil {
		err = fmt.Errorf("model %s: %w", id, err)
		e.fail(ctx, id, err)
		return nil, err
	}
	if model.ID == "" {
		model.ID = id
	}

	if e.hooks.OnLoad != nil {
		e.hooks.OnLoad(ctx, &domain.BuildEvent{
			Timestamp: time.Now(),
			ModelID:   id,
			Elements:  len(model.Timeline),
		})
	}
	return model, nil
}

// Build returns the slice view of a model, building it on first use.
// The returned view is shared; callers must not modify it.
func (e *Engine) Build(ctx context.Context, id string) (*domain.View, error) {
	_, view, err := e.Compile(ctx, id)
	return view, err
}

// Compile returns the parsed model together with the view built from it.
// Both come from the same load, so they always describe the same document.
// The results are cached and shared; callers must not modify them.
func (e *Engine) Compile(ctx context.Context, id string) (*domain.Model, *domain.View, error) {
	e.mu.RLock()
	cached, ok := e.entries[id]
	stamp := e.generation(id)
	e.mu.RUnlock()
	if ok {
		return cached.model, cached.view, nil
	}

	start := time.Now()
	model, err := e.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	view := slices.Build(model)

	e.mu.Lock()
	fresh := e.generation(id) == stamp
	if fresh {
		e.entries[id] = entry{model: model, view: view}
	}
	e.mu.Unlock()

	e.logger.Debug("slices built", "model", id, "slices", len(view.Slices), "cached", fresh)
	if e.hooks.OnBuild != nil {
		e.hooks.OnBuild(ctx, &domain.BuildEvent{
			Timestamp: time.Now(),
			ModelID:   id,
			Slices:    len(view.Slices),
			Elements:  len(model.Timeline),
			Duration:  time.Since(start),
		})
	}
	return model, view, nil
}

// generation must be called with e.mu held. Both counters only grow,
// so an unchanged sum means no invalidation touched id.
func (e *Engine) generation(id string) uint64 {
	return e.epoch + e.gens[id]
}

// Invalidate drops the cached view of id, or every cached view when id is empty.
// A build of id already in flight will not cache its result.
func (e *Engine) Invalidate(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id == "" {
		clear(e.entries)
		e.epoch++
		return
	}
	delete(e.entries, id)
	e.gens[id]++
}

func (e *Engine) fail(ctx context.Context, id string, err error) {
	e.logger.Warn("model failed", "model", id, "err", err)
	if e.hooks.OnError != nil {
		e.hooks.OnError(ctx, &domain.BuildEvent{Timestamp: time.Now(), ModelID: id, Err: err})
	}
}

// Watch returns a channel that receives the ID of every changed model.
// Cached views are invalidated before the ID is delivered.
// Returns error if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	w, ok := e.loader.(ports.Watchable)
	if !ok {
		return nil, fmt.Errorf("current loader does not support watching")
	}
	src, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan string, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case id, ok := <-src:
				if !ok {
					return
				}
				e.Invalidate(id)
				e.logger.Debug("model changed", "model", id)
				select {
				case out <- id:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Loader returns the underlying ModelLoader used by the engine.
func (e *Engine) Loader() ports.ModelLoader {
	return e.loader
}
