package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/aretw0/eventmodel"
	"github.com/aretw0/eventmodel/internal/config"
	"github.com/aretw0/eventmodel/internal/presentation/tui"
	"github.com/aretw0/eventmodel/pkg/domain"
)

// WatchOptions configures RunWatch.
type WatchOptions struct {
	Config *config.Config
	Models []string
	// Export writes every rebuilt view to the configured sinks.
	Export bool
	Out    io.Writer
	Styled bool
}

// RunWatch rebuilds models on every change, rendering and exporting each result,
// until SIGINT or SIGTERM.
func RunWatch(opts WatchOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	logger := CreateLogger(opts.Config.Debug)
	tui.PrintBanner(opts.Out, eventmodel.Version)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	engine, err := CreateEngine(opts.Config, logger)
	if err != nil {
		return err
	}

	var sinks *Sinks
	if opts.Export {
		if sinks, err = CreateSinks(opts.Config, opts.Config.Export.Sinks); err != nil {
			return err
		}
		defer sinks.Close()
	}

	logger.Info("Starting watcher", "path", opts.Config.ModelDir)
	PrintSystemMessage(opts.Out, "Watching '%s'.", opts.Config.ModelDir)

	w := &Watcher{
		Engine: engine,
		Models: opts.Models,
		Logger: logger,
		Out:    opts.Out,
		Handle: func(ctx context.Context, view *domain.View) error {
			if err := RenderSlices(opts.Out, view, opts.Styled); err != nil {
				return err
			}
			if sinks == nil {
				return nil
			}
			return sinks.Export(ctx, view.Model, view)
		},
	}
	if err := w.Run(sigCtx); err != nil {
		return err
	}

	logger.Info("Stopping watcher", "signal", sigCtx.Signal())
	if sigCtx.Signal() != nil {
		fmt.Fprintln(opts.Out)
		PrintSystemMessage(opts.Out, "Stopped.")
	}
	return nil
}

// Default retry window after a failed build.
const (
	DefaultMinBackoff = 500 * time.Millisecond
	DefaultMaxBackoff = 10 * time.Second
)

// ViewHandler consumes a freshly built view (render, export).
type ViewHandler func(ctx context.Context, view *domain.View) error

// Watcher rebuilds models whenever the engine reports a change.
type Watcher struct {
	Engine *eventmodel.Engine
	// Models restricts the watched IDs. Empty means every model the loader lists.
	Models []string
	Handle ViewHandler
	Logger *slog.Logger
	Out    io.Writer

	MinBackoff time.Duration
	MaxBackoff time.Duration
}

// Run builds the watched models once and then after every change until ctx is done.
// A failed model is retried with exponential backoff; a change to it retries immediately.
// A model that no longer exists is dropped from the retry set.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Logger == nil {
		w.Logger = slog.New(slog.DiscardHandler)
	}
	if w.Out == nil {
		w.Out = io.Discard
	}
	minWait, maxWait := w.MinBackoff, w.MaxBackoff
	if minWait <= 0 {
		minWait = DefaultMinBackoff
	}
	if maxWait < minWait {
		maxWait = max(DefaultMaxBackoff, minWait)
	}

	changes, err := w.Engine.Watch(ctx)
	if err != nil {
		return err
	}

	ids := w.Models
	if len(ids) == 0 {
		if ids, err = w.Engine.Models(); err != nil {
			return fmt.Errorf("list models: %w", err)
		}
	}

	failed := make(map[string]time.Duration)
	for _, id := range ids {
		w.rebuild(ctx, id, failed, minWait, maxWait)
	}

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()
	arm := func() {
		timer.Stop()
		if wait, ok := nextRetry(failed); ok {
			timer.Reset(wait)
		}
	}
	arm()

	PrintSystemMessage(w.Out, "Waiting for changes...")
	for {
		select {
		case <-ctx.Done():
			return nil
		case id, ok := <-changes:
			if !ok {
				return nil
			}
			if len(w.Models) > 0 && !slices.Contains(w.Models, id) {
				continue
			}
			w.Logger.Info("Change detected, rebuilding", "model", id)
			PrintSystemMessage(w.Out, "Change detected in '%s'.", id)
			delete(failed, id)
			w.rebuild(ctx, id, failed, minWait, maxWait)
			arm()
		case <-timer.C:
			for _, id := range sortedKeys(failed) {
				w.Engine.Invalidate(id)
				w.rebuild(ctx, id, failed, minWait, maxWait)
			}
			arm()
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context, id string, failed map[string]time.Duration, minWait, maxWait time.Duration) {
	view, err := w.Engine.Build(ctx, id)
	if err == nil && w.Handle != nil {
		err = w.Handle(ctx, view)
	}
	if err == nil {
		delete(failed, id)
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	if errors.Is(err, domain.ErrModelNotFound) {
		delete(failed, id)
		w.Logger.Warn("Model removed", "model", id)
		PrintSystemMessage(w.Out, "Model '%s' was removed.", id)
		return
	}

	wait := minWait
	if prev, ok := failed[id]; ok {
		wait = min(prev*2, maxWait)
	}
	failed[id] = wait
	w.Logger.Error("Build failed", "model", id, "err", err, "retry_in", wait)
	PrintSystemMessage(w.Out, "Build of '%s' failed: %v (retrying in %s)", id, err, wait)
}

func nextRetry(failed map[string]time.Duration) (time.Duration, bool) {
	var wait time.Duration
	for _, d := range failed {
		if wait == 0 || d < wait {
			wait = d
		}
	}
	return wait, wait > 0
}

func sortedKeys(m map[string]time.Duration) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
