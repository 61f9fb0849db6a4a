package domain

import (
	"context"
	"time"
)

// BuildEvent describes one load or build of a model.
type BuildEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	ModelID   string        `json:"model_id"`
	Slices    int           `json:"slices,omitempty"`
	Elements  int           `json:"elements,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Err       error         `json:"-"`
}

// BuildHooks defines callbacks for engine observability.
type BuildHooks struct {
	OnLoad  func(context.Context, *BuildEvent)
	OnBuild func(context.Context, *BuildEvent)
	OnError func(context.Context, *BuildEvent)
}

// Merge returns hooks calling h first and then other.
func (h BuildHooks) Merge(other BuildHooks) BuildHooks {
	return BuildHooks{
		OnLoad:  chain(h.OnLoad, other.OnLoad),
		OnBuild: chain(h.OnBuild, other.OnBuild),
		OnError: chain(h.OnError, other.OnError),
	}
}

func chain(a, b func(context.Context, *BuildEvent)) func(context.Context, *BuildEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *BuildEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
