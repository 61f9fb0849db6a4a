package http

import (
	"context"
	"log/slog"
	"sync"
)

// allModels is the subscription key receiving every change.
const allModels = ""

// StreamManager fans model change notifications out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan string]struct{} // model ID -> set of channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan string]struct{}),
	}
}

// Subscribe registers a listener for model (empty for every model).
// The returned function unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(model string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[model]; !ok {
		sm.subscribers[model] = make(map[chan string]struct{})
	}
	sm.subscribers[model][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[model]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, model)
				}
			}
		})
	}
}

// Broadcast notifies the subscribers of model and the catch-all subscribers.
func (sm *StreamManager) Broadcast(model string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for _, key := range []string{model, allModels} {
		for ch := range sm.subscribers[key] {
			select {
			case ch <- model:
			default:
				// Drop message if channel is full (slow client)
				slog.Warn("SSE: Client buffer full, dropping message", "model", model)
			}
		}
		if model == allModels {
			break
		}
	}
}

// Pump broadcasts every ID read from changes until ctx is done or changes closes.
func (sm *StreamManager) Pump(ctx context.Context, changes <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-changes:
			if !ok {
				return
			}
			slog.Debug("SSE: Broadcasting change", "model", id)
			sm.Broadcast(id)
		}
	}
}
