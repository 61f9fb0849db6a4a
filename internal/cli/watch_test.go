package cli

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/eventmodel"
	"github.com/aretw0/eventmodel/pkg/adapters/memory"
	"github.com/aretw0/eventmodel/pkg/domain"
)

const (
	placeOrder  = `{"timeline": [{"type": "command", "name": "PlaceOrder", "tick": 1}]}`
	cancelOrder = `{"timeline": [{"type": "command", "name": "CancelOrder", "tick": 1}]}`
	invalid     = `{"timeline": [{"type": "command", "tick": 1}]}`
)

// recorder collects handled views in a goroutine-safe way.
type recorder struct {
	mu    sync.Mutex
	names map[string][]string
	seen  chan string
}

func newRecorder() *recorder {
	return &recorder{names: make(map[string][]string), seen: make(chan string, 32)}
}

func (r *recorder) handle(ctx context.Context, view *domain.View) error {
	r.mu.Lock()
	for _, s := range view.Slices {
		r.names[view.Model] = append(r.names[view.Model], s.Name)
	}
	r.mu.Unlock()
	r.seen <- view.Model
	return nil
}

func (r *recorder) wait(t *testing.T, want string) {
	t.Helper()
	for {
		select {
		case id := <-r.seen:
			if id == want {
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func (r *recorder) get(id string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names[id]...)
}

func startWatcher(t *testing.T, w *Watcher) (cancel func(), done <-chan error) {
	t.Helper()
	ctx, cancelFn := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	return cancelFn, errCh
}

func TestWatcher_RebuildsOnChange(t *testing.T) {
	loader := memory.NewLoader(map[string]string{"orders": placeOrder, "other": placeOrder})
	eng, err := eventmodel.New("", eventmodel.WithLoader(loader))
	require.NoError(t, err)

	rec := newRecorder()
	var out bytes.Buffer
	w := &Watcher{Engine: eng, Models: []string{"orders"}, Handle: rec.handle, Out: &syncWriter{w: &out}}
	cancel, done := startWatcher(t, w)

	rec.wait(t, "orders")

	loader.Put("other", []byte(cancelOrder)) // not watched
	loader.Put("orders", []byte(cancelOrder))
	rec.wait(t, "orders")

	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []string{"PlaceOrder", "CancelOrder"}, rec.get("orders"))
	assert.Empty(t, rec.get("other"))
}

// flakyLoader fails the first reads, then serves the wrapped loader.
type flakyLoader struct {
	*memory.Loader
	mu       sync.Mutex
	failures int
}

func (f *flakyLoader) GetModel(id string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("disk busy")
	}
	return f.Loader.GetModel(id)
}

func TestWatcher_RetriesFailedBuilds(t *testing.T) {
	loader := &flakyLoader{Loader: memory.NewLoader(map[string]string{"orders": placeOrder}), failures: 2}
	eng, err := eventmodel.New("", eventmodel.WithLoader(loader))
	require.NoError(t, err)

	rec := newRecorder()
	out := &syncWriter{w: &bytes.Buffer{}}
	w := &Watcher{
		Engine:     eng,
		Handle:     rec.handle,
		Out:        out,
		MinBackoff: 10 * time.Millisecond,
		MaxBackoff: 20 * time.Millisecond,
	}
	cancel, done := startWatcher(t, w)
	defer func() {
		cancel()
		<-done
	}()

	// No change notification is sent; the retry timer picks the model up again.
	rec.wait(t, "orders")
	assert.Equal(t, []string{"PlaceOrder"}, rec.get("orders"))
	assert.Contains(t, string(out.Bytes()), "Build of 'orders' failed: disk busy")
}

func TestWatcher_ChangeClearsFailure(t *testing.T) {
	loader := memory.NewLoader(map[string]string{"orders": invalid})
	eng, err := eventmodel.New("", eventmodel.WithLoader(loader))
	require.NoError(t, err)

	rec := newRecorder()
	out := &syncWriter{w: &bytes.Buffer{}}
	w := &Watcher{Engine: eng, Handle: rec.handle, Out: out, MinBackoff: time.Minute}
	cancel, done := startWatcher(t, w)
	defer func() {
		cancel()
		<-done
	}()

	require.Eventually(t, func() bool {
		return bytes.Contains(out.Bytes(), []byte("Build of 'orders' failed"))
	}, 2*time.Second, 10*time.Millisecond)

	loader.Put("orders", []byte(placeOrder))
	rec.wait(t, "orders")
	assert.Equal(t, []string{"PlaceOrder"}, rec.get("orders"))
}

func TestWatcher_HandlerErrorsAreRetried(t *testing.T) {
	loader := memory.NewLoader(map[string]string{"orders": placeOrder})
	eng, err := eventmodel.New("", eventmodel.WithLoader(loader))
	require.NoError(t, err)

	var mu sync.Mutex
	calls := 0
	succeeded := make(chan struct{})
	w := &Watcher{
		Engine:     eng,
		MinBackoff: 10 * time.Millisecond,
		Handle: func(ctx context.Context, view *domain.View) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			if calls < 3 {
				return errors.New("sink unavailable")
			}
			close(succeeded)
			return nil
		},
	}
	cancel, done := startWatcher(t, w)
	defer func() {
		cancel()
		<-done
	}()

	select {
	case <-succeeded:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not retried")
	}
}

func TestWatcher_DropsRemovedModels(t *testing.T) {
	loader := memory.NewLoader(map[string]string{"orders": placeOrder})
	eng, err := eventmodel.New("", eventmodel.WithLoader(loader))
	require.NoError(t, err)

	out := &syncWriter{w: &bytes.Buffer{}}
	w := &Watcher{Engine: eng, Models: []string{"ghost"}, Out: out, MinBackoff: 5 * time.Millisecond}
	cancel, done := startWatcher(t, w)

	assert.Eventually(t, func() bool {
		return bytes.Contains(out.Bytes(), []byte("Waiting for changes"))
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("Model 'ghost' was removed.")))
	assert.NotContains(t, string(out.Bytes()), "retrying")
}

type staticLoader struct{}

func (staticLoader) GetModel(id string) ([]byte, error) { return []byte(placeOrder), nil }
func (staticLoader) ListModels() ([]string, error)      { return []string{"orders"}, nil }

func TestWatcher_RequiresWatchableLoader(t *testing.T) {
	eng, err := eventmodel.New("", eventmodel.WithLoader(staticLoader{}))
	require.NoError(t, err)

	w := &Watcher{Engine: eng}
	assert.Error(t, w.Run(context.Background()))
}

type syncWriter struct {
	mu sync.Mutex
	w  *bytes.Buffer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *syncWriter) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.w.Bytes()...)
}
