package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/eventmodel/pkg/domain"
	"github.com/aretw0/eventmodel/pkg/export"
	"github.com/aretw0/loam"
)

// Loader adapts the Loam library to the eventmodel ModelLoader interface.
type Loader struct {
	Repo *loam.TypedRepository[ModelMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[ModelMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// GetModel retrieves a model document from the Loam repository and re-encodes it as JSON.
// Markdown files carry the model in their frontmatter; the body is ignored.
func (l *Loader) GetModel(id string) ([]byte, error) {
	ctx := context.Background()

	if export.Ignored(id) {
		return nil, fmt.Errorf("%w: %s", domain.ErrModelNotFound, id)
	}

	doc, err := l.Repo.Get(ctx, id)
	if err != nil {
		if !l.exists(id) {
			return nil, fmt.Errorf("%w: %s", domain.ErrModelNotFound, id)
		}
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}

	data := buildModelData(doc.ID, doc.Data)

	bytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal model data: %w", err)
	}

	return bytes, nil
}

// exists reports whether a listed document resolves to id.
func (l *Loader) exists(id string) bool {
	ids, err := l.ListModels()
	if err != nil {
		return true
	}
	i := sort.SearchStrings(ids, id)
	return i < len(ids) && ids[i] == id
}

func buildModelData(docID string, meta ModelMetadata) map[string]any {
	data := make(map[string]any)

	rawID := meta.ID
	if rawID == "" {
		rawID = docID
	}
	data["id"] = trimExtension(rawID)

	if meta.Name != "" {
		data["name"] = meta.Name
	}

	timeline := normalize(meta.Timeline)
	if timeline == nil {
		timeline = []any{}
	}
	data["timeline"] = timeline

	if len(meta.Specifications) > 0 {
		data["specifications"] = normalize(meta.Specifications)
	}

	return data
}

// normalize converts YAML-decoded maps keyed by any into JSON-compatible maps.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[k] = normalize(sub)
		}
		return out
	case map[any]any: // YAML often decodes to this
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[fmt.Sprintf("%v", k)] = normalize(sub)
		}
		return out
	case []any:
		if val == nil {
			return nil
		}
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	default:
		return val
	}
}

// ListModels lists all models in the repository.
func (l *Loader) ListModels() ([]string, error) {
	ctx := context.Background()
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))

	for _, doc := range docs {
		if export.Ignored(trimExtension(doc.ID)) {
			continue
		}
		// Use the ID from metadata if available, otherwise filename ID
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				id := trimExtension(evt.ID)
				if export.Ignored(id) {
					continue
				}
				// Loam debounces on its own; pass the model ID up the chain.
				select {
				case ch <- id:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
