package slices

import (
	"sort"

	"github.com/aretw0/eventmodel/pkg/domain"
)

// Build derives the slice view from a model.
// A nil model yields an empty view.
func Build(model *domain.Model) *domain.View {
	view := &domain.View{
		Slices: []domain.Slice{},
		Actors: []domain.Actor{},
	}
	if model == nil {
		return view
	}
	view.Model = model.ID

	idx := newIndex(model.Timeline)
	acc := aggregate(model.Timeline, idx)

	specs := specIndex(model.Specifications)
	for _, key := range acc.order {
		st := acc.slices[key]
		s := st.finalize(idx)
		if sc, ok := synthesize(s, idx); ok {
			s.Scenarios = append(s.Scenarios, sc)
		}
		merge(&s, specs)
		view.Slices = append(view.Slices, s)
	}

	view.Actors = append(view.Actors, model.Timeline.Actors()...)
	return view
}

// index holds the event lookups shared by every stage.
type index struct {
	// events in ascending tick order; equal ticks keep timeline order.
	events   []domain.Event
	ticks    map[string][]int
	systems  map[string]string
	produced map[domain.ProducerKey][]domain.Event
}

func newIndex(tl domain.Timeline) *index {
	idx := &index{
		events:   tl.Events(),
		ticks:    make(map[string][]int),
		systems:  make(map[string]string),
		produced: make(map[domain.ProducerKey][]domain.Event),
	}
	sort.SliceStable(idx.events, func(i, j int) bool {
		return idx.events[i].Tick < idx.events[j].Tick
	})

	for _, ev := range idx.events {
		idx.ticks[ev.Name] = append(idx.ticks[ev.Name], ev.Tick)
		if ev.System != "" && idx.systems[ev.Name] == "" {
			idx.systems[ev.Name] = ev.System
		}
		if ev.ProducedBy != nil {
			idx.produced[*ev.ProducedBy] = append(idx.produced[*ev.ProducedBy], ev)
		}
	}
	return idx
}

// ref resolves an event name to every tick at which it occurs.
func (idx *index) ref(name string) domain.EventRef {
	ticks := make([]int, len(idx.ticks[name]))
	copy(ticks, idx.ticks[name])
	return domain.EventRef{
		Name:   name,
		Ticks:  ticks,
		System: idx.systems[name],
	}
}

// producedBy returns copies of the events caused by the command occurrence at key.
func (idx *index) producedBy(key domain.ProducerKey) []domain.Event {
	src := idx.produced[key]
	out := make([]domain.Event, 0, len(src))
	for _, ev := range src {
		out = append(out, cloneEvent(ev))
	}
	return out
}

// isEmpty reports whether an example payload carries nothing.
func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case map[string]any:
		return len(val) == 0
	case []any:
		return len(val) == 0
	}
	return false
}

// clone copies the JSON-shaped containers of a payload so the view owns its data.
func clone(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[k] = clone(sub)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, sub := range val {
			out[i] = clone(sub)
		}
		return out
	}
	return v
}

func cloneEvent(ev domain.Event) domain.Event {
	out := ev
	out.Example = clone(ev.Example)
	if ev.ProducedBy != nil {
		key := *ev.ProducedBy
		out.ProducedBy = &key
	}
	return out
}

func cloneAttachments(src []domain.Attachment) []domain.Attachment {
	if len(src) == 0 {
		return nil
	}
	return append([]domain.Attachment(nil), src...)
}
