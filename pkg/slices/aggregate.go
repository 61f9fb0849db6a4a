package slices

import (
	"sort"

	"github.com/aretw0/eventmodel/pkg/domain"
)

// accumulator is the ordered working state of the aggregation pass.
type accumulator struct {
	order  []domain.SliceKey
	slices map[domain.SliceKey]*sliceState
}

type sliceState struct {
	slice domain.Slice
	// refs is the union of referenced event names in first-seen order.
	refs []string
	seen map[string]bool
}

func (st *sliceState) addRef(name string) {
	if st.seen[name] {
		return
	}
	st.seen[name] = true
	st.refs = append(st.refs, name)
}

func (st *sliceState) offerExample(v any) {
	if isEmpty(st.slice.Example) && !isEmpty(v) {
		st.slice.Example = clone(v)
	}
}

// finalize resolves the working set into tick-annotated references.
func (st *sliceState) finalize(idx *index) domain.Slice {
	s := st.slice
	refs := make([]domain.EventRef, 0, len(st.refs))
	for _, name := range st.refs {
		refs = append(refs, idx.ref(name))
	}
	switch s.Kind {
	case domain.SliceState:
		s.SourcedFrom = refs
	case domain.SliceCommand:
		s.Produces = refs
	}
	s.Scenarios = []domain.Scenario{}
	return s
}

// occurrences returns the state views and commands ordered by tick, ties in timeline order.
func occurrences(tl domain.Timeline) []domain.Element {
	var out []domain.Element
	for _, el := range tl {
		switch el.(type) {
		case domain.StateView, domain.Command:
			out = append(out, el)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ElementTick() < out[j].ElementTick()
	})
	return out
}

func aggregate(tl domain.Timeline, idx *index) *accumulator {
	acc := &accumulator{slices: make(map[domain.SliceKey]*sliceState)}

	lookup := func(kind domain.SliceKind, name string) *sliceState {
		key := domain.SliceKey{Kind: kind, Name: name}
		st, ok := acc.slices[key]
		if !ok {
			st = &sliceState{
				slice: domain.Slice{Kind: kind, Name: name, Ticks: []int{}},
				seen:  make(map[string]bool),
			}
			acc.slices[key] = st
			acc.order = append(acc.order, key)
		}
		return st
	}

	for _, el := range occurrences(tl) {
		switch occ := el.(type) {
		case domain.StateView:
			st := lookup(domain.SliceState, occ.Name)
			st.slice.Ticks = append(st.slice.Ticks, occ.Tick)
			st.slice.StateOccurrences = append(st.slice.StateOccurrences, domain.StateOccurrence{
				Tick:        occ.Tick,
				SourcedFrom: append([]string{}, occ.SourcedFrom...),
				Example:     clone(occ.Example),
				Attachments: cloneAttachments(occ.Attachments),
			})
			for _, name := range occ.SourcedFrom {
				st.addRef(name)
			}
			st.slice.Attachments = append(st.slice.Attachments, occ.Attachments...)
			st.offerExample(occ.Example)

		case domain.Command:
			st := lookup(domain.SliceCommand, occ.Name)
			st.slice.Ticks = append(st.slice.Ticks, occ.Tick)
			produced := idx.producedBy(domain.ProducerKey{Command: occ.Name, Tick: occ.Tick})
			st.slice.CommandOccurrences = append(st.slice.CommandOccurrences, domain.CommandOccurrence{
				Tick:        occ.Tick,
				Example:     clone(occ.Example),
				Attachments: cloneAttachments(occ.Attachments),
				Produced:    produced,
			})
			for _, ev := range produced {
				st.addRef(ev.Name)
			}
			st.slice.Attachments = append(st.slice.Attachments, occ.Attachments...)
			st.offerExample(occ.Example)
		}
	}
	return acc
}
