package slices

import "github.com/aretw0/eventmodel/pkg/domain"

// synthesize produces the Timeline Scenario of a slice.
// It returns false when the slice has no occurrences.
func synthesize(s domain.Slice, idx *index) (domain.Scenario, bool) {
	switch s.Kind {
	case domain.SliceState:
		if len(s.StateOccurrences) == 0 {
			return domain.Scenario{}, false
		}
		return stateScenario(s, idx), true
	case domain.SliceCommand:
		if len(s.CommandOccurrences) == 0 {
			return domain.Scenario{}, false
		}
		return commandScenario(s, idx), true
	}
	return domain.Scenario{}, false
}

// stateScenario pairs every state occurrence with the single event that precedes it.
func stateScenario(s domain.Slice, idx *index) domain.Scenario {
	sc := domain.Scenario{
		Name:   domain.TimelineScenarioName,
		Origin: domain.OriginTimeline,
		Steps:  []domain.Step{},
	}

	prevTick := 0
	for i, occ := range s.StateOccurrences {
		then := domain.Sample{Type: domain.ElementState, Name: s.Name, Tick: occ.Tick, Example: clone(occ.Example)}

		ev, found := idx.precedingEvent(occ.SourcedFrom, prevTick, occ.Tick)
		switch {
		case found:
			sc.Steps = append(sc.Steps, domain.Step{
				Kind:  domain.StepState,
				Given: []domain.Sample{eventSample(ev)},
				Then:  []domain.Sample{then},
			})
		case i == 0:
			sc.InitialState = clone(occ.Example)
		default:
			sc.Steps = append(sc.Steps, domain.Step{
				Kind: domain.StepState,
				Then: []domain.Sample{then},
			})
		}
		prevTick = occ.Tick
	}
	return sc
}

// precedingEvent finds the earliest event named in names with after < tick < before.
// Events are scanned in index order, so equal ticks resolve to timeline order.
func (idx *index) precedingEvent(names []string, after, before int) (domain.Event, bool) {
	if len(names) == 0 {
		return domain.Event{}, false
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	for _, ev := range idx.events {
		if ev.Tick <= after {
			continue
		}
		if ev.Tick >= before {
			break
		}
		if wanted[ev.Name] {
			return ev, true
		}
	}
	return domain.Event{}, false
}

// commandScenario lists the intervening events and every command occurrence with its output.
func commandScenario(s domain.Slice, idx *index) domain.Scenario {
	sc := domain.Scenario{
		Name:   domain.TimelineScenarioName,
		Origin: domain.OriginTimeline,
		Steps:  []domain.Step{},
	}

	lastTick := 0
	for _, occ := range s.CommandOccurrences {
		for _, ev := range idx.between(lastTick, occ.Tick) {
			sc.Steps = append(sc.Steps, domain.Step{
				Kind:  domain.StepEvents,
				Given: []domain.Sample{eventSample(ev)},
			})
		}

		then := make([]domain.Sample, 0, len(occ.Produced))
		last := occ.Tick
		for _, ev := range occ.Produced {
			then = append(then, eventSample(ev))
			if ev.Tick > last {
				last = ev.Tick
			}
		}
		sc.Steps = append(sc.Steps, domain.Step{
			Kind: domain.StepCommand,
			When: &domain.Sample{Type: domain.ElementCommand, Name: s.Name, Tick: occ.Tick, Example: clone(occ.Example)},
			Then: then,
		})
		lastTick = last
	}
	return sc
}

// between returns every event with after < tick < before in tick order.
func (idx *index) between(after, before int) []domain.Event {
	var out []domain.Event
	for _, ev := range idx.events {
		if ev.Tick <= after {
			continue
		}
		if ev.Tick >= before {
			break
		}
		out = append(out, ev)
	}
	return out
}

func eventSample(ev domain.Event) domain.Sample {
	return domain.Sample{Type: domain.ElementEvent, Name: ev.Name, Tick: ev.Tick, Example: clone(ev.Example)}
}
