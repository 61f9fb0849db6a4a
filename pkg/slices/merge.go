package slices

import "github.com/aretw0/eventmodel/pkg/domain"

// specIndex groups declared scenarios by slice key, keeping declaration order.
func specIndex(specs []domain.Specification) map[domain.SliceKey][]domain.SpecScenario {
	out := make(map[domain.SliceKey][]domain.SpecScenario)
	for _, spec := range specs {
		key := domain.SliceKey{Kind: spec.Type, Name: spec.Name}
		out[key] = append(out[key], spec.Scenarios...)
	}
	return out
}

// merge appends the declared scenarios after the synthesized one.
// Keys without a slice are never visited, so unmatched specifications drop out here.
func merge(s *domain.Slice, specs map[domain.SliceKey][]domain.SpecScenario) {
	declared := specs[s.Key()]
	for _, spec := range declared {
		s.Scenarios = append(s.Scenarios, specScenario(spec))
	}
	s.SpecScenarioCount = len(declared)
}

// specScenario converts an authored scenario into a single-step Scenario owning its payloads.
// A scenario with a When becomes a command step, otherwise a state step.
func specScenario(spec domain.SpecScenario) domain.Scenario {
	sc := domain.Scenario{
		Name:        spec.Name,
		Description: spec.Description,
		Origin:      domain.OriginSpecification,
		Steps:       []domain.Step{},
	}
	if len(spec.Given) == 0 && spec.When == nil && len(spec.Then) == 0 {
		return sc
	}
	step := domain.Step{Kind: domain.StepState, Given: cloneSamples(spec.Given), Then: cloneSamples(spec.Then)}
	if spec.When != nil {
		when := cloneSample(*spec.When)
		step.Kind = domain.StepCommand
		step.When = &when
	}
	sc.Steps = append(sc.Steps, step)
	return sc
}

func cloneSample(s domain.Sample) domain.Sample {
	s.Example = clone(s.Example)
	return s
}

func cloneSamples(src []domain.Sample) []domain.Sample {
	if src == nil {
		return nil
	}
	out := make([]domain.Sample, len(src))
	for i, s := range src {
		out[i] = cloneSample(s)
	}
	return out
}

// Unmatched returns the specifications whose kind and name match no slice of the view.
func Unmatched(view *domain.View, specs []domain.Specification) []domain.Specification {
	known := make(map[domain.SliceKey]bool)
	if view != nil {
		for _, s := range view.Slices {
			known[s.Key()] = true
		}
	}
	var out []domain.Specification
	for _, spec := range specs {
		if !known[domain.SliceKey{Kind: spec.Type, Name: spec.Name}] {
			out = append(out, spec)
		}
	}
	return out
}
