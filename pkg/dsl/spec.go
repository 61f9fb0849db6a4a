package dsl

import "github.com/aretw0/eventmodel/pkg/domain"

// SpecBuilder collects the authored scenarios of one slice.
type SpecBuilder struct {
	spec domain.Specification
}

// Scenario starts a new scenario. Steps are added on the returned builder.
func (s *SpecBuilder) Scenario(name string) *ScenarioBuilder {
	s.spec.Scenarios = append(s.spec.Scenarios, domain.SpecScenario{Name: name})
	return &ScenarioBuilder{spec: s, index: len(s.spec.Scenarios) - 1}
}

func (s *SpecBuilder) build() domain.Specification {
	spec := s.spec
	spec.Scenarios = append([]domain.SpecScenario{}, s.spec.Scenarios...)
	return spec
}

// ScenarioBuilder configures a single authored scenario.
type ScenarioBuilder struct {
	spec  *SpecBuilder
	index int
}

func (sc *ScenarioBuilder) scenario() *domain.SpecScenario {
	return &sc.spec.spec.Scenarios[sc.index]
}

// Description sets the free-form description.
func (sc *ScenarioBuilder) Description(text string) *ScenarioBuilder {
	sc.scenario().Description = text
	return sc
}

// Given adds preconditions.
func (sc *ScenarioBuilder) Given(samples ...domain.Sample) *ScenarioBuilder {
	s := sc.scenario()
	s.Given = append(s.Given, samples...)
	return sc
}

// When sets the triggering command, turning the scenario into Given/When/Then.
func (sc *ScenarioBuilder) When(sample domain.Sample) *ScenarioBuilder {
	sc.scenario().When = &sample
	return sc
}

// Then adds expected outcomes.
func (sc *ScenarioBuilder) Then(samples ...domain.Sample) *ScenarioBuilder {
	s := sc.scenario()
	s.Then = append(s.Then, samples...)
	return sc
}

// Scenario starts a sibling scenario on the same slice.
func (sc *ScenarioBuilder) Scenario(name string) *ScenarioBuilder {
	return sc.spec.Scenario(name)
}
