package dsl

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/eventmodel/internal/compiler"
	"github.com/aretw0/eventmodel/pkg/adapters/memory"
	"github.com/aretw0/eventmodel/pkg/domain"
)

// Builder manages the model construction.
type Builder struct {
	id       string
	name     string
	timeline []elementBuilder
	specs    []*SpecBuilder
}

type elementBuilder interface {
	build() domain.Element
}

// New creates a new model builder for the given model ID.
func New(id string) *Builder {
	return &Builder{id: id}
}

// Name sets the display name of the model.
func (b *Builder) Name(name string) *Builder {
	b.name = name
	return b
}

// Event appends an event occurrence to the timeline.
func (b *Builder) Event(name string, tick int) *EventBuilder {
	eb := &EventBuilder{ev: domain.Event{Name: name, Tick: tick}}
	b.timeline = append(b.timeline, eb)
	return eb
}

// State appends a state view occurrence to the timeline.
func (b *Builder) State(name string, tick int) *StateBuilder {
	sb := &StateBuilder{st: domain.StateView{Name: name, Tick: tick, SourcedFrom: []string{}}}
	b.timeline = append(b.timeline, sb)
	return sb
}

// Command appends a command occurrence to the timeline.
func (b *Builder) Command(name string, tick int) *CommandBuilder {
	cb := &CommandBuilder{cmd: domain.Command{Name: name, Tick: tick}}
	b.timeline = append(b.timeline, cb)
	return cb
}

// Actor appends an actor occurrence to the timeline.
func (b *Builder) Actor(name string, tick int) *ActorBuilder {
	ab := &ActorBuilder{actor: domain.Actor{Name: name, Tick: tick}}
	b.timeline = append(b.timeline, ab)
	return ab
}

// Spec declares scenarios for the slice with the given kind and name.
// Calling Spec twice with the same key returns the existing builder.
func (b *Builder) Spec(kind domain.SliceKind, name string) *SpecBuilder {
	for _, sb := range b.specs {
		if sb.spec.Type == kind && sb.spec.Name == name {
			return sb
		}
	}
	sb := &SpecBuilder{spec: domain.Specification{Name: name, Type: kind, Scenarios: []domain.SpecScenario{}}}
	b.specs = append(b.specs, sb)
	return sb
}

// Model returns the domain model without validating it.
func (b *Builder) Model() domain.Model {
	m := domain.Model{
		ID:       b.id,
		Name:     b.name,
		Timeline: make(domain.Timeline, 0, len(b.timeline)),
	}
	for _, eb := range b.timeline {
		m.Timeline = append(m.Timeline, eb.build())
	}
	for _, sb := range b.specs {
		m.Specifications = append(m.Specifications, sb.build())
	}
	return m
}

// Build validates the model against the document schema and compiles it into a memory.Loader.
func (b *Builder) Build() (*memory.Loader, error) {
	m := b.Model()

	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode model %s: %w", b.id, err)
	}
	parser, err := compiler.NewParser()
	if err != nil {
		return nil, err
	}
	if _, err := parser.Parse(data); err != nil {
		return nil, fmt.Errorf("model %s: %w", b.id, err)
	}

	loader, err := memory.NewFromModels(m)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}
