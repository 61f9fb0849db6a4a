package dsl

import "github.com/aretw0/eventmodel/pkg/domain"

// EventBuilder configures an event occurrence.
type EventBuilder struct {
	ev domain.Event
}

// ProducedBy links the event to the command occurrence that caused it.
func (e *EventBuilder) ProducedBy(command string, tick int) *EventBuilder {
	e.ev.ProducedBy = &domain.ProducerKey{Command: command, Tick: tick}
	return e
}

// System marks the event as originating from an external system.
func (e *EventBuilder) System(name string) *EventBuilder {
	e.ev.System = name
	return e
}

// Example sets the sample payload.
func (e *EventBuilder) Example(v any) *EventBuilder {
	e.ev.Example = v
	return e
}

func (e *EventBuilder) build() domain.Element { return e.ev }

// StateBuilder configures a state view occurrence.
type StateBuilder struct {
	st domain.StateView
}

// SourcedFrom adds the names of the events the view projects.
func (s *StateBuilder) SourcedFrom(events ...string) *StateBuilder {
	s.st.SourcedFrom = append(s.st.SourcedFrom, events...)
	return s
}

// Example sets the sample payload.
func (s *StateBuilder) Example(v any) *StateBuilder {
	s.st.Example = v
	return s
}

// Attach adds an attachment such as a wireframe or a link.
func (s *StateBuilder) Attach(a domain.Attachment) *StateBuilder {
	s.st.Attachments = append(s.st.Attachments, a)
	return s
}

func (s *StateBuilder) build() domain.Element {
	st := s.st
	st.SourcedFrom = append([]string{}, s.st.SourcedFrom...)
	return st
}

// CommandBuilder configures a command occurrence.
type CommandBuilder struct {
	cmd domain.Command
}

// Example sets the sample payload.
func (c *CommandBuilder) Example(v any) *CommandBuilder {
	c.cmd.Example = v
	return c
}

// Attach adds an attachment such as a wireframe or a link.
func (c *CommandBuilder) Attach(a domain.Attachment) *CommandBuilder {
	c.cmd.Attachments = append(c.cmd.Attachments, a)
	return c
}

func (c *CommandBuilder) build() domain.Element { return c.cmd }

// ActorBuilder configures an actor occurrence.
type ActorBuilder struct {
	actor domain.Actor
}

// Reads sets the state view the actor looks at.
func (a *ActorBuilder) Reads(view string) *ActorBuilder {
	a.actor.ReadsView = view
	return a
}

// Sends sets the command the actor issues.
func (a *ActorBuilder) Sends(command string) *ActorBuilder {
	a.actor.SendsCommand = command
	return a
}

// Role sets the free-form role of the actor.
func (a *ActorBuilder) Role(role string) *ActorBuilder {
	a.actor.Role = role
	return a
}

func (a *ActorBuilder) build() domain.Element { return a.actor }
