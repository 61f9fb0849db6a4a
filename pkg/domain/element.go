package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ElementType is the tag of a timeline element.
type ElementType string

const (
	// ElementEvent is something that happened.
	ElementEvent ElementType = "event"
	// ElementState is a read projection built from events.
	ElementState ElementType = "state"
	// ElementActor is a participant reading a view and sending a command.
	ElementActor ElementType = "actor"
	// ElementCommand is an intent to act.
	ElementCommand ElementType = "command"
)

// ElementTypes lists every variant of the closed element set.
var ElementTypes = []ElementType{ElementEvent, ElementState, ElementActor, ElementCommand}

// Element is one occurrence on the timeline.
// The set of implementations is closed: Event, StateView, Actor and Command.
type Element interface {
	ElementType() ElementType
	ElementName() string
	ElementTick() int
	element()
}

// Attachment is an artifact (image, link, document) attached to a state view or command occurrence.
type Attachment struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
	Type string `json:"type,omitempty"`
}

// ProducerKey identifies the exact command occurrence that caused an event.
type ProducerKey struct {
	Command string `json:"command"`
	Tick    int    `json:"tick"`
}

// String renders the key in its wire form "<command>-<tick>".
func (k ProducerKey) String() string {
	return fmt.Sprintf("%s-%d", k.Command, k.Tick)
}

// MarshalJSON writes the key in its wire form.
func (k ProducerKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON accepts the wire form or an object with command and tick fields.
func (k *ProducerKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseProducerKey(s)
		if err != nil {
			return err
		}
		*k = parsed
		return nil
	}
	type alias ProducerKey
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidProducerKey, data)
	}
	*k = ProducerKey(a)
	return nil
}

// ParseProducerKey parses "<command>-<tick>". The tick is taken after the last '-',
// so command names may contain the separator.
func ParseProducerKey(s string) (ProducerKey, error) {
	i := strings.LastIndex(s, "-")
	if i <= 0 || i == len(s)-1 {
		return ProducerKey{}, fmt.Errorf("%w: %q", ErrInvalidProducerKey, s)
	}
	tick, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return ProducerKey{}, fmt.Errorf("%w: %q", ErrInvalidProducerKey, s)
	}
	return ProducerKey{Command: s[:i], Tick: tick}, nil
}

// Event is something that happened.
type Event struct {
	Name       string       `json:"name"`
	Tick       int          `json:"tick"`
	ProducedBy *ProducerKey `json:"producedBy,omitempty"`
	// System names the external system the event originates from, if any.
	System  string `json:"system,omitempty"`
	Example any    `json:"example,omitempty"`
}

// StateView is a read projection sourced from events (by name, not by occurrence).
type StateView struct {
	Name        string       `json:"name"`
	Tick        int          `json:"tick"`
	SourcedFrom []string     `json:"sourcedFrom"`
	Example     any          `json:"example,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Actor reads a state view and sends a command.
type Actor struct {
	Name         string `json:"name"`
	Tick         int    `json:"tick"`
	ReadsView    string `json:"readsView"`
	SendsCommand string `json:"sendsCommand"`
	Role         string `json:"role,omitempty"`
}

// Command is an intent to act.
type Command struct {
	Name        string       `json:"name"`
	Tick        int          `json:"tick"`
	Example     any          `json:"example,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

func (Event) ElementType() ElementType     { return ElementEvent }
func (StateView) ElementType() ElementType { return ElementState }
func (Actor) ElementType() ElementType     { return ElementActor }
func (Command) ElementType() ElementType   { return ElementCommand }

func (e Event) ElementName() string     { return e.Name }
func (s StateView) ElementName() string { return s.Name }
func (a Actor) ElementName() string     { return a.Name }
func (c Command) ElementName() string   { return c.Name }

func (e Event) ElementTick() int     { return e.Tick }
func (s StateView) ElementTick() int { return s.Tick }
func (a Actor) ElementTick() int     { return a.Tick }
func (c Command) ElementTick() int   { return c.Tick }

func (Event) element()     {}
func (StateView) element() {}
func (Actor) element()     {}
func (Command) element()   {}

// The wire form carries the tag next to the variant fields.

func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	return json.Marshal(struct {
		Type ElementType `json:"type"`
		alias
	}{ElementEvent, alias(e)})
}

func (s StateView) MarshalJSON() ([]byte, error) {
	type alias StateView
	return json.Marshal(struct {
		Type ElementType `json:"type"`
		alias
	}{ElementState, alias(s)})
}

func (a Actor) MarshalJSON() ([]byte, error) {
	type alias Actor
	return json.Marshal(struct {
		Type ElementType `json:"type"`
		alias
	}{ElementActor, alias(a)})
}

func (c Command) MarshalJSON() ([]byte, error) {
	type alias Command
	return json.Marshal(struct {
		Type ElementType `json:"type"`
		alias
	}{ElementCommand, alias(c)})
}

// Timeline is the chronologically ordered input of a model.
type Timeline []Element

// Events returns the event occurrences in timeline order.
func (t Timeline) Events() []Event {
	var out []Event
	for _, el := range t {
		if ev, ok := el.(Event); ok {
			out = append(out, ev)
		}
	}
	return out
}

// Actors returns the actor occurrences in timeline order.
func (t Timeline) Actors() []Actor {
	var out []Actor
	for _, el := range t {
		if a, ok := el.(Actor); ok {
			out = append(out, a)
		}
	}
	return out
}
