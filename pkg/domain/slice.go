package domain

// SliceKind is the kind of a slice. Only state views and commands become slices.
type SliceKind string

const (
	SliceState   SliceKind = "state"
	SliceCommand SliceKind = "command"
)

// SliceKey identifies a slice by kind and name.
type SliceKey struct {
	Kind SliceKind
	Name string
}

// TimelineScenarioName is the name of the scenario synthesized from the timeline.
const TimelineScenarioName = "Timeline Scenario"

// EventRef is a named event together with every tick at which it occurs on the timeline.
// Ticks is empty (never nil) for a dangling reference.
type EventRef struct {
	Name   string `json:"name"`
	Ticks  []int  `json:"ticks"`
	System string `json:"system,omitempty"`
}

// Dangling reports whether the referenced name matched no event on the timeline.
func (r EventRef) Dangling() bool {
	return len(r.Ticks) == 0
}

// StateOccurrence is one appearance of a state view.
type StateOccurrence struct {
	Tick        int          `json:"tick"`
	SourcedFrom []string     `json:"sourcedFrom"`
	Example     any          `json:"example,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// CommandOccurrence is one appearance of a command with the events that exact occurrence produced.
type CommandOccurrence struct {
	Tick        int          `json:"tick"`
	Example     any          `json:"example,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Produced    []Event      `json:"produced"`
}

// Slice is the deduplicated aggregate of every occurrence of one named state view or command.
type Slice struct {
	Kind               SliceKind           `json:"kind"`
	Name               string              `json:"name"`
	Ticks              []int               `json:"ticks"`
	SourcedFrom        []EventRef          `json:"sourcedFrom,omitempty"`
	Produces           []EventRef          `json:"produces,omitempty"`
	StateOccurrences   []StateOccurrence   `json:"stateOccurrences,omitempty"`
	CommandOccurrences []CommandOccurrence `json:"commandOccurrences,omitempty"`
	Attachments        []Attachment        `json:"attachments,omitempty"`
	Scenarios          []Scenario          `json:"scenarios"`
	// SpecScenarioCount is the number of author-declared scenarios appended after the synthesized one.
	SpecScenarioCount int `json:"specScenarioCount"`
	// Example is the first non-empty payload by ascending tick.
	Example any `json:"example,omitempty"`
}

// Key returns the slice identity.
func (s Slice) Key() SliceKey {
	return SliceKey{Kind: s.Kind, Name: s.Name}
}

// Refs returns the cross-referenced events regardless of kind.
func (s Slice) Refs() []EventRef {
	if s.Kind == SliceCommand {
		return s.Produces
	}
	return s.SourcedFrom
}

// Synthesized reports whether the first scenario was inferred from the timeline.
func (s Slice) Synthesized() bool {
	return len(s.Scenarios) > 0 && s.Scenarios[0].Origin == OriginTimeline
}

// ScenarioOrigin distinguishes inferred scenarios from authored ones.
type ScenarioOrigin string

const (
	OriginTimeline      ScenarioOrigin = "timeline"
	OriginSpecification ScenarioOrigin = "specification"
)

// StepKind is the shape of a scenario step.
type StepKind string

const (
	// StepState is a Given events / Then state step.
	StepState StepKind = "state"
	// StepEvents is an events-only row between command occurrences.
	StepEvents StepKind = "events"
	// StepCommand is a When command / Then produced events row.
	StepCommand StepKind = "command"
)

// Sample is one named payload referenced by a scenario step.
type Sample struct {
	Type    ElementType `json:"type,omitempty"`
	Name    string      `json:"name"`
	Tick    int         `json:"tick,omitempty"`
	Example any         `json:"example,omitempty"`
}

// Step is one row of a scenario.
type Step struct {
	Kind  StepKind `json:"kind"`
	Given []Sample `json:"given,omitempty"`
	When  *Sample  `json:"when,omitempty"`
	Then  []Sample `json:"then,omitempty"`
}

// Scenario is a walkthrough of a slice.
type Scenario struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Origin      ScenarioOrigin `json:"origin"`
	// InitialState holds the first state payload when no event precedes it.
	InitialState any    `json:"initialState,omitempty"`
	Steps        []Step `json:"steps"`
}

// View is the builder output consumed by renderers and exporters.
type View struct {
	Model  string  `json:"model,omitempty"`
	Slices []Slice `json:"slices"`
	Actors []Actor `json:"actors"`
}

// Find returns the slice with the given key.
func (v *View) Find(kind SliceKind, name string) (Slice, bool) {
	if v == nil {
		return Slice{}, false
	}
	for _, s := range v.Slices {
		if s.Kind == kind && s.Name == name {
			return s, true
		}
	}
	return Slice{}, false
}
