package domain

// Model is a validated, already-parsed event model.
type Model struct {
	ID             string          `json:"id,omitempty"`
	Name           string          `json:"name,omitempty"`
	Timeline       Timeline        `json:"timeline"`
	Specifications []Specification `json:"specifications,omitempty"`
}

// Specification attaches author-declared scenarios to the slice with the same kind and name.
type Specification struct {
	Name      string         `json:"name"`
	Type      SliceKind      `json:"type"`
	Scenarios []SpecScenario `json:"scenarios"`
}

// SpecScenario is a scenario as the author writes it.
// A scenario with a When reads as Given/When/Then (command), otherwise as Given/Then (state).
type SpecScenario struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Given       []Sample `json:"given,omitempty"`
	When        *Sample  `json:"when,omitempty"`
	Then        []Sample `json:"then,omitempty"`
}
