package compiler

import (
	"fmt"

	"github.com/aretw0/eventmodel/pkg/domain"
	"github.com/aretw0/eventmodel/pkg/slices"
)

// Diagnostic codes reported by Report.
const (
	CodeDanglingSource         = "dangling-source"
	CodeUnmatchedProducer      = "unmatched-producer"
	CodeUnmatchedSpecification = "unmatched-specification"
	CodeActorMissingView       = "actor-missing-view"
	CodeActorMissingCommand    = "actor-missing-command"
)

// Diagnostic is a referential warning about a structurally valid model.
// None of them stop a build; the builder tolerates every case.
type Diagnostic struct {
	Code    string `json:"code"`
	Tick    int    `json:"tick"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] tick %d: %s", d.Code, d.Tick, d.Message)
}

// Report cross-checks the model against the view built from it.
func Report(model *domain.Model, view *domain.View) []Diagnostic {
	if model == nil {
		return nil
	}

	var out []Diagnostic

	commands := make(map[domain.ProducerKey]bool)
	names := make(map[domain.ElementType]map[string]bool)
	for _, t := range domain.ElementTypes {
		names[t] = make(map[string]bool)
	}
	for _, el := range model.Timeline {
		names[el.ElementType()][el.ElementName()] = true
		if c, ok := el.(domain.Command); ok {
			commands[domain.ProducerKey{Command: c.Name, Tick: c.Tick}] = true
		}
	}

	for _, el := range model.Timeline {
		switch v := el.(type) {
		case domain.StateView:
			for _, src := range v.SourcedFrom {
				if !names[domain.ElementEvent][src] {
					out = append(out, Diagnostic{
						Code:    CodeDanglingSource,
						Tick:    v.Tick,
						Subject: v.Name,
						Message: fmt.Sprintf("state %s is sourced from %s, which never occurs", v.Name, src),
					})
				}
			}
		case domain.Event:
			if v.ProducedBy != nil && !commands[*v.ProducedBy] {
				out = append(out, Diagnostic{
					Code:    CodeUnmatchedProducer,
					Tick:    v.Tick,
					Subject: v.Name,
					Message: fmt.Sprintf("event %s is produced by %s, which matches no command occurrence", v.Name, v.ProducedBy),
				})
			}
		case domain.Actor:
			if v.ReadsView != "" && !names[domain.ElementState][v.ReadsView] {
				out = append(out, Diagnostic{
					Code:    CodeActorMissingView,
					Tick:    v.Tick,
					Subject: v.Name,
					Message: fmt.Sprintf("actor %s reads %s, which is not a state view", v.Name, v.ReadsView),
				})
			}
			if v.SendsCommand != "" && !names[domain.ElementCommand][v.SendsCommand] {
				out = append(out, Diagnostic{
					Code:    CodeActorMissingCommand,
					Tick:    v.Tick,
					Subject: v.Name,
					Message: fmt.Sprintf("actor %s sends %s, which is not a command", v.Name, v.SendsCommand),
				})
			}
		}
	}

	for _, spec := range slices.Unmatched(view, model.Specifications) {
		out = append(out, Diagnostic{
			Code:    CodeUnmatchedSpecification,
			Subject: spec.Name,
			Message: fmt.Sprintf("specification for %s %s matches no slice", spec.Type, spec.Name),
		})
	}

	return out
}
