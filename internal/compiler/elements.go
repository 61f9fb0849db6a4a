package compiler

import (
	"fmt"

	"github.com/aretw0/eventmodel/pkg/domain"
)

type eventDoc struct {
	Name           string `mapstructure:"name"`
	Tick           int    `mapstructure:"tick"`
	ProducedBy     any    `mapstructure:"producedBy"`
	System         string `mapstructure:"system"`
	ExternalSource string `mapstructure:"externalSource"`
	Example        any    `mapstructure:"example"`
}

type stateDoc struct {
	Name        string   `mapstructure:"name"`
	Tick        int      `mapstructure:"tick"`
	SourcedFrom []string `mapstructure:"sourcedFrom"`
	Example     any      `mapstructure:"example"`
	Attachments []any    `mapstructure:"attachments"`
}

type actorDoc struct {
	Name         string `mapstructure:"name"`
	Tick         int    `mapstructure:"tick"`
	ReadsView    string `mapstructure:"readsView"`
	SendsCommand string `mapstructure:"sendsCommand"`
	Role         string `mapstructure:"role"`
}

type commandDoc struct {
	Name        string `mapstructure:"name"`
	Tick        int    `mapstructure:"tick"`
	Example     any    `mapstructure:"example"`
	Attachments []any  `mapstructure:"attachments"`
}

// decodeElement dispatches on the "type" tag.
func decodeElement(m map[string]any) (domain.Element, error) {
	tag, _ := m["type"].(string)

	switch domain.ElementType(tag) {
	case domain.ElementEvent:
		var d eventDoc
		if err := decodeInto(m, &d); err != nil {
			return nil, fmt.Errorf("event: %w", err)
		}
		ev := domain.Event{Name: d.Name, Tick: d.Tick, System: d.System, Example: d.Example}
		if ev.System == "" {
			ev.System = d.ExternalSource
		}
		if d.ProducedBy != nil {
			key, err := producerKey(d.ProducedBy)
			if err != nil {
				return nil, fmt.Errorf("event %s: %w", d.Name, err)
			}
			ev.ProducedBy = &key
		}
		return ev, nil

	case domain.ElementState:
		var d stateDoc
		if err := decodeInto(m, &d); err != nil {
			return nil, fmt.Errorf("state: %w", err)
		}
		atts, err := attachments(d.Attachments)
		if err != nil {
			return nil, fmt.Errorf("state %s: %w", d.Name, err)
		}
		sourced := d.SourcedFrom
		if sourced == nil {
			sourced = []string{}
		}
		return domain.StateView{Name: d.Name, Tick: d.Tick, SourcedFrom: sourced, Example: d.Example, Attachments: atts}, nil

	case domain.ElementActor:
		var d actorDoc
		if err := decodeInto(m, &d); err != nil {
			return nil, fmt.Errorf("actor: %w", err)
		}
		return domain.Actor{Name: d.Name, Tick: d.Tick, ReadsView: d.ReadsView, SendsCommand: d.SendsCommand, Role: d.Role}, nil

	case domain.ElementCommand:
		var d commandDoc
		if err := decodeInto(m, &d); err != nil {
			return nil, fmt.Errorf("command: %w", err)
		}
		atts, err := attachments(d.Attachments)
		if err != nil {
			return nil, fmt.Errorf("command %s: %w", d.Name, err)
		}
		return domain.Command{Name: d.Name, Tick: d.Tick, Example: d.Example, Attachments: atts}, nil

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownElementType, tag)
	}
}

// producerKey accepts "<command>-<tick>" or {command, tick}.
func producerKey(v any) (domain.ProducerKey, error) {
	switch val := v.(type) {
	case string:
		return domain.ParseProducerKey(val)
	case map[string]any:
		var key domain.ProducerKey
		if err := decodeInto(val, &key); err != nil || key.Command == "" {
			return domain.ProducerKey{}, fmt.Errorf("%w: %v", domain.ErrInvalidProducerKey, val)
		}
		return key, nil
	default:
		return domain.ProducerKey{}, fmt.Errorf("%w: %v", domain.ErrInvalidProducerKey, val)
	}
}

// attachments accepts bare URLs or objects with name, url and type.
func attachments(raw []any) ([]domain.Attachment, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]domain.Attachment, 0, len(raw))
	for i, item := range raw {
		switch val := item.(type) {
		case string:
			out = append(out, domain.Attachment{URL: val})
		case map[string]any:
			var a domain.Attachment
			if err := decodeInto(val, &a); err != nil {
				return nil, fmt.Errorf("attachments[%d]: %w", i, err)
			}
			out = append(out, a)
		default:
			return nil, fmt.Errorf("attachments[%d]: expected string or object, got %T", i, item)
		}
	}
	return out, nil
}
