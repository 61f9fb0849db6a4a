package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aretw0/eventmodel/pkg/domain"
	"github.com/aretw0/eventmodel/pkg/schema"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Parser is responsible for converting raw bytes into a Model.
type Parser struct {
	validator *schema.Validator
}

// NewParser creates a new parser instance backed by the embedded model schema.
func NewParser() (*Parser, error) {
	v, err := schema.Default()
	if err != nil {
		return nil, err
	}
	return &Parser{validator: v}, nil
}

// NewParserWithValidator creates a parser that validates against a custom schema.
func NewParserWithValidator(v *schema.Validator) *Parser {
	return &Parser{validator: v}
}

// Parse decodes a JSON or YAML model document, validates its structure and
// converts every timeline entry into its typed variant.
func (p *Parser) Parse(data []byte) (*domain.Model, error) {
	raw, err := decode(data)
	if err != nil {
		return nil, err
	}

	if p.validator != nil {
		if err := p.validator.Validate(raw); err != nil {
			return nil, fmt.Errorf("invalid model: %w", err)
		}
	}

	doc, ok := plain(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("failed to parse model: expected an object, got %T", raw)
	}

	model := &domain.Model{
		ID:   stringField(doc, "id"),
		Name: stringField(doc, "name"),
	}

	entries, _ := doc["timeline"].([]any)
	model.Timeline = make(domain.Timeline, 0, len(entries))
	for i, entry := range entries {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("timeline[%d]: expected an object, got %T", i, entry)
		}
		el, err := decodeElement(m)
		if err != nil {
			return nil, fmt.Errorf("timeline[%d]: %w", i, err)
		}
		model.Timeline = append(model.Timeline, el)
	}

	if specs, ok := doc["specifications"]; ok && specs != nil {
		if err := decodeInto(specs, &model.Specifications); err != nil {
			return nil, fmt.Errorf("failed to decode specifications: %w", err)
		}
	}

	return model, nil
}

// decode reads JSON or YAML into JSON-shaped values with numbers as json.Number.
func decode(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("failed to parse model: empty document")
	}

	if trimmed[0] != '{' {
		var doc any
		if err := yaml.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse model: %w", err)
		}
		// Re-encode so YAML and JSON inputs reach the validator in the same shape.
		buf, err := json.Marshal(stringKeys(doc))
		if err != nil {
			return nil, fmt.Errorf("failed to parse model: %w", err)
		}
		trimmed = buf
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}
	return doc, nil
}

// stringKeys converts maps with non-string keys, which json cannot encode.
func stringKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, sub := range val {
			val[k] = stringKeys(sub)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[fmt.Sprintf("%v", k)] = stringKeys(sub)
		}
		return out
	case []any:
		for i, sub := range val {
			val[i] = stringKeys(sub)
		}
		return val
	default:
		return val
	}
}

// plain replaces json.Number with int when integral, float64 otherwise.
func plain(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, sub := range val {
			val[k] = plain(sub)
		}
		return val
	case []any:
		for i, sub := range val {
			val[i] = plain(sub)
		}
		return val
	case json.Number:
		if i, err := strconv.Atoi(val.String()); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	default:
		return val
	}
}

func stringField(doc map[string]any, key string) string {
	s, _ := doc[key].(string)
	return s
}

func decodeInto(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
