package schema

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed model.schema.json
var modelSchema []byte

const modelSchemaURL = "model.schema.json"

// Validator checks JSON-shaped documents against a compiled schema.
type Validator struct {
	schema *jsonschema.Schema
}

// Compile builds a Validator from a raw JSON schema document.
func Compile(name string, data []byte) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("add schema resource %s: %w", name, err)
	}
	sch, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Validator{schema: sch}, nil
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
	defaultErr       error
)

// Default returns the validator for the embedded event model schema.
func Default() (*Validator, error) {
	defaultOnce.Do(func() {
		defaultValidator, defaultErr = Compile(modelSchemaURL, modelSchema)
	})
	return defaultValidator, defaultErr
}

// ModelSchema returns the embedded event model schema document.
func ModelSchema() []byte {
	return append([]byte(nil), modelSchema...)
}

// Validate checks doc and returns an *AggregateError listing every failing location.
func (v *Validator) Validate(doc any) error {
	err := v.schema.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}

	aggr := &AggregateError{}
	seen := make(map[string]bool)
	collectLeaves(ve, func(leaf *jsonschema.ValidationError) {
		key := leaf.InstanceLocation + "|" + leaf.Message
		if seen[key] {
			return
		}
		seen[key] = true
		aggr.Errors = append(aggr.Errors, &ValidationError{
			Path:   leaf.InstanceLocation,
			Reason: leaf.Message,
		})
	})
	if len(aggr.Errors) == 0 {
		aggr.Errors = append(aggr.Errors, &ValidationError{Path: ve.InstanceLocation, Reason: ve.Message})
	}
	return aggr
}

func collectLeaves(ve *jsonschema.ValidationError, visit func(*jsonschema.ValidationError)) {
	if len(ve.Causes) == 0 {
		visit(ve)
		return
	}
	for _, c := range ve.Causes {
		collectLeaves(c, visit)
	}
}
