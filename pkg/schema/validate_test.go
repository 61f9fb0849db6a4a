package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&v))
	return v
}

func TestDefault_ValidModel(t *testing.T) {
	v, err := Default()
	require.NoError(t, err)

	doc := decode(t, `{
		"timeline": [
			{"type": "event", "name": "OrderPlaced", "tick": 10, "example": {"id": 1}},
			{"type": "state", "name": "PendingOrders", "tick": 20, "sourcedFrom": ["OrderPlaced"], "attachments": ["a.png", {"url": "b.png"}]},
			{"type": "actor", "name": "Worker", "tick": 30, "readsView": "PendingOrders", "sendsCommand": "ShipOrder"},
			{"type": "command", "name": "ShipOrder", "tick": 40},
			{"type": "event", "name": "OrderShipped", "tick": 50, "producedBy": "ShipOrder-40"},
			{"type": "event", "name": "OrderBilled", "tick": 60, "producedBy": {"command": "ShipOrder", "tick": 40}}
		],
		"specifications": [
			{"name": "ShipOrder", "type": "command", "scenarios": [
				{"name": "ships", "given": [{"name": "OrderPlaced"}], "when": {"name": "ShipOrder"}, "then": [{"name": "OrderShipped"}]}
			]}
		]
	}`)

	assert.NoError(t, v.Validate(doc))
}

func TestDefault_StructuralErrors(t *testing.T) {
	v, err := Default()
	require.NoError(t, err)

	tests := []struct {
		name string
		doc  string
		path string
	}{
		{"missing timeline", `{}`, ""},
		{"unknown type", `{"timeline": [{"type": "policy", "name": "P", "tick": 1}]}`, "/timeline/0/type"},
		{"fractional tick", `{"timeline": [{"type": "event", "name": "E", "tick": 1.5}]}`, "/timeline/0/tick"},
		{"actor without view", `{"timeline": [{"type": "actor", "name": "A", "tick": 1, "sendsCommand": "C"}]}`, "/timeline/0"},
		{"bad spec type", `{"timeline": [], "specifications": [{"name": "X", "type": "event", "scenarios": []}]}`, "/specifications/0/type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(decode(t, tt.doc))
			require.Error(t, err)

			errs := ValidationErrors(err)
			require.NotEmpty(t, errs)

			found := false
			for _, e := range errs {
				var fe *ValidationError
				require.ErrorAs(t, e, &fe)
				if fe.Path == tt.path {
					found = true
				}
			}
			assert.True(t, found, "expected a failure at %q, got %v", tt.path, err)
		})
	}
}

func TestAggregateError_Message(t *testing.T) {
	single := &AggregateError{Errors: []error{&ValidationError{Path: "/a", Reason: "bad"}}}
	assert.Equal(t, "at /a: bad", single.Error())

	multi := &AggregateError{Errors: []error{
		&ValidationError{Path: "/a", Reason: "bad"},
		&ValidationError{Reason: "worse"},
	}}
	assert.Contains(t, multi.Error(), "2 validation errors")
	assert.Contains(t, multi.Error(), "2. worse")
}

func TestModelSchema_IsJSON(t *testing.T) {
	var v map[string]any
	require.NoError(t, json.Unmarshal(ModelSchema(), &v))
	assert.Equal(t, "object", v["type"])
}
