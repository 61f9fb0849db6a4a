package compiler

import (
	"testing"

	"github.com/aretw0/eventmodel/pkg/domain"
	"github.com/aretw0/eventmodel/pkg/slices"
	"github.com/stretchr/testify/assert"
)

func codes(diags []Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func TestReport(t *testing.T) {
	model := &domain.Model{
		Timeline: domain.Timeline{
			domain.Command{Name: "PlaceOrder", Tick: 1},
			domain.Event{Name: "OrderPlaced", Tick: 2, ProducedBy: &domain.ProducerKey{Command: "PlaceOrder", Tick: 1}},
			domain.Event{Name: "OrderShipped", Tick: 3, ProducedBy: &domain.ProducerKey{Command: "ShipOrder", Tick: 9}},
			domain.StateView{Name: "Orders", Tick: 4, SourcedFrom: []string{"OrderPlaced", "OrderCancelled"}},
			domain.Actor{Name: "Clerk", Tick: 5, ReadsView: "Orders", SendsCommand: "ShipOrder"},
			domain.Actor{Name: "Bot", Tick: 6, ReadsView: "Nowhere", SendsCommand: "PlaceOrder"},
		},
		Specifications: []domain.Specification{
			{Name: "PlaceOrder", Type: domain.SliceCommand},
			{Name: "Ghost", Type: domain.SliceState},
		},
	}

	diags := Report(model, slices.Build(model))

	assert.Equal(t, []string{
		CodeUnmatchedProducer,
		CodeDanglingSource,
		CodeActorMissingCommand,
		CodeActorMissingView,
		CodeUnmatchedSpecification,
	}, codes(diags))
	assert.Equal(t, "OrderShipped", diags[0].Subject)
	assert.Contains(t, diags[1].Message, "OrderCancelled")
	assert.Equal(t, "Ghost", diags[4].Subject)
	assert.Contains(t, diags[0].String(), "[unmatched-producer] tick 3")
}

func TestReport_CleanModel(t *testing.T) {
	model := &domain.Model{Timeline: domain.Timeline{
		domain.Event{Name: "E", Tick: 1},
		domain.StateView{Name: "S", Tick: 2, SourcedFrom: []string{"E"}},
	}}
	assert.Empty(t, Report(model, slices.Build(model)))
	assert.Nil(t, Report(nil, nil))
}
