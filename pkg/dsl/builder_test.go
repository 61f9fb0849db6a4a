package dsl_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/eventmodel"
	"github.com/aretw0/eventmodel/pkg/domain"
	"github.com/aretw0/eventmodel/pkg/dsl"
)

func ordersBuilder() *dsl.Builder {
	b := dsl.New("orders").Name("Orders")

	b.Command("PlaceOrder", 1).Example(map[string]any{"sku": "A-1"})
	b.Event("OrderPlaced", 2).ProducedBy("PlaceOrder", 1)
	b.Event("PaymentSettled", 3).System("Stripe")
	b.State("Orders", 4).SourcedFrom("OrderPlaced", "PaymentSettled")
	b.Actor("Clerk", 5).Reads("Orders").Sends("PlaceOrder").Role("staff")

	b.Spec(domain.SliceCommand, "PlaceOrder").
		Scenario("happy path").
		When(domain.Sample{Name: "PlaceOrder"}).
		Then(domain.Sample{Name: "OrderPlaced"}).
		Scenario("out of stock").
		Description("rejected before payment").
		When(domain.Sample{Name: "PlaceOrder"})
	return b
}

func TestBuilder_Model(t *testing.T) {
	m := ordersBuilder().Model()

	assert.Equal(t, "orders", m.ID)
	assert.Equal(t, "Orders", m.Name)
	require.Len(t, m.Timeline, 5)
	assert.Equal(t, domain.ElementCommand, m.Timeline[0].ElementType())
	assert.Equal(t, domain.ElementActor, m.Timeline[4].ElementType())

	ev, ok := m.Timeline[1].(domain.Event)
	require.True(t, ok)
	assert.Equal(t, &domain.ProducerKey{Command: "PlaceOrder", Tick: 1}, ev.ProducedBy)

	st, ok := m.Timeline[3].(domain.StateView)
	require.True(t, ok)
	assert.Equal(t, []string{"OrderPlaced", "PaymentSettled"}, st.SourcedFrom)

	require.Len(t, m.Specifications, 1)
	require.Len(t, m.Specifications[0].Scenarios, 2)
	assert.Equal(t, "rejected before payment", m.Specifications[0].Scenarios[1].Description)
}

func TestBuilder_SpecIsReused(t *testing.T) {
	b := dsl.New("m")
	first := b.Spec(domain.SliceState, "Orders")
	assert.Same(t, first, b.Spec(domain.SliceState, "Orders"))
	assert.NotSame(t, first, b.Spec(domain.SliceCommand, "Orders"))
}

func TestBuilder_BuildFeedsEngine(t *testing.T) {
	loader, err := ordersBuilder().Build()
	require.NoError(t, err)

	eng, err := eventmodel.New("", eventmodel.WithLoader(loader))
	require.NoError(t, err)

	view, err := eng.Build(context.Background(), "orders")
	require.NoError(t, err)

	cmd, ok := view.Find(domain.SliceCommand, "PlaceOrder")
	require.True(t, ok)
	assert.Equal(t, 2, cmd.SpecScenarioCount)
	assert.Equal(t, map[string]any{"sku": "A-1"}, cmd.Example)

	state, ok := view.Find(domain.SliceState, "Orders")
	require.True(t, ok)
	assert.Len(t, state.SourcedFrom, 2)
}

func TestBuilder_EmptyStateSources(t *testing.T) {
	b := dsl.New("lonely")
	b.State("Empty", 1)

	_, err := b.Build()
	assert.NoError(t, err)
}

func TestBuilder_BuildRejectsInvalidModel(t *testing.T) {
	b := dsl.New("bad")
	b.Event("", 1)

	_, err := b.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model bad")
}
