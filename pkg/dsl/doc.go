/*
Package dsl provides a fluent Go API for constructing event models in code.

It is an alternative to authoring JSON or YAML documents, useful for tests,
generated models and IDE autocompletion.

Example usage:

	b := dsl.New("orders").Name("Orders")

	b.Command("PlaceOrder", 1).Example(map[string]any{"sku": "A-1"})
	b.Event("OrderPlaced", 2).ProducedBy("PlaceOrder", 1)
	b.State("Orders", 3).SourcedFrom("OrderPlaced")

	b.Spec(domain.SliceCommand, "PlaceOrder").
		Scenario("happy path").
		When(domain.Sample{Name: "PlaceOrder"}).
		Then(domain.Sample{Name: "OrderPlaced"})

	loader, err := b.Build() // pass to eventmodel.WithLoader
*/
package dsl
