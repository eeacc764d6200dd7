/*
Package dsl provides a fluent Go API for authoring tour scripts in code.

	b := dsl.New("governance").Title("Governance walkthrough")

	b.Add("overview").
		On("overview").
		Target("#compliance-score").
		Text("Compliance score", "The aggregated score of every registered model.")

	b.Add("models").
		On("models").
		Target("#model-inventory").
		Action("#filter-high-risk", 1500*time.Millisecond).
		Text("Model inventory", "").
		Terminal()

	script, err := b.Build()

Steps keep the order in which they were first added.
*/
package dsl
