// Package classification holds the term/type classification prompts.
// Each subset has its own plain and example-driven prompt; the example block
// template is shared.
package classification

import (
	_ "embed"

	"github.com/jackzampolin/text2onto/internal/prompts"
	"github.com/jackzampolin/text2onto/internal/types"
)

//go:embed engineering_plain.tmpl
var engineeringPlain string

//go:embed scholarly_plain.tmpl
var scholarlyPlain string

//go:embed engineering_examples.tmpl
var engineeringExamples string

//go:embed scholarly_examples.tmpl
var scholarlyExamples string

//go:embed example.tmpl
var exampleTmpl string

// ExampleKey is the shared example block key.
const ExampleKey = "classification.example"

// Slot names
const (
	SlotEntitiesWithDescription = "list_of_entities_with_description"
	SlotExamplesString          = "examples_string"
	SlotTitle                   = "title"
	SlotText                    = "text"
	SlotEntities                = "entities"
	SlotExampleOutput           = "example_output"
)

// PlainKey returns the key of the subset's JSON-output prompt.
func PlainKey(s types.Subset) string {
	return "classification." + string(s) + ".plain"
}

// ExamplesKey returns the key of the subset's delimited-output prompt.
func ExamplesKey(s types.Subset) string {
	return "classification." + string(s) + ".examples"
}

// KeyFor returns the classification prompt key for a subset and variant.
func KeyFor(s types.Subset, v types.Variant) string {
	if v == types.VariantExamples {
		return ExamplesKey(s)
	}
	return PlainKey(s)
}

// RegisterPrompts registers the classification prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         PlainKey(types.SubsetEngineering),
		Text:        engineeringPlain,
		Description: "Engineering term/type classification of one described entity, JSON output",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         PlainKey(types.SubsetScholarly),
		Text:        scholarlyPlain,
		Description: "Scholarly term/type classification of one described entity, JSON output",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         ExamplesKey(types.SubsetEngineering),
		Text:        engineeringExamples,
		Description: "Engineering classification of a document's entities in context, delimited output",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         ExamplesKey(types.SubsetScholarly),
		Text:        scholarlyExamples,
		Description: "Scholarly classification of a document's entities in context, delimited output",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         ExampleKey,
		Text:        exampleTmpl,
		Description: "One classification example block (document, entities and gold labels)",
	})
}
