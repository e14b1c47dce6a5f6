// Package extraction holds the entity extraction prompts.
package extraction

import (
	_ "embed"

	"github.com/jackzampolin/text2onto/internal/prompts"
)

//go:embed plain.tmpl
var plainPrompt string

//go:embed examples.tmpl
var examplesPrompt string

//go:embed example.tmpl
var exampleTmpl string

// Prompt keys
const (
	PlainKey    = "extraction.plain"
	ExamplesKey = "extraction.examples"
	ExampleKey  = "extraction.example"
)

// Slot names
const (
	SlotTitle          = "title"
	SlotText           = "text"
	SlotExamplesString = "examples_string"
	SlotExampleOutput  = "example_output"
)

// RegisterPrompts registers the extraction prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         PlainKey,
		Text:        plainPrompt,
		Description: "Entity extraction with one built-in worked example",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         ExamplesKey,
		Text:        examplesPrompt,
		Description: "Entity extraction with examples assembled from training documents",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         ExampleKey,
		Text:        exampleTmpl,
		Description: "One extraction example block (training document and its gold output)",
	})
}

// KeyFor returns the extraction prompt key for a variant flag.
func KeyFor(withExamples bool) string {
	if withExamples {
		return ExamplesKey
	}
	return PlainKey
}
