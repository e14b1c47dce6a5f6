// Package extraction is the entity extraction stage: one model call per test
// document, then every entity name found in the completions.
package extraction

import (
	"context"
	"fmt"
	"os"

	"github.com/jackzampolin/text2onto/internal/aggregate"
	"github.com/jackzampolin/text2onto/internal/dataset"
	"github.com/jackzampolin/text2onto/internal/examples"
	"github.com/jackzampolin/text2onto/internal/generate"
	"github.com/jackzampolin/text2onto/internal/pipeline"
	eprompt "github.com/jackzampolin/text2onto/internal/prompts/extraction"
	"github.com/jackzampolin/text2onto/internal/svcctx"
	"github.com/jackzampolin/text2onto/internal/types"
)

// Name is the stage identifier.
const Name = "entity-extraction"

// Stage extracts entities from the test documents of each subset.
type Stage struct {
	provider string // LLM provider name in the registry
}

// Config configures the stage.
type Config struct {
	Provider string
}

// NewStage creates a new entity extraction stage.
func NewStage(cfg Config) *Stage {
	return &Stage{provider: cfg.Provider}
}

func (s *Stage) Name() string           { return Name }
func (s *Stage) Dependencies() []string { return nil }
func (s *Stage) Description() string {
	return "Extract entity records from test documents and collect the entity names"
}

// CheckOutputs reports the first subset without a contents.json, so a
// classification run can fail before any model call.
func (s *Stage) CheckOutputs(opts pipeline.Options) error {
	for _, subset := range opts.SubsetList() {
		if _, err := os.Stat(opts.Layout.ExtractionContents(subset)); err != nil {
			return fmt.Errorf("%s: %w", subset, err)
		}
	}
	return nil
}

// Run processes each subset in order. Output files of a subset are written
// only after all of its documents have completed.
func (s *Stage) Run(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error) {
	result := &pipeline.Result{
		Stage:    Name,
		Variant:  opts.Variant,
		Provider: s.provider,
	}
	for _, subset := range opts.SubsetList() {
		sr, err := s.runSubset(ctx, subset, opts)
		if err != nil {
			return result, fmt.Errorf("%s: %w", subset, err)
		}
		result.Subsets = append(result.Subsets, *sr)
	}
	return result, nil
}

func (s *Stage) runSubset(ctx context.Context, subset types.Subset, opts pipeline.Options) (*pipeline.SubsetResult, error) {
	logger := svcctx.LoggerFrom(ctx).With("stage", Name, "subset", subset)
	layout := opts.Layout

	docs, err := dataset.LoadDocuments(layout.TestDocuments(subset))
	if err != nil {
		return nil, err
	}

	gen, err := pipeline.NewGenerator(ctx, s.provider, opts)
	if err != nil {
		return nil, err
	}

	base := map[string]any{}
	withExamples := opts.Variant == types.VariantExamples
	key := eprompt.KeyFor(withExamples)
	if withExamples {
		block, err := s.examplesBlock(ctx, subset, layout)
		if err != nil {
			return nil, err
		}
		base[eprompt.SlotExamplesString] = block
	}

	logger.Info("extracting entities", "documents", len(docs), "prompt", key)

	contents := dataset.NewContents()
	for i, doc := range docs {
		values := make(map[string]any, len(base)+2)
		for k, v := range base {
			values[k] = v
		}
		values[eprompt.SlotTitle] = doc.Title
		values[eprompt.SlotText] = doc.Text

		completion, err := gen.Generate(ctx, generate.Call{
			Stage:     Name,
			Subset:    string(subset),
			DocID:     doc.ID,
			PromptKey: key,
			Values:    values,
		})
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID, err)
		}
		contents.Set(doc.ID, completion)
		logger.Debug("document extracted", "doc_id", doc.ID, "progress", fmt.Sprintf("%d/%d", i+1, len(docs)))
	}

	w, err := dataset.NewWriter(layout.ExtractionOutput(subset))
	if err != nil {
		return nil, err
	}
	if err := w.WriteContents(contents); err != nil {
		return nil, err
	}

	sets, failures := aggregate.FromExtraction(contents.Values())
	pipeline.LogLineFailures(logger, string(subset), failures)

	// Extraction does not classify, so both files carry the full entity list.
	entities := sets.Entities()
	if err := w.WriteTermsAndTypes(entities, entities); err != nil {
		return nil, err
	}
	if err := pipeline.FlushCalls(gen, w); err != nil {
		return nil, err
	}

	logger.Info("extraction complete", "entities", len(entities), "skipped_lines", len(failures), "output", w.Dir)

	return &pipeline.SubsetResult{
		Subset:    subset,
		Documents: len(docs),
		Calls:     len(docs),
		Entities:  len(entities),
		Terms:     len(entities),
		Types:     len(entities),
		Rejected:  len(failures),
		OutputDir: w.Dir,
	}, nil
}

// examplesBlock loads the gold extraction outputs and their training
// documents and renders the example block shared by every prompt.
func (s *Stage) examplesBlock(ctx context.Context, subset types.Subset, layout dataset.Layout) (string, error) {
	outputs, err := dataset.LoadExtractionExamples(layout.ExtractionExamples(subset))
	if err != nil {
		return "", err
	}
	train, err := dataset.LoadDocumentsFiltered(layout.TrainDocuments(subset), func(id string) bool {
		_, ok := outputs[id]
		return ok
	})
	if err != nil {
		return "", err
	}
	return examples.ExtractionBlock(svcctx.PromptsFrom(ctx), train, outputs)
}
