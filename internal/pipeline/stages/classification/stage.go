// Package classification is the entity classification stage: entities from
// the extraction stage are labelled term or type by the model.
package classification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackzampolin/text2onto/internal/aggregate"
	"github.com/jackzampolin/text2onto/internal/dataset"
	"github.com/jackzampolin/text2onto/internal/examples"
	"github.com/jackzampolin/text2onto/internal/generate"
	"github.com/jackzampolin/text2onto/internal/pipeline"
	"github.com/jackzampolin/text2onto/internal/pipeline/stages/extraction"
	cprompt "github.com/jackzampolin/text2onto/internal/prompts/classification"
	"github.com/jackzampolin/text2onto/internal/records"
	"github.com/jackzampolin/text2onto/internal/svcctx"
	"github.com/jackzampolin/text2onto/internal/types"
)

// Name is the stage identifier.
const Name = "entity-classification"

// ErrMissingExtraction is returned when a test document has no extraction output.
var ErrMissingExtraction = errors.New("document missing from extraction output")

// Stage classifies extracted entities for each subset.
type Stage struct {
	provider string
}

// Config configures the stage.
type Config struct {
	Provider string
}

// NewStage creates a new entity classification stage.
func NewStage(cfg Config) *Stage {
	return &Stage{provider: cfg.Provider}
}

func (s *Stage) Name() string           { return Name }
func (s *Stage) Dependencies() []string { return []string{extraction.Name} }
func (s *Stage) Description() string {
	return "Classify extracted entities as specific terms or general types"
}

// Run processes each subset in order using the parser fixed by the variant.
func (s *Stage) Run(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error) {
	result := &pipeline.Result{
		Stage:    Name,
		Variant:  opts.Variant,
		Provider: s.provider,
	}
	for _, subset := range opts.SubsetList() {
		var (
			sr  *pipeline.SubsetResult
			err error
		)
		switch kind := types.ParserFor(opts.Variant); kind {
		case types.ParserDelimited:
			sr, err = s.runInContext(ctx, subset, kind, opts)
		default:
			sr, err = s.runDescribed(ctx, subset, kind, opts)
		}
		if err != nil {
			return result, fmt.Errorf("%s: %w", subset, err)
		}
		result.Subsets = append(result.Subsets, *sr)
	}
	return result, nil
}

// runDescribed sends one "<name>: <description>" line per call and parses
// JSON responses. Unreadable responses are kept in their own file.
func (s *Stage) runDescribed(ctx context.Context, subset types.Subset, kind types.ParserKind, opts pipeline.Options) (*pipeline.SubsetResult, error) {
	logger := svcctx.LoggerFrom(ctx).With("stage", Name, "subset", subset)
	layout := opts.Layout

	contents, err := dataset.LoadContents(layout.ExtractionContents(subset))
	if err != nil {
		return nil, err
	}
	lines, failures := examples.DescribedEntities(contents)
	pipeline.LogLineFailures(logger, string(subset), failures)

	gen, err := pipeline.NewGenerator(ctx, s.provider, opts)
	if err != nil {
		return nil, err
	}

	key := cprompt.KeyFor(subset, types.VariantPlain)
	logger.Info("classifying entities", "entities", len(lines), "prompt", key)

	responses := make([]types.Classification, 0, len(lines))
	unreadable := make([]string, 0)
	results := make([]records.ClassificationResult, 0, len(lines))
	for i, line := range lines {
		completion, err := gen.Generate(ctx, generate.Call{
			Stage:     Name,
			Subset:    string(subset),
			PromptKey: key,
			Values:    map[string]any{cprompt.SlotEntitiesWithDescription: line},
		})
		if err != nil {
			return nil, fmt.Errorf("entity %d: %w", i+1, err)
		}

		res := records.ParseClassification(kind, completion)
		switch res.Outcome {
		case records.OutcomeUnreadable:
			unreadable = append(unreadable, completion)
			logger.Debug("unreadable response", "line", line)
		case records.OutcomeRecovered:
			logger.Debug("recovered embedded JSON", "line", line)
		}
		responses = append(responses, res.Records...)
		results = append(results, res)
	}

	w, err := dataset.NewWriter(layout.Output(subset))
	if err != nil {
		return nil, err
	}
	if err := w.WriteJSON(dataset.ClassificationResponsesFile, responses); err != nil {
		return nil, err
	}
	if err := w.WriteJSON(dataset.UnreadableResponsesFile, unreadable); err != nil {
		return nil, err
	}

	sets, rejected := aggregate.FromClassification(results)
	pipeline.LogRejections(logger, string(subset), rejected)

	sr, err := finish(logger, w, gen, sets)
	if err != nil {
		return nil, err
	}
	sr.Subset = subset
	sr.Documents = contents.Len()
	sr.Calls = len(lines)
	sr.Unreadable = len(unreadable)
	// Unreadable responses carry a filed rejection; count them once.
	sr.Rejected = len(rejected) - len(unreadable)
	if len(unreadable) > 0 {
		logger.Warn("some responses were unreadable", "count", len(unreadable), "file", w.Path(dataset.UnreadableResponsesFile))
	}
	return sr, nil
}

// runInContext sends each test document with its extracted entities and a
// block of classified training examples, and parses delimited responses.
func (s *Stage) runInContext(ctx context.Context, subset types.Subset, kind types.ParserKind, opts pipeline.Options) (*pipeline.SubsetResult, error) {
	logger := svcctx.LoggerFrom(ctx).With("stage", Name, "subset", subset)
	layout := opts.Layout

	extracted, err := dataset.LoadContents(layout.ExtractionContents(subset))
	if err != nil {
		return nil, err
	}
	docEntities, failures := examples.DocumentEntities(extracted)
	pipeline.LogLineFailures(logger, string(subset), failures)

	docs, err := dataset.LoadDocuments(layout.TestDocuments(subset))
	if err != nil {
		return nil, err
	}

	gen, err := pipeline.NewGenerator(ctx, s.provider, opts)
	if err != nil {
		return nil, err
	}

	block, err := s.examplesBlock(ctx, subset, opts, logger)
	if err != nil {
		return nil, err
	}

	key := cprompt.KeyFor(subset, types.VariantExamples)
	logger.Info("classifying document entities", "documents", len(docs), "prompt", key)

	contents := dataset.NewContents()
	results := make([]records.ClassificationResult, 0, len(docs))
	for _, doc := range docs {
		entities, ok := docEntities[doc.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingExtraction, doc.ID)
		}
		completion, err := gen.Generate(ctx, generate.Call{
			Stage:     Name,
			Subset:    string(subset),
			DocID:     doc.ID,
			PromptKey: key,
			Values: map[string]any{
				cprompt.SlotExamplesString: block,
				cprompt.SlotTitle:          doc.Title,
				cprompt.SlotText:           doc.Text,
				cprompt.SlotEntities:       strings.Join(entities, "\n"),
			},
		})
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID, err)
		}
		contents.Set(doc.ID, completion)
		results = append(results, records.ParseClassification(kind, completion))
	}

	w, err := dataset.NewWriter(layout.Output(subset))
	if err != nil {
		return nil, err
	}
	if err := w.WriteContents(contents); err != nil {
		return nil, err
	}

	sets, rejected := aggregate.FromClassification(results)
	pipeline.LogRejections(logger, string(subset), rejected)

	sr, err := finish(logger, w, gen, sets)
	if err != nil {
		return nil, err
	}
	sr.Subset = subset
	sr.Documents = len(docs)
	sr.Calls = len(docs)
	sr.Rejected = len(rejected)
	return sr, nil
}

// examplesBlock renders the shuffled classification examples for a subset.
func (s *Stage) examplesBlock(ctx context.Context, subset types.Subset, opts pipeline.Options, logger *slog.Logger) (string, error) {
	gold, err := dataset.LoadClassificationExamples(opts.Layout.ClassificationExamples(subset))
	if err != nil {
		return "", err
	}
	train, err := dataset.LoadDocumentsFiltered(opts.Layout.TrainDocuments(subset), func(id string) bool {
		_, ok := gold[id]
		return ok
	})
	if err != nil {
		return "", err
	}
	rng, seed := examples.NewRand(opts.Seed, logger)
	logger.Debug("shuffling classification examples", "seed", seed, "examples", len(train))
	return examples.ClassificationBlock(svcctx.PromptsFrom(ctx), train, gold, rng)
}

// finish writes terms.txt, types.txt and the call log.
func finish(logger *slog.Logger, w *dataset.Writer, gen *generate.Generator, sets *aggregate.Sets) (*pipeline.SubsetResult, error) {
	terms, typs := sets.Terms(), sets.Types()
	if err := w.WriteTermsAndTypes(terms, typs); err != nil {
		return nil, err
	}
	if err := pipeline.FlushCalls(gen, w); err != nil {
		return nil, err
	}
	logger.Info("classification complete", "terms", len(terms), "types", len(typs), "output", w.Dir)
	return &pipeline.SubsetResult{
		Entities:  len(sets.Entities()),
		Terms:     len(terms),
		Types:     len(typs),
		OutputDir: w.Dir,
	}, nil
}
