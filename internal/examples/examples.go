// Package examples assembles few-shot example blocks and the entity lists
// that classification prompts are built from.
package examples

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/jackzampolin/text2onto/internal/dataset"
	"github.com/jackzampolin/text2onto/internal/prompts"
	"github.com/jackzampolin/text2onto/internal/prompts/classification"
	"github.com/jackzampolin/text2onto/internal/prompts/extraction"
	"github.com/jackzampolin/text2onto/internal/records"
	"github.com/jackzampolin/text2onto/internal/types"
)

// ErrExampleDocMissing is returned when an example id has no training document.
var ErrExampleDocMissing = errors.New("example document missing from training set")

// blockSeparator joins rendered example blocks.
const blockSeparator = "\n\n"

// NewRand returns a generator for example shuffling. A negative seed picks one
// from the clock; the seed actually used is returned so a run can be replayed.
func NewRand(seed int64, logger *slog.Logger) (*rand.Rand, int64) {
	if logger == nil {
		logger = slog.Default()
	}
	if seed < 0 {
		seed = time.Now().UnixNano()
		logger.Info("seeded example shuffle from clock", "seed", seed)
	}
	return rand.New(rand.NewSource(seed)), seed
}

// checkCovered verifies every example id has a training document.
func checkCovered[V any](trainDocs []types.Document, examples map[string]V) error {
	have := make(map[string]struct{}, len(trainDocs))
	for _, d := range trainDocs {
		have[d.ID] = struct{}{}
	}
	var missing []string
	for id := range examples {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrExampleDocMissing, strings.Join(missing, ", "))
	}
	return nil
}

// ExtractionBlock renders one example per training document that has a gold
// output, in training file order, joined by a blank line.
func ExtractionBlock(r *prompts.Resolver, trainDocs []types.Document, outputs map[string]string) (string, error) {
	if err := checkCovered(trainDocs, outputs); err != nil {
		return "", err
	}

	var blocks []string
	for _, doc := range trainDocs {
		out, ok := outputs[doc.ID]
		if !ok {
			continue
		}
		block, _, err := r.Render(extraction.ExampleKey, map[string]any{
			extraction.SlotTitle:         doc.Title,
			extraction.SlotText:          doc.Text,
			extraction.SlotExampleOutput: out,
		})
		if err != nil {
			return "", fmt.Errorf("example %s: %w", doc.ID, err)
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, blockSeparator), nil
}

// ClassificationBlock renders one example per training document that has gold
// entities. Each document's terms and types are concatenated and shuffled with
// rng; an entity listed among the terms is labelled term even if it is also a
// type.
func ClassificationBlock(r *prompts.Resolver, trainDocs []types.Document, gold map[string]types.GoldEntities, rng *rand.Rand) (string, error) {
	if err := checkCovered(trainDocs, gold); err != nil {
		return "", err
	}

	var blocks []string
	for _, doc := range trainDocs {
		g, ok := gold[doc.ID]
		if !ok {
			continue
		}

		isTerm := make(map[string]struct{}, len(g.Terms))
		entities := make([]string, 0, len(g.Terms)+len(g.Types))
		for _, t := range g.Terms {
			isTerm[t] = struct{}{}
			entities = append(entities, t)
		}
		entities = append(entities, g.Types...)
		rng.Shuffle(len(entities), func(i, j int) {
			entities[i], entities[j] = entities[j], entities[i]
		})

		labelled := make([]string, len(entities))
		for i, e := range entities {
			label := types.LabelType
			if _, ok := isTerm[e]; ok {
				label = types.LabelTerm
			}
			labelled[i] = e + records.Delimiter + string(label)
		}

		block, _, err := r.Render(classification.ExampleKey, map[string]any{
			classification.SlotTitle:         doc.Title,
			classification.SlotText:          doc.Text,
			classification.SlotEntities:      strings.Join(entities, "\n"),
			classification.SlotExampleOutput: strings.Join(labelled, "\n"),
		})
		if err != nil {
			return "", fmt.Errorf("example %s: %w", doc.ID, err)
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, blockSeparator), nil
}

// DescribedEntities turns extraction output into "<name>: <description>"
// lines, one per extracted entity across all documents. When a line has no
// description the type label stands in. Lines with neither are skipped.
func DescribedEntities(contents *dataset.Contents) ([]string, []records.LineFailure) {
	var lines []string
	var failures []records.LineFailure
	for _, completion := range contents.Values() {
		for _, line := range records.Lines(completion) {
			if rec, err := records.ParseEntityRecord(line); err == nil {
				lines = append(lines, strings.ToLower(rec.Name)+": "+rec.Description)
				continue
			}
			// Three-field lines: the type label stands in for the description.
			name, err := records.EntityName(line, true)
			if err != nil {
				failures = append(failures, records.LineFailure{Line: line, Err: err})
				continue
			}
			label, err := records.TypeLabel(line, false)
			if err != nil {
				failures = append(failures, records.LineFailure{Line: line, Err: err})
				continue
			}
			lines = append(lines, name+": "+label)
		}
	}
	return lines, failures
}

// DocumentEntities returns the extracted entity names of each document, in
// line order. Duplicates within a document are kept.
func DocumentEntities(contents *dataset.Contents) (map[string][]string, []records.LineFailure) {
	out := make(map[string][]string, contents.Len())
	var failures []records.LineFailure
	for _, id := range contents.IDs() {
		completion, _ := contents.Get(id)
		names, bad := records.EntityNames(completion)
		out[id] = names
		failures = append(failures, bad...)
	}
	return out, failures
}
