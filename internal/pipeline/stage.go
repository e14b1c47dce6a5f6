package pipeline

import (
	"context"

	"github.com/jackzampolin/text2onto/internal/dataset"
	"github.com/jackzampolin/text2onto/internal/generate"
	"github.com/jackzampolin/text2onto/internal/types"
)

// Stage is the interface that all pipeline stages must implement.
// A stage reads its inputs from the layout, calls the model once per unit of
// work and writes its outputs once per subset.
type Stage interface {
	// Identity
	Name() string           // e.g., "entity-extraction"
	Dependencies() []string // Stages that must complete first

	// Metadata
	Description() string

	// Run processes every subset in opts. Any upstream failure aborts the
	// run; outputs of subsets already finished stay on disk.
	Run(ctx context.Context, opts Options) (*Result, error)
}

// Options configures a stage run.
type Options struct {
	Variant types.Variant
	Subsets []types.Subset // empty = all subsets
	Layout  dataset.Layout

	// Seed drives example shuffling. Negative seeds from the clock.
	Seed int64

	Generation  generate.Config
	RecordCalls bool
}

// SubsetList returns the subsets to process, defaulting to all of them.
func (o Options) SubsetList() []types.Subset {
	if len(o.Subsets) == 0 {
		return types.AllSubsets()
	}
	return o.Subsets
}

// Result summarizes a stage run.
type Result struct {
	Stage    string         `json:"stage" yaml:"stage"`
	Variant  types.Variant  `json:"variant" yaml:"variant"`
	Provider string         `json:"provider" yaml:"provider"`
	Subsets  []SubsetResult `json:"subsets" yaml:"subsets"`
}

// SubsetResult counts what a stage did for one subset.
type SubsetResult struct {
	Subset     types.Subset `json:"subset" yaml:"subset"`
	Documents  int          `json:"documents" yaml:"documents"`
	Calls      int          `json:"calls" yaml:"calls"`
	Entities   int          `json:"entities" yaml:"entities"`
	Terms      int          `json:"terms" yaml:"terms"`
	Types      int          `json:"types" yaml:"types"`
	Unreadable int          `json:"unreadable" yaml:"unreadable"`
	Rejected   int          `json:"rejected" yaml:"rejected"`
	OutputDir  string       `json:"output_dir" yaml:"output_dir"`
}
