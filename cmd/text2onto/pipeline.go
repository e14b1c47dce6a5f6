package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/text2onto/internal/config"
	"github.com/jackzampolin/text2onto/internal/generate"
	"github.com/jackzampolin/text2onto/internal/output"
	"github.com/jackzampolin/text2onto/internal/pipeline"
	"github.com/jackzampolin/text2onto/internal/pipeline/stages/classification"
	"github.com/jackzampolin/text2onto/internal/pipeline/stages/extraction"
	"github.com/jackzampolin/text2onto/internal/providers"
	"github.com/jackzampolin/text2onto/internal/types"
)

// runFlags are shared by extract, classify and run.
type runFlags struct {
	dataDir     string
	exampleDir  string
	eeOutputDir string
	outputDir   string

	provider    string
	model       string
	subsets     []string
	seed        int64
	thinking    bool
	temperature float64
	maxTokens   int
	promptDir   string
	recordCalls bool
	waitReady   time.Duration
}

var (
	extractFlags  runFlags
	classifyFlags runFlags
	runAllFlags   runFlags
)

var extractCmd = &cobra.Command{
	Use:   "extract <1|2>",
	Short: "Extract entities from the test documents",
	Long: `Extract entity records from every test document of each subset.

Variant 1 uses a fixed prompt with one in-line example. Variant 2 builds
worked examples from the curated training documents.

Writes contents.json, terms.txt and types.txt to <output_dir>/<subset>/.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStages(cmd, args[0], &extractFlags, extraction.Name)
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify <1|2>",
	Short: "Classify extracted entities as terms or types",
	Long: `Label every entity from a previous extraction run as a term or a type.

Variant 1 reads described entity lines and asks for a JSON array per line.
Variant 2 classifies in document context with seeded worked examples.

Reads <ee_output_dir>/<subset>/contents.json and writes terms.txt and
types.txt to <output_dir>/<subset>/.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStages(cmd, args[0], &classifyFlags, classification.Name)
	},
}

var runCmd = &cobra.Command{
	Use:   "run <1|2>",
	Short: "Run extraction then classification with the same variant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStages(cmd, args[0], &runAllFlags, extraction.Name, classification.Name)
	},
}

func init() {
	addRunFlags(extractCmd, &extractFlags, false)
	addRunFlags(classifyCmd, &classifyFlags, true)
	addRunFlags(runCmd, &runAllFlags, true)
}

// addRunFlags registers the dataset and generation flags. The extraction
// output flag only exists on commands that read it.
func addRunFlags(cmd *cobra.Command, f *runFlags, readsExtraction bool) {
	defaults := config.DefaultConfig()
	fs := cmd.Flags()

	fs.StringVarP(&f.dataDir, "data_dir", "d", defaults.Paths.DataDir, "dataset root directory")
	fs.StringVarP(&f.exampleDir, "example_dir", "e", defaults.Paths.ExampleDir, "curated example directory")
	if readsExtraction {
		fs.StringVarP(&f.eeOutputDir, "ee_output_dir", "p", defaults.Paths.ExtractionDir, "entity extraction output directory")
		fs.StringVarP(&f.outputDir, "output_dir", "o", defaults.Paths.ClassificationDir, "classification output directory")
	} else {
		fs.StringVarP(&f.outputDir, "output_dir", "o", defaults.Paths.ExtractionDir, "extraction output directory")
	}

	fs.StringVar(&f.provider, "provider", "", "LLM provider name (default: defaults.llm_provider)")
	fs.StringVar(&f.model, "model", "", "model name (default: provider's model)")
	fs.StringSliceVar(&f.subsets, "subset", nil, "subset to process, repeatable (default: all)")
	fs.Int64Var(&f.seed, "seed", defaults.Defaults.Seed, "example shuffle seed, negative seeds from the clock")
	fs.BoolVar(&f.thinking, "thinking", defaults.Defaults.EnableThinking, "enable model reasoning")
	fs.Float64Var(&f.temperature, "temperature", defaults.Defaults.Temperature, "sampling temperature")
	fs.IntVar(&f.maxTokens, "max-tokens", defaults.Defaults.MaxTokens, "maximum new tokens per call")
	fs.StringVar(&f.promptDir, "prompt-dir", "", "directory of <key>.tmpl prompt overrides")
	fs.BoolVar(&f.recordCalls, "record-calls", defaults.Defaults.RecordCalls, "write llm_calls.jsonl next to each subset's outputs")
	fs.DurationVar(&f.waitReady, "wait-ready", 0, "poll the provider health check for up to this long before starting")
}

// runStages resolves config and flags into pipeline options and runs the
// named stages in dependency order.
func runStages(cmd *cobra.Command, variantArg string, f *runFlags, names ...string) error {
	variant, err := types.ParseVariant(variantArg)
	if err != nil {
		return err
	}

	a, err := setup(f.promptDir)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.services.Config
	opts, provider, err := buildOptions(cmd, cfg, f)
	if err != nil {
		return err
	}
	opts.Variant = variant

	if !a.services.Registry.HasLLM(provider) {
		return fmt.Errorf("provider %q has no client (available: %s)", provider, strings.Join(a.services.Registry.ListLLM(), ", "))
	}
	client, err := a.services.Registry.GetLLM(provider)
	if err != nil {
		return err
	}

	registry := pipeline.NewRegistry()
	if err := registry.Register(extraction.NewStage(extraction.Config{Provider: provider})); err != nil {
		return err
	}
	if err := registry.Register(classification.NewStage(classification.Config{Provider: provider})); err != nil {
		return err
	}
	if err := registry.Check(opts, names...); err != nil {
		return err
	}

	ctx := a.withServices(cmd.Context())
	if f.waitReady > 0 {
		attempts := uint(f.waitReady / (2 * time.Second))
		if err := providers.WaitReady(ctx, client, attempts, 2*time.Second, a.logger); err != nil {
			return fmt.Errorf("provider %s not ready: %w", provider, err)
		}
	}

	a.logger.Info("starting run",
		"stages", names,
		"variant", variant,
		"provider", provider,
		"model", opts.Generation.Model,
		"subsets", opts.SubsetList())

	results, err := registry.Run(ctx, opts, names...)
	if len(results) > 0 {
		if perr := output.Print(results); perr != nil {
			a.logger.Warn("failed to print summary", "error", perr)
		}
	}
	return err
}

// buildOptions layers flags over config: a flag wins only when the user set
// it explicitly.
func buildOptions(cmd *cobra.Command, cfg *config.Config, f *runFlags) (pipeline.Options, string, error) {
	fs := cmd.Flags()
	layout := cfg.Layout()

	if fs.Changed("data_dir") {
		layout.DataDir = f.dataDir
	}
	if fs.Changed("example_dir") {
		layout.ExampleDir = f.exampleDir
	}
	if fs.Lookup("ee_output_dir") != nil {
		if fs.Changed("ee_output_dir") {
			layout.ExtractionDir = f.eeOutputDir
		}
		if fs.Changed("output_dir") {
			layout.OutputDir = f.outputDir
		}
	} else if fs.Changed("output_dir") {
		layout.ExtractionDir = f.outputDir
	}

	provider := cfg.Defaults.LLMProvider
	if f.provider != "" {
		provider = f.provider
	}
	provCfg, ok := cfg.GetLLMProvider(provider)
	if !ok {
		return pipeline.Options{}, "", fmt.Errorf("provider %q is not configured", provider)
	}

	gen := generate.Config{
		Model:          provCfg.Model,
		Temperature:    cfg.Defaults.Temperature,
		MaxTokens:      cfg.Defaults.MaxTokens,
		EnableThinking: cfg.Defaults.EnableThinking,
	}
	if f.model != "" {
		gen.Model = f.model
	}
	if fs.Changed("temperature") {
		gen.Temperature = f.temperature
	}
	if fs.Changed("max-tokens") {
		gen.MaxTokens = f.maxTokens
	}
	if fs.Changed("thinking") {
		gen.EnableThinking = f.thinking
	}

	seed := cfg.Defaults.Seed
	if fs.Changed("seed") {
		seed = f.seed
	}
	recordCalls := cfg.Defaults.RecordCalls
	if fs.Changed("record-calls") {
		recordCalls = f.recordCalls
	}

	subsets, err := types.ParseSubsets(f.subsets)
	if err != nil {
		return pipeline.Options{}, "", err
	}

	return pipeline.Options{
		Subsets:     subsets,
		Layout:      layout,
		Seed:        seed,
		Generation:  gen,
		RecordCalls: recordCalls,
	}, provider, nil
}
