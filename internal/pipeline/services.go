package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackzampolin/text2onto/internal/dataset"
	"github.com/jackzampolin/text2onto/internal/generate"
	"github.com/jackzampolin/text2onto/internal/llmcall"
	"github.com/jackzampolin/text2onto/internal/records"
	"github.com/jackzampolin/text2onto/internal/svcctx"
)

// ErrNoServices is returned when a stage runs without services in its context.
var ErrNoServices = errors.New("services not in context")

// NewGenerator builds a generator for provider from the services in ctx.
// Each call gets a fresh recorder when opts.RecordCalls is set, so call logs
// are scoped to one subset.
func NewGenerator(ctx context.Context, provider string, opts Options) (*generate.Generator, error) {
	registry := svcctx.RegistryFrom(ctx)
	if registry == nil {
		return nil, fmt.Errorf("%w: provider registry", ErrNoServices)
	}
	resolver := svcctx.PromptsFrom(ctx)
	if resolver == nil {
		return nil, fmt.Errorf("%w: prompt resolver", ErrNoServices)
	}

	client, err := registry.GetLLM(provider)
	if err != nil {
		return nil, err
	}

	var recorder *llmcall.Recorder
	if opts.RecordCalls {
		recorder = llmcall.NewRecorder()
	}
	return generate.New(client, resolver, recorder, opts.Generation, svcctx.LoggerFrom(ctx)), nil
}

// FlushCalls writes the generator's recorded calls into the writer's directory.
func FlushCalls(gen *generate.Generator, w *dataset.Writer) error {
	return gen.Recorder().Flush(w.Path(dataset.CallsFile))
}

// LogLineFailures reports malformed completion lines at debug level with a
// single warning summarizing the count.
func LogLineFailures(logger *slog.Logger, subset string, failures []records.LineFailure) {
	if len(failures) == 0 {
		return
	}
	for _, f := range failures {
		logger.Debug("skipping malformed line", "subset", subset, "line", f.Line, "error", f.Err)
	}
	logger.Warn("skipped malformed lines", "subset", subset, "count", len(failures))
}

// LogRejections logs rejected classification records according to their policy.
func LogRejections(logger *slog.Logger, subset string, rejections []records.Rejection) {
	for _, r := range rejections {
		switch r.Policy {
		case records.PolicyReport:
			logger.Warn("rejected classification", "subset", subset, "input", r.Input, "outcome", r.Outcome.String(), "error", r.Err)
		default:
			logger.Debug("dropped classification", "subset", subset, "input", r.Input, "outcome", r.Outcome.String(), "error", r.Err)
		}
	}
}
