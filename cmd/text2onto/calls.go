package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/text2onto/internal/llmcall"
	"github.com/jackzampolin/text2onto/internal/output"
)

var (
	callsPromptKey string
	callsDocID     string
	callsFailed    bool
	callsSince     time.Duration
	callsLimit     int
)

var callsCmd = &cobra.Command{
	Use:   "calls",
	Short: "Inspect recorded model calls",
}

var callsSummaryCmd = &cobra.Command{
	Use:   "summary <llm_calls.jsonl>",
	Short: "Summarize token use, latency and failures of a call log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		calls, err := llmcall.Load(args[0])
		if err != nil {
			return err
		}
		return output.Print(llmcall.Summarize(llmcall.Filter(calls, callsFilter(cmd))))
	},
}

var callsListCmd = &cobra.Command{
	Use:   "list <llm_calls.jsonl>",
	Short: "List recorded calls matching the filters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		calls, err := llmcall.Load(args[0])
		if err != nil {
			return err
		}
		return output.Print(llmcall.Filter(calls, callsFilter(cmd)))
	},
}

// callsFilter builds a query from the flags that were set.
func callsFilter(cmd *cobra.Command) llmcall.QueryFilter {
	f := llmcall.QueryFilter{
		PromptKey: callsPromptKey,
		DocID:     callsDocID,
		Limit:     callsLimit,
	}
	if cmd.Flags().Changed("failed") {
		ok := !callsFailed
		f.Success = &ok
	}
	if callsSince > 0 {
		after := time.Now().Add(-callsSince)
		f.After = &after
	}
	return f
}

func init() {
	fs := callsCmd.PersistentFlags()
	fs.StringVar(&callsPromptKey, "prompt-key", "", "only calls rendered from this prompt key")
	fs.StringVar(&callsDocID, "doc", "", "only calls for this document id")
	fs.BoolVar(&callsFailed, "failed", false, "only failed calls (--failed=false for successful ones)")
	fs.DurationVar(&callsSince, "since", 0, "only calls newer than this duration")
	fs.IntVar(&callsLimit, "limit", 0, "maximum calls to return (0 = all)")

	callsCmd.AddCommand(callsSummaryCmd)
	callsCmd.AddCommand(callsListCmd)
}
