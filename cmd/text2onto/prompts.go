package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/text2onto/internal/output"
)

var (
	promptDirFlag string
	showEmbedded  bool
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Inspect the prompt catalog",
}

// promptInfo is the listing row for one prompt key.
type promptInfo struct {
	Key         string   `json:"key" yaml:"key"`
	Description string   `json:"description" yaml:"description"`
	Variables   []string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Hash        string   `json:"hash" yaml:"hash"`
	Override    bool     `json:"override" yaml:"override"`
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every prompt key and whether it is overridden",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(promptDirFlag)
		if err != nil {
			return err
		}
		defer a.Close()

		resolver := a.services.Prompts
		var rows []promptInfo
		for _, p := range resolver.AllEmbedded() {
			resolved, err := resolver.Resolve(p.Key)
			if err != nil {
				return err
			}
			rows = append(rows, promptInfo{
				Key:         p.Key,
				Description: p.Description,
				Variables:   resolved.Variables,
				Hash:        resolved.Hash[:12],
				Override:    resolved.IsOverride,
			})
		}
		return output.Print(rows)
	},
}

var promptsShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print the text a prompt key resolves to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(promptDirFlag)
		if err != nil {
			return err
		}
		defer a.Close()

		if showEmbedded {
			p, ok := a.services.Prompts.GetEmbedded(args[0])
			if !ok {
				return fmt.Errorf("no embedded prompt %q", args[0])
			}
			fmt.Fprint(cmd.OutOrStdout(), p.Text)
			return nil
		}

		resolved, err := a.services.Prompts.Resolve(args[0])
		if err != nil {
			return err
		}
		if resolved.IsOverride {
			fmt.Fprintf(cmd.ErrOrStderr(), "# override: %s\n", resolved.Source)
		}
		fmt.Fprint(cmd.OutOrStdout(), resolved.Text)
		return nil
	},
}

func init() {
	promptsCmd.PersistentFlags().StringVar(&promptDirFlag, "prompt-dir", "", "directory of <key>.tmpl prompt overrides")
	promptsShowCmd.Flags().BoolVar(&showEmbedded, "embedded", false, "print the built-in text, ignoring overrides")
	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsShowCmd)
}
