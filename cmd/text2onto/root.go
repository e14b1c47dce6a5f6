package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/text2onto/internal/output"
	"github.com/jackzampolin/text2onto/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "text2onto",
	Short: "LLM-driven entity extraction and term/type classification",
	Long: `text2onto builds ontology vocabularies from text with a language model.

Two stages run per domain subset (engineering, scholarly):
  - entity-extraction      extract entity records from each test document
  - entity-classification  label every extracted entity as a term or a type

Each stage takes a prompt variant: 1 uses a fixed prompt, 2 builds worked
examples from curated training documents.`,
	Version:      version.GitRelease,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.text2onto/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "text2onto home directory (default: ~/.text2onto)",
	)
	rootCmd.PersistentFlags().StringVar(
		&outputFormat, "format", "yaml", "summary output format: yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "log level: debug, info, warn, error (default: from config)",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return output.SetFormat(outputFormat)
	}

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(promptsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(callsCmd)
	rootCmd.AddCommand(versionCmd)
}
