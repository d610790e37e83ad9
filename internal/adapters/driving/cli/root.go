// Package cli implements the command-line driving adapter. Commands hold no
// business logic; they validate input, call the driving ports and format the
// result.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/verity-labs/askdoc/internal/core/ports/driving"
	"github.com/verity-labs/askdoc/internal/logger"
)

// version is set at wiring time from the build.
var version = "dev"

// Injected services. Set before Execute via SetConfig.
var (
	pipelineService driving.PipelineService
	documentService driving.DocumentService
)

// Persistent flags.
var (
	flagVerbose bool
	flagUser    string
)

// Config holds the services the CLI commands depend on.
type Config struct {
	Pipeline  driving.PipelineService
	Documents driving.DocumentService
	Version   string
}

// SetConfig injects the services used by the commands.
func SetConfig(cfg Config) {
	pipelineService = cfg.Pipeline
	documentService = cfg.Documents
	if cfg.Version != "" {
		version = cfg.Version
	}
}

var rootCmd = &cobra.Command{
	Use:   "askdoc",
	Short: "Ask questions about your documents",
	Long: `Askdoc ingests documents into a per-user corpus and answers
natural-language questions about them, citing the pages and chunks the
answer came from.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging to stderr")
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "default", "user whose corpus to operate on")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
