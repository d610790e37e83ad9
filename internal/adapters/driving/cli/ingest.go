package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a document into your corpus",
	Long: `Parses the given file (PDF or plain text), splits it into
sentence-based chunks and indexes them for question answering.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	count, err := pipelineService.Ingest(context.Background(), flagUser, args[0])
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if count == 0 {
		cmd.Println("No extractable text found in document.")
		return nil
	}
	cmd.Printf("Ingested %d chunks from %s\n", count, args[0])
	return nil
}
