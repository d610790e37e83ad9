package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verity-labs/askdoc/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your ingested documents",
	Long: `Retrieves the most relevant passages from your corpus and answers
the question from them, with source citations and a confidence label.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	result, err := pipelineService.Ask(context.Background(), flagUser, args[0])
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAskJSON(cmd, result)
	}
	return outputAskText(cmd, result)
}

func outputAskJSON(cmd *cobra.Command, result *domain.QueryResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAskText(cmd *cobra.Command, result *domain.QueryResult) error {
	cmd.Println(result.Answer)
	cmd.Println()
	cmd.Printf("Confidence: %s\n", result.Confidence)
	if len(result.Sources) > 0 {
		cmd.Println("Sources:")
		for _, s := range result.Sources {
			cmd.Printf("  - %s\n", s)
		}
	}
	cmd.Printf("Retrieval: %s\n", result.RetrievalMethod)
	return nil
}
