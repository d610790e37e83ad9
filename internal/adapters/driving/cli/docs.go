package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List your ingested documents",
	RunE:  runDocs,
}

func init() {
	rootCmd.AddCommand(docsCmd)
}

func runDocs(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.ListByUser(context.Background(), flagUser)
	if err != nil {
		return fmt.Errorf("list documents failed: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents ingested yet.")
		return nil
	}

	cmd.Printf("Documents for %s:\n\n", flagUser)
	for i := range docs {
		cmd.Printf("  %s  (%d chunks, %s)\n",
			docs[i].Source,
			docs[i].ChunkCount,
			docs[i].IngestedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
