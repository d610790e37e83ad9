package driving

import (
	"context"

	"github.com/verity-labs/askdoc/internal/core/domain"
)

// PipelineService is the caller-facing API of the question-answering core.
type PipelineService interface {
	// Ingest parses, chunks and indexes the file at path into the user's
	// corpus and returns the number of chunks produced. Fails with an error
	// wrapping domain.ErrUnreadableDocument when the file cannot be parsed.
	Ingest(ctx context.Context, userID, path string) (int, error)

	// Ask answers a natural-language question from the user's corpus. It
	// never fails for "no data found" - that is a normal terminal state with
	// Low confidence. It fails only for missing required input.
	Ask(ctx context.Context, userID, question string) (*domain.QueryResult, error)
}

// DocumentService exposes ingestion bookkeeping.
type DocumentService interface {
	// ListByUser returns a user's ingested documents, most recent first.
	ListByUser(ctx context.Context, userID string) ([]domain.Document, error)
}
