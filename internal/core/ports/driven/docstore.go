package driven

import (
	"context"

	"github.com/verity-labs/askdoc/internal/core/domain"
)

// DocumentStore records document ingestions. Backed by SQLite.
type DocumentStore interface {
	// SaveDocument stores an ingestion record.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document record by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns a user's documents, most recent first.
	ListDocuments(ctx context.Context, userID string) ([]domain.Document, error)
}
