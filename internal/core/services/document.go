package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/verity-labs/askdoc/internal/core/domain"
	"github.com/verity-labs/askdoc/internal/core/ports/driven"
	"github.com/verity-labs/askdoc/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService exposes the ingestion bookkeeping kept by the pipeline.
type DocumentService struct {
	docStore driven.DocumentStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(docStore driven.DocumentStore) *DocumentService {
	return &DocumentService{docStore: docStore}
}

// ListByUser returns a user's ingested documents, most recent first.
func (s *DocumentService) ListByUser(ctx context.Context, userID string) ([]domain.Document, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	return s.docStore.ListDocuments(ctx, userID)
}
