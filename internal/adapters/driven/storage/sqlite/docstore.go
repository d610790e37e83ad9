package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/verity-labs/askdoc/internal/core/domain"
	"github.com/verity-labs/askdoc/internal/core/ports/driven"
)

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// SaveDocument stores an ingestion record.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc.IngestedAt.IsZero() {
		doc.IngestedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, user_id, source, chunk_count, ingested_at)
		VALUES (?, ?, ?, ?, ?)
	`, doc.ID, doc.UserID, doc.Source, doc.ChunkCount, doc.IngestedAt)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document record by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	var doc domain.Document
	err := s.store.db.QueryRowContext(ctx, `
		SELECT id, user_id, source, chunk_count, ingested_at
		FROM documents
		WHERE id = ?
	`, id).Scan(&doc.ID, &doc.UserID, &doc.Source, &doc.ChunkCount, &doc.IngestedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}
	return &doc, nil
}

// ListDocuments returns a user's documents, most recent first.
func (s *documentStore) ListDocuments(ctx context.Context, userID string) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, user_id, source, chunk_count, ingested_at
		FROM documents
		WHERE user_id = ?
		ORDER BY ingested_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc.ID, &doc.UserID, &doc.Source, &doc.ChunkCount, &doc.IngestedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
