package driven

import (
	"context"

	"github.com/verity-labs/askdoc/internal/core/domain"
)

// VectorIndex provides per-user semantic similarity retrieval. Each user has
// an isolated logical collection derived deterministically from the user id;
// retrieval for one user must never return another user's chunks.
type VectorIndex interface {
	// Upsert embeds and stores the chunks in the user's collection. When the
	// embedding backend is unavailable the chunks are stored without vectors
	// (degraded mode) and Upsert still succeeds; later queries against a
	// vector-less collection fail explicitly so the caller can fall back.
	Upsert(ctx context.Context, userID string, chunks []domain.Chunk) error

	// Query embeds the question and returns the k nearest chunks sorted
	// descending by cosine similarity (renormalised to [0,1]). Any backend
	// failure or empty collection returns an error wrapping
	// domain.ErrVectorIndexUnavailable.
	Query(ctx context.Context, userID, question string, k int) ([]domain.Candidate, error)

	// Close releases resources.
	Close() error
}
