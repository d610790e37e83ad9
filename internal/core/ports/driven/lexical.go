package driven

import (
	"github.com/verity-labs/askdoc/internal/core/domain"
)

// LexicalIndex provides per-user token-overlap retrieval. It is the
// always-available fallback behind the vector index: in-memory, append-only
// per user, and volatile across process restarts.
type LexicalIndex interface {
	// Add appends chunks to the user's corpus, creating it on first use.
	Add(userID string, chunks []domain.Chunk)

	// Score ranks the user's chunks by normalised token overlap with the
	// query token set. Chunks scoring at or below the relevance threshold
	// are excluded; ties preserve insertion order.
	Score(userID string, queryTokens map[string]struct{}) []domain.Candidate
}
