// Package lexical provides an in-memory token-overlap index. It is the
// always-available retrieval fallback: per-user, append-only and volatile
// across process restarts.
package lexical

import (
	"sort"
	"sync"

	"github.com/verity-labs/askdoc/internal/core/domain"
	"github.com/verity-labs/askdoc/internal/core/ports/driven"
	"github.com/verity-labs/askdoc/internal/textutil"
)

// MinOverlap is the relevance threshold: chunks scoring at or below it are
// excluded from candidates.
const MinOverlap = 0.1

// TopK is the maximum number of candidates retained per query.
const TopK = 5

// Ensure Index implements the interface.
var _ driven.LexicalIndex = (*Index)(nil)

// Index maps each user id to an append-only sequence of chunks.
type Index struct {
	mu     sync.RWMutex
	corpus map[string][]domain.Chunk
}

// New creates an empty lexical index.
func New() *Index {
	return &Index{
		corpus: make(map[string][]domain.Chunk),
	}
}

// Add appends chunks to the user's corpus, creating it on first use.
func (idx *Index) Add(userID string, chunks []domain.Chunk) {
	if len(chunks) == 0 {
		return
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.corpus[userID] = append(idx.corpus[userID], chunks...)
}

// Len returns the number of chunks in the user's corpus.
func (idx *Index) Len(userID string) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.corpus[userID])
}

// Score ranks the user's chunks by |query ∩ chunk| / max(|query|, 1). Chunks
// with overlap <= MinOverlap are excluded. The sort is stable so ties keep
// insertion order, and at most TopK candidates are returned.
func (idx *Index) Score(userID string, queryTokens map[string]struct{}) []domain.Candidate {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	denom := len(queryTokens)
	if denom < 1 {
		denom = 1
	}

	var candidates []domain.Candidate
	for _, chunk := range idx.corpus[userID] {
		score := float64(textutil.Overlap(queryTokens, chunk.Tokens)) / float64(denom)
		if score > MinOverlap {
			candidates = append(candidates, domain.Candidate{Score: score, Chunk: chunk})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > TopK {
		candidates = candidates[:TopK]
	}
	return candidates
}
