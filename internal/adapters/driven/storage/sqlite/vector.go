package sqlite

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/verity-labs/askdoc/internal/core/domain"
	"github.com/verity-labs/askdoc/internal/core/ports/driven"
	"github.com/verity-labs/askdoc/internal/logger"
	"github.com/verity-labs/askdoc/internal/textutil"
)

// vectorIndex implements driven.VectorIndex over the chunks table. Each user
// maps to a logical collection named "user_<id>"; similarity search is a
// brute-force cosine scan over the user's embedded rows.
type vectorIndex struct {
	store    *Store
	embedder driven.EmbeddingService
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// collectionID derives the isolated collection name for a user.
func collectionID(userID string) string {
	return "user_" + userID
}

// Upsert embeds and stores the chunks in the user's collection. When the
// embedding backend fails or is not configured, the chunks are stored without
// vectors so the text is still durably mirrored; queries against such rows
// fail explicitly and retrieval falls back to the lexical index.
func (v *vectorIndex) Upsert(ctx context.Context, userID string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	var vectors [][]float32
	if v.embedder != nil {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		embedded, err := v.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			logger.Warn("Embedding failed, storing %d chunks without vectors: %v", len(chunks), err)
		} else if len(embedded) == len(chunks) {
			vectors = embedded
		}
	} else {
		logger.Debug("No embedder configured, storing %d chunks without vectors", len(chunks))
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (collection, source, page, chunk_index, content, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	collection := collectionID(userID)
	for i, c := range chunks {
		var blob []byte
		if vectors != nil {
			blob = float32SliceToBytes(vectors[i])
		}
		if _, err := stmt.ExecContext(ctx, collection, c.Source, c.Page, c.Index, c.Text, blob); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunks: %w", err)
	}
	return nil
}

// Query embeds the question and returns the k most similar chunks, sorted
// descending by cosine similarity clamped to [0,1]. Any failure wraps
// domain.ErrVectorIndexUnavailable so the retriever can fall back.
func (v *vectorIndex) Query(ctx context.Context, userID, question string, k int) ([]domain.Candidate, error) {
	if v.embedder == nil {
		return nil, fmt.Errorf("%w: no embedding service configured", domain.ErrVectorIndexUnavailable)
	}
	if k <= 0 {
		k = 5
	}

	queryVec, err := v.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding question: %w", domain.ErrVectorIndexUnavailable, err)
	}

	rows, err := v.store.db.QueryContext(ctx, `
		SELECT source, page, chunk_index, content, embedding
		FROM chunks
		WHERE collection = ? AND embedding IS NOT NULL
	`, collectionID(userID))
	if err != nil {
		return nil, fmt.Errorf("%w: querying collection: %w", domain.ErrVectorIndexUnavailable, err)
	}
	defer rows.Close()

	var candidates []domain.Candidate
	for rows.Next() {
		var (
			chunk domain.Chunk
			blob  []byte
		)
		if err := rows.Scan(&chunk.Source, &chunk.Page, &chunk.Index, &chunk.Text, &blob); err != nil {
			return nil, fmt.Errorf("%w: scanning chunk: %w", domain.ErrVectorIndexUnavailable, err)
		}
		chunk.UserID = userID
		chunk.Tokens = textutil.Tokenize(chunk.Text)

		// Cosine distance d = 1 - cos; similarity reported as s = 1 - d,
		// clamped to [0,1].
		score := cosineSimilarity(queryVec, bytesToFloat32Slice(blob))
		if score < 0 {
			score = 0
		}
		candidates = append(candidates, domain.Candidate{Score: score, Chunk: chunk})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading collection: %w", domain.ErrVectorIndexUnavailable, err)
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: collection %s has no embedded chunks", domain.ErrVectorIndexUnavailable, collectionID(userID))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// Close is a no-op; the lifetime of the connection belongs to the Store.
func (v *vectorIndex) Close() error {
	return nil
}

// LoadChunks returns every stored chunk grouped by user, in insertion order,
// with tokens recomputed. The in-memory lexical index is volatile across
// process restarts; this rebuilds it from the durable mirror at startup, so
// token-overlap retrieval works even for chunks stored without vectors.
func (s *Store) LoadChunks(ctx context.Context) (map[string][]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT collection, source, page, chunk_index, content
		FROM chunks
		ORDER BY rowid_alias
	`)
	if err != nil {
		return nil, fmt.Errorf("loading chunks: %w", err)
	}
	defer rows.Close()

	byUser := make(map[string][]domain.Chunk)
	for rows.Next() {
		var (
			collection string
			chunk      domain.Chunk
		)
		if err := rows.Scan(&collection, &chunk.Source, &chunk.Page, &chunk.Index, &chunk.Text); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunk.UserID = strings.TrimPrefix(collection, "user_")
		chunk.Tokens = textutil.Tokenize(chunk.Text)
		byUser[chunk.UserID] = append(byUser[chunk.UserID], chunk)
	}
	return byUser, rows.Err()
}
