package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/verity-labs/askdoc/internal/core/domain"
	"github.com/verity-labs/askdoc/internal/logger"
	"github.com/verity-labs/askdoc/internal/textutil"
)

// Retrieval tuning.
const (
	// RetrievalK is how many candidates the vector index is asked for.
	RetrievalK = 5

	// MaxContextChars bounds the assembled context passed to generation.
	// Truncation happens once, on the joined text, never per chunk.
	MaxContextChars = 6000
)

// retrieve runs the ordered retrieval strategies and returns the candidates
// of the first one that produced any, with its method tag. Vector failures
// are absorbed here: they demote to lexical retrieval, never propagate.
func (s *PipelineService) retrieve(ctx context.Context, userID, question string) ([]domain.Candidate, string) {
	if s.vector != nil {
		candidates, err := s.vector.Query(ctx, userID, question, RetrievalK)
		if err != nil {
			logger.Warn("Vector retrieval unavailable: %v (falling back to token overlap)", err)
		} else if len(candidates) > 0 {
			return candidates, domain.RetrievalVector
		} else {
			logger.Debug("Vector retrieval returned no candidates")
		}
	}

	candidates := s.lexical.Score(userID, textutil.Tokenize(question))
	if len(candidates) > 0 {
		return candidates, domain.RetrievalLexical
	}

	return nil, domain.RetrievalNone
}

// buildContext joins candidate texts in rank order and applies the character
// budget.
func buildContext(candidates []domain.Candidate) string {
	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Chunk.Text
	}

	joined := strings.Join(texts, " ")
	if len(joined) > MaxContextChars {
		// Back off to a rune boundary so the cut never mangles a
		// multi-byte character.
		cut := MaxContextChars
		for cut > 0 && !utf8.RuneStart(joined[cut]) {
			cut--
		}
		joined = joined[:cut]
	}
	return joined
}
