package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verity-labs/askdoc/internal/core/domain"
	"github.com/verity-labs/askdoc/internal/core/ports/driven"
	"github.com/verity-labs/askdoc/internal/core/ports/driving"
	"github.com/verity-labs/askdoc/internal/logger"
)

// Ensure PipelineService implements the interface.
var _ driving.PipelineService = (*PipelineService)(nil)

// MaxSources caps the number of citations attached to an answer.
const MaxSources = 3

// PipelineService orchestrates ingestion and question answering. Every query
// terminates in an answer: a grounded generation, an extractive excerpt, or
// the canned no-information response. Failures in the generate-or-ground path
// are absorbed by falling back one level, never surfaced to the caller.
type PipelineService struct {
	parser    driven.DocumentParser
	chunker   driven.Chunker
	docStore  driven.DocumentStore
	lexical   driven.LexicalIndex
	vector    driven.VectorIndex
	generator driven.AnswerGenerator
}

// NewPipelineService creates a new pipeline service.
// The generator parameter is optional (can be nil); without it every answer
// comes from the extractive fallback.
func NewPipelineService(
	parser driven.DocumentParser,
	chunker driven.Chunker,
	docStore driven.DocumentStore,
	lexical driven.LexicalIndex,
	vector driven.VectorIndex,
	generator driven.AnswerGenerator,
) *PipelineService {
	return &PipelineService{
		parser:    parser,
		chunker:   chunker,
		docStore:  docStore,
		lexical:   lexical,
		vector:    vector,
		generator: generator,
	}
}

// Ingest parses, chunks and indexes the file at path into the user's corpus.
func (s *PipelineService) Ingest(ctx context.Context, userID, path string) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(path) == "" {
		return 0, fmt.Errorf("%w: file path is required", domain.ErrInvalidInput)
	}

	logger.Section("Ingestion")
	logger.Info("Ingesting %s for user %s", path, userID)

	segments, err := s.parser.Parse(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	logger.Debug("Parsed %d segments via %s", len(segments), s.parser.Name())

	chunks := s.chunker.Chunk(userID, path, segments)
	logger.Debug("Chunked into %d chunks via %s", len(chunks), s.chunker.Name())

	if s.docStore != nil {
		doc := &domain.Document{
			ID:         uuid.NewString(),
			UserID:     userID,
			Source:     path,
			ChunkCount: len(chunks),
			IngestedAt: time.Now(),
		}
		if err := s.docStore.SaveDocument(ctx, doc); err != nil {
			return 0, fmt.Errorf("save document record: %w", err)
		}
	}

	if len(chunks) == 0 {
		logger.Warn("Document %s produced no chunks", path)
		return 0, nil
	}

	// Mirror into both indexes. The lexical index cannot fail; the vector
	// index degrades internally when embeddings are unavailable.
	s.lexical.Add(userID, chunks)
	if err := s.vector.Upsert(ctx, userID, chunks); err != nil {
		return 0, fmt.Errorf("index chunks: %w", err)
	}

	logger.Info("Ingested %d chunks", len(chunks))
	return len(chunks), nil
}

// Ask answers a natural-language question from the user's corpus.
func (s *PipelineService) Ask(ctx context.Context, userID, question string) (*domain.QueryResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}

	logger.Section("Question Answering")
	logger.Debug("Question: %q", question)

	candidates, method := s.retrieve(ctx, userID, question)
	if len(candidates) == 0 {
		logger.Info("No candidates retrieved, returning terminal answer")
		return &domain.QueryResult{
			Answer:          domain.NoRelevantInfoAnswer,
			Confidence:      domain.ConfidenceFromScores(nil),
			Sources:         []string{},
			RetrievalMethod: domain.RetrievalNone,
		}, nil
	}
	logger.Info("Retrieved %d candidates via %s", len(candidates), method)

	contextText := buildContext(candidates)
	answer := s.answerFrom(ctx, question, contextText, candidates)

	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		scores[i] = c.Score
	}

	return &domain.QueryResult{
		Answer:          answer,
		Confidence:      domain.ConfidenceFromScores(scores),
		Sources:         buildSources(candidates),
		RetrievalMethod: method,
	}, nil
}

// answerFrom runs the generate-or-extract decision for a non-empty candidate
// set. It cannot fail: generation errors, sentinel refusals and ungrounded
// answers all resolve to the extractive fallback.
func (s *PipelineService) answerFrom(
	ctx context.Context, question, contextText string, candidates []domain.Candidate,
) string {
	if s.generator == nil {
		logger.Debug("No generation backend configured, extracting")
		return extractAnswer(question, candidates)
	}

	answer, err := s.generator.GenerateAnswer(ctx, question, contextText)
	if err != nil {
		logger.Warn("Generation failed: %v (falling back to extraction)", err)
		return extractAnswer(question, candidates)
	}

	if isSentinel(answer) {
		logger.Info("Model declined to answer, extracting instead")
		return extractAnswer(question, candidates)
	}

	if !isGrounded(answer, contextText, question) {
		logger.Warn("Answer failed grounding check, extracting instead")
		return extractAnswer(question, candidates)
	}

	logger.Debug("Generated answer accepted")
	return answer
}

// isSentinel reports whether the model returned the exact refusal sentence,
// compared case-insensitively after trimming.
func isSentinel(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), domain.InsufficientContextSentinel)
}

// buildSources formats citations for the top 3 candidates, deduplicating
// exact repeats while preserving first-seen order. Only the top 3 are
// considered: a duplicate among them yields fewer than 3 sources rather than
// promoting a lower-ranked chunk.
func buildSources(candidates []domain.Candidate) []string {
	if len(candidates) > MaxSources {
		candidates = candidates[:MaxSources]
	}

	sources := make([]string, 0, len(candidates))
	seen := make(map[string]bool)

	for _, c := range candidates {
		citation := c.Chunk.Citation()
		if seen[citation] {
			continue
		}
		seen[citation] = true
		sources = append(sources, citation)
	}

	return sources
}
