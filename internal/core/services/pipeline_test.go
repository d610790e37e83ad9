package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verity-labs/askdoc/internal/core/domain"
	"github.com/verity-labs/askdoc/internal/textutil"
)

// --- Mock implementations ---

// mockParser implements driven.DocumentParser for testing.
type mockParser struct {
	segments []domain.Segment
	parseErr error
}

func (m *mockParser) Parse(_ context.Context, _ string) ([]domain.Segment, error) {
	if m.parseErr != nil {
		return nil, m.parseErr
	}
	return m.segments, nil
}

func (m *mockParser) Name() string { return "mock-parser" }

// mockChunker implements driven.Chunker for testing.
type mockChunker struct {
	chunks []domain.Chunk
}

func (m *mockChunker) Chunk(_, _ string, _ []domain.Segment) []domain.Chunk {
	return m.chunks
}

func (m *mockChunker) Name() string { return "mock-chunker" }

// mockDocStore implements driven.DocumentStore for testing.
type mockDocStore struct {
	saved   []*domain.Document
	saveErr error
}

func (m *mockDocStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, doc)
	return nil
}

func (m *mockDocStore) GetDocument(_ context.Context, _ string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (m *mockDocStore) ListDocuments(_ context.Context, _ string) ([]domain.Document, error) {
	return nil, nil
}

// mockLexical implements driven.LexicalIndex for testing.
type mockLexical struct {
	added      []domain.Chunk
	candidates []domain.Candidate
}

func (m *mockLexical) Add(_ string, chunks []domain.Chunk) {
	m.added = append(m.added, chunks...)
}

func (m *mockLexical) Score(_ string, _ map[string]struct{}) []domain.Candidate {
	return m.candidates
}

// mockVector implements driven.VectorIndex for testing.
type mockVector struct {
	upserted   []domain.Chunk
	candidates []domain.Candidate
	upsertErr  error
	queryErr   error
}

func (m *mockVector) Upsert(_ context.Context, _ string, chunks []domain.Chunk) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, chunks...)
	return nil
}

func (m *mockVector) Query(_ context.Context, _, _ string, _ int) ([]domain.Candidate, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.candidates, nil
}

func (m *mockVector) Close() error { return nil }

// mockGenerator implements driven.AnswerGenerator for testing.
type mockGenerator struct {
	answer      string
	generateErr error
	calls       int
	gotQuestion string
	gotPassages string
}

func (m *mockGenerator) GenerateAnswer(_ context.Context, question, passages string) (string, error) {
	m.calls++
	m.gotQuestion = question
	m.gotPassages = passages
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.answer, nil
}

func (m *mockGenerator) ModelName() string { return "mock-model" }

// --- Helpers ---

func testChunk(source string, page, index int, text string) domain.Chunk {
	return domain.Chunk{
		UserID: "u1",
		Source: source,
		Page:   page,
		Index:  index,
		Text:   text,
		Tokens: textutil.Tokenize(text),
	}
}

// newPipeline builds a service from mocks. A nil gen means no generation
// backend; the typed nil must not leak into the interface.
func newPipeline(parser *mockParser, chunker *mockChunker, store *mockDocStore,
	lexical *mockLexical, vector *mockVector, gen *mockGenerator,
) *PipelineService {
	if gen == nil {
		return NewPipelineService(parser, chunker, store, lexical, vector, nil)
	}
	return NewPipelineService(parser, chunker, store, lexical, vector, gen)
}

// --- Ingest ---

func TestIngest_MissingInput(t *testing.T) {
	svc := newPipeline(&mockParser{}, &mockChunker{}, &mockDocStore{}, &mockLexical{}, &mockVector{}, nil)

	_, err := svc.Ingest(context.Background(), "", "doc.pdf")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = svc.Ingest(context.Background(), "u1", "  ")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestIngest_ParseFailure(t *testing.T) {
	parser := &mockParser{parseErr: domain.ErrUnreadableDocument}
	svc := newPipeline(parser, &mockChunker{}, &mockDocStore{}, &mockLexical{}, &mockVector{}, nil)

	_, err := svc.Ingest(context.Background(), "u1", "broken.pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnreadableDocument))
}

func TestIngest_IndexesBothWaysAndRecords(t *testing.T) {
	chunks := []domain.Chunk{
		testChunk("doc.pdf", 1, 1, "The warranty period is two years."),
		testChunk("doc.pdf", 2, 1, "Returns are accepted within fourteen days."),
	}
	parser := &mockParser{segments: []domain.Segment{{Page: 1, Text: "x"}}}
	store := &mockDocStore{}
	lexical := &mockLexical{}
	vector := &mockVector{}
	svc := newPipeline(parser, &mockChunker{chunks: chunks}, store, lexical, vector, nil)

	count, err := svc.Ingest(context.Background(), "u1", "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, lexical.added, 2)
	assert.Len(t, vector.upserted, 2)

	require.Len(t, store.saved, 1)
	assert.Equal(t, "u1", store.saved[0].UserID)
	assert.Equal(t, "doc.pdf", store.saved[0].Source)
	assert.Equal(t, 2, store.saved[0].ChunkCount)
	assert.NotEmpty(t, store.saved[0].ID)
}

func TestIngest_EmptyDocument(t *testing.T) {
	parser := &mockParser{segments: nil}
	lexical := &mockLexical{}
	vector := &mockVector{}
	svc := newPipeline(parser, &mockChunker{}, &mockDocStore{}, lexical, vector, nil)

	count, err := svc.Ingest(context.Background(), "u1", "empty.txt")
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, lexical.added)
	assert.Empty(t, vector.upserted)
}

// --- Ask: retrieval paths ---

func TestAsk_MissingInput(t *testing.T) {
	svc := newPipeline(&mockParser{}, &mockChunker{}, &mockDocStore{}, &mockLexical{}, &mockVector{}, nil)

	_, err := svc.Ask(context.Background(), "", "a question")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = svc.Ask(context.Background(), "u1", "   ")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestAsk_NoCandidatesIsTerminal(t *testing.T) {
	vector := &mockVector{queryErr: domain.ErrVectorIndexUnavailable}
	svc := newPipeline(&mockParser{}, &mockChunker{}, &mockDocStore{}, &mockLexical{}, vector, nil)

	result, err := svc.Ask(context.Background(), "u1", "anything at all?")
	require.NoError(t, err)

	assert.Equal(t, domain.NoRelevantInfoAnswer, result.Answer)
	assert.Equal(t, domain.ConfidenceLow, result.Confidence.Label)
	assert.Zero(t, result.Confidence.Score)
	assert.Empty(t, result.Sources)
	assert.Equal(t, domain.RetrievalNone, result.RetrievalMethod)
}

func TestAsk_VectorFirst(t *testing.T) {
	chunk := testChunk("doc.pdf", 1, 1, "The warranty period is two years.")
	vector := &mockVector{candidates: []domain.Candidate{{Score: 0.9, Chunk: chunk}}}
	lexical := &mockLexical{candidates: []domain.Candidate{{Score: 0.5, Chunk: chunk}}}
	svc := newPipeline(&mockParser{}, &mockChunker{}, &mockDocStore{}, lexical, vector, nil)

	result, err := svc.Ask(context.Background(), "u1", "how long is the warranty period?")
	require.NoError(t, err)
	assert.Equal(t, domain.RetrievalVector, result.RetrievalMethod)
}

func TestAsk_LexicalFallbackOnVectorError(t *testing.T) {
	chunk := testChunk("doc.pdf", 1, 1, "The warranty period is two years.")
	vector := &mockVector{queryErr: domain.ErrVectorIndexUnavailable}
	lexical := &mockLexical{candidates: []domain.Candidate{{Score: 0.5, Chunk: chunk}}}
	svc := newPipeline(&mockParser{}, &mockChunker{}, &mockDocStore{}, lexical, vector, nil)

	result, err := svc.Ask(context.Background(), "u1", "how long is the warranty period?")
	require.NoError(t, err)
	assert.Equal(t, domain.RetrievalLexical, result.RetrievalMethod)
}

func TestAsk_LexicalFallbackOnEmptyVector(t *testing.T) {
	chunk := testChunk("doc.pdf", 1, 1, "The warranty period is two years.")
	vector := &mockVector{candidates: nil}
	lexical := &mockLexical{candidates: []domain.Candidate{{Score: 0.5, Chunk: chunk}}}
	svc := newPipeline(&mockParser{}, &mockChunker{}, &mockDocStore{}, lexical, vector, nil)

	result, err := svc.Ask(context.Background(), "u1", "how long is the warranty period?")
	require.NoError(t, err)
	assert.Equal(t, domain.RetrievalLexical, result.RetrievalMethod)
}

// --- Ask: generation and fallback ---

func TestAsk_AcceptsGroundedAnswer(t *testing.T) {
	chunk := testChunk("doc.pdf", 1, 1, "The warranty period is two years.")
	vector := &mockVector{candidates: []domain.Candidate{{Score: 0.8, Chunk: chunk}}}
	gen := &mockGenerator{answer: "The warranty period is two years."}
	svc := newPipeline(&mockParser{}, &mockChunker{}, &mockDocStore{}, &mockLexical{}, vector, gen)

	result, err := svc.Ask(context.Background(), "u1", "how long is the warranty?")
	require.NoError(t, err)

	assert.Equal(t, "The warranty period is two years.", result.Answer)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, "how long is the warranty?", gen.gotQuestion)
	assert.Contains(t, gen.gotPassages, "warranty period")
}

func TestAsk_GenerationFailureFallsBackToExtraction(t *testing.T) {
	chunk := testChunk("doc.pdf", 1, 1, "The warranty period is two years. Returns need a receipt.")
	candidates := []domain.Candidate{{Score: 0.8, Chunk: chunk}}
	question := "how long is the warranty period?"

	vector := &mockVector{candidates: candidates}
	gen := &mockGenerator{generateErr: domain.ErrGenerationFailed}
	svc := newPipeline(&mockParser{}, &mockChunker{}, &mockDocStore{}, &mockLexical{}, vector, gen)

	result, err := svc.Ask(context.Background(), "u1", question)
	require.NoError(t, err)

	// Byte-identical to what direct extraction produces for the same input.
	assert.Equal(t, extractAnswer(question, candidates), result.Answer)
	assert.NotEmpty(t, result.Answer)
}

func TestAsk_SentinelNeverSurfaced(t *testing.T) {
	chunk := testChunk("doc.pdf", 1, 1, "The warranty period is two years.")
	vector := &mockVector{candidates: []domain.Candidate{{Score: 0.8, Chunk: chunk}}}
	gen := &mockGenerator{answer: "  insufficient information IN provided context.  "}
	svc := newPipeline(&mockParser{}, &mockChunker{}, &mockDocStore{}, &mockLexical{}, vector, gen)

	result, err := svc.Ask(context.Background(), "u1", "how long is the warranty?")
	require.NoError(t, err)

	assert.NotEqual(t, domain.InsufficientContextSentinel, result.Answer)
	assert.NotContains(t, strings.ToLower(result.Answer), "insufficient information")
	assert.NotEmpty(t, result.Answer)
}

func TestAsk_UngroundedAnswerReplaced(t *testing.T) {
	chunk := testChunk("doc.pdf", 1, 1, "The warranty period is two years.")
	vector := &mockVector{candidates: []domain.Candidate{{Score: 0.8, Chunk: chunk}}}
	gen := &mockGenerator{answer: "Elephants migrate across vast savannas during monsoon."}
	svc := newPipeline(&mockParser{}, &mockChunker{}, &mockDocStore{}, &mockLexical{}, vector, gen)

	result, err := svc.Ask(context.Background(), "u1", "how long is the warranty?")
	require.NoError(t, err)

	assert.NotEqual(t, gen.answer, result.Answer)
	assert.Contains(t, result.Answer, "warranty")
}

func TestAsk_NilGeneratorExtracts(t *testing.T) {
	chunk := testChunk("doc.pdf", 1, 1, "The warranty period is two years.")
	vector := &mockVector{candidates: []domain.Candidate{{Score: 0.8, Chunk: chunk}}}
	svc := newPipeline(&mockParser{}, &mockChunker{}, &mockDocStore{}, &mockLexical{}, vector, nil)

	result, err := svc.Ask(context.Background(), "u1", "how long is the warranty?")
	require.NoError(t, err)
	assert.Equal(t, "The warranty period is two years.", result.Answer)
}

// --- Ask: confidence and sources ---

func TestAsk_ConfidenceLabels(t *testing.T) {
	chunk := testChunk("doc.pdf", 1, 1, "The warranty period is two years.")

	tests := []struct {
		name   string
		scores []float64
		label  string
	}{
		{"high at threshold", []float64{0.6, 0.6}, domain.ConfidenceHigh},
		{"high above threshold", []float64{0.9, 0.7}, domain.ConfidenceHigh},
		{"medium below threshold", []float64{0.5, 0.3}, domain.ConfidenceMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates := make([]domain.Candidate, len(tt.scores))
			for i, s := range tt.scores {
				candidates[i] = domain.Candidate{Score: s, Chunk: chunk}
			}
			vector := &mockVector{candidates: candidates}
			svc := newPipeline(&mockParser{}, &mockChunker{}, &mockDocStore{}, &mockLexical{}, vector, nil)

			result, err := svc.Ask(context.Background(), "u1", "how long is the warranty?")
			require.NoError(t, err)
			assert.Equal(t, tt.label, result.Confidence.Label)

			want := 0.0
			for _, s := range tt.scores {
				want += s
			}
			want /= float64(len(tt.scores))
			assert.InDelta(t, want, result.Confidence.Score, 1e-9)
		})
	}
}

func TestAsk_SourcesFormatAndCap(t *testing.T) {
	candidates := []domain.Candidate{
		{Score: 0.9, Chunk: testChunk("manual.pdf", 3, 1, "warranty text one")},
		{Score: 0.8, Chunk: testChunk("manual.pdf", 4, 2, "warranty text two")},
		{Score: 0.7, Chunk: testChunk("faq.txt", 0, 1, "warranty text three")},
		{Score: 0.6, Chunk: testChunk("faq.txt", 0, 2, "warranty text four")},
	}
	vector := &mockVector{candidates: candidates}
	svc := newPipeline(&mockParser{}, &mockChunker{}, &mockDocStore{}, &mockLexical{}, vector, nil)

	result, err := svc.Ask(context.Background(), "u1", "what about the warranty?")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"manual.pdf — Page 3 (Chunk 1)",
		"manual.pdf — Page 4 (Chunk 2)",
		"faq.txt — Page 0 (Chunk 1)",
	}, result.Sources)
}

func TestAsk_DuplicateInTopThreeYieldsFewerSources(t *testing.T) {
	// A duplicate citation among the top 3 shrinks the list; the rank-4
	// candidate never backfills.
	candidates := []domain.Candidate{
		{Score: 0.9, Chunk: testChunk("manual.pdf", 3, 1, "warranty text one")},
		{Score: 0.8, Chunk: testChunk("manual.pdf", 3, 1, "warranty text one")},
		{Score: 0.7, Chunk: testChunk("manual.pdf", 4, 2, "warranty text two")},
		{Score: 0.6, Chunk: testChunk("faq.txt", 0, 1, "warranty text three")},
	}
	vector := &mockVector{candidates: candidates}
	svc := newPipeline(&mockParser{}, &mockChunker{}, &mockDocStore{}, &mockLexical{}, vector, nil)

	result, err := svc.Ask(context.Background(), "u1", "what about the warranty?")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"manual.pdf — Page 3 (Chunk 1)",
		"manual.pdf — Page 4 (Chunk 2)",
	}, result.Sources)
}

// --- Context assembly ---

func TestBuildContext_SpaceJoinedAndTruncatedOnce(t *testing.T) {
	long := strings.Repeat("w", 4000)
	candidates := []domain.Candidate{
		{Chunk: domain.Chunk{Text: long}},
		{Chunk: domain.Chunk{Text: long}},
	}

	got := buildContext(candidates)
	assert.Len(t, got, MaxContextChars)
	assert.Equal(t, long+" "+long[:MaxContextChars-4001], got)
}

func TestBuildContext_TruncatesOnRuneBoundary(t *testing.T) {
	// A two-byte rune straddles the character budget; the cut must back off
	// rather than emit half of it.
	text := strings.Repeat("a", MaxContextChars-1) + "é and more text beyond the budget"
	candidates := []domain.Candidate{{Chunk: domain.Chunk{Text: text}}}

	got := buildContext(candidates)
	assert.True(t, utf8.ValidString(got))
	assert.Len(t, got, MaxContextChars-1)
	assert.Equal(t, strings.Repeat("a", MaxContextChars-1), got)
}

func TestBuildContext_ShortTextUnchanged(t *testing.T) {
	candidates := []domain.Candidate{
		{Chunk: domain.Chunk{Text: "first chunk."}},
		{Chunk: domain.Chunk{Text: "second chunk."}},
	}
	assert.Equal(t, "first chunk. second chunk.", buildContext(candidates))
}
