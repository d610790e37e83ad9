package domain

import "fmt"

// Retrieval method tags identify which strategy produced the active context.
const (
	// RetrievalVector means the vector index answered the query.
	RetrievalVector = "vector"

	// RetrievalLexical means the token-overlap index answered after the
	// vector index failed or returned nothing.
	RetrievalLexical = "fallback-token"

	// RetrievalNone means neither index produced a candidate.
	RetrievalNone = "none"
)

// NoRelevantInfoAnswer is the canned terminal answer when retrieval produces
// zero candidates.
const NoRelevantInfoAnswer = "No relevant information found in the uploaded document."

// InsufficientContextSentinel is the exact string the generation backend is
// instructed to return when the supplied context does not support an answer.
// The pipeline treats it as a rejection and substitutes the extractive
// fallback; it is never surfaced verbatim.
const InsufficientContextSentinel = "Insufficient information in provided context."

// Candidate is a scored chunk produced transiently during retrieval. Score
// semantics depend on the retrieval method: renormalised cosine similarity in
// [0,1] for vector retrieval, token-overlap ratio in [0,1] for lexical.
type Candidate struct {
	Score float64
	Chunk Chunk
}

// Confidence qualifies a query result with a label and the mean retrieval
// score of the context used.
type Confidence struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Confidence label thresholds.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
)

// ConfidenceFromScores derives the confidence from the scores of the
// candidates whose text formed the context. Zero candidates means Low (0.00).
func ConfidenceFromScores(scores []float64) Confidence {
	if len(scores) == 0 {
		return Confidence{Label: ConfidenceLow, Score: 0}
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	avg := sum / float64(len(scores))
	label := ConfidenceMedium
	if avg >= 0.6 {
		label = ConfidenceHigh
	}
	return Confidence{Label: label, Score: avg}
}

// String formats the confidence as "High (0.72)".
func (c Confidence) String() string {
	return fmt.Sprintf("%s (%.2f)", c.Label, c.Score)
}

// QueryResult is the externally visible outcome of a question. Constructed
// fresh per query, never cached.
type QueryResult struct {
	// Answer is the final answer text: generated, extracted, or the canned
	// no-information response.
	Answer string `json:"answer"`

	// Confidence qualifies the answer by retrieval score.
	Confidence Confidence `json:"confidence"`

	// Sources lists up to 3 deduplicated citations for the top candidates,
	// in rank order.
	Sources []string `json:"sources"`

	// RetrievalMethod is the strategy that produced the context.
	RetrievalMethod string `json:"retrieval_method"`
}
