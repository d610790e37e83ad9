package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or missing required input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnreadableDocument indicates a source document could not be parsed.
	// Surfaced to the caller as an ingestion failure; never retried.
	ErrUnreadableDocument = errors.New("unreadable document")

	// ErrVectorIndexUnavailable indicates the vector backend could not serve
	// a query. Caught internally and answered by the lexical fallback; never
	// surfaced to callers.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrEmbeddingUnavailable indicates the embedding backend is unreachable
	// or misconfigured. Ingestion proceeds in degraded mode without vectors.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationFailed indicates the generation backend returned an auth,
	// quota, transport or malformed-response failure. Caught internally and
	// answered by the extractive fallback; never surfaced to callers.
	ErrGenerationFailed = errors.New("generation failed")
)
