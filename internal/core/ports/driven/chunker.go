package driven

import (
	"github.com/verity-labs/askdoc/internal/core/domain"
)

// Chunker turns parsed segments into retrievable chunks. Chunking is
// deterministic: identical segments always produce the identical chunk
// sequence, since citation identity depends on it.
type Chunker interface {
	// Chunk cleans, sentence-splits and groups the segments of a source
	// document. Segments that are empty after cleaning produce no chunks.
	Chunk(userID, source string, segments []domain.Segment) []domain.Chunk

	// Name returns the chunker name for logging.
	Name() string
}
