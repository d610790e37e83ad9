package domain

import (
	"fmt"
	"time"
)

// Chunk is the smallest retrievable unit of document text. Chunks are created
// during ingestion and immutable thereafter; re-ingesting a document appends
// new chunks rather than replacing prior ones.
type Chunk struct {
	// UserID scopes the chunk to the corpus of a single user.
	UserID string

	// Source is the originating document filename.
	Source string

	// Page is the 1-based page number, or 0 when the extraction path is not
	// paginated (paragraph-based segments).
	Page int

	// Index is the 1-based position of the chunk within its page, restarting
	// at 1 on every page.
	Index int

	// Text is the cleaned, whitespace-normalised content.
	Text string

	// Tokens is the normalised token set derived from Text. Used only for
	// lexical overlap scoring.
	Tokens map[string]struct{}
}

// Key returns the addressable identity of the chunk within a user's corpus.
// (source, page, index) is unique per corpus and is the id used by both
// indexes.
func (c Chunk) Key() string {
	return fmt.Sprintf("%s|%d|%d", c.Source, c.Page, c.Index)
}

// Citation formats the chunk identity for user-facing source lists.
func (c Chunk) Citation() string {
	return fmt.Sprintf("%s — Page %d (Chunk %d)", c.Source, c.Page, c.Index)
}

// Document records a single ingestion of a source file into a user's corpus.
type Document struct {
	// ID is the unique identifier assigned at ingestion.
	ID string

	// UserID is the owning user's corpus.
	UserID string

	// Source is the document filename.
	Source string

	// ChunkCount is the number of chunks produced by this ingestion.
	ChunkCount int

	// IngestedAt is when the document was ingested.
	IngestedAt time.Time
}

// Segment is a unit of extracted document text prior to chunking: one page
// for paginated formats, one paragraph-like block otherwise.
type Segment struct {
	// Page is the 1-based page number, or 0 for non-paginated extraction.
	Page int

	// Text is the raw extracted text, not yet cleaned.
	Text string
}
