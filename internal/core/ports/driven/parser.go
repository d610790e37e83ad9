package driven

import (
	"context"

	"github.com/verity-labs/askdoc/internal/core/domain"
)

// DocumentParser extracts ordered text segments from a source file.
// Implementations must not fail on recoverable structural issues, only on
// genuinely unreadable input.
//
// Implementations may include:
//   - PDF page extraction (one segment per page)
//   - structural paragraph extraction (segments with Page 0)
//   - plain text (a single unpaginated segment)
type DocumentParser interface {
	// Parse reads the file at path and returns its text segments in order.
	// An empty slice with nil error means the document contained no
	// extractable text.
	Parse(ctx context.Context, path string) ([]domain.Segment, error)

	// Name identifies the parsing strategy for logging.
	Name() string
}
