// Package plaintext handles text-like documents as a single unpaginated
// segment. It is the fallback parser for anything that is not a PDF.
package plaintext

import (
	"context"
	"fmt"
	"os"

	"github.com/verity-labs/askdoc/internal/core/domain"
	"github.com/verity-labs/askdoc/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

// Parser reads a file verbatim into one segment.
type Parser struct{}

// New creates a new plain text parser.
func New() *Parser {
	return &Parser{}
}

// Name identifies the parsing strategy.
func (p *Parser) Name() string {
	return "plaintext"
}

// Parse returns the whole file as a single segment with Page 0, or nothing
// when the file is empty.
func (p *Parser) Parse(ctx context.Context, path string) ([]domain.Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", domain.ErrUnreadableDocument, path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	return []domain.Segment{{Page: 0, Text: string(data)}}, nil
}
