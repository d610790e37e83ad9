// Package structured provides the richer PDF parsing path: whole-document
// text extraction split into paragraph segments. Paragraph segments carry no
// page number (page 0). The registry silently falls back to the baseline
// page parser when this path fails or produces nothing.
package structured

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/verity-labs/askdoc/internal/core/domain"
	"github.com/verity-labs/askdoc/internal/core/ports/driven"
)

var paragraphRe = regexp.MustCompile(`\n\s*\n`)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

// Parser extracts the full document text and segments it by paragraph.
type Parser struct{}

// New creates a new structural parser.
func New() *Parser {
	return &Parser{}
}

// Name identifies the parsing strategy.
func (p *Parser) Name() string {
	return "pdf-paragraphs"
}

// Parse returns one segment per paragraph-like block, all with Page 0.
func (p *Parser) Parse(ctx context.Context, path string) ([]domain.Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", domain.ErrUnreadableDocument, path, err)
	}
	defer f.Close()

	r, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("%w: extracting text from %s: %w", domain.ErrUnreadableDocument, path, err)
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading text from %s: %w", domain.ErrUnreadableDocument, path, err)
	}

	var segments []domain.Segment
	for _, block := range paragraphRe.Split(string(raw), -1) {
		if strings.TrimSpace(block) == "" {
			continue
		}
		segments = append(segments, domain.Segment{Page: 0, Text: block})
	}

	return segments, nil
}
