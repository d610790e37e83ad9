// Package pdf provides the baseline PDF parsing path: one text segment per
// page, extracted with a pure Go PDF reader.
package pdf

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/verity-labs/askdoc/internal/core/domain"
	"github.com/verity-labs/askdoc/internal/core/ports/driven"
	"github.com/verity-labs/askdoc/internal/logger"
)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

// Parser extracts text page by page.
type Parser struct{}

// New creates a new baseline PDF parser.
func New() *Parser {
	return &Parser{}
}

// Name identifies the parsing strategy.
func (p *Parser) Name() string {
	return "pdf-pages"
}

// Parse returns one segment per page with 1-based page numbers. Pages whose
// text extraction fails are skipped rather than failing the document; only an
// unreadable file is an error.
func (p *Parser) Parse(ctx context.Context, path string) ([]domain.Segment, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", domain.ErrUnreadableDocument, path, err)
	}
	defer f.Close()

	var segments []domain.Segment
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("Skipping page %d of %s: %v", pageNum, path, err)
			continue
		}

		segments = append(segments, domain.Segment{Page: pageNum, Text: text})
	}

	return segments, nil
}
