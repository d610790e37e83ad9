// Package parsers selects and sequences document parsing strategies. A file
// is handed to an ordered list of parsers; the first to succeed with at least
// one segment wins, and intermediate failures never reach the caller.
package parsers

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/verity-labs/askdoc/internal/core/domain"
	"github.com/verity-labs/askdoc/internal/core/ports/driven"
	"github.com/verity-labs/askdoc/internal/logger"
	"github.com/verity-labs/askdoc/internal/parsers/pdf"
	"github.com/verity-labs/askdoc/internal/parsers/plaintext"
	"github.com/verity-labs/askdoc/internal/parsers/structured"
)

// Ensure Registry implements the interface.
var _ driven.DocumentParser = (*Registry)(nil)

// Registry dispatches on file extension to an ordered parser chain.
type Registry struct {
	preferStructured bool
}

// Option configures the registry.
type Option func(*Registry)

// WithStructured enables the paragraph-based structural path for PDFs,
// falling back to page extraction when it fails or extracts nothing.
func WithStructured(enabled bool) Option {
	return func(r *Registry) {
		r.preferStructured = enabled
	}
}

// New creates a parser registry.
func New(opts ...Option) *Registry {
	r := &Registry{preferStructured: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name identifies the parsing strategy.
func (r *Registry) Name() string {
	return "registry"
}

// Parse runs the chain of parsers for the file's type.
func (r *Registry) Parse(ctx context.Context, path string) ([]domain.Segment, error) {
	return Chain(r.chainFor(path)...).Parse(ctx, path)
}

func (r *Registry) chainFor(path string) []driven.DocumentParser {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		if r.preferStructured {
			return []driven.DocumentParser{structured.New(), pdf.New()}
		}
		return []driven.DocumentParser{pdf.New()}
	}
	return []driven.DocumentParser{plaintext.New()}
}

// chain tries each parser in order until one returns at least one segment.
type chain struct {
	parsers []driven.DocumentParser
}

// Chain builds an ordered fallback sequence of parsers.
func Chain(parsers ...driven.DocumentParser) driven.DocumentParser {
	return &chain{parsers: parsers}
}

// Name identifies the parsing strategy.
func (c *chain) Name() string {
	names := make([]string, len(c.parsers))
	for i, p := range c.parsers {
		names[i] = p.Name()
	}
	return strings.Join(names, ">")
}

// Parse tries each strategy in order. A parser that fails or extracts zero
// segments is skipped silently; an error surfaces only when every strategy
// failed. A readable document with no extractable text is not an error - it
// simply yields no segments.
func (c *chain) Parse(ctx context.Context, path string) ([]domain.Segment, error) {
	anySucceeded := false
	var lastErr error
	for _, p := range c.parsers {
		segments, err := p.Parse(ctx, path)
		if err != nil {
			logger.Warn("Parser %s failed on %s: %v", p.Name(), path, err)
			lastErr = err
			continue
		}
		anySucceeded = true
		if len(segments) == 0 {
			logger.Debug("Parser %s extracted nothing from %s", p.Name(), path)
			continue
		}
		logger.Debug("Parser %s extracted %d segments from %s", p.Name(), len(segments), path)
		return segments, nil
	}

	if !anySucceeded && lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}
