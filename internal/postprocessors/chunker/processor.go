// Package chunker provides a sentence-grouping chunking processor.
package chunker

import (
	"github.com/verity-labs/askdoc/internal/core/domain"
	"github.com/verity-labs/askdoc/internal/core/ports/driven"
	"github.com/verity-labs/askdoc/internal/textutil"
)

// DefaultSentencesPerChunk is the default number of consecutive sentences
// grouped into one chunk. The grouping size is tunable; the per-page index
// restart and the skipping of empty blocks are not, since citation identity
// depends on them.
const DefaultSentencesPerChunk = 4

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// Processor groups the sentences of each segment into chunks with stable
// (source, page, index) identity.
type Processor struct {
	sentencesPerChunk int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithSentencesPerChunk sets the number of sentences grouped per chunk.
func WithSentencesPerChunk(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.sentencesPerChunk = n
		}
	}
}

// New creates a new chunking processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		sentencesPerChunk: DefaultSentencesPerChunk,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "sentence-chunker"
}

// Chunk cleans each segment, splits it into sentences and groups them into
// blocks of sentencesPerChunk (the last block may be shorter). Chunk indices
// are 1-based per page, restarting at 1 on a new page number; unpaginated
// segments all carry page 0 and share one running index so that
// (source, page, index) stays unique. Segments or blocks that are empty after
// cleaning are skipped entirely.
func (p *Processor) Chunk(userID, source string, segments []domain.Segment) []domain.Chunk {
	var chunks []domain.Chunk
	perPage := make(map[int]int)

	for _, seg := range segments {
		text := textutil.CleanText(seg.Text)
		if text == "" {
			continue
		}

		sentences := textutil.SplitSentences(text)
		for i := 0; i < len(sentences); i += p.sentencesPerChunk {
			end := i + p.sentencesPerChunk
			if end > len(sentences) {
				end = len(sentences)
			}

			block := textutil.CleanText(joinSentences(sentences[i:end]))
			if block == "" {
				continue
			}

			perPage[seg.Page]++
			chunks = append(chunks, domain.Chunk{
				UserID: userID,
				Source: source,
				Page:   seg.Page,
				Index:  perPage[seg.Page],
				Text:   block,
				Tokens: textutil.Tokenize(block),
			})
		}
	}

	return chunks
}

func joinSentences(sentences []string) string {
	out := ""
	for i, s := range sentences {
		if i > 0 {
			out += " "
		}
		out += s
	}
	return out
}
