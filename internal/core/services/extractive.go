package services

import (
	"sort"
	"strings"

	"github.com/verity-labs/askdoc/internal/core/domain"
	"github.com/verity-labs/askdoc/internal/textutil"
)

// MaxExtractedSentences caps how many source sentences form a fallback
// answer.
const MaxExtractedSentences = 5

// scoredSentence pairs a literal source sentence with its query overlap.
type scoredSentence struct {
	text    string
	overlap int
}

// extractAnswer assembles a deterministic answer from the literal sentences
// of the retrieved candidates. This is the terminal fallback: it never
// returns an empty string when at least one candidate has non-empty text.
func extractAnswer(question string, candidates []domain.Candidate) string {
	queryTokens := textutil.ContentTokens(question)

	var sentences []scoredSentence
	for _, c := range candidates {
		for _, sentence := range textutil.SplitSentences(c.Chunk.Text) {
			sentence = strings.TrimSpace(sentence)
			if sentence == "" {
				continue
			}
			sentences = append(sentences, scoredSentence{
				text:    sentence,
				overlap: textutil.Overlap(textutil.Tokenize(sentence), queryTokens),
			})
		}
	}

	if len(sentences) == 0 {
		// No sentence boundaries anywhere; surface the best chunk verbatim.
		if len(candidates) > 0 {
			return strings.TrimSpace(candidates[0].Chunk.Text)
		}
		return ""
	}

	matched := make([]scoredSentence, 0, len(sentences))
	for _, s := range sentences {
		if s.overlap > 0 {
			matched = append(matched, s)
		}
	}
	if len(matched) == 0 {
		return sentences[0].text
	}

	// Raw overlap count, ties keep original candidate-rank order.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].overlap > matched[j].overlap
	})
	if len(matched) > MaxExtractedSentences {
		matched = matched[:MaxExtractedSentences]
	}

	parts := make([]string, len(matched))
	for i, s := range matched {
		parts[i] = s.text
	}
	return strings.Join(parts, " ")
}
