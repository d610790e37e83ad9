package services

import (
	"github.com/verity-labs/askdoc/internal/textutil"
)

// MaxUnknownRatio is the fraction of answer content words allowed to be
// absent from the context and question before the answer is presumed
// fabricated.
const MaxUnknownRatio = 0.30

// isGrounded checks that a generated answer's vocabulary is explainable by
// the retrieved context plus the question. The answer is reduced to content
// words; the context and question keep their stopwords, since a grounded
// answer may legitimately connect content words with any function words.
func isGrounded(answer, contextText, question string) bool {
	answerTokens := textutil.ContentTokens(answer)
	if len(answerTokens) == 0 {
		// Nothing to ground.
		return true
	}

	known := textutil.Tokenize(contextText)
	for tok := range textutil.Tokenize(question) {
		known[tok] = struct{}{}
	}

	unknown := 0
	for tok := range answerTokens {
		if _, ok := known[tok]; !ok {
			unknown++
		}
	}

	return float64(unknown)/float64(len(answerTokens)) <= MaxUnknownRatio
}
