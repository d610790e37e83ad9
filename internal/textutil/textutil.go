// Package textutil provides text normalisation primitives shared by the
// chunking, retrieval and grounding code: tokenisation, stopword filtering,
// sentence splitting and whitespace cleaning.
package textutil

import (
	"regexp"
	"strings"
)

var (
	tokenRe    = regexp.MustCompile(`[a-z0-9']+`)
	spaceRe    = regexp.MustCompile(`\s+`)
	sentenceRe = regexp.MustCompile(`([.!?])\s+`)
)

// stopwords is a fixed list of English function words. It is subtracted from
// token sets used for grounding and extractive scoring, but never from the
// sets used for lexical retrieval scoring: retrieval rewards loose overlap,
// grounding judges content words only.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "an", "and", "are", "as", "at", "be", "been", "but", "by",
		"can", "could", "did", "do", "does", "for", "from", "had", "has",
		"have", "he", "her", "his", "how", "i", "if", "in", "into", "is",
		"it", "its", "may", "might", "must", "no", "not", "of", "on", "or",
		"our", "she", "should", "so", "such", "than", "that", "the", "their",
		"them", "then", "there", "these", "they", "this", "those", "to",
		"was", "we", "were", "what", "when", "where", "which", "who", "why",
		"will", "with", "would", "you", "your",
	} {
		stopwords[w] = struct{}{}
	}
}

// Tokenize lower-cases the input and extracts maximal runs of [a-z0-9'] as a
// set. Order is not preserved and duplicates collapse. Punctuation-only or
// empty input yields an empty set.
func Tokenize(text string) map[string]struct{} {
	tokens := tokenRe.FindAllString(strings.ToLower(text), -1)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// ContentTokens tokenizes the input and removes stopwords, leaving only
// content-bearing tokens.
func ContentTokens(text string) map[string]struct{} {
	set := Tokenize(text)
	for w := range stopwords {
		delete(set, w)
	}
	return set
}

// IsStopword reports whether the given token is an English function word.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

// CleanText collapses all whitespace runs to single spaces, strips embedded
// NUL bytes and trims the result. PDF extraction routinely produces both.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\x00", " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// SplitSentences splits text into sentences on '.', '!' or '?' followed by
// whitespace. The terminator stays attached to its sentence. Leading and
// trailing whitespace is trimmed from each sentence; empty sentences are
// dropped.
func SplitSentences(text string) []string {
	parts := sentenceRe.Split(text, -1)
	terms := sentenceRe.FindAllStringSubmatch(text, -1)

	var sentences []string
	for i, part := range parts {
		s := strings.TrimSpace(part)
		if s == "" {
			continue
		}
		if i < len(terms) {
			s += terms[i][1]
		}
		sentences = append(sentences, s)
	}
	return sentences
}

// Overlap returns the number of tokens present in both sets.
func Overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for t := range a {
		if _, ok := b[t]; ok {
			n++
		}
	}
	return n
}
