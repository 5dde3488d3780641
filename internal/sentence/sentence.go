// Package sentence segments free text into an ordered sequence of sentences.
//
// Segmentation is deterministic: a run of the terminators '.', '!' and '?'
// ends a sentence when it is followed by whitespace or end of text.
// Terminators glued to the next character inside a token (as in "3.14" or
// the inner periods of "U.S.A.") do not split; a trailing abbreviation
// period before a space is indistinguishable from a sentence end and does.
// Each sentence has its internal whitespace collapsed to single
// spaces, so joining the sequence with single spaces reconstructs the input
// modulo whitespace normalization, and re-splitting the joined text yields
// the same sequence.
package sentence

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// Split segments text into sentences. Input is NFC-normalized first so that
// visually identical texts segment identically. Empty input yields nil.
func Split(text string) []string {
	runes := []rune(norm.NFC.String(text))

	var sentences []string
	start := 0
	i := 0
	for i < len(runes) {
		if !isTerminator(runes[i]) {
			i++
			continue
		}

		// Consume the whole terminator run ("?!", "...") as one boundary.
		j := i + 1
		for j < len(runes) && isTerminator(runes[j]) {
			j++
		}

		if j < len(runes) && !unicode.IsSpace(runes[j]) {
			// Terminator glued to the next token: abbreviation or number.
			i = j
			continue
		}

		if s := collapseSpace(string(runes[start:j])); s != "" {
			sentences = append(sentences, s)
		}
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		start = j
		i = j
	}

	if start < len(runes) {
		if s := collapseSpace(string(runes[start:])); s != "" {
			sentences = append(sentences, s)
		}
	}

	return sentences
}

// Join concatenates sentences with single spaces.
func Join(sentences []string) string {
	return strings.Join(sentences, " ")
}

// Count returns the number of sentences in text.
func Count(text string) int {
	return len(Split(text))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
