// Package chunker splits long documents into pieces small enough for one
// LLM call, preferring paragraph and sentence boundaries. It also extracts
// the tail of a previous chunk as a continuity snippet for the next call's
// prompt.
package chunker

import (
	"strings"
	"unicode"
)

// DefaultContextWords is the tail length ExtractContext uses when no count
// is given.
const DefaultContextWords = 25

// Chunk splits text into pieces of at most maxRunes code points each. Split
// points are chosen, in order of preference, at paragraph breaks, after
// sentence terminators, at whitespace, or as a hard cut. maxRunes <= 0
// disables chunking.
func Chunk(text string, maxRunes int) []string {
	if maxRunes <= 0 || len([]rune(text)) <= maxRunes {
		return []string{text}
	}

	var chunks []string
	remaining := text
	for len([]rune(remaining)) > maxRunes {
		cut := findCut(remaining, maxRunes)
		if piece := strings.TrimSpace(remaining[:cut]); piece != "" {
			chunks = append(chunks, piece)
		}
		remaining = strings.TrimSpace(remaining[cut:])
	}
	if piece := strings.TrimSpace(remaining); piece != "" {
		chunks = append(chunks, piece)
	}
	return chunks
}

// findCut returns the byte offset to split at, searching backwards within
// the first maxRunes code points for the best boundary.
func findCut(text string, maxRunes int) int {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return len(text)
	}
	window := runes[:maxRunes]

	// Paragraph break.
	if idx := strings.LastIndex(string(window), "\n\n"); idx > 0 {
		return idx + 2
	}

	// Sentence terminator followed by whitespace.
	for i := len(window) - 2; i > 0; i-- {
		r := window[i]
		if (r == '.' || r == '!' || r == '?') && unicode.IsSpace(window[i+1]) {
			return len(string(window[:i+1]))
		}
	}

	// Any whitespace.
	for i := len(window) - 1; i > 0; i-- {
		if unicode.IsSpace(window[i]) {
			return len(string(window[:i]))
		}
	}

	// Hard cut.
	return len(string(window))
}

// ExtractContext returns the last wordCount words of text joined with single
// spaces, for use as a continuity hint in the next chunk's prompt. Texts
// with fewer words come back whole; wordCount <= 0 uses
// DefaultContextWords.
func ExtractContext(text string, wordCount int) string {
	if wordCount <= 0 {
		wordCount = DefaultContextWords
	}
	words := strings.Fields(text)
	if len(words) <= wordCount {
		return strings.TrimSpace(text)
	}
	return strings.Join(words[len(words)-wordCount:], " ")
}
