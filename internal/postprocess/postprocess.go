// Package postprocess strips common LLM artifacts from step output.
//
// Every pipeline step (grammar correction, translation, adjustment) runs its
// raw model output through Clean before the text is split or passed on.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean removes LLM artifacts and returns the trimmed result: reasoning
// blocks first, then echoed instructions, then outer quote wrapping.
func Clean(text string) string {
	text = stripReasoningBlocks(text)
	text = stripEchoedPreamble(text)
	text = stripOuterQuotes(text)
	return strings.TrimSpace(text)
}

// reasoningBlockRe matches complete <think>…</think> style blocks. The tag
// variants are spelled out because RE2 has no backreferences.
var reasoningBlockRe = regexp.MustCompile(
	`(?is)<think>.*?</think>|<thinking>.*?</thinking>|<reasoning>.*?</reasoning>`,
)

// openReasoningRe matches a reasoning tag that was never closed (the model
// was cut off mid-thought).
var openReasoningRe = regexp.MustCompile(
	`(?is)(?:<think>|<thinking>|<reasoning>).*$`,
)

func stripReasoningBlocks(text string) string {
	text = reasoningBlockRe.ReplaceAllString(text, "")
	text = openReasoningRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// preambleRes match introductory lines models prepend even when told not to,
// covering each step's vocabulary. Anchored to the start and requiring a
// colon to avoid eating legitimate content.
var preambleRes = []*regexp.Regexp{
	// "Here is/Here's [the] corrected/translated/revised text:"
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the)? (?:corrected |translated |revised |adjusted |final )?(?:text|translation|version)\s*:`),
	// "[The] corrected text:" / "Translation:" / "Revised translation:"
	regexp.MustCompile(`(?i)^(?:the )?(?:corrected |translated |revised |adjusted |final )?(?:text|translation|version)\s*:`),
	// "Sure/Certainly[,] here is the corrected text:"
	regexp.MustCompile(`(?i)^(?:sure|certainly|of course)[,.]? here(?:'s| is)(?: the)? (?:corrected |translated |revised |adjusted |final )?(?:text|translation|version)\s*:`),
}

func stripEchoedPreamble(text string) string {
	for _, re := range preambleRes {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// stripOuterQuotes removes a matching pair of quotes wrapping the whole text.
func stripOuterQuotes(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	pairs := map[rune]rune{
		'"':      '"',
		'\'':     '\'',
		'«':      '»',
		'“': '”', // " "
		'‘': '’', // ' '
	}
	if closing, ok := pairs[runes[0]]; ok && runes[n-1] == closing {
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}
