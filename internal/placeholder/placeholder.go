// Package placeholder shields structured content from the LLM steps.
//
// Fenced code blocks, inline code spans and HTML tags are swapped for
// numbered markers ([PH0], [PH1], …) before the text reaches a model, and
// swapped back afterwards. The markers contain no sentence terminators, so
// they pass through sentence splitting intact.
package placeholder

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	reFencedCode = regexp.MustCompile("(?s)```.*?```")
	reInlineCode = regexp.MustCompile("`[^`]+`")
	reMarkupTag  = regexp.MustCompile(`<[^>]+>`)

	reMarker = regexp.MustCompile(`\[PH(\d+)\]`)
)

// Map records the substitutions made by Protect, in marker order.
type Map struct {
	originals []string
}

// Empty reports whether Protect made no substitutions.
func (m *Map) Empty() bool {
	return m == nil || len(m.originals) == 0
}

// Len returns the number of protected fragments.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.originals)
}

// Protect replaces structured fragments with numbered markers. Fenced code
// is handled before inline code so backtick fences are not chewed up span by
// span.
func Protect(text string) (string, *Map) {
	m := &Map{}
	for _, re := range []*regexp.Regexp{reFencedCode, reInlineCode, reMarkupTag} {
		text = re.ReplaceAllStringFunc(text, func(fragment string) string {
			marker := fmt.Sprintf("[PH%d]", len(m.originals))
			m.originals = append(m.originals, fragment)
			return marker
		})
	}
	return text, m
}

// Restore substitutes the original fragments back for their markers. Markers
// the model dropped stay dropped; markers it duplicated are expanded at each
// occurrence.
func Restore(text string, m *Map) string {
	if m.Empty() {
		return text
	}
	return reMarker.ReplaceAllStringFunc(text, func(marker string) string {
		var index int
		fmt.Sscanf(marker, "[PH%d]", &index)
		if index < 0 || index >= len(m.originals) {
			return marker
		}
		return m.originals[index]
	})
}

// Instruction is appended to step prompts when markers are present.
func Instruction(m *Map) string {
	if m.Empty() {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf(
		"The text contains %d placeholder markers like [PH0]. Keep every marker exactly as written, in place.", m.Len()))
}
