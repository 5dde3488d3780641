package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/valpere/pipetran/internal/placeholder"
)

// LanguageName turns an ISO code into an English language name for prompts
// and artifact file names ("en" → "English"). Unparseable codes come back
// unchanged.
func LanguageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return code
	}
	return name
}

func grammarSystemPrompt(sourceLang string, markers *placeholder.Map) string {
	var sb strings.Builder
	lang := LanguageName(sourceLang)
	sb.WriteString(fmt.Sprintf("You are a meticulous %s proofreader.\n", lang))
	sb.WriteString(fmt.Sprintf("Correct the grammar, spelling and punctuation of the %s text you receive.\n", lang))
	sb.WriteString("Preserve the meaning, tone, names and formatting. Do not rewrite, summarize or expand.\n")
	sb.WriteString("Output ONLY the corrected text, with no explanation.")
	appendMarkerInstruction(&sb, markers)
	return sb.String()
}

func translationSystemPrompt(sourceLang, targetLang string, glossary map[string]string, previousContext string, markers *placeholder.Map) string {
	var sb strings.Builder
	source := LanguageName(sourceLang)
	target := LanguageName(targetLang)

	sb.WriteString(fmt.Sprintf("You are a professional translator. Translate the text you receive from %s to %s.\n", source, target))
	sb.WriteString("Output ONLY the translation. No explanations, no quotes, just the translation.")

	if len(glossary) > 0 {
		sb.WriteString("\n\nTERMINOLOGY (use these exact translations):\n")
		terms := make([]string, 0, len(glossary))
		for term := range glossary {
			terms = append(terms, term)
		}
		sort.Strings(terms)
		for _, term := range terms {
			sb.WriteString(fmt.Sprintf("  %s → %s\n", term, glossary[term]))
		}
	}

	if previousContext != "" {
		sb.WriteString(fmt.Sprintf("\n\nCONTEXT (end of the previous passage, for continuity — do NOT retranslate it):\n...%s", previousContext))
	}

	appendMarkerInstruction(&sb, markers)
	return sb.String()
}

func adjustmentPrompts(sourceLang, targetLang, sourceText, draftText string, markers *placeholder.Map) (system, user string) {
	source := LanguageName(sourceLang)
	target := LanguageName(targetLang)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are a %s quality reviewer for translations from %s.\n", target, source))
	sb.WriteString(fmt.Sprintf("You will receive an original text and its draft %s translation.\n", target))
	sb.WriteString("Fix mistranslations, awkward phrasing and unnatural word order while keeping all factual content, names and technical terms.\n")
	sb.WriteString("If the draft is already good, return it unchanged.\n")
	sb.WriteString(fmt.Sprintf("Output ONLY the final %s translation, with no explanation.", target))
	appendMarkerInstruction(&sb, markers)

	user = fmt.Sprintf("ORIGINAL (%s):\n%s\n\nDRAFT TRANSLATION (%s):\n%s", source, sourceText, target, draftText)
	return sb.String(), user
}

func appendMarkerInstruction(sb *strings.Builder, markers *placeholder.Map) {
	if instr := placeholder.Instruction(markers); instr != "" {
		sb.WriteString("\n\n")
		sb.WriteString(instr)
	}
}
