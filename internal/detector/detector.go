// Package detector identifies the language of a text sample. It backs the
// "auto" source-language mode and output-language validation.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// pipelineLanguages restricts detection to the languages the pipeline is
// actually used with; a narrower set is both faster to build and harder to
// confuse on short samples.
var pipelineLanguages = []lingua.Language{
	lingua.English,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
	lingua.Ukrainian,
}

type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector over the pipeline's language set. Construction is
// expensive; reuse the instance.
func New() *Detector {
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(pipelineLanguages...).
			Build(),
	}
}

// DetectISO returns the lower-case ISO 639-1 code of the detected language,
// or false when the text is empty or ambiguous.
func (d *Detector) DetectISO(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
