// Package validator checks that the pipeline's final output is written in
// the requested target language.
package validator

import (
	"fmt"
	"strings"

	"github.com/valpere/pipetran/internal/detector"
)

// minSampleRunes is the shortest text worth detecting; below it the
// detector's answer is noise and the text passes unvalidated.
const minSampleRunes = 20

type Validator struct {
	det *detector.Detector
}

func New() *Validator {
	return &Validator{det: detector.New()}
}

// Check returns nil when text appears to be written in targetLang. Short or
// undetectable texts pass; a confidently different language is an error
// naming both codes.
func (v *Validator) Check(text, targetLang string) error {
	if targetLang == "" {
		return nil
	}

	sample := strings.TrimSpace(text)
	if sample == "" {
		return fmt.Errorf("output text is empty")
	}
	if len([]rune(sample)) < minSampleRunes {
		return nil
	}

	detected, ok := v.det.DetectISO(sample)
	if !ok {
		return nil
	}
	if !strings.EqualFold(detected, targetLang) {
		return fmt.Errorf("expected %s output but detected %s", targetLang, detected)
	}
	return nil
}
