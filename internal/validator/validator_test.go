package validator

import (
	"strings"
	"testing"
)

func TestCheck_MatchingLanguage(t *testing.T) {
	v := New()

	err := v.Check("Le renard brun saute par-dessus le chien paresseux près de la rivière.", "fr")
	if err != nil {
		t.Errorf("unexpected error for matching language: %v", err)
	}
}

func TestCheck_WrongLanguage(t *testing.T) {
	v := New()

	err := v.Check("The quick brown fox jumps over the lazy dog near the river bank.", "fr")
	if err == nil {
		t.Fatal("expected error for wrong output language")
	}
	if !strings.Contains(err.Error(), "fr") || !strings.Contains(err.Error(), "en") {
		t.Errorf("error should name both codes, got %v", err)
	}
}

func TestCheck_ShortTextPasses(t *testing.T) {
	v := New()

	if err := v.Check("Oui.", "fr"); err != nil {
		t.Errorf("short text should pass unvalidated, got %v", err)
	}
}

func TestCheck_EmptyText(t *testing.T) {
	v := New()

	if err := v.Check("   ", "fr"); err == nil {
		t.Error("expected error for empty output")
	}
}

func TestCheck_NoTargetLanguage(t *testing.T) {
	v := New()

	if err := v.Check("anything at all goes here", ""); err != nil {
		t.Errorf("empty target language should pass, got %v", err)
	}
}
