package config

import (
	"errors"
	"testing"

	"github.com/valpere/pipetran/internal/provider"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func TestResolve_StepOverridesGlobal(t *testing.T) {
	s := &Settings{
		DefaultProvider: "gemini",
		Global: StepSetting{
			Provider: strPtr("gemini"),
			Model:    strPtr("gemini-1.5-pro"),
		},
		Steps: map[string]StepSetting{
			StepGrammar: {Model: strPtr("gemini-1.5-flash")},
		},
	}

	eff, err := s.Resolve(StepGrammar)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if eff.Model != "gemini-1.5-flash" {
		t.Errorf("expected step model to win, got %q", eff.Model)
	}
	if eff.Provider != "gemini" {
		t.Errorf("expected provider gemini, got %q", eff.Provider)
	}
}

func TestResolve_GlobalFallback(t *testing.T) {
	s := &Settings{
		DefaultProvider: "gemini",
		Global: StepSetting{
			Provider:    strPtr("openai"),
			Model:       strPtr("gpt-4o-mini"),
			Temperature: floatPtr(0.4),
			MaxTokens:   intPtr(2048),
		},
		Steps: map[string]StepSetting{},
	}

	eff, err := s.Resolve(StepTranslation)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if eff.Provider != "openai" || eff.Model != "gpt-4o-mini" {
		t.Errorf("expected global values, got %+v", eff)
	}
	if eff.Temperature != 0.4 {
		t.Errorf("expected temperature 0.4, got %v", eff.Temperature)
	}
	if eff.MaxTokens != 2048 {
		t.Errorf("expected max tokens 2048, got %d", eff.MaxTokens)
	}
}

func TestResolve_ProviderDefaults(t *testing.T) {
	s := &Settings{
		DefaultProvider: "gemini",
		Steps:           map[string]StepSetting{},
	}

	eff, err := s.Resolve(StepAdjustment)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	desc, _ := provider.Lookup("gemini")
	if eff.Model != desc.DefaultModel {
		t.Errorf("expected provider default model %q, got %q", desc.DefaultModel, eff.Model)
	}
	if eff.Temperature != desc.DefaultTemperature {
		t.Errorf("expected provider default temperature %v, got %v", desc.DefaultTemperature, eff.Temperature)
	}
	if eff.MaxTokens != 0 {
		t.Errorf("max tokens has no provider default, got %d", eff.MaxTokens)
	}
}

func TestResolve_DefaultsFollowStepProvider(t *testing.T) {
	// The step pins openai while the global level names gemini; the default
	// model must come from openai's descriptor, not gemini's.
	s := &Settings{
		DefaultProvider: "gemini",
		Global:          StepSetting{Provider: strPtr("gemini")},
		Steps: map[string]StepSetting{
			StepGrammar: {Provider: strPtr("openai")},
		},
	}

	eff, err := s.Resolve(StepGrammar)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if eff.Provider != "openai" {
		t.Fatalf("expected provider openai, got %q", eff.Provider)
	}
	openaiDesc, _ := provider.Lookup("openai")
	if eff.Model != openaiDesc.DefaultModel {
		t.Errorf("expected openai default model %q, got %q", openaiDesc.DefaultModel, eff.Model)
	}
}

func TestResolve_ZeroTemperatureIsExplicit(t *testing.T) {
	s := &Settings{
		DefaultProvider: "gemini",
		Global:          StepSetting{Temperature: floatPtr(0.9)},
		Steps: map[string]StepSetting{
			StepTranslation: {Temperature: floatPtr(0)},
		},
	}

	eff, err := s.Resolve(StepTranslation)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if eff.Temperature != 0 {
		t.Errorf("explicit step temperature 0 must win over global, got %v", eff.Temperature)
	}
}

func TestResolve_NoProvider(t *testing.T) {
	s := &Settings{Steps: map[string]StepSetting{}}

	_, err := s.Resolve(StepGrammar)
	if !errors.Is(err, ErrNoProvider) {
		t.Errorf("expected ErrNoProvider, got %v", err)
	}
}

func TestResolve_UnknownProvider(t *testing.T) {
	s := &Settings{
		DefaultProvider: "gemini",
		Steps: map[string]StepSetting{
			StepGrammar: {Provider: strPtr("mistral")},
		},
	}

	_, err := s.Resolve(StepGrammar)
	if !errors.Is(err, provider.ErrUnsupported) {
		t.Errorf("expected provider.ErrUnsupported, got %v", err)
	}
}

func TestResolve_AllStepsTotal(t *testing.T) {
	// Whatever combination of levels is present, provider, model and
	// temperature must never come back empty.
	s := &Settings{
		DefaultProvider: "gemini",
		Global:          StepSetting{Provider: strPtr("anthropic")},
		Steps: map[string]StepSetting{
			StepGrammar: {Temperature: floatPtr(0.2)},
		},
	}

	for _, step := range Steps {
		eff, err := s.Resolve(step)
		if err != nil {
			t.Fatalf("Resolve(%s) failed: %v", step, err)
		}
		if eff.Provider == "" || eff.Model == "" {
			t.Errorf("Resolve(%s) left a required field empty: %+v", step, eff)
		}
	}
}
