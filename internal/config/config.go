// Package config holds the pipeline's layered step configuration and the
// fallback resolution that turns it into an effective per-step config.
package config

import (
	"errors"
	"fmt"

	"github.com/valpere/pipetran/internal/provider"
)

// Pipeline step names, also used as configuration key prefixes.
const (
	StepGrammar     = "grammar"
	StepTranslation = "translation"
	StepAdjustment  = "adjustment"
)

// Steps lists the pipeline steps in execution order.
var Steps = []string{StepGrammar, StepTranslation, StepAdjustment}

// ErrNoProvider is returned when provider resolution exhausts every fallback
// level.
var ErrNoProvider = errors.New("no provider configured")

// StepSetting is one level of the fallback chain. Nil fields defer to the
// next level.
type StepSetting struct {
	Provider    *string
	Model       *string
	Temperature *float64
	MaxTokens   *int
}

// Effective is the fully resolved configuration for one step. MaxTokens is 0
// when no level supplied it.
type Effective struct {
	Provider    string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Settings is the process-wide configuration, constructed once at startup and
// passed into the pipeline and the bulk runner explicitly.
type Settings struct {
	Global StepSetting
	Steps  map[string]StepSetting

	// DefaultProvider is the system fallback when neither a step-level nor
	// the global setting names a provider. Load fills it; leaving it empty
	// makes an unset provider a hard configuration error.
	DefaultProvider string

	// Engine selects the translation step backend: "llm" (default) or
	// "google" for the Cloud Translation API.
	Engine string

	// GoogleCredentials is an optional service account file for the google
	// engine.
	GoogleCredentials string

	// DBPath locates the SQLite database for translation memory, glossary
	// and bulk run records.
	DBPath string
}

// Resolve computes the effective configuration for a step.
//
// Each field falls back independently: step setting, then global setting,
// then the provider's registered default. The provider is resolved first,
// and the model/temperature defaults are always read from the descriptor of
// the step's resolved provider — never from whatever provider the global
// level happens to name, so a step pinned to one vendor cannot inherit
// another vendor's default model. Explicitly set fields win at any level,
// defaults only fill true gaps. MaxTokens has no provider default and stays
// 0 when both levels leave it unset.
func (s *Settings) Resolve(step string) (Effective, error) {
	stepSetting := s.Steps[step]

	providerName := firstString(stepSetting.Provider, s.Global.Provider)
	if providerName == "" {
		providerName = s.DefaultProvider
	}
	if providerName == "" {
		return Effective{}, fmt.Errorf("step %s: %w", step, ErrNoProvider)
	}

	desc, err := provider.Lookup(providerName)
	if err != nil {
		return Effective{}, fmt.Errorf("step %s: %w", step, err)
	}

	eff := Effective{Provider: desc.Name}

	eff.Model = firstString(stepSetting.Model, s.Global.Model)
	if eff.Model == "" {
		eff.Model = desc.DefaultModel
	}

	if v := firstFloat(stepSetting.Temperature, s.Global.Temperature); v != nil {
		eff.Temperature = *v
	} else {
		eff.Temperature = desc.DefaultTemperature
	}

	if v := firstInt(stepSetting.MaxTokens, s.Global.MaxTokens); v != nil {
		eff.MaxTokens = *v
	}

	return eff, nil
}

// ProviderConfig converts an effective step config into a client config.
func (e Effective) ProviderConfig() provider.Config {
	return provider.Config{
		Provider:    e.Provider,
		Model:       e.Model,
		Temperature: e.Temperature,
		MaxTokens:   e.MaxTokens,
	}
}

func firstString(values ...*string) string {
	for _, v := range values {
		if v != nil && *v != "" {
			return *v
		}
	}
	return ""
}

func firstFloat(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstInt(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
