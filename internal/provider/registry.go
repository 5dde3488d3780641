// Package provider maps LLM provider identifiers to capability descriptors
// and constructs the HTTP clients used by the translation pipeline.
//
// The provider set is closed: identifiers outside the registered set fail
// with ErrUnsupported before any network activity.
package provider

import (
	"errors"
	"fmt"
	"sort"
)

// Descriptor describes a registered provider's defaults. Descriptors are
// immutable and registered at process start.
type Descriptor struct {
	Name               string
	DefaultModel       string
	DefaultTemperature float64
	SecretName         string
	BaseURL            string
}

// ErrUnsupported is returned for provider identifiers outside the registry.
var ErrUnsupported = errors.New("unsupported provider")

var registry = map[string]Descriptor{
	"openai": {
		Name:               "openai",
		DefaultModel:       "gpt-4o",
		DefaultTemperature: 0,
		SecretName:         "openai-key",
		BaseURL:            "https://api.openai.com/v1",
	},
	"anthropic": {
		Name:               "anthropic",
		DefaultModel:       "claude-sonnet-4-20250514",
		DefaultTemperature: 0,
		SecretName:         "anthropic-key",
		BaseURL:            "https://api.anthropic.com",
	},
	"gemini": {
		Name:               "gemini",
		DefaultModel:       "gemini-2.5-flash",
		DefaultTemperature: 0,
		SecretName:         "gemini-key",
		BaseURL:            "https://generativelanguage.googleapis.com",
	},
}

// Lookup returns the descriptor for a provider identifier.
func Lookup(name string) (Descriptor, error) {
	desc, ok := registry[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%q (supported: %v): %w", name, Names(), ErrUnsupported)
	}
	return desc, nil
}

// Names returns the registered provider identifiers, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
