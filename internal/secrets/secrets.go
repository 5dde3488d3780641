// Package secrets resolves named credentials for LLM providers.
//
// Vault-style backends stay external; the process-local implementation reads
// environment variables, which is also the fallback the service uses when a
// vault is unreachable.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotFound is returned when no value exists for a secret name.
var ErrNotFound = errors.New("secret not found")

// Provider resolves a secret by name.
type Provider interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Env resolves secrets from environment variables. The name is tried
// verbatim first, then in environment-variable form (upper-cased, with
// non-alphanumeric runes replaced by underscores), so "openai-key" also
// resolves via OPENAI_KEY.
type Env struct{}

func (Env) GetSecret(_ context.Context, name string) (string, error) {
	if v := os.Getenv(name); v != "" {
		return v, nil
	}
	if v := os.Getenv(envKey(name)); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%q: %w", name, ErrNotFound)
}

// Static is a fixed in-memory secret map, used in tests.
type Static map[string]string

func (s Static) GetSecret(_ context.Context, name string) (string, error) {
	if v, ok := s[name]; ok && v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%q: %w", name, ErrNotFound)
}

func envKey(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - ('a' - 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
	return mapped
}
