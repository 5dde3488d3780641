package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/valpere/pipetran/internal/secrets"
)

// Config is the fully resolved configuration a client is built with.
// MaxTokens 0 means "let the provider decide".
type Config struct {
	Provider    string
	Model       string
	Temperature float64
	MaxTokens   int

	// BaseURL overrides the descriptor's endpoint, mainly for tests.
	BaseURL string
}

// Client executes a single blocking LLM call.
type Client interface {
	Name() string
	Invoke(ctx context.Context, system, prompt string) (string, error)
}

// ErrMissingCredential is returned when no credential can be resolved for a
// provider.
var ErrMissingCredential = errors.New("missing provider credential")

// APIError reports a transport, auth, quota or model failure from a provider
// endpoint.
type APIError struct {
	Provider string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Message)
}

// New constructs a client for the configured provider. Unknown identifiers
// fail with ErrUnsupported; an unresolvable credential fails with
// ErrMissingCredential (wrapping the secret store's error). No network call
// is made here.
func New(ctx context.Context, cfg Config, store secrets.Provider) (Client, error) {
	desc, err := Lookup(cfg.Provider)
	if err != nil {
		return nil, err
	}

	apiKey, err := store.GetSecret(ctx, desc.SecretName)
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", desc.Name, errors.Join(ErrMissingCredential, err))
	}

	if cfg.Model == "" {
		cfg.Model = desc.DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = desc.BaseURL
	}

	switch desc.Name {
	case "openai":
		return newOpenAIClient(apiKey, cfg), nil
	case "anthropic":
		return newAnthropicClient(apiKey, cfg), nil
	case "gemini":
		return newGeminiClient(apiKey, cfg), nil
	}
	// Unreachable while the registry and this switch stay in sync.
	return nil, fmt.Errorf("%q: %w", desc.Name, ErrUnsupported)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 120 * time.Second}
}
