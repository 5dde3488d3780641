package pipeline

import (
	"context"
	"fmt"

	"cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// Engine is a machine-translation backend that replaces the LLM call in the
// translation step. Grammar correction and adjustment still run through the
// configured LLM provider.
type Engine interface {
	Name() string
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// GoogleEngine translates through the Google Cloud Translation API.
type GoogleEngine struct {
	client *translate.Client
}

// NewGoogleEngine creates a Cloud Translation backed engine. credentialsFile
// may be empty, in which case application default credentials are used.
func NewGoogleEngine(ctx context.Context, credentialsFile string) (*GoogleEngine, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Translate client: %w", err)
	}
	return &GoogleEngine{client: client}, nil
}

func (g *GoogleEngine) Name() string { return "google" }

func (g *GoogleEngine) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	target, err := language.Parse(targetLang)
	if err != nil {
		return "", fmt.Errorf("failed to parse target language %q: %w", targetLang, err)
	}

	opts := &translate.Options{Format: translate.Text}
	if sourceLang != "" {
		source, err := language.Parse(sourceLang)
		if err != nil {
			return "", fmt.Errorf("failed to parse source language %q: %w", sourceLang, err)
		}
		opts.Source = source
	}

	resp, err := g.client.Translate(ctx, []string{text}, target, opts)
	if err != nil {
		return "", fmt.Errorf("failed to translate text: %w", err)
	}
	if len(resp) == 0 {
		return "", fmt.Errorf("translation returned no results")
	}
	return resp[0].Text, nil
}

func (g *GoogleEngine) Close() error {
	return g.client.Close()
}
