package provider

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/valpere/pipetran/internal/secrets"
)

func TestLookup_Known(t *testing.T) {
	for _, name := range []string{"openai", "anthropic", "gemini"} {
		desc, err := Lookup(name)
		if err != nil {
			t.Errorf("Lookup(%q) failed: %v", name, err)
			continue
		}
		if desc.Name != name {
			t.Errorf("Lookup(%q).Name = %q", name, desc.Name)
		}
		if desc.DefaultModel == "" {
			t.Errorf("Lookup(%q) has empty default model", name)
		}
		if desc.SecretName == "" {
			t.Errorf("Lookup(%q) has empty secret name", name)
		}
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("mistral")
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestNames_Sorted(t *testing.T) {
	want := []string{"anthropic", "gemini", "openai"}
	if got := Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	// Lookup must fail before any credential or network access is attempted.
	_, err := New(context.Background(), Config{Provider: "mistral"}, secrets.Static{})
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestNew_MissingCredential(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "openai"}, secrets.Static{})
	if !errors.Is(err, ErrMissingCredential) {
		t.Errorf("expected ErrMissingCredential, got %v", err)
	}
	if !errors.Is(err, secrets.ErrNotFound) {
		t.Errorf("expected wrapped secrets.ErrNotFound, got %v", err)
	}
}

func TestNew_DefaultsApplied(t *testing.T) {
	store := secrets.Static{"openai-key": "sk-test"}

	client, err := New(context.Background(), Config{Provider: "openai"}, store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Name() != "openai" {
		t.Errorf("expected client name openai, got %q", client.Name())
	}

	oc, ok := client.(*openAIClient)
	if !ok {
		t.Fatalf("expected *openAIClient, got %T", client)
	}
	if oc.cfg.Model != "gpt-4o" {
		t.Errorf("expected default model gpt-4o, got %q", oc.cfg.Model)
	}
	if oc.cfg.BaseURL == "" {
		t.Error("expected default base URL to be filled in")
	}
}
