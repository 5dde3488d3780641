package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIClient_Invoke(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("unexpected Authorization header %q", auth)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "Bonjour le monde."}},
			},
		})
	}))
	defer server.Close()

	c := newOpenAIClient("sk-test", Config{Provider: "openai", Model: "gpt-4o", Temperature: 0.3, MaxTokens: 512, BaseURL: server.URL})

	got, err := c.Invoke(context.Background(), "translate to French", "Hello world.")
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if got != "Bonjour le monde." {
		t.Errorf("unexpected response %q", got)
	}
	if gotBody["model"] != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %v", gotBody["model"])
	}
	if gotBody["max_tokens"] != float64(512) {
		t.Errorf("expected max_tokens 512, got %v", gotBody["max_tokens"])
	}
}

func TestOpenAIClient_Invoke_NoMaxTokensOmitted(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "ok"}},
			},
		})
	}))
	defer server.Close()

	c := newOpenAIClient("sk-test", Config{Provider: "openai", Model: "gpt-4o", BaseURL: server.URL})

	if _, err := c.Invoke(context.Background(), "s", "p"); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if _, present := gotBody["max_tokens"]; present {
		t.Error("max_tokens should be omitted when unset")
	}
}

func TestOpenAIClient_Invoke_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "rate limit exceeded"},
		})
	}))
	defer server.Close()

	c := newOpenAIClient("sk-test", Config{Provider: "openai", Model: "gpt-4o", BaseURL: server.URL})

	_, err := c.Invoke(context.Background(), "s", "p")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", apiErr.Status)
	}
	if apiErr.Message != "rate limit exceeded" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
}

func TestAnthropicClient_Invoke(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if key := r.Header.Get("x-api-key"); key != "ak-test" {
			t.Errorf("unexpected x-api-key %q", key)
		}
		if v := r.Header.Get("anthropic-version"); v == "" {
			t.Error("missing anthropic-version header")
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{
				{"type": "text", "text": "Bonjour "},
				{"type": "text", "text": "le monde."},
			},
		})
	}))
	defer server.Close()

	c := newAnthropicClient("ak-test", Config{Provider: "anthropic", Model: "claude-sonnet-4-20250514", BaseURL: server.URL})

	got, err := c.Invoke(context.Background(), "translate", "Hello world.")
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if got != "Bonjour le monde." {
		t.Errorf("unexpected response %q", got)
	}
	// The Messages API requires max_tokens; the default applies when unset.
	if gotBody["max_tokens"] != float64(anthropicDefaultMaxTokens) {
		t.Errorf("expected default max_tokens %d, got %v", anthropicDefaultMaxTokens, gotBody["max_tokens"])
	}
}

func TestGeminiClient_Invoke(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-2.5-flash:generateContent" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if key := r.Header.Get("x-goog-api-key"); key != "gk-test" {
			t.Errorf("unexpected x-goog-api-key %q", key)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": "Bonjour le monde."}},
				}},
			},
		})
	}))
	defer server.Close()

	c := newGeminiClient("gk-test", Config{Provider: "gemini", Model: "gemini-2.5-flash", BaseURL: server.URL})

	got, err := c.Invoke(context.Background(), "translate", "Hello world.")
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if got != "Bonjour le monde." {
		t.Errorf("unexpected response %q", got)
	}
}

func TestGeminiClient_Invoke_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
	}))
	defer server.Close()

	c := newGeminiClient("gk-test", Config{Provider: "gemini", Model: "gemini-2.5-flash", BaseURL: server.URL})

	if _, err := c.Invoke(context.Background(), "s", "p"); err == nil {
		t.Error("expected error for empty candidates")
	}
}
