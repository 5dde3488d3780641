package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// anthropicDefaultMaxTokens is used when no max_tokens is configured; the
// Messages API requires the field.
const anthropicDefaultMaxTokens = 4096

type anthropicClient struct {
	apiKey string
	cfg    Config
	client *http.Client
}

func newAnthropicClient(apiKey string, cfg Config) *anthropicClient {
	return &anthropicClient{apiKey: apiKey, cfg: cfg, client: newHTTPClient()}
}

func (c *anthropicClient) Name() string {
	return "anthropic"
}

func (c *anthropicClient) Invoke(ctx context.Context, system, prompt string) (string, error) {
	maxTokens := c.cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	body := map[string]interface{}{
		"model":       c.cfg.Model,
		"max_tokens":  maxTokens,
		"temperature": c.cfg.Temperature,
		"system":      system,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/v1/messages", c.cfg.BaseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Provider: c.Name(), Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	var anthropicResp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&anthropicResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	var sb strings.Builder
	for _, block := range anthropicResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	return sb.String(), nil
}
