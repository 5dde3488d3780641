package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type geminiClient struct {
	apiKey string
	cfg    Config
	client *http.Client
}

func newGeminiClient(apiKey string, cfg Config) *geminiClient {
	return &geminiClient{apiKey: apiKey, cfg: cfg, client: newHTTPClient()}
}

func (c *geminiClient) Name() string {
	return "gemini"
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

func (c *geminiClient) Invoke(ctx context.Context, system, prompt string) (string, error) {
	generationConfig := map[string]interface{}{
		"temperature": c.cfg.Temperature,
	}
	if c.cfg.MaxTokens > 0 {
		generationConfig["maxOutputTokens"] = c.cfg.MaxTokens
	}

	body := map[string]interface{}{
		"system_instruction": geminiContent{Parts: []geminiPart{{Text: system}}},
		"contents":           []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		"generationConfig":   generationConfig,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Provider: c.Name(), Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []geminiPart `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(geminiResp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	var sb strings.Builder
	for _, part := range geminiResp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	return sb.String(), nil
}
