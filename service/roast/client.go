package roast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"

	// Model is deliberately a small fast one. Roasts are latency
	// sensitive and do not need a frontier model.
	Model = "claude-3-5-haiku-20241022"

	maxTokens  = 1024
	llmTimeout = 60 * time.Second
)

// LLM generates a completion for a system prompt and user prompt.
type LLM interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// AnthropicClient calls the Anthropic messages API.
type AnthropicClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewAnthropicClient creates a client against the production API.
func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		model:   Model,
		http:    &http.Client{Timeout: llmTimeout},
	}
}

// NewAnthropicClientWithBaseURL creates a client against a custom
// endpoint. Used by tests and by proxy deployments.
func NewAnthropicClientWithBaseURL(apiKey, baseURL string) *AnthropicClient {
	c := NewAnthropicClient(apiKey)
	c.baseURL = baseURL
	return c
}

type messagesRequest struct {
	Model     string         `json:"model"`
	MaxTokens int            `json:"max_tokens"`
	System    string         `json:"system"`
	Messages  []chatMessage  `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one system+user exchange and returns the text of the
// first content block.
func (c *AnthropicClient) Complete(ctx context.Context, system, user string) (string, error) {
	reqBody := messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []chatMessage{{Role: "user", Content: user}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("messages request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("messages API error (status %d): %s: %s", resp.StatusCode, parsed.Error.Type, parsed.Error.Message)
		}
		return "", fmt.Errorf("messages API returned status %d", resp.StatusCode)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("messages API returned no content")
	}
	return parsed.Content[0].Text, nil
}
