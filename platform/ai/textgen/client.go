// Package textgen provides the text-generation collaborator client.
// It speaks the OpenAI-compatible chat completions protocol. Callers must
// treat every error as recoverable and fall back to a deterministic template;
// generation failures never propagate out of the calling service.
package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"clientops_backend/platform/config"
)

// Generator produces assistant text from a prompt. Implemented by Client and
// by test fakes.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Client calls an OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	timeout time.Duration
	client  *http.Client
}

// New creates a text-generation client from config.
func New(cfg config.TextGenConfig) *Client {
	timeout := cfg.GetTextGenTimeout()
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.GetTextGenBaseURL(), "/"),
		apiKey:  cfg.GetTextGenAPIKey(),
		model:   cfg.GetTextGenModel(),
		timeout: timeout,
		client:  &http.Client{},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error interface{} `json:"error"`
}

// Generate sends a single-turn completion request with a bounded timeout.
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("textgen: not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]chatMessage, 0, 2)
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	jsonBody, err := json.Marshal(chatRequest{Model: c.model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("textgen: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("textgen: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("textgen: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("textgen: unexpected status %d", resp.StatusCode)
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("textgen: decode response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("textgen: api error: %v", result.Error)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("textgen: empty choices")
	}

	content := strings.TrimSpace(result.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("textgen: empty content")
	}
	return content, nil
}

// Disabled is a Generator that always fails, forcing callers onto their
// template fallback. Used when no API key is configured.
type Disabled struct{}

// Generate always returns an error.
func (Disabled) Generate(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("textgen: disabled")
}
