// Package oracle wraps the text-completion model behind a single-method
// interface. The core treats the model as an opaque, stateless, single-turn
// completion oracle: prompt in, text out, no other contract.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/haven-ai/haven/pkg/httputil"
)

// Completer is the oracle contract consumed by detection and response
// composition. Implementations must be safe for concurrent use.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// Provider identifies the backend completion service.
type Provider string

const (
	ProviderNone       Provider = "none"       // no oracle, keyword-only operation
	ProviderOllama     Provider = "ollama"     // local Ollama server (default, on-device)
	ProviderOpenRouter Provider = "openrouter" // OpenRouter cloud
	ProviderGroq       Provider = "groq"       // Groq cloud
	ProviderOpenAI     Provider = "openai"     // direct OpenAI API
	ProviderCustom     Provider = "custom"     // any OpenAI-compatible endpoint
)

// ClientConfig configures the HTTP oracle client.
type ClientConfig struct {
	Provider Provider
	APIKey   string // optional for Ollama
	Model    string
	BaseURL  string        // optional override
	Timeout  time.Duration // per-call ceiling, 0 means the HTTP client's own
}

// Client is an OpenAI-compatible chat-completions client. All supported
// providers speak the same wire format; only base URL and auth differ.
type Client struct {
	client   *http.Client
	provider Provider
	baseURL  string
	apiKey   string
	model    string
	timeout  time.Duration
}

// NewClient creates an oracle client for the configured provider.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Model == "" {
		if cfg.Provider == ProviderOllama {
			cfg.Model = "gemma2:2b" // default local
		} else {
			cfg.Model = "google/gemma-2-9b-it:free" // default cloud
		}
	}

	var baseURL string
	switch cfg.Provider {
	case ProviderOllama:
		baseURL = "http://localhost:11434/v1"
	case ProviderGroq:
		baseURL = "https://api.groq.com/openai/v1"
	case ProviderOpenAI:
		baseURL = "https://api.openai.com/v1"
	case ProviderOpenRouter:
		baseURL = "https://openrouter.ai/api/v1"
	default:
		baseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}

	return &Client{
		client:   httputil.ModelClient(),
		provider: cfg.Provider,
		baseURL:  baseURL,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		timeout:  cfg.Timeout,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete issues one chat completion with the prompt as a single user
// message and returns the raw response text. No retries: the caller's
// fallback policy decides what a failure means.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	if c.provider != ProviderOllama && c.apiKey == "" {
		return "", fmt.Errorf("API key not configured for provider %s", c.provider)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	reqBody := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(c.baseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer httputil.DrainAndClose(resp.Body)

	body, err := httputil.ReadResponseBody(resp.Body, httputil.MaxResponseSize)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("unmarshal error: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return result.Choices[0].Message.Content, nil
}

// ExtractJSON strips markdown fences and surrounding prose from a model
// response, returning the outermost {...} object. Models wrap JSON in
// code fences or preambles often enough that callers should always pass
// responses through this before unmarshalling.
func ExtractJSON(content string) string {
	clean := strings.TrimSpace(content)
	if start := strings.Index(clean, "{"); start != -1 {
		clean = clean[start:]
	}
	if end := strings.LastIndex(clean, "}"); end != -1 {
		clean = clean[:end+1]
	}
	return clean
}
