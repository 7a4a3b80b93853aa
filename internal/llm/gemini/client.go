// Package gemini implements llm.Generator on the Google Gen AI SDK.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"resume-analyzer/internal/llm"
	"resume-analyzer/internal/shared/telemetry"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash-lite"

// Client is a process-wide Gemini generator. The SDK client is built on first successful
// use and never mutated afterwards; a failed build is retried by the next call.
type Client struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float32

	mu  sync.Mutex
	sdk *genai.Client
}

var newSDK = genai.NewClient

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the SDK at another endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float32) Option {
	return func(c *Client) { c.temperature = t }
}

// NewClient validates the settings; no network connection is made until Generate.
func NewClient(apiKey, model string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	c := &Client{apiKey: apiKey, model: model, temperature: 0.2}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) client() (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sdk != nil {
		return c.sdk, nil
	}
	cfg := &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	// not tied to a request: the client outlives it
	sdk, err := newSDK(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	c.sdk = sdk
	return sdk, nil
}

// Generate sends prompt to the configured model and returns the reply text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	sdk, err := c.client()
	if err != nil {
		return "", err
	}
	temperature := c.temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}
	resp, err := sdk.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil {
		return "", llm.ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", llm.ErrEmptyResponse
	}
	fields := map[string]any{"provider": "gemini", "model": c.model}
	if resp.UsageMetadata != nil {
		fields["prompt_tokens"] = resp.UsageMetadata.PromptTokenCount
		fields["completion_tokens"] = resp.UsageMetadata.CandidatesTokenCount
		fields["total_tokens"] = resp.UsageMetadata.TotalTokenCount
	}
	telemetry.Info("llm.response", fields)
	return text, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

var _ llm.Generator = (*Client)(nil)
