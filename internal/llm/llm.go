// Package llm defines the text-generation capability the analyzer depends on.
package llm

import (
	"context"
	"errors"
)

// Generator sends one prompt to a model and returns its text reply.
// Implementations do not retry; fallback policy belongs to the caller.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("LLM provider not configured")

// ErrEmptyResponse is returned when a provider answers with no text.
var ErrEmptyResponse = errors.New("LLM returned an empty response")

// PlaceholderClient stands in when no provider credentials are configured.
type PlaceholderClient struct{}

// Generate returns ErrNotConfigured.
func (PlaceholderClient) Generate(ctx context.Context, prompt string) (string, error) {
	_ = ctx
	_ = prompt
	return "", ErrNotConfigured
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
