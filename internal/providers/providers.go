package providers

import (
	"context"
)

// Config represents the configuration for one model call
type Config struct {
	Model       string
	Temperature float64
	// MaxTokens caps the response length; 0 leaves the backend default.
	MaxTokens int
	Prompt    string
	// JSON asks the backend for a JSON-only response where it supports it.
	JSON bool
}

// Provider defines the interface for an LLM provider
type Provider interface {
	ExtractText(ctx context.Context, config Config) (string, error)
}
