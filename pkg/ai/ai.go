package ai

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by provider constructors and by the failover
// client when no usable provider credentials are available.
var ErrNotConfigured = errors.New("ai: no provider configured")

// GenerateOptions holds configuration for oracle generation requests.
type GenerateOptions struct {
	Model       string  // Model identifier to use for generation
	Temperature float64 // Sampling temperature (0.0-2.0)
	MaxTokens   int     // Output token ceiling
}

// GenerateOption is a functional option for configuring generation requests.
type GenerateOption func(*GenerateOptions)

// WithModel returns a GenerateOption that sets the model to use for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithTemperature returns a GenerateOption that sets the sampling temperature.
// Lower values (e.g., 0.2) make outputs more focused and deterministic.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithMaxTokens returns a GenerateOption that sets the output token ceiling.
func WithMaxTokens(max int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = max
	}
}

// Client is the interface every oracle provider implements. The extraction
// orchestrator and the RAG engine only ever see this interface; per-vendor
// response quirks are normalized inside each provider.
type Client interface {
	// GenerateCompletion sends a single-turn prompt and returns the raw
	// generated text. The returned text may still carry markdown fencing,
	// callers run it through CleanResponse before parsing.
	GenerateCompletion(ctx context.Context, prompt string, opts ...GenerateOption) (string, error)

	// Name identifies the provider for logging and answer metadata.
	Name() string
}
