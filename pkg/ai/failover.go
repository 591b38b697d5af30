package ai

import (
	"context"

	"github.com/codelore/backend/pkg/logger"
)

// FailoverClient wraps a preferred provider and an optional secondary one.
// A request is first sent to the preferred provider; if it errors, the same
// request is transparently retried against the secondary before the error is
// surfaced. Both providers honor the identical prompt contract, so callers
// never need to know which one answered.
type FailoverClient struct {
	preferred Client
	secondary Client
}

// NewFailoverClient builds a failover client from the available providers.
// Either argument may be nil; if both are, ErrNotConfigured is returned so
// the caller can fall back to degraded, code-only analysis.
func NewFailoverClient(preferred, secondary Client) (*FailoverClient, error) {
	if preferred == nil && secondary == nil {
		return nil, ErrNotConfigured
	}
	if preferred == nil {
		preferred = secondary
		secondary = nil
	}
	return &FailoverClient{
		preferred: preferred,
		secondary: secondary,
	}, nil
}

// GenerateCompletion sends the prompt to the preferred provider, falling back
// to the secondary provider on error.
func (c *FailoverClient) GenerateCompletion(
	ctx context.Context,
	prompt string,
	opts ...GenerateOption,
) (string, error) {
	response, err := c.preferred.GenerateCompletion(ctx, prompt, opts...)
	if err == nil {
		return response, nil
	}

	if c.secondary == nil || ctx.Err() != nil {
		return "", err
	}

	logger.Warn("[AI] Preferred provider failed, trying fallback",
		"preferred", c.preferred.Name(),
		"fallback", c.secondary.Name(),
		"err", err)

	return c.secondary.GenerateCompletion(ctx, prompt, opts...)
}

// Name reports the preferred provider's name.
func (c *FailoverClient) Name() string {
	return c.preferred.Name()
}
