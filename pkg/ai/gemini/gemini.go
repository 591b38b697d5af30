package gemini

import (
	"context"
	"errors"
	"fmt"

	genai "google.golang.org/genai"

	"github.com/codelore/backend/pkg/ai"
)

// Client implements ai.Client against the Gemini API.
type Client struct {
	cli   *genai.Client
	model string
}

// NewClientParams contains configuration for creating a Gemini client.
type NewClientParams struct {
	ApiKey string
	Model  string
}

// NewClient creates a Gemini-backed oracle client. Returns
// ai.ErrNotConfigured when no API key is provided.
func NewClient(ctx context.Context, params NewClientParams) (*Client, error) {
	if params.ApiKey == "" {
		return nil, ai.ErrNotConfigured
	}

	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  params.ApiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client init: %w", err)
	}

	model := params.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &Client{
		cli:   cli,
		model: model,
	}, nil
}

// Name identifies the provider for logging and answer metadata.
func (c *Client) Name() string {
	return "gemini:" + c.model
}

// GenerateCompletion sends a single-turn prompt and returns the generated text.
func (c *Client) GenerateCompletion(
	ctx context.Context,
	prompt string,
	opts ...ai.GenerateOption,
) (string, error) {
	options := ai.GenerateOptions{
		Model:       c.model,
		Temperature: 0.3,
		MaxTokens:   4000,
	}
	for _, o := range opts {
		o(&options)
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(options.Temperature)),
		MaxOutputTokens: int32(options.MaxTokens),
	}

	resp, err := c.cli.Models.GenerateContent(ctx, options.Model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		config,
	)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 ||
		resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: empty response")
	}

	return resp.Candidates[0].Content.Parts[0].Text, nil
}
