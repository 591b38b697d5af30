package openai

import (
	"context"
	"errors"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/codelore/backend/pkg/ai"
)

// Client implements ai.Client against an OpenAI-compatible chat endpoint.
type Client struct {
	cli   *openai.Client
	model string
}

// NewClientParams contains configuration for creating an OpenAI client.
// BaseURL may point at any OpenAI-compatible endpoint; empty uses the
// official API.
type NewClientParams struct {
	ApiKey  string
	BaseURL string
	Model   string
}

// NewClient creates an OpenAI-backed oracle client. Returns
// ai.ErrNotConfigured when no API key is provided.
func NewClient(params NewClientParams) (*Client, error) {
	if params.ApiKey == "" {
		return nil, ai.ErrNotConfigured
	}

	requestOptions := []option.RequestOption{
		option.WithAPIKey(params.ApiKey),
	}
	if params.BaseURL != "" {
		requestOptions = append(requestOptions, option.WithBaseURL(params.BaseURL))
	}
	cli := openai.NewClient(requestOptions...)

	model := params.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &Client{
		cli:   &cli,
		model: model,
	}, nil
}

// Name identifies the provider for logging and answer metadata.
func (c *Client) Name() string {
	return "openai:" + c.model
}

// GenerateCompletion sends a single-turn prompt to the chat model and returns
// the generated completion as plain text.
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

	body := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(options.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature:         openai.Float(options.Temperature),
		MaxCompletionTokens: openai.Int(int64(options.MaxTokens)),
	}

	response, err := c.cli.Chat.Completions.New(ctx, body)
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", errors.New("openai: empty response")
	}

	return response.Choices[0].Message.Content, nil
}
