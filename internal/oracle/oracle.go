// Package oracle builds the configured language-model client stack from the
// environment. Both the server and the worker use it, so provider selection
// lives in one place.
package oracle

import (
	"context"
	"strings"

	"github.com/codelore/backend/internal/util"
	"github.com/codelore/backend/pkg/ai"
	"github.com/codelore/backend/pkg/ai/gemini"
	"github.com/codelore/backend/pkg/ai/openai"
	"github.com/codelore/backend/pkg/logger"
)

// NewFromEnv assembles the provider stack: the preferred provider first,
// the other as transparent fallback. Returns ai.ErrNotConfigured when no
// provider has an API key.
func NewFromEnv(ctx context.Context) (ai.Client, error) {
	var geminiClient, openaiClient ai.Client

	if key := util.GetEnv("GEMINI_API_KEY"); key != "" {
		client, err := gemini.NewClient(ctx, gemini.NewClientParams{
			ApiKey: key,
			Model:  util.GetEnv("GEMINI_MODEL"),
		})
		if err != nil {
			logger.Warn("[AI] Failed to initialize Gemini client", "err", err)
		} else {
			geminiClient = client
		}
	}

	if key := util.GetEnv("OPENAI_API_KEY"); key != "" {
		client, err := openai.NewClient(openai.NewClientParams{
			ApiKey:  key,
			BaseURL: util.GetEnv("OPENAI_BASE_URL"),
			Model:   util.GetEnv("OPENAI_MODEL"),
		})
		if err != nil {
			logger.Warn("[AI] Failed to initialize OpenAI client", "err", err)
		} else {
			openaiClient = client
		}
	}

	preferred, secondary := geminiClient, openaiClient
	if strings.ToLower(util.GetEnvString("PREFERRED_PROVIDER", "gemini")) == "openai" {
		preferred, secondary = openaiClient, geminiClient
	}

	return ai.NewFailoverClient(preferred, secondary)
}
