package batch

import (
	"github.com/pkoukk/tiktoken-go"

	"github.com/codelore/backend/pkg/logger"
)

// DefaultEncoding is the tokenizer used for budget estimates. Estimates only
// need to be consistent, not exact for whichever model ends up serving the
// request.
const DefaultEncoding = "o200k_base"

// TokenCounter estimates token counts for batching. When the encoding cannot
// be loaded (first use downloads the vocabulary, which can fail offline) it
// degrades to a bytes/4 approximation instead of blocking the run.
type TokenCounter struct {
	enc *tiktoken.Tiktoken
}

func NewTokenCounter() *TokenCounter {
	enc, err := tiktoken.GetEncoding(DefaultEncoding)
	if err != nil {
		logger.Warn("[BATCH] Token encoding unavailable, using byte estimate", "error", err)
		return &TokenCounter{}
	}
	return &TokenCounter{enc: enc}
}

func (c *TokenCounter) Count(text string) int {
	if c.enc == nil {
		return len(text) / 4
	}
	return len(c.enc.Encode(text, nil, nil))
}
