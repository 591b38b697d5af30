package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/codelore/backend/internal/pipeline"
	"github.com/codelore/backend/pkg/logger"
)

// ProcessAnalyze handles one analysis job from the queue.
func ProcessAnalyze(ctx context.Context, p *pipeline.Pipeline, body string) error {
	var msg AnalyzeMsg
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return fmt.Errorf("malformed analyze message: %w", err)
	}
	if msg.RepositoryID == "" || msg.URL == "" {
		return fmt.Errorf("analyze message missing repository id or url")
	}

	logger.Info("[Queue] Starting analysis", "repo", msg.RepositoryID, "url", msg.URL)
	return p.Analyze(ctx, msg.RepositoryID, msg.URL)
}
