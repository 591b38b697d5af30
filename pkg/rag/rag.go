// Package rag answers natural-language questions about an analyzed
// repository by translating them into graph queries, retrieving matching
// code elements and synthesizing a grounded answer.
package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/codelore/backend/pkg/ai"
	"github.com/codelore/backend/pkg/graphstore"
	"github.com/codelore/backend/pkg/logger"
)

// RepoInfo is the repository context threaded through every prompt.
type RepoInfo struct {
	Name          string
	Language      string
	Description   string
	FilesAnalyzed int
}

// Result is one answered question with its retrieval metadata.
type Result struct {
	Answer          string        `json:"response"`
	InteractionType string        `json:"interaction_type"`
	ResultsFound    int           `json:"results_found"`
	Confidence      float64       `json:"confidence,omitempty"`
	CypherQuery     string        `json:"cypher_query,omitempty"`
	Duration        time.Duration `json:"-"`
}

type Engine struct {
	client ai.Client
	store  graphstore.Store
}

func NewEngine(client ai.Client, store graphstore.Store) (*Engine, error) {
	if client == nil {
		return nil, ai.ErrNotConfigured
	}
	return &Engine{client: client, store: store}, nil
}

// Answer runs one question through the full loop: casual short-circuit,
// query translation, retrieval with fallbacks, then answer synthesis.
// Degradations inside the loop produce a usable Result; an error return
// means only that the context was canceled.
func (e *Engine) Answer(ctx context.Context, repo RepoInfo, question string) (Result, error) {
	start := time.Now()

	if IsCasual(question) {
		return Result{
			Answer:          CasualReply(question, repo.Name),
			InteractionType: "casual",
			Duration:        time.Since(start),
		}, nil
	}

	repoContext := fmt.Sprintf("Repository: %s, Language: %s, Description: %s",
		repo.Name, repo.Language, repo.Description)

	query := e.translate(ctx, question, repoContext)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	rows := e.retrieve(ctx, query)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if len(rows) == 0 {
		return Result{
			Answer:          noMatchAnswer(repo.Name),
			InteractionType: "analysis",
			CypherQuery:     query.Text,
			Duration:        time.Since(start),
		}, nil
	}

	items := buildContext(rows, repo.Language)
	answer, err := e.synthesize(ctx, repo, question, items)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		logger.Error("[RAG] Answer synthesis failed", "error", err)
		return Result{
			Answer: fmt.Sprintf(
				"⚠️ **Analysis Error**\n\nI found %d relevant code elements in **%s**, but encountered an issue generating the detailed analysis. Please try again.",
				len(rows), repo.Name),
			InteractionType: "analysis",
			ResultsFound:    len(rows),
			CypherQuery:     query.Text,
			Duration:        time.Since(start),
		}, nil
	}

	confidence := Confidence(len(rows), len(items))
	return Result{
		Answer:          FormatAnswer(answer, question, len(rows), confidence),
		InteractionType: "analysis",
		ResultsFound:    len(rows),
		Confidence:      confidence,
		CypherQuery:     query.Text,
		Duration:        time.Since(start),
	}, nil
}

func (e *Engine) synthesize(ctx context.Context, repo RepoInfo, question string, items []contextItem) (string, error) {
	payload, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode context: %w", err)
	}

	repoContext := fmt.Sprintf("- Name: %s\n- Language: %s\n- Description: %s\n- Files Analyzed: %d",
		repo.Name, repo.Language, repo.Description, repo.FilesAnalyzed)
	prompt := fmt.Sprintf(ai.AnswerPrompt, repoContext, question, string(payload))

	return e.client.GenerateCompletion(ctx, prompt,
		ai.WithTemperature(0.4), ai.WithMaxTokens(2500))
}

// Confidence scores an answer by how much graph evidence backed it, capped
// below certainty.
func Confidence(rows int, items int) float64 {
	score := 0.5 + float64(rows)*0.03 + float64(items)*0.02
	if score > 0.95 {
		return 0.95
	}
	return score
}

func noMatchAnswer(repoName string) string {
	return fmt.Sprintf("🔍 **No Direct Matches Found**\n\n"+
		"I searched through the **%s** repository but couldn't find specific code elements matching your query. This could mean:\n\n"+
		"• The feature you're looking for might use different terminology\n"+
		"• The code might not be indexed yet\n"+
		"• Try rephrasing your question with different keywords\n\n"+
		"💡 **Tip**: Try asking about general concepts like 'show me the main functions' or 'what classes are available'", repoName)
}
