package rag

import (
	"context"
	"fmt"

	"github.com/codelore/backend/pkg/ai"
	"github.com/codelore/backend/pkg/logger"
)

// Query is a Cypher query with bound parameters.
type Query struct {
	Text   string
	Params map[string]any
}

const keywordFallbackQuery = `
MATCH (f:Feature)-[:PART_OF_FILE]->(file:File)
WHERE toLower(f.name) CONTAINS toLower($term)
   OR toLower(f.description) CONTAINS toLower($term)
   OR toLower(f.code) CONTAINS toLower($term)
OPTIONAL MATCH (f)<-[:PART_OF_FEATURE]-(func:Function)
OPTIONAL MATCH (f)<-[:PART_OF_FEATURE]-(cls:Class)
RETURN f.name, f.description, f.language, f.code, file.name AS file_name,
       collect(func.name) AS functions, collect(cls.name) AS classes
LIMIT 20`

const broadFallbackQuery = `
MATCH (f:Feature)-[:PART_OF_FILE]->(file:File)
OPTIONAL MATCH (f)<-[:PART_OF_FEATURE]-(func:Function)
OPTIONAL MATCH (f)<-[:PART_OF_FEATURE]-(cls:Class)
RETURN f.name, f.description, f.language, f.code, file.name AS file_name,
       collect(func.name) AS functions, collect(cls.name) AS classes
LIMIT 15`

// translate asks the oracle for a Cypher query matching the question. When
// the oracle is unavailable it degrades to a keyword search built from the
// question's own terms, so retrieval still has something to run.
func (e *Engine) translate(ctx context.Context, question string, repoContext string) Query {
	prompt := fmt.Sprintf(ai.TranslatePrompt, repoContext, question)
	response, err := e.client.GenerateCompletion(ctx, prompt, ai.WithTemperature(0.3))
	if err != nil {
		logger.Warn("[RAG] Query translation failed, using keyword fallback", "error", err)
		return fallbackQuery(question)
	}

	cypher := ai.StripQueryFences(response)
	if cypher == "" {
		return fallbackQuery(question)
	}
	return Query{Text: cypher}
}

func fallbackQuery(question string) Query {
	if terms := SearchTerms(question); len(terms) > 0 {
		return Query{
			Text:   keywordFallbackQuery,
			Params: map[string]any{"term": terms[0]},
		}
	}
	return Query{Text: broadFallbackQuery}
}
