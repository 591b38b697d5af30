package rag

import (
	"context"

	"github.com/codelore/backend/pkg/graphstore"
	"github.com/codelore/backend/pkg/logger"
)

// Retrieval strategies tried in order when the translated query comes back
// empty. Broad feature listing first, then function and class inventories.
var fallbackStrategies = []string{
	`MATCH (f:Feature)-[:PART_OF_FILE]->(file:File)
	 OPTIONAL MATCH (f)<-[:PART_OF_FEATURE]-(func:Function)
	 OPTIONAL MATCH (f)<-[:PART_OF_FEATURE]-(cls:Class)
	 RETURN f.name, f.description, f.language, f.code, file.name AS file_name,
	        collect(func.name) AS functions, collect(cls.name) AS classes
	 LIMIT 10`,

	`MATCH (func:Function)-[:PART_OF_FEATURE]->(f:Feature)-[:PART_OF_FILE]->(file:File)
	 RETURN func.name, func.signature, f.description, f.code, file.name AS file_name
	 LIMIT 10`,

	`MATCH (cls:Class)-[:PART_OF_FEATURE]->(f:Feature)-[:PART_OF_FILE]->(file:File)
	 RETURN cls.name, cls.parent_class, f.description, f.code, file.name AS file_name
	 LIMIT 10`,
}

// retrieve runs the translated query, then the fallback ladder until
// something matches. A malformed oracle query is logged and treated as an
// empty result, never surfaced to the user.
func (e *Engine) retrieve(ctx context.Context, query Query) []graphstore.Row {
	rows := e.runQuery(ctx, query.Text, query.Params)
	for _, strategy := range fallbackStrategies {
		if len(rows) > 0 {
			break
		}
		rows = e.runQuery(ctx, strategy, nil)
	}
	return rows
}

func (e *Engine) runQuery(ctx context.Context, query string, params map[string]any) []graphstore.Row {
	rows, err := e.store.Run(ctx, query, params)
	if err != nil {
		logger.Warn("[RAG] Graph query failed", "error", err)
		return nil
	}
	return rows
}
