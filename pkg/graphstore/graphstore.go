// Package graphstore wraps the property-graph database behind a minimal
// query interface, so projection and retrieval code stays testable without
// a live server.
package graphstore

import "context"

// Row is one result record keyed by its returned aliases.
type Row = map[string]any

// Store executes Cypher against the property graph.
type Store interface {
	// Run executes one query and eagerly collects all result rows.
	Run(ctx context.Context, query string, params map[string]any) ([]Row, error)
	Close(ctx context.Context) error
}
