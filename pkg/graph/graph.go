// Package graph projects extracted feature records into the property graph
// and keeps track of which repository's graph is currently loaded.
package graph

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/codelore/backend/pkg/extract"
	"github.com/codelore/backend/pkg/graphstore"
	"github.com/codelore/backend/pkg/logger"
)

// Node names are globally unique per label. Two records naming the same
// feature, function or class therefore merge into one node, which links
// related code across files at the cost of conflating true duplicates.
var constraints = []string{
	"CREATE CONSTRAINT IF NOT EXISTS FOR (f:Feature) REQUIRE f.name IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (fn:Function) REQUIRE fn.name IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (c:Class) REQUIRE c.name IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (fl:File) REQUIRE fl.name IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (i:Input) REQUIRE i.name IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (o:Output) REQUIRE o.name IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (d:Dependency) REQUIRE d.name IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (s:SideEffect) REQUIRE s.name IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (r:Requirement) REQUIRE r.name IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (api:API) REQUIRE api.name IS UNIQUE",
}

type Projector struct {
	store graphstore.Store
}

func NewProjector(store graphstore.Store) *Projector {
	return &Projector{store: store}
}

func (p *Projector) EnsureConstraints(ctx context.Context) error {
	for _, constraint := range constraints {
		if _, err := p.store.Run(ctx, constraint, nil); err != nil {
			return fmt.Errorf("failed to create constraint: %w", err)
		}
	}
	return nil
}

// Clear drops the entire graph. The graph holds one repository at a time;
// switching repositories rebuilds it from stored records.
func (p *Projector) Clear(ctx context.Context) error {
	_, err := p.store.Run(ctx, "MATCH (n) DETACH DELETE n", nil)
	return err
}

// Project upserts all records into the graph. Every statement is a MERGE,
// so projecting the same records twice leaves the graph unchanged.
func (p *Projector) Project(ctx context.Context, repoName string, records []extract.Record) error {
	for _, record := range records {
		if err := p.projectRecord(ctx, record); err != nil {
			return fmt.Errorf("failed to project feature %q: %w", record.Feature, err)
		}
	}

	_, err := p.store.Run(ctx, `
		MERGE (r:Repository {name: $name})
		SET r.fingerprint = $fingerprint`,
		map[string]any{"name": repoName, "fingerprint": Fingerprint(records)})
	if err != nil {
		return fmt.Errorf("failed to record repository fingerprint: %w", err)
	}

	logger.Info("[GRAPH] Projection complete", "repo", repoName, "records", len(records))
	return nil
}

// annotationsJSON serializes the oracle's free-form annotation map for
// storage as a node property. Neo4j properties cannot hold nested maps.
func annotationsJSON(annotations map[string]any) string {
	if len(annotations) == 0 {
		return "{}"
	}
	data, err := json.Marshal(annotations)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func (p *Projector) projectRecord(ctx context.Context, record extract.Record) error {
	if record.Feature == "" {
		return nil
	}

	statements := []struct {
		query  string
		params map[string]any
	}{
		{
			`MERGE (fl:File {name: $file})
			 SET fl.language = $language`,
			map[string]any{"file": record.File, "language": record.Language},
		},
		{
			`MERGE (f:Feature {name: $feature})
			 SET f.description = $description,
			     f.language = $language,
			     f.chunk_id = $chunk_id,
			     f.code = $code,
			     f.annotations = $annotations
			 MERGE (fl:File {name: $file})
			 MERGE (f)-[:PART_OF_FILE]->(fl)`,
			map[string]any{
				"feature":     record.Feature,
				"description": record.Description,
				"language":    record.Language,
				"chunk_id":    record.ChunkID,
				"code":        record.Code,
				"annotations": annotationsJSON(record.Annotations),
				"file":        record.File,
			},
		},
	}
	for _, stmt := range statements {
		if _, err := p.store.Run(ctx, stmt.query, stmt.params); err != nil {
			return err
		}
	}

	for _, fn := range record.Functions {
		if fn.Name == "" {
			continue
		}
		_, err := p.store.Run(ctx, `
			MERGE (fn:Function {name: $name})
			SET fn.signature = $signature,
			    fn.start_line = $start_line,
			    fn.end_line = $end_line,
			    fn.class = $class
			MERGE (f:Feature {name: $feature})
			MERGE (fn)-[:PART_OF_FEATURE]->(f)`,
			map[string]any{
				"name":       fn.Name,
				"signature":  fn.Signature,
				"start_line": fn.StartLine,
				"end_line":   fn.EndLine,
				"class":      fn.Class,
				"feature":    record.Feature,
			})
		if err != nil {
			return err
		}
	}

	for _, cls := range record.Classes {
		if cls.Name == "" {
			continue
		}
		_, err := p.store.Run(ctx, `
			MERGE (c:Class {name: $name})
			SET c.parent_class = $parent,
			    c.methods = $methods
			MERGE (f:Feature {name: $feature})
			MERGE (c)-[:PART_OF_FEATURE]->(f)`,
			map[string]any{
				"name":    cls.Name,
				"parent":  cls.ParentClass,
				"methods": cls.Methods,
				"feature": record.Feature,
			})
		if err != nil {
			return err
		}
		if cls.ParentClass != "" {
			// The parent may live in a fragment the oracle never saw;
			// a stub node still captures the inheritance edge.
			_, err := p.store.Run(ctx, `
				MATCH (c:Class {name: $child})
				MERGE (p:Class {name: $parent})
				MERGE (c)-[:INHERITS_FROM]->(p)`,
				map[string]any{"child": cls.Name, "parent": cls.ParentClass})
			if err != nil {
				return err
			}
		}
	}

	attached := []struct {
		label string
		edge  string
		names []string
	}{
		{"Input", "TAKES_INPUT", record.Inputs},
		{"Output", "PRODUCES", record.Outputs},
		{"Dependency", "DEPENDS_ON", record.Dependencies},
		{"SideEffect", "CAUSES", record.SideEffects},
		{"Requirement", "REQUIRES", record.Requirements},
		{"API", "USES_API", record.APIs},
	}
	for _, group := range attached {
		for _, name := range group.names {
			if name == "" {
				continue
			}
			query := fmt.Sprintf(`
				MERGE (n:%s {name: $name})
				MERGE (f:Feature {name: $feature})
				MERGE (f)-[:%s]->(n)`, group.label, group.edge)
			_, err := p.store.Run(ctx, query,
				map[string]any{"name": name, "feature": record.Feature})
			if err != nil {
				return err
			}
		}
	}

	return nil
}
