package graph

import (
	"context"
	"strings"
	"testing"

	"github.com/codelore/backend/pkg/ai"
	"github.com/codelore/backend/pkg/batch"
	"github.com/codelore/backend/pkg/chunk"
	"github.com/codelore/backend/pkg/extract"
	"github.com/codelore/backend/pkg/graphstore"
)

// recordingStore captures executed queries and serves canned rows.
type recordingStore struct {
	queries []string
	params  []map[string]any
	rows    map[string][]graphstore.Row
}

func newRecordingStore() *recordingStore {
	return &recordingStore{rows: make(map[string][]graphstore.Row)}
}

func (s *recordingStore) Run(_ context.Context, query string, params map[string]any) ([]graphstore.Row, error) {
	s.queries = append(s.queries, query)
	s.params = append(s.params, params)
	for needle, rows := range s.rows {
		if strings.Contains(query, needle) {
			return rows, nil
		}
	}
	return nil, nil
}

func (s *recordingStore) Close(context.Context) error { return nil }

func (s *recordingStore) countQueries(needle string) int {
	n := 0
	for _, q := range s.queries {
		if strings.Contains(q, needle) {
			n++
		}
	}
	return n
}

func sampleRecords() []extract.Record {
	return []extract.Record{
		{
			File:        "src/billing.c",
			ChunkID:     1,
			Language:    "C",
			Feature:     "Invoice total calculation",
			Description: "Sums line items into an invoice total.",
			Functions:   []extract.Function{{Name: "sum_items", Signature: "int sum_items(item*)"}},
			Inputs:      []string{"line items"},
			Outputs:     []string{"invoice total"},
		},
		{
			File:        "src/billing.c",
			ChunkID:     2,
			Language:    "C",
			Feature:     "Invoice printing",
			Description: "Formats and prints an invoice.",
			APIs:        []string{"printf"},
		},
	}
}

func TestProjectBuildsExpectedStatements(t *testing.T) {
	store := newRecordingStore()
	p := NewProjector(store)

	if err := p.Project(context.Background(), "billing", sampleRecords()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		needle string
		want   int
	}{
		{"MERGE (fl:File {name: $file})", 2},
		{"PART_OF_FILE", 2},
		{"MERGE (fn:Function {name: $name})", 1},
		{"TAKES_INPUT", 1},
		{"PRODUCES", 1},
		{"USES_API", 1},
		{"Repository", 1},
	}
	for _, tt := range tests {
		if got := store.countQueries(tt.needle); got != tt.want {
			t.Errorf("expected %d statements containing %q, got %d", tt.want, tt.needle, got)
		}
	}

	for _, q := range store.queries {
		if strings.Contains(q, "CREATE (") {
			t.Errorf("projection must only MERGE, found: %s", q)
		}
	}
}

func TestProjectFunctionMergedByNameOnly(t *testing.T) {
	store := newRecordingStore()
	p := NewProjector(store)

	// Same function name with two signatures: the name uniqueness
	// constraint allows a single node, so signature is a property, never
	// part of the merge key.
	records := []extract.Record{
		{File: "a.c", ChunkID: 1, Feature: "Init", Functions: []extract.Function{
			{Name: "setup", Signature: "void setup(void)"},
		}},
		{File: "b.c", ChunkID: 1, Feature: "Boot", Functions: []extract.Function{
			{Name: "setup", Signature: "int setup(int mode)"},
		}},
	}
	if err := p.Project(context.Background(), "r", records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := store.countQueries("MERGE (fn:Function {name: $name})"); got != 2 {
		t.Fatalf("expected 2 function statements keyed by name, got %d", got)
	}
	if got := store.countQueries("MERGE (fn:Function {name: $name, signature"); got != 0 {
		t.Errorf("function merge key must not include signature, found %d", got)
	}
	if got := store.countQueries("SET fn.signature = $signature"); got != 2 {
		t.Errorf("expected signature overwritten as a property in 2 statements, got %d", got)
	}
}

func TestProjectSkipsEmptyFeature(t *testing.T) {
	store := newRecordingStore()
	p := NewProjector(store)

	records := []extract.Record{{File: "a.c", ChunkID: 1}}
	if err := p.Project(context.Background(), "r", records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.countQueries("MERGE (f:Feature") != 0 {
		t.Error("nameless record must not create a feature node")
	}
}

func TestProjectInheritanceStub(t *testing.T) {
	store := newRecordingStore()
	p := NewProjector(store)

	records := []extract.Record{{
		File:    "src/Ledger.java",
		ChunkID: 1,
		Feature: "Ledger management",
		Classes: []extract.Class{{Name: "Ledger", ParentClass: "Book"}},
	}}
	if err := p.Project(context.Background(), "r", records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.countQueries("INHERITS_FROM") != 1 {
		t.Error("parent class must produce an inheritance edge")
	}
}

type cannedOracle struct {
	response string
}

func (o *cannedOracle) GenerateCompletion(context.Context, string, ...ai.GenerateOption) (string, error) {
	return o.response, nil
}

func (o *cannedOracle) Name() string { return "canned" }

// One C file with a function, a struct and trailing includes flows through
// chunking, batching and extraction into a projected graph: one File, two
// Features, two PART_OF_FILE edges.
func TestProjectChunkedFile(t *testing.T) {
	source := `#include <stdio.h>

int parse_line(char *s) {
	return s[0];
}

struct token {
	int kind;
};

#include "codes.h"
`
	fragments := chunk.File("src/lexer.c", source)
	if len(fragments) != 3 {
		t.Fatalf("expected 3 fragments, got %d", len(fragments))
	}

	batcher := batch.NewBatcher(&batch.TokenCounter{}, 10000)
	batches, globals := batcher.Pack(fragments)
	if len(batches) != 1 {
		t.Fatalf("expected a single batch, got %d", len(batches))
	}

	oracle := &cannedOracle{response: `[
		{"file": "src/lexer.c", "chunk_id": 1, "language": "C",
		 "feature": "Line parsing", "description": "Reads the first byte of a line.",
		 "functions": [{"name": "parse_line"}]},
		{"file": "src/lexer.c", "chunk_id": 2, "language": "C",
		 "feature": "Token representation", "description": "Token kind record."}
	]`}
	extractor := extract.New(oracle, extract.NewMemoryCache(), extract.Options{})
	records, _, err := extractor.Run(context.Background(), "test repo", batches, globals)
	if err != nil {
		t.Fatalf("extraction failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	store := newRecordingStore()
	if err := NewProjector(store).Project(context.Background(), "lexer", records); err != nil {
		t.Fatalf("projection failed: %v", err)
	}

	if got := store.countQueries("PART_OF_FILE"); got != 2 {
		t.Errorf("expected 2 PART_OF_FILE merges, got %d", got)
	}
	files := make(map[string]bool)
	for _, params := range store.params {
		if file, ok := params["file"].(string); ok {
			files[file] = true
		}
	}
	if len(files) != 1 || !files["src/lexer.c"] {
		t.Errorf("expected all merges keyed to src/lexer.c, got %v", files)
	}
}

func TestFingerprintOrderIndependent(t *testing.T) {
	records := sampleRecords()
	reversed := []extract.Record{records[1], records[0]}

	if Fingerprint(records) != Fingerprint(reversed) {
		t.Error("fingerprint must not depend on record order")
	}
	changed := sampleRecords()
	changed[0].Description = "different"
	if Fingerprint(records) == Fingerprint(changed) {
		t.Error("fingerprint must change when record content changes")
	}
}

func TestEnsureLoadedSkipsMatchingFingerprint(t *testing.T) {
	records := sampleRecords()
	store := newRecordingStore()
	store.rows["RETURN r.fingerprint"] = []graphstore.Row{
		{"fingerprint": Fingerprint(records)},
	}
	p := NewProjector(store)

	reloaded, err := p.EnsureLoaded(context.Background(), "billing", records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reloaded {
		t.Error("matching fingerprint must skip the rebuild")
	}
	if store.countQueries("DETACH DELETE") != 0 {
		t.Error("graph was cleared despite matching fingerprint")
	}
}

func TestEnsureLoadedRebuildsOnMismatch(t *testing.T) {
	records := sampleRecords()
	store := newRecordingStore()
	store.rows["RETURN r.fingerprint"] = []graphstore.Row{
		{"fingerprint": "stale"},
	}
	p := NewProjector(store)

	reloaded, err := p.EnsureLoaded(context.Background(), "billing", records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reloaded {
		t.Error("stale fingerprint must trigger a rebuild")
	}
	if store.countQueries("DETACH DELETE") != 1 {
		t.Error("rebuild must clear the previous graph")
	}
	if store.countQueries("CREATE CONSTRAINT") != len(constraints) {
		t.Error("rebuild must re-ensure constraints")
	}
}
