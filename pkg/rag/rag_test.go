package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/codelore/backend/pkg/ai"
	"github.com/codelore/backend/pkg/graphstore"
)

type fakeOracle struct {
	calls     int
	responses map[string]string
	err       error
}

func (f *fakeOracle) GenerateCompletion(_ context.Context, prompt string, _ ...ai.GenerateOption) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	for needle, response := range f.responses {
		if strings.Contains(prompt, needle) {
			return response, nil
		}
	}
	return "MATCH (f:Feature) RETURN f.name LIMIT 25", nil
}

func (f *fakeOracle) Name() string { return "fake" }

type scriptedStore struct {
	queries []string
	rows    map[string][]graphstore.Row
	err     error
}

func (s *scriptedStore) Run(_ context.Context, query string, _ map[string]any) ([]graphstore.Row, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	for needle, rows := range s.rows {
		if strings.Contains(query, needle) {
			return rows, nil
		}
	}
	return nil, nil
}

func (s *scriptedStore) Close(context.Context) error { return nil }

var testRepo = RepoInfo{
	Name:          "legacy-billing",
	Language:      "C",
	Description:   "Billing batch jobs",
	FilesAnalyzed: 12,
}

func featureRow() graphstore.Row {
	return graphstore.Row{
		"f.name":        "Invoice total calculation",
		"f.description": "Sums line items.",
		"f.language":    "C",
		"f.code":        "int sum_items(item *it) { return 0; }",
		"file_name":     "src/billing.c",
	}
}

func TestAnswerCasualShortCircuit(t *testing.T) {
	oracle := &fakeOracle{}
	store := &scriptedStore{}
	engine, err := NewEngine(oracle, store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := engine.Answer(context.Background(), testRepo, "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.InteractionType != "casual" {
		t.Errorf("expected casual interaction, got %q", result.InteractionType)
	}
	if oracle.calls != 0 {
		t.Errorf("casual input must not reach the oracle, got %d calls", oracle.calls)
	}
	if len(store.queries) != 0 {
		t.Error("casual input must not touch the graph")
	}
	if !strings.Contains(result.Answer, "legacy-billing") {
		t.Error("greeting reply should mention the repository")
	}
}

func TestAnswerFullLoop(t *testing.T) {
	oracle := &fakeOracle{responses: map[string]string{
		"Cypher query generator":       "```cypher\nMATCH (f:Feature) WHERE toLower(f.name) CONTAINS 'invoice' RETURN f.name, f.description, f.code LIMIT 25\n```",
		"Retrieved Code Analysis Data": "The invoice total is computed by `sum_items` in `src/billing.c`.",
	}}
	store := &scriptedStore{rows: map[string][]graphstore.Row{
		"CONTAINS 'invoice'": {featureRow()},
	}}
	engine, _ := NewEngine(oracle, store)

	result, err := engine.Answer(context.Background(), testRepo, "How is the invoice total calculated?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ResultsFound != 1 {
		t.Errorf("expected 1 result, got %d", result.ResultsFound)
	}
	if !strings.Contains(result.Answer, "sum_items") {
		t.Error("answer lost the synthesized text")
	}
	if !strings.Contains(result.Answer, "Query Info") {
		t.Error("answer missing the metadata footer")
	}
	if strings.Contains(result.CypherQuery, "```") {
		t.Error("cypher fences not stripped")
	}
	if result.Confidence <= 0.5 || result.Confidence > 0.95 {
		t.Errorf("confidence out of range: %f", result.Confidence)
	}
}

func TestAnswerFallbackLadder(t *testing.T) {
	// Translated query and the broad feature fallback match nothing; the
	// function-focused strategy is the first to return rows.
	oracle := &fakeOracle{responses: map[string]string{
		"Cypher query generator":       "MATCH (f:Feature) WHERE f.name = 'nothing' RETURN f",
		"Retrieved Code Analysis Data": "Functions found.",
	}}
	store := &scriptedStore{rows: map[string][]graphstore.Row{
		"(func:Function)-[:PART_OF_FEATURE]": {
			{"func.name": "sum_items", "f.description": "Sums items.", "file_name": "src/billing.c"},
		},
	}}
	engine, _ := NewEngine(oracle, store)

	result, err := engine.Answer(context.Background(), testRepo, "list the functions please")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ResultsFound != 1 {
		t.Fatalf("fallback rows not used, got %d results", result.ResultsFound)
	}

	// The ladder must have tried the broad feature query before functions.
	broadTried := false
	for _, q := range store.queries {
		if strings.Contains(q, "LIMIT 10") && strings.Contains(q, "f.name") && strings.Contains(q, "collect") {
			broadTried = true
		}
	}
	if !broadTried {
		t.Error("broad feature fallback was skipped")
	}
}

func TestAnswerNoMatches(t *testing.T) {
	oracle := &fakeOracle{}
	store := &scriptedStore{}
	engine, _ := NewEngine(oracle, store)

	result, err := engine.Answer(context.Background(), testRepo, "where are the dragons")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ResultsFound != 0 {
		t.Errorf("expected 0 results, got %d", result.ResultsFound)
	}
	if !strings.Contains(result.Answer, "No Direct Matches Found") {
		t.Error("missing structured no-match answer")
	}
}

func TestAnswerQueryErrorTreatedAsEmpty(t *testing.T) {
	oracle := &fakeOracle{}
	store := &scriptedStore{err: errors.New("syntax error")}
	engine, _ := NewEngine(oracle, store)

	result, err := engine.Answer(context.Background(), testRepo, "what does the parser do")
	if err != nil {
		t.Fatalf("query errors must degrade, got %v", err)
	}
	if result.ResultsFound != 0 {
		t.Errorf("expected 0 results, got %d", result.ResultsFound)
	}
}

func TestNewEngineWithoutProvider(t *testing.T) {
	if _, err := NewEngine(nil, &scriptedStore{}); !errors.Is(err, ai.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestIsCasual(t *testing.T) {
	tests := []struct {
		question string
		want     bool
	}{
		{"hi", true},
		{"Hello!", true},
		{"thanks", true},
		{"good morning", true},
		{"bye", true},
		{"hi, how does the parser handle COBOL files?", false},
		{"what does main do", false},
		{"hello world printing in this codebase", false},
	}
	for _, tt := range tests {
		if got := IsCasual(tt.question); got != tt.want {
			t.Errorf("IsCasual(%q) = %v, want %v", tt.question, got, tt.want)
		}
	}
}

func TestCasualReplyStable(t *testing.T) {
	first := CasualReply("hi", "legacy-billing")
	second := CasualReply("hi", "legacy-billing")
	if first != second {
		t.Error("same greeting must produce the same reply")
	}
	if !strings.Contains(first, "legacy-billing") {
		t.Error("greeting reply missing repository name")
	}
}

func TestConfidenceBounds(t *testing.T) {
	if got := Confidence(0, 0); got != 0.5 {
		t.Errorf("baseline confidence = %f, want 0.5", got)
	}
	if got := Confidence(5, 5); got != 0.5+5*0.03+5*0.02 {
		t.Errorf("unexpected confidence %f", got)
	}
	if got := Confidence(100, 100); got != 0.95 {
		t.Errorf("confidence must cap at 0.95, got %f", got)
	}
	if Confidence(10, 10) < Confidence(5, 5) {
		t.Error("confidence must grow with evidence")
	}
}

func TestSearchTerms(t *testing.T) {
	terms := SearchTerms("What does the InvoiceManager class do with payments?")
	if len(terms) == 0 {
		t.Fatal("expected search terms")
	}
	if terms[0] != "invoicemanager" {
		t.Errorf("expected invoicemanager first, got %q", terms[0])
	}
	for _, term := range terms {
		if _, stop := stopWords[term]; stop {
			t.Errorf("stop word %q leaked into terms", term)
		}
	}
}

func TestTruncateSnippet(t *testing.T) {
	long := strings.Repeat("line\n", 100)
	short := truncateSnippet(long)
	if !strings.Contains(short, "more lines)") {
		t.Error("long snippet not truncated")
	}

	dense := strings.Repeat("x", 900)
	if got := truncateSnippet(dense); !strings.HasSuffix(got, "...") || len(got) > 810 {
		t.Error("dense snippet not byte-truncated")
	}

	small := "int main() {}"
	if truncateSnippet(small) != small {
		t.Error("short snippet must pass through")
	}
}
