package ai

import (
	"testing"
)

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain json untouched",
			input:    `[{"feature": "billing"}]`,
			expected: `[{"feature": "billing"}]`,
		},
		{
			name:     "json fence stripped",
			input:    "```json\n[{\"feature\": \"billing\"}]\n```",
			expected: `[{"feature": "billing"}]`,
		},
		{
			name:     "bare fence stripped",
			input:    "```\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "trailing comma removed",
			input:    `{"a": 1,}`,
			expected: `{"a": 1}`,
		},
		{
			name:     "trailing comma in array removed",
			input:    `[1, 2, 3,]`,
			expected: `[1, 2, 3]`,
		},
		{
			name:     "array extracted from prose",
			input:    "Here is the analysis:\n[{\"feature\": \"x\"}]\nHope that helps!",
			expected: `[{"feature": "x"}]`,
		},
		{
			name:     "object extracted when no array present",
			input:    `The result is {"a": 1} as requested.`,
			expected: `{"a": 1}`,
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  \n  [1]  \n  ",
			expected: `[1]`,
		},
		{
			name:     "no brackets left as-is",
			input:    "I could not analyze this code.",
			expected: "I could not analyze this code.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanResponse(tt.input)
			if got != tt.expected {
				t.Errorf("CleanResponse(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestStripQueryFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "cypher fence",
			input:    "```cypher\nMATCH (f:Feature) RETURN f.name LIMIT 25\n```",
			expected: "MATCH (f:Feature) RETURN f.name LIMIT 25",
		},
		{
			name:     "bare fence",
			input:    "```\nMATCH (n) RETURN n\n```",
			expected: "MATCH (n) RETURN n",
		},
		{
			name:     "no fence",
			input:    "MATCH (n) RETURN n",
			expected: "MATCH (n) RETURN n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripQueryFences(tt.input)
			if got != tt.expected {
				t.Errorf("StripQueryFences(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestUnmarshalFlexible(t *testing.T) {
	t.Run("valid json", func(t *testing.T) {
		var out map[string]int
		if err := UnmarshalFlexible(`{"a": 1}`, &out); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if out["a"] != 1 {
			t.Fatalf("expected a=1, got %d", out["a"])
		}
	})

	t.Run("unquoted keys repaired", func(t *testing.T) {
		var out map[string]string
		if err := UnmarshalFlexible(`{name: "billing"}`, &out); err != nil {
			t.Fatalf("expected repair to succeed, got %v", err)
		}
		if out["name"] != "billing" {
			t.Fatalf("expected name=billing, got %q", out["name"])
		}
	})

	t.Run("truncated object repaired", func(t *testing.T) {
		var out map[string]string
		if err := UnmarshalFlexible(`{"name": "billing"`, &out); err != nil {
			t.Fatalf("expected repair to succeed, got %v", err)
		}
		if out["name"] != "billing" {
			t.Fatalf("expected name=billing, got %q", out["name"])
		}
	})

	t.Run("hopeless input fails", func(t *testing.T) {
		var out map[string]string
		if err := UnmarshalFlexible(`not json at all`, &out); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}
