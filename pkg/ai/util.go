package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var (
	reLeadingFence  = regexp.MustCompile("(?i)^```(?:json|cypher)?\\s*")
	reTrailingFence = regexp.MustCompile("\\s*```$")
	reTrailingComma = regexp.MustCompile(`,\s*([}\]])`)
)

// CleanResponse normalizes a raw oracle response into something json.Unmarshal
// has a chance with: markdown fences are stripped, trailing commas before
// closing braces/brackets removed, and if the text still does not start with
// a JSON bracket the first bracket-delimited substring is extracted via a
// greedy scan.
func CleanResponse(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = reLeadingFence.ReplaceAllString(text, "")
		text = reTrailingFence.ReplaceAllString(text, "")
		text = strings.TrimSpace(text)
	}

	text = reTrailingComma.ReplaceAllString(text, "$1")

	if !strings.HasPrefix(text, "[") && !strings.HasPrefix(text, "{") {
		if extracted := extractBracketed(text); extracted != "" {
			text = extracted
		}
	}

	return text
}

// extractBracketed returns the widest substring starting at the first '[' or
// '{' and ending at the last matching kind of closer. Greedy on purpose: the
// oracle tends to wrap one valid JSON value in prose, not several.
func extractBracketed(text string) string {
	for _, pair := range [][2]byte{{'[', ']'}, {'{', '}'}} {
		start := strings.IndexByte(text, pair[0])
		if start == -1 {
			continue
		}
		end := strings.LastIndexByte(text, pair[1])
		if end > start {
			return text[start : end+1]
		}
	}
	return ""
}

// StripQueryFences removes markdown code fences from a generated graph query
// without touching its content.
func StripQueryFences(query string) string {
	query = strings.ReplaceAll(query, "```cypher", "")
	query = strings.ReplaceAll(query, "```", "")
	return strings.TrimSpace(query)
}

// UnmarshalFlexible attempts to unmarshal oracle JSON into the target with
// fallback strategies: standard unmarshaling first, then a repair pass for
// malformed output (unquoted keys, stray commas, truncated closers).
func UnmarshalFlexible(input string, out any) error {
	input = strings.TrimSpace(input)

	if err := json.Unmarshal([]byte(input), out); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(input)
	if err != nil {
		return fmt.Errorf("json repair failed: %w", err)
	}

	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("unmarshal failed after repair: %w", err)
	}

	return nil
}
