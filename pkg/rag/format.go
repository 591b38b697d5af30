package rag

import (
	"fmt"
	"strings"
)

var topicIcons = []struct {
	icon  string
	words []string
}{
	{"🔧", []string{"function", "method", "def"}},
	{"📦", []string{"class", "object", "inheritance"}},
	{"📁", []string{"file", "structure", "architecture"}},
	{"🌐", []string{"api", "endpoint", "service"}},
	{"🐛", []string{"error", "bug", "issue", "problem"}},
	{"🔗", []string{"dependency", "import", "require"}},
}

// FormatAnswer wraps a synthesized answer with a topic icon and a metadata
// footer showing how much evidence backed it.
func FormatAnswer(answer string, question string, resultsFound int, confidence float64) string {
	q := strings.ToLower(question)
	icon := "💡"
	for _, topic := range topicIcons {
		if containsAny(q, topic.words...) {
			icon = topic.icon
			break
		}
	}

	formatted := fmt.Sprintf("%s **Analysis Results**\n\n%s", icon, answer)
	if resultsFound > 0 {
		var light string
		switch {
		case confidence > 0.8:
			light = "🟢"
		case confidence > 0.6:
			light = "🟡"
		default:
			light = "🔴"
		}
		formatted += fmt.Sprintf(
			"\n\n---\n📊 **Query Info**: Found %d relevant code elements %s (Confidence: %.0f%%)",
			resultsFound, light, confidence*100)
	}
	return formatted
}
