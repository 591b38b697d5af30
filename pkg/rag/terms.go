package rag

import (
	"regexp"
	"strings"
)

var stopWords = map[string]struct{}{
	"what": {}, "how": {}, "where": {}, "when": {}, "why": {}, "who": {},
	"is": {}, "are": {}, "was": {}, "were": {},
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"can": {}, "could": {}, "should": {}, "would": {}, "will": {},
	"do": {}, "does": {}, "did": {}, "have": {}, "has": {}, "had": {},
	"me": {}, "about": {}, "tell": {}, "show": {}, "find": {}, "get": {},
	"give": {}, "make": {}, "code": {}, "function": {}, "class": {},
}

var wordPattern = regexp.MustCompile(`\b[a-zA-Z_][a-zA-Z0-9_]*\b`)

// SearchTerms extracts up to five meaningful identifiers from a question
// for the keyword fallback query.
func SearchTerms(question string) []string {
	words := wordPattern.FindAllString(strings.ToLower(question), -1)
	var terms []string
	for _, word := range words {
		if _, stop := stopWords[word]; stop || len(word) <= 2 {
			continue
		}
		terms = append(terms, word)
		if len(terms) == 5 {
			break
		}
	}
	return terms
}
