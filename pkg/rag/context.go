package rag

import (
	"fmt"
	"strings"

	"github.com/codelore/backend/pkg/graphstore"
)

// contextItem is one retrieved row normalized for the answer prompt.
// Rows come back with varying aliases depending on which query produced
// them; normalization gives the oracle a stable shape.
type contextItem map[string]any

func buildContext(rows []graphstore.Row, defaultLanguage string) []contextItem {
	items := make([]contextItem, 0, len(rows))
	for _, row := range rows {
		item := contextItem{
			"feature_name": firstString(row, "f.name", "func.name", "cls.name"),
			"description":  firstString(row, "f.description", "description"),
			"language":     firstStringOr(defaultLanguage, row, "f.language", "language"),
			"file":         firstString(row, "file_name", "file.name"),
			"type":         rowType(row),
		}

		if code := firstString(row, "f.code", "code"); code != "" {
			item["code_snippet"] = truncateSnippet(code)
		}

		for key, value := range row {
			switch key {
			case "f.name", "f.description", "f.language", "f.code",
				"file.name", "file_name", "description", "code":
				continue
			}
			if isEmptyValue(value) {
				continue
			}
			item[key] = value
		}

		items = append(items, item)
	}
	return items
}

func rowType(row graphstore.Row) string {
	switch {
	case !isEmptyValue(row["func.name"]):
		return "function"
	case !isEmptyValue(row["cls.name"]):
		return "class"
	default:
		return "feature"
	}
}

const (
	snippetCharLimit = 800
	snippetLineLimit = 20
	snippetKeepLines = 15
)

// truncateSnippet bounds the code payload per item. Long files are cut at a
// line boundary so the snippet stays readable; dense one-liners are cut by
// bytes.
func truncateSnippet(code string) string {
	if len(code) <= snippetCharLimit {
		return code
	}
	lines := strings.Split(code, "\n")
	if len(lines) > snippetLineLimit {
		kept := strings.Join(lines[:snippetKeepLines], "\n")
		return fmt.Sprintf("%s\n... (%d more lines)", kept, len(lines)-snippetKeepLines)
	}
	return code[:snippetCharLimit] + "..."
}

func firstString(row graphstore.Row, keys ...string) string {
	for _, key := range keys {
		if s, ok := row[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func firstStringOr(fallback string, row graphstore.Row, keys ...string) string {
	if s := firstString(row, keys...); s != "" {
		return s
	}
	return fallback
}

func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	default:
		return false
	}
}
