package chunk

import (
	"regexp"
	"sort"
	"strings"
)

var (
	// Matches a return type followed by a name, an argument list and an
	// opening brace on one logical line. Loose on purpose: legacy C and
	// Java code rarely survives a strict grammar.
	functionPattern = regexp.MustCompile(`(?m)^[ \t]*(?:[\w\[\]\*&<>]+[ \t]+)+(\w+)[ \t]*\([^\n]*?\)[ \t\n]*\{`)

	classPattern = regexp.MustCompile(`(?m)^[ \t]*(class|struct)[ \t]+(\w+)[ \t]*(?:[:\w \t,<>]*)?\{`)

	subPattern = regexp.MustCompile(`(?m)^[ \t]*sub[ \t]+(\w+)[ \t\n]*\{`)
)

// PatternStrategy chunks brace-structured languages (C, C++, Java, Scala,
// Perl, Shell) by scanning for function and class headers. Each fragment
// spans from its own header to the next header, or to end of file for the
// last one. Declaration lines above and between definitions are collected
// into the global-context fragment.
type PatternStrategy struct{}

type match struct {
	start int
	kind  string
	name  string
}

func (PatternStrategy) Chunk(text string) []Fragment {
	matches := findHeaders(text)
	if len(matches) == 0 {
		return nil
	}

	fragments := make([]Fragment, 0, len(matches)+1)
	if global := globalLines(text); global != "" {
		fragments = append(fragments, Fragment{
			Index: GlobalIndex,
			Kind:  "global",
			Name:  "global_context",
			Text:  global,
		})
	}

	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1].start
		}
		fragments = append(fragments, Fragment{
			Index: i + 1,
			Kind:  m.kind,
			Name:  m.name,
			Text:  text[m.start:end],
		})
	}
	return fragments
}

func findHeaders(text string) []match {
	var matches []match
	for _, loc := range functionPattern.FindAllStringSubmatchIndex(text, -1) {
		matches = append(matches, match{
			start: loc[0],
			kind:  "function",
			name:  text[loc[2]:loc[3]],
		})
	}
	for _, loc := range classPattern.FindAllStringSubmatchIndex(text, -1) {
		matches = append(matches, match{
			start: loc[0],
			kind:  text[loc[2]:loc[3]],
			name:  text[loc[4]:loc[5]],
		})
	}
	for _, loc := range subPattern.FindAllStringSubmatchIndex(text, -1) {
		matches = append(matches, match{
			start: loc[0],
			kind:  "function",
			name:  text[loc[2]:loc[3]],
		})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	// The function and class patterns can both fire on the same header.
	// Keep the earliest match per position and drop any header that falls
	// inside the previous fragment's opening line.
	deduped := matches[:0]
	last := -1
	for _, m := range matches {
		if m.start == last {
			continue
		}
		deduped = append(deduped, m)
		last = m.start
	}
	return deduped
}

// globalLines keeps preprocessor directives, imports and file-scope
// declarations from anywhere in the file. Trailing includes after the last
// definition still land in the global-context fragment.
func globalLines(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		switch {
		case strings.HasPrefix(trimmed, "#include"),
			strings.HasPrefix(trimmed, "#define"),
			strings.HasPrefix(trimmed, "import "),
			strings.HasPrefix(trimmed, "package "),
			strings.HasPrefix(trimmed, "use "):
			kept = append(kept, trimmed)
		case !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") &&
			strings.Contains(trimmed, ";") &&
			!strings.Contains(trimmed, "(") && !strings.Contains(trimmed, ")"):
			// Unindented terminator line with no call: file-scope
			// declaration or typedef. Indented statements inside bodies
			// stay out of the global context.
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, "\n")
}
