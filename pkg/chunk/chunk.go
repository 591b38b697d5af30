package chunk

import (
	"path/filepath"
	"strings"
)

// GlobalIndex is the fragment index reserved for a file's aggregated
// declaration/include lines. Only the pattern strategy produces it; all
// regular fragments are numbered from 1 regardless of strategy so the two
// never collide.
const GlobalIndex = 0

// Fragment is a contiguous slice of one source file's text. Fragments are
// immutable once produced and only live between the chunker and the batcher.
type Fragment struct {
	FilePath string `json:"file"`
	Index    int    `json:"chunk_id"`
	Language string `json:"language"`
	Kind     string `json:"chunk_type,omitempty"`
	Name     string `json:"chunk_name,omitempty"`
	Text     string `json:"code"`
}

// IsGlobal reports whether the fragment carries a file's global context.
func (f Fragment) IsGlobal() bool {
	return f.Index == GlobalIndex
}

// Strategy splits one file's raw text into fragments. Implementations fill
// Index, Kind, Name and Text; FilePath and Language are attached by File.
// Strategies are heuristic, not parsers: a strategy that finds no structure
// must return the whole text as a single fragment, never fail.
type Strategy interface {
	Chunk(text string) []Fragment
}

type language struct {
	label    string
	strategy Strategy
}

var languages = map[string]language{
	".c":     {"C", PatternStrategy{}},
	".cpp":   {"C++", PatternStrategy{}},
	".h":     {"C++", PatternStrategy{}},
	".hpp":   {"C++", PatternStrategy{}},
	".java":  {"Java", PatternStrategy{}},
	".scala": {"Scala", PatternStrategy{}},
	".pl":    {"Perl", PatternStrategy{}},
	".pm":    {"Perl", PatternStrategy{}},
	".sh":    {"Shell", PatternStrategy{}},
	".bash":  {"Shell", PatternStrategy{}},
	".sas":   {"SAS", BlockStrategy{}},
	".cob":   {"COBOL", ParagraphStrategy{}},
	".cbl":   {"COBOL", ParagraphStrategy{}},
	".cpy":   {"COBOL", ParagraphStrategy{}},
}

// Supported reports whether files with the given extension can be chunked.
func Supported(ext string) bool {
	_, ok := languages[strings.ToLower(ext)]
	return ok
}

// LanguageLabel returns the language label for a file extension, or "Unknown".
func LanguageLabel(ext string) string {
	if lang, ok := languages[strings.ToLower(ext)]; ok {
		return lang.label
	}
	return "Unknown"
}

// File chunks one file's text with the strategy registered for its extension
// and attaches path and language to every fragment. Unknown extensions and
// strategy failures degrade to a single whole-file fragment: chunking never
// aborts a parse pass.
func File(path string, text string) []Fragment {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := languages[ext]
	if !ok {
		return attach(path, "Unknown", wholeFile(text))
	}

	fragments := safeChunk(lang.strategy, text)
	if len(fragments) == 0 {
		fragments = wholeFile(text)
	}

	return attach(path, lang.label, fragments)
}

// safeChunk turns a panicking strategy into an empty result. Some legacy
// sources contain byte sequences that trip up line scanning; they still get
// a whole-file fragment.
func safeChunk(s Strategy, text string) (fragments []Fragment) {
	defer func() {
		if r := recover(); r != nil {
			fragments = nil
		}
	}()
	return s.Chunk(text)
}

func wholeFile(text string) []Fragment {
	return []Fragment{{
		Index: 1,
		Kind:  "full",
		Name:  "entire_file",
		Text:  text,
	}}
}

func attach(path, label string, fragments []Fragment) []Fragment {
	for i := range fragments {
		fragments[i].FilePath = path
		fragments[i].Language = label
	}
	return fragments
}
