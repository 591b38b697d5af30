package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/codelore/backend/pkg/chunk"
)

// DetectLanguage picks the dominant language across all fragments, counting
// fragments rather than files so large mixed files weigh appropriately.
func DetectLanguage(fragments []chunk.Fragment) string {
	counts := make(map[string]int)
	for _, f := range fragments {
		if f.Language != "" && f.Language != "Unknown" {
			counts[f.Language]++
		}
	}
	if len(counts) == 0 {
		return "Unknown"
	}

	best := ""
	for language, count := range counts {
		if best == "" || count > counts[best] || (count == counts[best] && language < best) {
			best = language
		}
	}
	return best
}

// Describe summarizes a checkout for the repository row and for prompt
// context.
func Describe(files int, fragments []chunk.Fragment) string {
	counts := make(map[string]int)
	for _, f := range fragments {
		if f.Language != "" && f.Language != "Unknown" {
			counts[f.Language]++
		}
	}

	languages := make([]string, 0, len(counts))
	for language := range counts {
		languages = append(languages, language)
	}
	sort.Slice(languages, func(i, j int) bool {
		if counts[languages[i]] != counts[languages[j]] {
			return counts[languages[i]] > counts[languages[j]]
		}
		return languages[i] < languages[j]
	})

	if len(languages) == 0 {
		return fmt.Sprintf("Legacy codebase with %d source files.", files)
	}
	if len(languages) == 1 {
		return fmt.Sprintf("Legacy %s codebase with %d source files.", languages[0], files)
	}
	return fmt.Sprintf("Legacy %s codebase with %d source files (also %s).",
		languages[0], files, strings.Join(languages[1:], ", "))
}
