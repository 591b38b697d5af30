package chunk

import (
	"regexp"
	"strings"
)

var (
	sasBlockPattern = regexp.MustCompile(`(?mi)^[ \t]*(data|proc)[ \t]+(\w+)`)

	// A COBOL paragraph header is a name alone on a line, terminated by
	// a period. This also matches division and section headers, which is
	// fine: they become their own fragments.
	cobolParagraphPattern = regexp.MustCompile(`(?m)^[ \t]*([\w-]+)\.[ \t]*$`)
)

// BlockStrategy chunks SAS programs at DATA and PROC step boundaries. Each
// step runs from its opening keyword to the next step or end of file, so the
// trailing RUN/QUIT statements stay with their step.
type BlockStrategy struct{}

func (BlockStrategy) Chunk(text string) []Fragment {
	locs := sasBlockPattern.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	var fragments []Fragment
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		fragments = append(fragments, Fragment{
			Index: i + 1,
			Kind:  strings.ToLower(text[loc[2]:loc[3]]),
			Name:  text[loc[4]:loc[5]],
			Text:  text[loc[0]:end],
		})
	}
	return fragments
}

// ParagraphStrategy chunks COBOL sources at paragraph headers.
type ParagraphStrategy struct{}

func (ParagraphStrategy) Chunk(text string) []Fragment {
	locs := cobolParagraphPattern.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	var fragments []Fragment
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		fragments = append(fragments, Fragment{
			Index: i + 1,
			Kind:  "paragraph",
			Name:  text[loc[2]:loc[3]],
			Text:  text[loc[0]:end],
		})
	}
	return fragments
}
