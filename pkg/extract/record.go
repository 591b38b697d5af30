package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/codelore/backend/pkg/chunk"
)

// Record is one extracted feature: the oracle's structured reading of one
// code fragment. Feature names act as identity keys during graph projection,
// so two fragments describing the same capability merge into one node.
type Record struct {
	File         string         `json:"file"`
	ChunkID      int            `json:"chunk_id"`
	Language     string         `json:"language"`
	Feature      string         `json:"feature"`
	Description  string         `json:"description"`
	Functions    []Function     `json:"functions,omitempty"`
	Classes      []Class        `json:"classes,omitempty"`
	APIs         []string       `json:"apis,omitempty"`
	Dependencies []string       `json:"dependencies,omitempty"`
	Inputs       []string       `json:"inputs,omitempty"`
	Outputs      []string       `json:"outputs,omitempty"`
	SideEffects  []string       `json:"side_effects,omitempty"`
	Requirements []string       `json:"requirements,omitempty"`
	Comments     []string       `json:"comments,omitempty"`
	Annotations  map[string]any `json:"annotations,omitempty"`
	Code         string         `json:"code,omitempty"`
}

type Function struct {
	Name      string `json:"name"`
	Signature string `json:"signature,omitempty"`
	StartLine int    `json:"start_line,omitempty"`
	EndLine   int    `json:"end_line,omitempty"`
	Class     string `json:"class,omitempty"`
}

type Class struct {
	Name        string   `json:"name"`
	ParentClass string   `json:"parent_class,omitempty"`
	Methods     []string `json:"methods,omitempty"`
}

// BatchKey fingerprints a dispatched batch for the extraction cache. The key
// covers fragment identity and text, so editing any member invalidates it.
func BatchKey(fragments []chunk.Fragment) string {
	h := sha256.New()
	for _, f := range fragments {
		fmt.Fprintf(h, "%s\x00%d\x00", f.FilePath, f.Index)
		h.Write([]byte(f.Text))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

const (
	truncateCharThreshold = 800
	truncateLineThreshold = 20
	truncateKeepLines     = 15
)

// TruncateCode shortens long fragments before they are embedded in a prompt.
// Short fragments pass through untouched.
func TruncateCode(code string) string {
	if len(code) <= truncateCharThreshold {
		return code
	}
	lines := strings.Split(code, "\n")
	if len(lines) <= truncateLineThreshold {
		return code
	}
	kept := strings.Join(lines[:truncateKeepLines], "\n")
	return fmt.Sprintf("%s\n... (%d more lines)", kept, len(lines)-truncateKeepLines)
}

// Complexity buckets a fragment by line count. The label steers how much
// detail the oracle is asked for.
func Complexity(code string) string {
	lines := strings.Count(code, "\n") + 1
	switch {
	case lines <= 50:
		return "short"
	case lines <= 100:
		return "medium"
	default:
		return "long"
	}
}
