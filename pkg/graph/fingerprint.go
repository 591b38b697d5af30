package graph

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/codelore/backend/pkg/extract"
	"github.com/codelore/backend/pkg/logger"
)

// Fingerprint hashes a record set for change detection. Records are sorted
// before hashing, so extraction order does not affect the result.
func Fingerprint(records []extract.Record) string {
	sorted := make([]extract.Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].File != sorted[j].File {
			return sorted[i].File < sorted[j].File
		}
		if sorted[i].ChunkID != sorted[j].ChunkID {
			return sorted[i].ChunkID < sorted[j].ChunkID
		}
		return sorted[i].Feature < sorted[j].Feature
	})

	payload, err := json.Marshal(sorted)
	if err != nil {
		// Records are plain data; marshal cannot realistically fail.
		return ""
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// EnsureLoaded makes the graph hold exactly the given repository's records.
// When the stored fingerprint already matches, the graph is left untouched.
// Returns whether a rebuild happened.
func (p *Projector) EnsureLoaded(ctx context.Context, repoName string, records []extract.Record) (bool, error) {
	want := Fingerprint(records)

	rows, err := p.store.Run(ctx, `
		MATCH (r:Repository {name: $name})
		RETURN r.fingerprint AS fingerprint`,
		map[string]any{"name": repoName})
	if err != nil {
		return false, err
	}
	if len(rows) == 1 {
		if current, _ := rows[0]["fingerprint"].(string); current == want {
			logger.Debug("[GRAPH] Graph already current", "repo", repoName)
			return false, nil
		}
	}

	logger.Info("[GRAPH] Rebuilding graph", "repo", repoName, "records", len(records))
	if err := p.Clear(ctx); err != nil {
		return false, err
	}
	if err := p.EnsureConstraints(ctx); err != nil {
		return false, err
	}
	if err := p.Project(ctx, repoName, records); err != nil {
		return false, err
	}
	return true, nil
}
