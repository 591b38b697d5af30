package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/codelore/backend/pkg/extract"
)

// ExtractionCache backs the oracle cache with the extraction_cache table,
// so unchanged batches survive process restarts.
type ExtractionCache struct {
	store *Store
}

func (s *Store) ExtractionCache() *ExtractionCache {
	return &ExtractionCache{store: s}
}

func (c *ExtractionCache) Get(ctx context.Context, key string) ([]extract.Record, bool, error) {
	var payload []byte
	err := c.store.pool.QueryRow(ctx,
		"SELECT records FROM extraction_cache WHERE batch_key = $1", key,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var records []extract.Record
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached records: %w", err)
	}
	return records, true, nil
}

func (c *ExtractionCache) Put(ctx context.Context, key string, records []extract.Record) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	_, err = c.store.pool.Exec(ctx, `
		INSERT INTO extraction_cache (batch_key, records)
		VALUES ($1, $2)
		ON CONFLICT (batch_key) DO UPDATE
		SET records = EXCLUDED.records, created_at = now()`,
		key, payload)
	return err
}
