package extract

import "context"

// Cache stores extraction results keyed by batch fingerprint, so re-running
// an unchanged repository skips the oracle entirely.
type Cache interface {
	Get(ctx context.Context, key string) ([]Record, bool, error)
	Put(ctx context.Context, key string, records []Record) error
}

// MemoryCache is a process-local Cache for tests and one-shot runs. It is
// not safe for concurrent use; extraction submits batches sequentially.
type MemoryCache struct {
	entries map[string][]Record
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]Record)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]Record, bool, error) {
	records, ok := c.entries[key]
	return records, ok, nil
}

func (c *MemoryCache) Put(_ context.Context, key string, records []Record) error {
	c.entries[key] = records
	return nil
}
