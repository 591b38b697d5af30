package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/codelore/backend/pkg/extract"
)

// SaveRecords replaces a repository's extracted feature set.
func (s *Store) SaveRecords(ctx context.Context, repoID string, records []extract.Record, fingerprint string) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO feature_records (repository_id, records, fingerprint)
		VALUES ($1, $2, $3)
		ON CONFLICT (repository_id) DO UPDATE
		SET records = EXCLUDED.records,
		    fingerprint = EXCLUDED.fingerprint,
		    created_at = now()`,
		repoID, payload, fingerprint)
	return err
}

func (s *Store) GetRecords(ctx context.Context, repoID string) ([]extract.Record, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		"SELECT records FROM feature_records WHERE repository_id = $1", repoID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var records []extract.Record
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return records, nil
}

// SaveRunStats appends one extraction run's counters for later inspection.
func (s *Store) SaveRunStats(ctx context.Context, repoID string, stats extract.Stats) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO analysis_runs (repository_id, batches, cache_hits, oracle_calls, failed, records, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		repoID, stats.Batches, stats.CacheHits, stats.OracleCalls, stats.Failed,
		stats.Records, stats.Duration.Milliseconds())
	return err
}

type ChatMessage struct {
	ID        int64           `json:"id"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func (s *Store) AddChatMessage(ctx context.Context, repoID string, role string, content string, metadata any) error {
	payload, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO chat_messages (repository_id, role, content, metadata)
		VALUES ($1, $2, $3, $4)`,
		repoID, role, content, payload)
	return err
}

func (s *Store) GetChatHistory(ctx context.Context, repoID string, limit int) ([]ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, role, content, metadata, created_at
		FROM chat_messages
		WHERE repository_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2`,
		repoID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.Metadata, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
