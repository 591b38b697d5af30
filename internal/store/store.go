// Package store persists repositories, extraction results and chat history
// in Postgres. The property graph is rebuilt from these records on demand,
// so this database is the system of record.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var ErrNotFound = errors.New("not found")

// Repository analysis states. The phase column refines running with the
// pipeline's current step.
const (
	StatusPending  = "pending"
	StatusRunning  = "running"
	StatusAnalyzed = "analyzed"
	StatusError    = "error"
)

type Repository struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	URL           string    `json:"url"`
	Language      string    `json:"language"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	Phase         string    `json:"phase"`
	Progress      float64   `json:"progress"`
	FilesAnalyzed int       `json:"files_analyzed"`
	FeaturesFound int       `json:"features_found"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateRepository(ctx context.Context, name string, url string) (Repository, error) {
	id, err := gonanoid.New()
	if err != nil {
		return Repository{}, fmt.Errorf("failed to generate repository id: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO repositories (id, name, url)
		VALUES ($1, $2, $3)
		ON CONFLICT (url) DO UPDATE SET updated_at = now()
		RETURNING id, name, url, language, description, status, phase, progress,
		          files_analyzed, features_found, error, created_at, updated_at`,
		id, name, url)
	return scanRepository(row)
}

func (s *Store) GetRepository(ctx context.Context, id string) (Repository, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, url, language, description, status, phase, progress,
		       files_analyzed, features_found, error, created_at, updated_at
		FROM repositories
		WHERE id = $1`, id)
	repo, err := scanRepository(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Repository{}, ErrNotFound
	}
	return repo, err
}

func (s *Store) ListRepositories(ctx context.Context) ([]Repository, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, url, language, description, status, phase, progress,
		       files_analyzed, features_found, error, created_at, updated_at
		FROM repositories
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var repos []Repository
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}
	return repos, rows.Err()
}

func (s *Store) DeleteRepository(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM repositories WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPhase moves a running analysis to a new pipeline phase.
func (s *Store) SetPhase(ctx context.Context, id string, phase string, progress float64) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE repositories
		SET status = $2, phase = $3, progress = $4, updated_at = now()
		WHERE id = $1`,
		id, StatusRunning, phase, progress)
	return err
}

// FinishAnalysis records a successful run's summary on the repository row.
func (s *Store) FinishAnalysis(
	ctx context.Context,
	id string,
	language string,
	description string,
	filesAnalyzed int,
	featuresFound int,
) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE repositories
		SET status = $2, phase = '', progress = 1.0, language = $3, description = $4,
		    files_analyzed = $5, features_found = $6, error = '', updated_at = now()
		WHERE id = $1`,
		id, StatusAnalyzed, language, description, filesAnalyzed, featuresFound)
	return err
}

func (s *Store) FailAnalysis(ctx context.Context, id string, cause error) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE repositories
		SET status = $2, error = $3, updated_at = now()
		WHERE id = $1`,
		id, StatusError, cause.Error())
	return err
}

type repositoryScanner interface {
	Scan(dest ...any) error
}

func scanRepository(row repositoryScanner) (Repository, error) {
	var r Repository
	err := row.Scan(&r.ID, &r.Name, &r.URL, &r.Language, &r.Description, &r.Status,
		&r.Phase, &r.Progress, &r.FilesAnalyzed, &r.FeaturesFound, &r.Error,
		&r.CreatedAt, &r.UpdatedAt)
	return r, err
}
