package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/grantwatch/harvester/internal/harvest"
)

// SourceStore implements the per-source state machine on Postgres.
type SourceStore struct {
	pool dbPool
}

// NewSourceStore constructs a SourceStore from an existing pool.
func NewSourceStore(pool dbPool) (*SourceStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &SourceStore{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *SourceStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

const sourceColumns = `id, url, parser_hint, status, last_fetched_at, last_error_message, created_at, updated_at`

// ListEligible returns every source not currently processing.
func (s *SourceStore) ListEligible(ctx context.Context) ([]harvest.Source, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+sourceColumns+` FROM sources WHERE status <> 'processing' ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list eligible sources: %w", err)
	}
	defer rows.Close()

	var sources []harvest.Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	return sources, nil
}

// GetSource fetches one source by id.
func (s *SourceStore) GetSource(ctx context.Context, id string) (harvest.Source, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+sourceColumns+` FROM sources WHERE id = $1`, id)
	src, err := scanSource(row)
	if err != nil {
		return harvest.Source{}, fmt.Errorf("get source %s: %w", id, err)
	}
	return src, nil
}

// MarkProcessing atomically claims the source. The conditional update means
// only one concurrent caller can win; the loser sees false and skips the
// source.
func (s *SourceStore) MarkProcessing(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sources SET status = 'processing', updated_at = now() WHERE id = $1 AND status <> 'processing'`,
		id)
	if err != nil {
		return false, fmt.Errorf("mark source %s processing: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkSuccess records a completed run and clears the last error.
func (s *SourceStore) MarkSuccess(ctx context.Context, id string, fetchedAt time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE sources SET status = 'success', last_fetched_at = $2, last_error_message = '', updated_at = now() WHERE id = $1`,
		id, fetchedAt)
	if err != nil {
		return fmt.Errorf("mark source %s success: %w", id, err)
	}
	return nil
}

// MarkError records a failed run with its cause.
func (s *SourceStore) MarkError(ctx context.Context, id string, message string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE sources SET status = 'error', last_error_message = $2, updated_at = now() WHERE id = $1`,
		id, message)
	if err != nil {
		return fmt.Errorf("mark source %s error: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (harvest.Source, error) {
	var (
		src      harvest.Source
		hintJSON []byte
		status   string
	)
	err := row.Scan(
		&src.ID,
		&src.URL,
		&hintJSON,
		&status,
		&src.LastFetchedAt,
		&src.LastError,
		&src.CreatedAt,
		&src.UpdatedAt,
	)
	if err != nil {
		return harvest.Source{}, fmt.Errorf("scan source: %w", err)
	}
	src.Status = harvest.SourceStatus(status)
	if len(hintJSON) > 0 {
		// A broken hint should not make the source unusable.
		_ = json.Unmarshal(hintJSON, &src.ParserHint)
	}
	return src, nil
}
