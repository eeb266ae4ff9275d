package postgres

import (
	"context"
	"fmt"

	"github.com/grantwatch/harvester/internal/harvest"
)

// GrantStore upserts grants into Postgres. The grants table carries a unique
// constraint on content_hash; hash-equal records always collapse to one row.
type GrantStore struct {
	pool dbPool
}

// NewGrantStore constructs a GrantStore from an existing pool.
func NewGrantStore(pool dbPool) (*GrantStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &GrantStore{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *GrantStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

const upsertGrantSQL = `
INSERT INTO grants (
	content_hash,
	title,
	url,
	description,
	deadline,
	amount,
	currency,
	grant_type,
	tags,
	source_id,
	source_url,
	snapshot_uri,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (content_hash) DO UPDATE SET
	title = EXCLUDED.title,
	description = EXCLUDED.description,
	deadline = EXCLUDED.deadline,
	amount = EXCLUDED.amount,
	currency = EXCLUDED.currency,
	grant_type = EXCLUDED.grant_type,
	tags = EXCLUDED.tags,
	snapshot_uri = EXCLUDED.snapshot_uri,
	updated_at = EXCLUDED.updated_at`

// Upsert inserts a new grant or refreshes the mutable fields of the existing
// row with the same content hash.
func (s *GrantStore) Upsert(ctx context.Context, grant harvest.Grant) error {
	if grant.ContentHash == "" {
		return fmt.Errorf("grant content hash is required")
	}
	_, err := s.pool.Exec(ctx, upsertGrantSQL,
		grant.ContentHash,
		grant.Title,
		grant.URL,
		grant.Description,
		grant.Deadline,
		grant.Amount,
		grant.Currency,
		string(grant.Type),
		grant.Tags,
		grant.SourceID,
		grant.SourceURL,
		grant.SnapshotURI,
		grant.CreatedAt,
		grant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert grant %s: %w", grant.ContentHash, err)
	}
	return nil
}
