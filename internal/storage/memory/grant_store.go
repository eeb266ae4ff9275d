// Package memory provides in-memory store implementations for tests and
// local development.
package memory

import (
	"context"
	"sync"

	"github.com/grantwatch/harvester/internal/harvest"
)

// GrantStore keeps grants in a map keyed by content hash, mirroring the
// Postgres upsert semantics: one row per hash, updates refresh in place.
type GrantStore struct {
	mu     sync.RWMutex
	grants map[string]harvest.Grant
}

// NewGrantStore creates an empty in-memory grant store.
func NewGrantStore() *GrantStore {
	return &GrantStore{grants: make(map[string]harvest.Grant)}
}

// Upsert inserts or refreshes the grant under its content hash.
func (s *GrantStore) Upsert(_ context.Context, grant harvest.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.grants[grant.ContentHash]; ok {
		grant.CreatedAt = existing.CreatedAt
	}
	s.grants[grant.ContentHash] = grant
	return nil
}

// Len reports the stored row count.
func (s *GrantStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.grants)
}

// Get returns the grant stored under hash.
func (s *GrantStore) Get(hash string) (harvest.Grant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	grant, ok := s.grants[hash]
	return grant, ok
}

// All returns a copy of every stored grant.
func (s *GrantStore) All() []harvest.Grant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]harvest.Grant, 0, len(s.grants))
	for _, grant := range s.grants {
		out = append(out, grant)
	}
	return out
}
