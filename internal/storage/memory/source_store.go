package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/grantwatch/harvester/internal/harvest"
)

// SourceStore keeps sources in memory with the same claim semantics as the
// Postgres store.
type SourceStore struct {
	mu      sync.Mutex
	sources map[string]harvest.Source
	order   []string
}

// NewSourceStore creates an empty in-memory source store.
func NewSourceStore() *SourceStore {
	return &SourceStore{sources: make(map[string]harvest.Source)}
}

// Add seeds a source, defaulting its status to pending.
func (s *SourceStore) Add(src harvest.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if src.Status == "" {
		src.Status = harvest.SourceStatusPending
	}
	if _, ok := s.sources[src.ID]; !ok {
		s.order = append(s.order, src.ID)
	}
	s.sources[src.ID] = src
}

// ListEligible returns every source not currently processing, in insertion
// order.
func (s *SourceStore) ListEligible(_ context.Context) ([]harvest.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []harvest.Source
	for _, id := range s.order {
		if src := s.sources[id]; src.Status != harvest.SourceStatusProcessing {
			out = append(out, src)
		}
	}
	return out, nil
}

// GetSource fetches one source by id.
func (s *SourceStore) GetSource(_ context.Context, id string) (harvest.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.sources[id]
	if !ok {
		return harvest.Source{}, fmt.Errorf("source %s not found", id)
	}
	return src, nil
}

// MarkProcessing claims the source; false means it was already processing.
func (s *SourceStore) MarkProcessing(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.sources[id]
	if !ok {
		return false, fmt.Errorf("source %s not found", id)
	}
	if src.Status == harvest.SourceStatusProcessing {
		return false, nil
	}
	src.Status = harvest.SourceStatusProcessing
	s.sources[id] = src
	return true, nil
}

// MarkSuccess records a completed run.
func (s *SourceStore) MarkSuccess(_ context.Context, id string, fetchedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.sources[id]
	if !ok {
		return fmt.Errorf("source %s not found", id)
	}
	src.Status = harvest.SourceStatusSuccess
	src.LastFetchedAt = &fetchedAt
	src.LastError = ""
	s.sources[id] = src
	return nil
}

// MarkError records a failed run with its cause.
func (s *SourceStore) MarkError(_ context.Context, id string, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.sources[id]
	if !ok {
		return fmt.Errorf("source %s not found", id)
	}
	src.Status = harvest.SourceStatusError
	src.LastError = message
	s.sources[id] = src
	return nil
}
