package headless

import (
	"context"
	"errors"

	"github.com/grantwatch/harvester/internal/harvest"
)

// Noop implements harvest.Fetcher but always fails, for builds where
// headless rendering is disabled.
type Noop struct{}

// NewNoop creates a new Noop fetcher.
func NewNoop() *Noop {
	return &Noop{}
}

// Fetch returns an error since this is a stub implementation.
func (Noop) Fetch(_ context.Context, _ string) (harvest.FetchResult, error) {
	return harvest.FetchResult{}, errors.New("headless fetcher not configured")
}
