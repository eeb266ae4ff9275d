package harvest

import (
	"context"
	"io"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher retrieves raw remote content for one URL. Implementations handle
// their own timeout and retry behavior and are stateless.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchResult, error)
}

// Rule converts one source's parsed page into zero or more raw records.
// Rules must be total: malformed fragments yield fewer records, never a panic
// or an error.
type Rule func(doc *goquery.Document, src Source) []RawRecord

// Registry resolves a hostname to its extraction rule, falling back to a
// generic rule when no site-specific rule is registered.
type Registry interface {
	Register(hostname string, rule Rule)
	Resolve(hostname string) Rule
}

// GrantStore inserts or updates a grant keyed by its content hash. Repeated
// upserts of hash-equal grants never grow the row count beyond one.
type GrantStore interface {
	Upsert(ctx context.Context, grant Grant) error
}

// SourceStore exposes the per-source state machine. MarkProcessing is an
// atomic claim: it reports false when another run already holds the source.
type SourceStore interface {
	ListEligible(ctx context.Context) ([]Source, error)
	GetSource(ctx context.Context, id string) (Source, error)
	MarkProcessing(ctx context.Context, id string) (bool, error)
	MarkSuccess(ctx context.Context, id string, fetchedAt time.Time) error
	MarkError(ctx context.Context, id string, message string) error
}

// BlobStore persists raw-content snapshots and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, r io.Reader) (string, error)
}

// Publisher pushes run-completion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
