package harvest

import "time"

// SourceStatus tracks the health state of a configured source.
type SourceStatus string

const (
	SourceStatusPending    SourceStatus = "pending"
	SourceStatusProcessing SourceStatus = "processing"
	SourceStatusSuccess    SourceStatus = "success"
	SourceStatusError      SourceStatus = "error"
)

// GrantType classifies a funding opportunity.
type GrantType string

const (
	TypeGrants         GrantType = "grants"
	TypeTenders        GrantType = "tenders"
	TypeLoans          GrantType = "loans"
	TypePrivateFunding GrantType = "private-funding"
	TypeOther          GrantType = "other"
)

// Source is one configured external site to harvest. Sources are created by
// operators; the pipeline only mutates status, last_fetched_at and
// last_error_message via the SourceStore.
type Source struct {
	ID            string
	URL           string
	ParserHint    map[string]string
	Status        SourceStatus
	LastFetchedAt *time.Time
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Parser hint keys recognized by the pipeline.
const (
	HintCurrency = "currency"
	HintType     = "type"
	HintRender   = "render"
)

// Hint returns the named parser hint, or "" when absent.
func (s Source) Hint(key string) string {
	if s.ParserHint == nil {
		return ""
	}
	return s.ParserHint[key]
}

// RawRecord is the ephemeral output of one extraction-rule invocation.
// Everything except Title is optional; the Normalizer fills the gaps.
type RawRecord struct {
	Title       string
	URL         string
	Description string
	Deadline    string
	Amount      *float64
	Currency    string
	TypeHint    GrantType
	Tags        []string
}

// Grant is the normalized, storage-ready funding opportunity. ContentHash is
// the sole identity key: hash-equal grants collapse to one stored row.
type Grant struct {
	Title       string
	URL         string
	Description string
	Deadline    *time.Time
	Amount      *float64
	Currency    string
	Type        GrantType
	Tags        []string
	ContentHash string
	SourceID    string
	SourceURL   string
	SnapshotURI string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FetchResult is the body and metadata of a successful fetch.
type FetchResult struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
	Attempts   int
}

// RunReport aggregates the outcome of one scheduler run.
type RunReport struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Grants    int `json:"grants"`
}

// SourceRunEvent is published after every per-source pipeline run.
type SourceRunEvent struct {
	SourceID   string    `json:"source_id"`
	SourceURL  string    `json:"source_url"`
	Status     string    `json:"status"`
	Grants     int       `json:"grants"`
	FinishedAt time.Time `json:"finished_at"`
}
