// Package pipeline executes the per-source harvest sequence: claim, fetch,
// extract, normalize, hash, upsert, report.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/grantwatch/harvester/internal/harvest"
	"github.com/grantwatch/harvester/internal/normalize"
	"github.com/grantwatch/harvester/internal/telemetry"
)

// Config controls snapshot and event behavior.
type Config struct {
	Snapshots      bool
	SnapshotPrefix string
	EventTopic     string
}

// Runner runs one source pipeline end to end. Blob store and publisher are
// optional; when nil the snapshot/event steps are skipped.
type Runner struct {
	fetcher    harvest.Fetcher
	headless   harvest.Fetcher
	registry   harvest.Registry
	normalizer *normalize.Normalizer
	grants     harvest.GrantStore
	sources    harvest.SourceStore
	blobs      harvest.BlobStore
	publisher  harvest.Publisher
	clock      harvest.Clock
	cfg        Config
	logger     *zap.Logger
}

// New constructs a Runner.
func New(
	fetcher harvest.Fetcher,
	headless harvest.Fetcher,
	registry harvest.Registry,
	normalizer *normalize.Normalizer,
	grants harvest.GrantStore,
	sources harvest.SourceStore,
	blobs harvest.BlobStore,
	publisher harvest.Publisher,
	clock harvest.Clock,
	cfg Config,
	logger *zap.Logger,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SnapshotPrefix == "" {
		cfg.SnapshotPrefix = "snapshots"
	}
	return &Runner{
		fetcher:    fetcher,
		headless:   headless,
		registry:   registry,
		normalizer: normalizer,
		grants:     grants,
		sources:    sources,
		blobs:      blobs,
		publisher:  publisher,
		clock:      clock,
		cfg:        cfg,
		logger:     logger,
	}
}

// RunSource claims and processes one source, returning the number of grants
// upserted. Per-record failures are logged and skipped; only claim, fetch and
// parse failures are terminal for the source.
func (r *Runner) RunSource(ctx context.Context, src harvest.Source) (int, error) {
	claimed, err := r.sources.MarkProcessing(ctx, src.ID)
	if err != nil {
		return 0, fmt.Errorf("claim source %s: %w", src.ID, err)
	}
	if !claimed {
		return 0, harvest.ErrSourceBusy
	}

	start := r.clock.Now()
	result, err := r.fetcherFor(src).Fetch(ctx, src.URL)
	if err != nil {
		telemetry.ObserveFetch("error", fetchAttempts(err))
		r.failSource(ctx, src, start, err)
		return 0, err
	}
	telemetry.ObserveFetch("success", result.Attempts)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(result.Body))
	if err != nil {
		parseErr := fmt.Errorf("parse content of %s: %w", src.URL, err)
		r.failSource(ctx, src, start, parseErr)
		return 0, parseErr
	}

	rule := r.registry.Resolve(hostOf(src.URL))
	records := rule(doc, src)
	snapshotURI := r.snapshot(ctx, src, result.Body)

	count := 0
	for _, raw := range records {
		if strings.TrimSpace(raw.Title) == "" {
			continue
		}
		grant := r.normalizer.Normalize(raw, src)
		grant.SnapshotURI = snapshotURI
		if err := r.grants.Upsert(ctx, grant); err != nil {
			telemetry.ObserveRecordSkipped()
			r.logger.Warn("grant upsert failed",
				zap.String("source_id", src.ID),
				zap.String("content_hash", grant.ContentHash),
				zap.Error(err))
			continue
		}
		count++
	}
	telemetry.ObserveGrantsUpserted(count)

	if err := r.sources.MarkSuccess(ctx, src.ID, r.clock.Now()); err != nil {
		r.logger.Error("mark success failed", zap.String("source_id", src.ID), zap.Error(err))
	}
	telemetry.ObserveSourceRun("success", r.clock.Now().Sub(start))
	r.publishEvent(ctx, src, "success", count)

	r.logger.Info("source harvested",
		zap.String("source_id", src.ID),
		zap.String("url", src.URL),
		zap.Int("records", len(records)),
		zap.Int("grants", count))
	return count, nil
}

// fetcherFor selects the headless fetcher when the source opted in and one
// is configured.
func (r *Runner) fetcherFor(src harvest.Source) harvest.Fetcher {
	if r.headless != nil && src.Hint(harvest.HintRender) == "headless" {
		return r.headless
	}
	return r.fetcher
}

func (r *Runner) failSource(ctx context.Context, src harvest.Source, start time.Time, cause error) {
	if err := r.sources.MarkError(ctx, src.ID, cause.Error()); err != nil {
		r.logger.Error("mark error failed", zap.String("source_id", src.ID), zap.Error(err))
	}
	telemetry.ObserveSourceRun("error", r.clock.Now().Sub(start))
	r.publishEvent(ctx, src, "error", 0)
	r.logger.Warn("source harvest failed",
		zap.String("source_id", src.ID),
		zap.String("url", src.URL),
		zap.Error(cause))
}

// snapshot stores the raw page best effort; failures never fail the source.
func (r *Runner) snapshot(ctx context.Context, src harvest.Source, body []byte) string {
	if !r.cfg.Snapshots || r.blobs == nil {
		return ""
	}
	path := fmt.Sprintf("%s/%s/%d.html", r.cfg.SnapshotPrefix, src.ID, r.clock.Now().Unix())
	uri, err := r.blobs.PutObject(ctx, path, "text/html; charset=utf-8", bytes.NewReader(body))
	if err != nil {
		r.logger.Warn("snapshot store failed", zap.String("source_id", src.ID), zap.Error(err))
		return ""
	}
	return uri
}

// publishEvent emits a run-completion event best effort.
func (r *Runner) publishEvent(ctx context.Context, src harvest.Source, status string, grants int) {
	if r.publisher == nil {
		return
	}
	event := harvest.SourceRunEvent{
		SourceID:   src.ID,
		SourceURL:  src.URL,
		Status:     status,
		Grants:     grants,
		FinishedAt: r.clock.Now(),
	}
	if _, err := r.publisher.Publish(ctx, r.cfg.EventTopic, event); err != nil {
		r.logger.Warn("event publish failed", zap.String("source_id", src.ID), zap.Error(err))
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func fetchAttempts(err error) int {
	var fetchErr *harvest.FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Attempts
	}
	return 1
}
