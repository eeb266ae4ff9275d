// Package main hosts the harvester service entrypoint.
//
// Architecture overview:
//   - HTTP API: internal/api.Server exposes health, metrics and the trigger endpoints. POST /v1/harvest/source runs
//     one source by id; POST /v1/harvest/all fans a run over every eligible source. Both are protected by the
//     X-Harvester-Secret shared secret.
//   - Scheduler: internal/scheduler partitions eligible sources into fixed-size batches (scheduler.batch_size, default
//     3), runs each batch concurrently on plain goroutines with a WaitGroup, and sleeps a pacing delay between
//     batches so target sites never see more than a batch of simultaneous requests.
//   - Pipeline: internal/pipeline.Runner claims a source with a conditional status update, fetches the page through
//     the Colly-based fetcher (or the Chromedp headless fetcher when a source carries the render=headless parser
//     hint), resolves the hostname's extraction rule, normalizes each raw record, hashes its identity fields and
//     upserts it. Per-record failures are logged and skipped; fetch failures mark the source errored.
//   - Extraction: internal/extract maps hostnames to rules. Known Ukrainian funding portals get dedicated rules; any
//     other hostname falls back to a keyword-driven generic rule bounded to 20 records.
//   - Persistence & fanout: grants and sources live in Postgres via pgx (or in-memory stores when no DSN is set).
//     Raw page snapshots are written best effort to the configured blob store (memory/GCS) and a compact Pub/Sub
//     event is published after every source run when a topic is configured.
//   - Configuration & plumbing: Viper populates config from env/files under the HARVESTER_ prefix; zap provides
//     structured logging; Prometheus metrics are exported via the telemetry middleware and the /metrics handler.
//
// Operational notes:
//   - Concurrency model: batch fan-out with strict batch boundaries; a source is never harvested by two runs at once
//     because the claim is a conditional database update. Shutdown is coordinated via context cancellation from main
//     through the scheduler into in-flight fetches.
//   - Rate limiting/backoff: the HTTP fetcher retries with a linear capped backoff and identifies itself with a
//     polite User-Agent. Inter-batch pacing is the only cross-source throttle; there is no per-domain limiter.
//   - Observability: zap logs carry source ids and URLs at key transitions; Prometheus counters/histograms track
//     fetch attempts, upserts, skipped records and run durations.
//
// Quick checklist:
//   - Configure env vars: HARVESTER_AUTH_SECRET (required), HARVESTER_SERVER_PORT, HARVESTER_DB_DSN,
//     HARVESTER_SCHEDULER_BATCH_SIZE, HARVESTER_STORAGE_PROVIDER=memory/gcs, HARVESTER_PUBLISHER_PROVIDER,
//     HARVESTER_HEADLESS_ENABLED.
//   - Run locally: go run ./cmd/harvester -config config.yaml (or rely solely on env overrides).
//   - The process reacts to SIGTERM with a graceful HTTP drain; in-flight runs are bounded by the run timeout.
package main
