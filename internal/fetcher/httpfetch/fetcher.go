// Package httpfetch implements harvest.Fetcher using the Colly collector,
// with bounded retries and a monotonically increasing backoff.
package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/grantwatch/harvester/internal/harvest"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "grantwatch-harvester/1.0 (+https://github.com/grantwatch/harvester)"
	acceptHeader     = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptLanguage   = "uk,en;q=0.8"
)

// Config controls fetch behavior.
type Config struct {
	UserAgent      string
	Timeout        time.Duration
	MaxRetries     int
	BackoffInitial time.Duration
	BackoffStep    time.Duration
	BackoffMax     time.Duration
}

// Fetcher executes polite, identifiable HTTP GETs with retry.
type Fetcher struct {
	cfg           Config
	transport     http.RoundTripper
	baseCollector *colly.Collector
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BackoffInitial <= 0 {
		cfg.BackoffInitial = 250 * time.Millisecond
	}
	if cfg.BackoffStep <= 0 {
		cfg.BackoffStep = 250 * time.Millisecond
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = 5 * time.Second
	}

	c := colly.NewCollector(colly.Async(false))
	transport := newHTTPTransport()
	c.WithTransport(transport)

	return &Fetcher{
		cfg:           cfg,
		transport:     transport,
		baseCollector: c,
	}
}

// Fetch retrieves url, retrying up to MaxRetries attempts. Each attempt is
// bounded by the configured timeout; the returned FetchResult records how
// many attempts were made.
func (f *Fetcher) Fetch(ctx context.Context, url string) (harvest.FetchResult, error) {
	var lastErr error
	for attempt := 1; attempt <= f.cfg.MaxRetries; attempt++ {
		result, err := f.attempt(ctx, url)
		if err == nil {
			result.Attempts = attempt
			return result, nil
		}
		lastErr = err
		if !f.shouldRetry(err, attempt) {
			break
		}
		if err := sleepContext(ctx, f.backoff(attempt)); err != nil {
			lastErr = err
			break
		}
	}
	return harvest.FetchResult{}, &harvest.FetchError{
		URL:      url,
		Attempts: f.cfg.MaxRetries,
		Err:      lastErr,
	}
}

func (f *Fetcher) attempt(ctx context.Context, url string) (harvest.FetchResult, error) {
	var (
		result   harvest.FetchResult
		fetchErr error
	)
	start := time.Now()

	collector := f.baseCollector.Clone()
	collector.UserAgent = f.cfg.UserAgent
	collector.AllowURLRevisit = true
	collector.IgnoreRobotsTxt = true
	collector.SetRequestTimeout(f.cfg.Timeout)
	collector.WithTransport(f.transport)

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", acceptHeader)
		r.Headers.Set("Accept-Language", acceptLanguage)
	})
	collector.OnResponse(func(r *colly.Response) {
		result = harvest.FetchResult{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return harvest.FetchResult{}, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return harvest.FetchResult{}, fmt.Errorf("visit %s: %w", url, err)
		}
		if fetchErr != nil {
			return harvest.FetchResult{}, fmt.Errorf("response %s: %w", url, fetchErr)
		}
		return result, nil
	}
}

// shouldRetry decides whether another attempt is worthwhile. Network errors,
// timeouts and non-success statuses are retryable; caller cancellation is not.
func (f *Fetcher) shouldRetry(err error, attempt int) bool {
	if err == nil || attempt >= f.cfg.MaxRetries {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// backoff yields a delay that grows linearly with the attempt number.
func (f *Fetcher) backoff(attempt int) time.Duration {
	delay := f.cfg.BackoffInitial + f.cfg.BackoffStep*time.Duration(attempt-1)
	if delay > f.cfg.BackoffMax {
		delay = f.cfg.BackoffMax
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
