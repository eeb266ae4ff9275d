// Package scheduler fans a run over all eligible sources in fixed-size
// concurrent batches with a pacing delay between batches.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/grantwatch/harvester/internal/harvest"
)

// SourceRunner runs one source end to end.
type SourceRunner interface {
	RunSource(ctx context.Context, src harvest.Source) (int, error)
}

// Scheduler batches eligible sources and runs each batch concurrently. A
// failing source never stops the run; it is counted and the next source
// proceeds.
type Scheduler struct {
	sources   harvest.SourceStore
	runner    SourceRunner
	batchSize int
	pacing    time.Duration
	logger    *zap.Logger
}

// New constructs a Scheduler. batchSize below 1 is coerced to 1.
func New(sources harvest.SourceStore, runner SourceRunner, batchSize int, pacing time.Duration, logger *zap.Logger) *Scheduler {
	if batchSize < 1 {
		batchSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		sources:   sources,
		runner:    runner,
		batchSize: batchSize,
		pacing:    pacing,
		logger:    logger,
	}
}

// Run lists eligible sources and processes them batch by batch. The returned
// report covers every source attempted, including failures.
func (s *Scheduler) Run(ctx context.Context) (harvest.RunReport, error) {
	var report harvest.RunReport

	sources, err := s.sources.ListEligible(ctx)
	if err != nil {
		return report, fmt.Errorf("list eligible sources: %w", err)
	}
	if len(sources) == 0 {
		s.logger.Info("no eligible sources")
		return report, nil
	}

	var mu sync.Mutex
	for i, batch := range partition(sources, s.batchSize) {
		if i > 0 {
			if err := sleepContext(ctx, s.pacing); err != nil {
				return report, err
			}
		}

		var wg sync.WaitGroup
		for _, src := range batch {
			wg.Add(1)
			go func(src harvest.Source) {
				defer wg.Done()
				count, err := s.runner.RunSource(ctx, src)
				mu.Lock()
				defer mu.Unlock()
				report.Processed++
				switch {
				case errors.Is(err, harvest.ErrSourceBusy):
					report.Failed++
					s.logger.Info("source skipped, already claimed", zap.String("source_id", src.ID))
				case err != nil:
					report.Failed++
				default:
					report.Succeeded++
					report.Grants += count
				}
			}(src)
		}
		wg.Wait()
	}

	s.logger.Info("run finished",
		zap.Int("processed", report.Processed),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Int("grants", report.Grants))
	return report, nil
}

func partition(sources []harvest.Source, size int) [][]harvest.Source {
	var batches [][]harvest.Source
	for start := 0; start < len(sources); start += size {
		end := start + size
		if end > len(sources) {
			end = len(sources)
		}
		batches = append(batches, sources[start:end])
	}
	return batches
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
