package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gcstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/grantwatch/harvester/internal/api"
	"github.com/grantwatch/harvester/internal/clock/system"
	"github.com/grantwatch/harvester/internal/config"
	"github.com/grantwatch/harvester/internal/extract"
	"github.com/grantwatch/harvester/internal/fetcher/headless"
	"github.com/grantwatch/harvester/internal/fetcher/httpfetch"
	"github.com/grantwatch/harvester/internal/harvest"
	"github.com/grantwatch/harvester/internal/logging"
	"github.com/grantwatch/harvester/internal/normalize"
	"github.com/grantwatch/harvester/internal/pipeline"
	pubmemory "github.com/grantwatch/harvester/internal/publisher/memory"
	pubgcp "github.com/grantwatch/harvester/internal/publisher/pubsub"
	"github.com/grantwatch/harvester/internal/scheduler"
	"github.com/grantwatch/harvester/internal/storage/gcs"
	"github.com/grantwatch/harvester/internal/storage/memory"
	"github.com/grantwatch/harvester/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("harvester exited", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	grants, sources, cleanup, err := buildStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	blobs, closeBlobs, err := buildBlobStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeBlobs()

	publisher, closePublisher, err := buildPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	fetcher := httpfetch.New(httpfetch.Config{
		UserAgent:      cfg.Fetch.UserAgent,
		Timeout:        cfg.FetchTimeout(),
		MaxRetries:     cfg.Fetch.MaxRetries,
		BackoffInitial: time.Duration(cfg.Fetch.BackoffInitialMs) * time.Millisecond,
		BackoffStep:    time.Duration(cfg.Fetch.BackoffStepMs) * time.Millisecond,
		BackoffMax:     time.Duration(cfg.Fetch.BackoffMaxMs) * time.Millisecond,
	})

	var headlessFetcher harvest.Fetcher = headless.NewNoop()
	if cfg.Headless.Enabled {
		chrome, err := headless.NewChromedp(headless.Config{
			MaxParallel:       cfg.Headless.MaxParallel,
			UserAgent:         cfg.Fetch.UserAgent,
			NavigationTimeout: time.Duration(cfg.Headless.NavTimeoutSec) * time.Second,
		})
		if err != nil {
			return fmt.Errorf("init headless fetcher: %w", err)
		}
		defer chrome.Close()
		headlessFetcher = chrome
	}

	clock := system.New()
	runner := pipeline.New(
		fetcher,
		headlessFetcher,
		extract.Default(),
		normalize.New(cfg.Harvest.DefaultCurrency, clock),
		grants,
		sources,
		blobs,
		publisher,
		clock,
		pipeline.Config{
			Snapshots:      cfg.Harvest.Snapshots,
			SnapshotPrefix: cfg.Storage.Prefix,
			EventTopic:     cfg.Harvest.EventTopic,
		},
		logger,
	)
	sched := scheduler.New(sources, runner, cfg.Scheduler.BatchSize, cfg.Pacing(), logger)

	server := api.New(sources, runner, sched, api.Config{
		Secret:     cfg.Auth.Secret,
		RunTimeout: time.Duration(cfg.Scheduler.RunTimeoutS) * time.Second,
	}, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("harvester listening", zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func buildStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (harvest.GrantStore, harvest.SourceStore, func(), error) {
	if cfg.DB.DSN == "" {
		logger.Warn("no database configured, using in-memory stores")
		return memory.NewGrantStore(), memory.NewSourceStore(), func() {}, nil
	}

	pool, err := postgres.NewPool(ctx, postgres.Config{
		DSN:      cfg.DB.DSN,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	grants, err := postgres.NewGrantStore(pool)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	sources, err := postgres.NewSourceStore(pool)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	return grants, sources, pool.Close, nil
}

func buildBlobStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (harvest.BlobStore, func(), error) {
	switch cfg.Storage.Provider {
	case "gcs":
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("create gcs client: %w", err)
		}
		store, err := gcs.New(ctx, client, gcs.Config{Bucket: cfg.Storage.GCSBucket})
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return store, func() { _ = client.Close() }, nil
	default:
		logger.Info("using in-memory blob store")
		return memory.NewBlobStore(), func() {}, nil
	}
}

func buildPublisher(ctx context.Context, cfg config.Config, logger *zap.Logger) (harvest.Publisher, func(), error) {
	switch cfg.Publisher.Provider {
	case "pubsub":
		pub, err := pubgcp.New(ctx, cfg.Publisher.ProjectID, cfg.Publisher.TopicName)
		if err != nil {
			return nil, nil, fmt.Errorf("create pubsub publisher: %w", err)
		}
		return pub, func() { _ = pub.Close() }, nil
	default:
		logger.Info("using in-memory publisher")
		return pubmemory.New(), func() {}, nil
	}
}
