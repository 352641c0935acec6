package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dkotenko/skinarb/internal/arbitrage"
	"github.com/dkotenko/skinarb/internal/cache/memory"
	"github.com/dkotenko/skinarb/internal/cache/redis"
	"github.com/dkotenko/skinarb/internal/config"
	"github.com/dkotenko/skinarb/internal/domain"
	"github.com/dkotenko/skinarb/internal/integrator"
	"github.com/dkotenko/skinarb/internal/notify"
	"github.com/dkotenko/skinarb/internal/platform/dmarket"
	"github.com/dkotenko/skinarb/internal/report"
	"github.com/dkotenko/skinarb/internal/service"
	"github.com/dkotenko/skinarb/internal/store/postgres"
)

// Dependencies bundles everything the application modes need. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Integrator *integrator.Integrator
	Store      domain.OpportunityStore // nil when Postgres is disabled
	Archiver   service.Archiver        // nil when S3 is disabled
	Notifier   *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them with a cleanup function to be called on
// shutdown.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Market adapters ---
	primary := dmarket.NewClient(cfg.DMarket.BaseURL, cfg.DMarket.ApiKey, cfg.DMarket.ApiSecret)

	secondary := make(map[string]integrator.MarketAdapter, len(cfg.Markets.Secondary))
	for name, baseURL := range cfg.Markets.Secondary {
		// Secondary venues expose a DMarket-compatible items endpoint and
		// are queried unauthenticated.
		secondary[name] = dmarket.NewClient(baseURL, "", "")
	}

	// --- Opportunity cache: Redis when enabled, in-process otherwise ---
	var oppCache domain.OpportunityCache = memory.New()
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		oppCache = redis.NewOpportunityCache(redisClient)
	}

	deps.Integrator = integrator.New(integrator.Config{
		Primary:   primary,
		Secondary: secondary,
		Cache:     oppCache,
		Finder:    arbitrage.NewFinder(arbitrage.FinderOptions{}, logger),
		Logger:    logger,
		Fee:       cfg.Analysis.Fee,
		CacheTTL:  cfg.Analysis.CacheTTL.Duration,
	})

	// --- PostgreSQL ---
	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		deps.Store = postgres.NewOpportunityStore(pgClient.Pool())
	}

	// --- S3 report archival ---
	if cfg.S3.Enabled {
		archiver, err := report.NewArchiver(ctx, report.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.Archiver = archiver
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
