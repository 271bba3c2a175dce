package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/riskibarqy/betstats/internal/catalog"
	"github.com/riskibarqy/betstats/internal/config"
	"github.com/riskibarqy/betstats/internal/domain/store"
	"github.com/riskibarqy/betstats/internal/infrastructure/quota"
	"github.com/riskibarqy/betstats/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/betstats/internal/platform/cache"
	idgen "github.com/riskibarqy/betstats/internal/platform/id"
	"github.com/riskibarqy/betstats/internal/platform/keypool"
	"github.com/riskibarqy/betstats/internal/platform/logging"
	"github.com/riskibarqy/betstats/internal/usecase"
)

// App holds the wired services one CLI command needs.
type App struct {
	Config    config.Config
	Logger    *logging.Logger
	Catalog   *catalog.Catalog
	Store     store.Store
	Pools     []*keypool.Pool
	Ingestion *usecase.IngestionService
	Dedup     *usecase.DedupService
	Standings *usecase.StandingsService
	Leagues   *usecase.LeagueService

	closers []func() error
}

// New opens the database and the quota backend, then wires every service.
func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	tracker, closeTracker, err := newQuotaTracker(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a, err := NewWithStore(cfg, postgres.NewStore(db), tracker, logger)
	if err != nil {
		_ = closeTracker()
		_ = db.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeTracker, db.Close)
	return a, nil
}

// NewWithStore wires services over an existing store and quota tracker.
func NewWithStore(cfg config.Config, st store.Store, tracker keypool.QuotaTracker, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	cat, err := catalog.Load(cfg.CatalogLeaguesPath)
	if err != nil {
		return nil, fmt.Errorf("load league catalog: %w", err)
	}
	aliases, err := catalog.LoadAliases(cfg.CatalogAliasesPath)
	if err != nil {
		return nil, fmt.Errorf("load alias table: %w", err)
	}

	sources := newSources(cfg, tracker, logger)
	ingestion := usecase.NewIngestionService(
		st,
		cat,
		usecase.NewTeamResolver(aliases),
		usecase.NewFixtureReconciler(cfg.ReconcileWindow),
		sources.chains(logger),
		idgen.NewUUIDGenerator(),
		usecase.IngestionConfig{
			DevGuard:      cfg.IsDev(),
			LiveLookahead: cfg.LiveLookahead,
			UpcomingDays:  cfg.UpcomingDays,
			RecentDays:    cfg.RecentDays,
		},
		logger,
	)

	logger.Debug("application wired",
		"leagues", len(cat.Leagues()),
		"aliases", aliases.Len(),
		"quota_backend", cfg.QuotaBackend,
	)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Catalog:   cat,
		Store:     st,
		Pools:     sources.pools(),
		Ingestion: ingestion,
		Dedup:     usecase.NewDedupService(st, logger),
		Standings: usecase.NewStandingsService(st, cfg.StandingsWorkers, logger),
		Leagues:   usecase.NewLeagueService(st, cat),
	}, nil
}

// Close releases connections in reverse opening order.
func (a *App) Close() error {
	var errs []error
	for idx := len(a.closers) - 1; idx >= 0; idx-- {
		if err := a.closers[idx](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func newQuotaTracker(ctx context.Context, cfg config.Config) (keypool.QuotaTracker, func() error, error) {
	switch cfg.QuotaBackend {
	case config.QuotaBackendRedis:
		rdb, err := quota.NewRedisClient(ctx, quota.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return quota.NewRedisTracker(rdb, cfg.ServiceName), closeRedis(rdb), nil
	default:
		return quota.NewMemoryTracker(cache.NewCounters()), func() error { return nil }, nil
	}
}

func closeRedis(rdb *redis.Client) func() error {
	return func() error {
		if err := rdb.Close(); err != nil {
			return fmt.Errorf("close redis: %w", err)
		}
		return nil
	}
}
