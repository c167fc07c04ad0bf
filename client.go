package bookcafe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tejaspanchall/BookCafe-Backend/internal/db"
	"github.com/tejaspanchall/BookCafe-Backend/internal/db/memory"
	"github.com/tejaspanchall/BookCafe-Backend/internal/db/postgres"
	dbredis "github.com/tejaspanchall/BookCafe-Backend/internal/db/redis"
	"github.com/tejaspanchall/BookCafe-Backend/internal/db/sqlite"
	dombatch "github.com/tejaspanchall/BookCafe-Backend/internal/domain/batch"
	dombook "github.com/tejaspanchall/BookCafe-Backend/internal/domain/book"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/request"
	"github.com/tejaspanchall/BookCafe-Backend/internal/metrics"
	bookrepo "github.com/tejaspanchall/BookCafe-Backend/internal/repository/book"
	searchrepo "github.com/tejaspanchall/BookCafe-Backend/internal/repository/search"
	"github.com/tejaspanchall/BookCafe-Backend/internal/repository/searchcache"
	cataloguc "github.com/tejaspanchall/BookCafe-Backend/internal/usecase/catalog"
	healthuc "github.com/tejaspanchall/BookCafe-Backend/internal/usecase/health"
	searchuc "github.com/tejaspanchall/BookCafe-Backend/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, replaced by mocks in tests.
type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) ([]string, error)
}

type catalogUseCase interface {
	Get(ctx context.Context, id string) (dombook.Book, error)
	Count(ctx context.Context) (int, error)
	Put(ctx context.Context, books ...dombook.Book) error
	Import(ctx context.Context, books []dombook.Book) []dombatch.Result
	Delete(ctx context.Context, ids ...string) error
	Reindex(ctx context.Context) (int, error)
	InvalidateCache(ctx context.Context) (int, error)
}

// migrator is implemented by stores whose schema is applied after connect.
type migrator interface {
	Migrate(ctx context.Context) error
}

// Client is the bookcafe entry point.
type Client struct {
	store          db.Catalog
	kv             db.KVStore // nil without a shared cache
	searchSvc      searchUseCase
	catalogSvc     catalogUseCase
	healthSvc      healthUseCase
	minQueryLength int
	obs            *observer
}

// New creates a Client and connects to the catalog store.
// The provided context is used for the readiness check and migrations.
// An unreachable shared cache is logged and skipped; search still works.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		driver:           driverMemory,
		readinessTimeout: defaultReadinessTimeout,
		minQueryLength:   DefaultMinQueryLength,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := db.WaitForReady(ctx, store, cfg.readinessTimeout); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("bookcafe: catalog not ready: %w", err)
	}
	if m, ok := store.(migrator); ok {
		if err := m.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("bookcafe: migrate catalog: %w", err)
		}
	}

	kv := createCacheStore(cfg, obs.logger)
	return wireClient(store, kv, cfg, obs), nil
}

func createStore(ctx context.Context, cfg *clientConfig) (db.Catalog, error) {
	switch cfg.driver {
	case driverPostgres:
		if cfg.dsn == "" {
			return nil, errors.New("bookcafe: postgres DSN required (use WithPostgres)")
		}
		s, err := postgres.NewStore(ctx, postgres.Config{DSN: cfg.dsn, MaxConns: cfg.maxConns})
		if err != nil {
			return nil, fmt.Errorf("bookcafe: create postgres store: %w", err)
		}
		return s, nil
	case driverSQLite:
		s, err := sqlite.Open(ctx, cfg.path)
		if err != nil {
			return nil, fmt.Errorf("bookcafe: create sqlite store: %w", err)
		}
		return s, nil
	case driverMemory:
		s, err := memory.NewStore()
		if err != nil {
			return nil, fmt.Errorf("bookcafe: create memory store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("bookcafe: unknown driver %q", cfg.driver)
	}
}

func createCacheStore(cfg *clientConfig, logger *zap.Logger) db.KVStore {
	if len(cfg.cacheAddrs) == 0 {
		return nil
	}
	s, err := dbredis.NewStore(dbredis.Config{
		Addrs:    cfg.cacheAddrs,
		Username: cfg.cacheUsername,
		Password: cfg.cachePassword,
		DB:       cfg.cacheDB,
	})
	if err != nil {
		logger.Warn("Shared result cache unavailable, continuing without it",
			zap.Strings("addrs", cfg.cacheAddrs),
			zap.Error(err),
		)
		return nil
	}
	return s
}

func wireClient(store db.Catalog, kv db.KVStore, cfg *clientConfig, obs *observer) *Client {
	searchSvc := searchuc.New(
		searchrepo.New(store),
		searchuc.Config{MinPrefixTokenLength: cfg.minPrefixTokenLength},
		obs.logger,
	)

	var searcher searchUseCase = searchSvc
	var invalidator cataloguc.Invalidator
	if kv != nil || cfg.localSize > 0 {
		cache := searchcache.New(searchSvc, kv, searchcache.Config{
			KeyPrefix: cfg.cachePrefix,
			TTL:       cfg.cacheTTL,
			LocalSize: cfg.localSize,
			LocalTTL:  cfg.localTTL,
		}, metrics.SearchCacheTotal, obs.logger)
		searcher = cache
		invalidator = cache
	}

	catalogSvc := cataloguc.New(bookrepo.New(store), invalidator, obs.logger)
	if cfg.importChunkSize > 0 {
		catalogSvc = catalogSvc.WithImportChunkSize(cfg.importChunkSize)
	}

	var cachePinger healthuc.Pinger
	if kv != nil {
		cachePinger = kv
	}

	return &Client{
		store:          store,
		kv:             kv,
		searchSvc:      searcher,
		catalogSvc:     catalogSvc,
		healthSvc:      healthuc.New(store, cachePinger),
		minQueryLength: cfg.minQueryLength,
		obs:            obs,
	}
}

// Close releases all resources.
func (c *Client) Close() error {
	if c.kv != nil {
		c.kv.Close()
	}
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			return fmt.Errorf("close catalog: %w", err)
		}
	}
	return nil
}

// Ping checks catalog connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
