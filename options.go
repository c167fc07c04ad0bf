package bookcafe

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Catalog drivers.
const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
	driverMemory   = "memory"
)

// DefaultMinQueryLength drops one-character queries, as the catalog API does.
const DefaultMinQueryLength = 2

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "postgres", "sqlite" or "memory"
	dsn      string
	path     string
	maxConns int32

	readinessTimeout time.Duration

	cacheAddrs    []string
	cacheUsername string
	cachePassword string
	cacheDB       int
	cacheTTL      time.Duration
	cachePrefix   string
	localSize     int
	localTTL      time.Duration

	minQueryLength       int
	minPrefixTokenLength int
	importChunkSize      int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithPostgres stores the catalog in PostgreSQL. The schema is migrated on connect.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverPostgres
		c.dsn = dsn
	})
}

// WithMaxConns caps the PostgreSQL connection pool.
func WithMaxConns(n int32) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxConns = n
	})
}

// WithSQLite stores the catalog in a SQLite file.
// An empty path or ":memory:" keeps the database in memory.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverSQLite
		c.path = path
	})
}

// WithMemory keeps the catalog in an in-process index. This is the default.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverMemory
	})
}

// WithReadinessTimeout bounds how long New waits for the catalog store.
// Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithRedisCache caches ranked results in Redis.
func WithRedisCache(addrs []string, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = addrs
		c.cachePassword = password
	})
}

// WithRedisAuth selects the Redis ACL user and logical database.
func WithRedisAuth(username string, db int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheUsername = username
		c.cacheDB = db
	})
}

// WithLocalCache keeps up to size ranked results in process memory for ttl.
// A zero ttl reuses the shared cache TTL.
func WithLocalCache(size int, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.localSize = size
		c.localTTL = ttl
	})
}

// WithCacheTTL sets how long cached results live. Default: 1h.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithCacheKeyPrefix namespaces cache keys. Default: "books:search:".
func WithCacheKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cachePrefix = prefix
	})
}

// WithMinQueryLength sets the shortest normalized query that is searched.
// Shorter queries return no results. Default: 2.
func WithMinQueryLength(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.minQueryLength = n
	})
}

// WithMinPrefixTokenLength keeps tokens shorter than n out of the prefix
// text clause. They still take part in fuzzy matching. Default: 1.
func WithMinPrefixTokenLength(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.minPrefixTokenLength = n
	})
}

// WithImportChunkSize sets how many books Import writes per transaction.
// Default: 100.
func WithImportChunkSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.importChunkSize = n
	})
}

// WithLogger enables structured logging. Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers search and catalog metrics on reg.
// Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
