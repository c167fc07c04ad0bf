// Package cmd provides the CLI commands for bookcafe-search.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	bookcafe "github.com/tejaspanchall/BookCafe-Backend"
	"github.com/tejaspanchall/BookCafe-Backend/internal/config"
	logpkg "github.com/tejaspanchall/BookCafe-Backend/internal/logger"
	"github.com/tejaspanchall/BookCafe-Backend/internal/metrics"
	"github.com/tejaspanchall/BookCafe-Backend/internal/version"
)

// app carries the state shared by all subcommands.
type app struct {
	env        string
	configPath string
	logLevel   string

	cfg    config.Config
	logger *zap.Logger
}

// NewRootCmd creates the root command for the bookcafe-search CLI.
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "bookcafe-search",
		Short: "Search and maintain the BookCafe catalog",
		Long: `bookcafe-search runs ranked book searches against the BookCafe catalog
and maintains its search index and result cache.

The catalog store and cache are read from config/<env>.yaml, where env
comes from --env or the ENV variable (default: local).`,
		Version:           version.String(),
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			cmd.SetContext(logpkg.ContextWithLogger(cmd.Context(), a.logger))
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	cmd.SetVersionTemplate("bookcafe-search version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&a.env, "env", config.GetEnv(), "Environment: prod, local, dev or test")
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file (default: config/<env>.yaml)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override the configured log level")

	cmd.AddCommand(newSearchCmd(a))
	cmd.AddCommand(newLoadCmd(a))
	cmd.AddCommand(newReindexCmd(a))
	cmd.AddCommand(newCacheCmd(a))
	cmd.AddCommand(newHealthCmd(a))

	return cmd
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

func (a *app) setup() error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, err = config.Load(a.env)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := a.cfg.Logging.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.logger, err = logpkg.NewLogger(a.env, level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	metrics.RegisterSearchMetrics()

	a.logger.Debug("Configuration loaded",
		zap.String("version", version.Version),
		zap.String("env", a.env),
		zap.String("db_driver", a.cfg.Database.Driver),
		zap.Bool("cache_enabled", a.cfg.Cache.Enabled),
	)
	return nil
}

// client connects to the configured catalog. Callers must Close it.
func (a *app) client(ctx context.Context) (*bookcafe.Client, error) {
	c, err := bookcafe.New(ctx, clientOptions(a.cfg, a.logger)...)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return c, nil
}

func clientOptions(cfg config.Config, logger *zap.Logger) []bookcafe.Option {
	opts := []bookcafe.Option{
		bookcafe.WithLogger(logger),
		bookcafe.WithReadinessTimeout(time.Duration(cfg.Database.ReadinessTimeout) * time.Second),
		bookcafe.WithMinQueryLength(cfg.Search.MinQueryLength),
		bookcafe.WithMinPrefixTokenLength(cfg.Search.MinPrefixTokenLength),
	}

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		opts = append(opts,
			bookcafe.WithPostgres(cfg.Database.DSN),
			bookcafe.WithMaxConns(cfg.Database.MaxConns),
		)
	case config.DriverSQLite:
		opts = append(opts, bookcafe.WithSQLite(cfg.Database.Path))
	default:
		opts = append(opts, bookcafe.WithMemory())
	}

	if !cfg.Cache.Enabled {
		return opts
	}
	opts = append(opts,
		bookcafe.WithCacheTTL(time.Duration(cfg.Cache.TTLSec)*time.Second),
		bookcafe.WithCacheKeyPrefix(cfg.Cache.KeyPrefix),
	)
	if len(cfg.Cache.Addrs) > 0 {
		opts = append(opts,
			bookcafe.WithRedisCache(cfg.Cache.Addrs, cfg.Cache.Password),
			bookcafe.WithRedisAuth(cfg.Cache.Username, cfg.Cache.DB),
		)
	}
	if cfg.Cache.LocalSize > 0 {
		opts = append(opts, bookcafe.WithLocalCache(cfg.Cache.LocalSize, 0))
	}
	return opts
}
