package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/genson"
	"github.com/aretw0/genson/internal/config"
	"github.com/aretw0/genson/internal/runtime"
	"github.com/aretw0/genson/pkg/adapters/redis"
	"github.com/aretw0/genson/pkg/domain"
	"github.com/aretw0/genson/pkg/observability"
)

// EngineOptions translates a resolved configuration into facade options.
func EngineOptions(cfg config.Config, logger *slog.Logger, hooks domain.LifecycleHooks) ([]genson.Option, error) {
	mode, err := runtime.ParseLineMode(cfg.LineMode)
	if err != nil {
		return nil, err
	}

	// 1. Logger & Hooks
	opts := []genson.Option{
		genson.WithLogger(logger),
		genson.WithLifecycleHooks(observability.LogHooks(logger).Merge(hooks)),
	}

	// 2. Limits
	opts = append(opts,
		genson.WithMaxDepth(cfg.MaxDepth),
		genson.WithMaxIterations(cfg.MaxIterations),
		genson.WithContinueCeiling(cfg.ContinueCeiling),
		genson.WithLineMode(mode),
	)
	if cfg.Seed != nil {
		opts = append(opts, genson.WithSeed(*cfg.Seed))
	}
	if cfg.Root != "" {
		opts = append(opts, genson.WithRoot(cfg.Root))
	}
	return opts, nil
}

// CreateEngine initializes an engine with standard CLI conventions.
// Without a schema path the schema is read from Redis, when configured.
func CreateEngine(cfg config.Config, logger *slog.Logger, hooks domain.LifecycleHooks) (*genson.Engine, error) {
	opts, err := EngineOptions(cfg, logger, hooks)
	if err != nil {
		return nil, err
	}

	path := cfg.Schema
	if path == "" {
		if cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("no schema: pass --schema or configure redis.addr")
		}
		opts = append(opts, genson.WithLoader(OpenRedis(cfg.Redis)))
		path = "redis"
	}

	engine, err := genson.New(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}

// OpenRedis creates the Redis loader described by cfg. The connection is
// established lazily on first use.
func OpenRedis(cfg config.RedisConfig) *redis.Loader {
	var opts []redis.Option
	if cfg.Prefix != "" {
		opts = append(opts, redis.WithPrefix(cfg.Prefix))
	}
	return redis.New(cfg.Addr, cfg.Password, cfg.DB, opts...)
}
