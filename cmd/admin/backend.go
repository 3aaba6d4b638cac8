package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/storeadmin/pkg/config"
	"github.com/example/storeadmin/pkg/orders"
	"github.com/example/storeadmin/pkg/repository"
)

type backend struct {
	store   orders.Store
	feed    orders.ChangeFeed
	closers []func()
}

func (b *backend) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackend wires the order store and change feed selected in cfg.
func openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backend, error) {
	b := &backend{}
	channel := cfg.ChangeFeed.Channel

	var (
		publisher repository.Publisher
		redisFeed *repository.RedisChangeFeed
	)
	if cfg.ChangeFeed.Driver == "redis" {
		redisFeed = repository.NewRedisChangeFeed(repository.NewRedisClient(&cfg.Redis), channel, logger)
		if err := redisFeed.Ping(ctx); err != nil {
			logger.Warn("Redis connection failed", zap.Error(err))
		} else {
			logger.Info("Redis connected successfully")
		}
		b.closers = append(b.closers, func() { _ = redisFeed.Close() })
		b.feed = redisFeed
		publisher = redisFeed
	}

	switch cfg.Store.Driver {
	case "memory":
		mem := repository.NewMemoryStore()
		b.store = mem
		if cfg.ChangeFeed.Driver == "memory" {
			b.feed = mem
		}
		return b, nil

	case "mysql", "postgres":
		db, err := repository.OpenDB(cfg)
		if err != nil {
			b.close()
			return nil, err
		}
		gs := repository.NewGormStore(db, publisher, logger)
		b.closers = append(b.closers, func() { _ = gs.Close() })
		if err := gs.Migrate(ctx, channel); err != nil {
			b.close()
			return nil, err
		}
		b.store = gs

		if cfg.ChangeFeed.Driver == "postgres" {
			pool, err := repository.NewPgPool(ctx, cfg.Postgres.DSN)
			if err != nil {
				b.close()
				return nil, err
			}
			b.closers = append(b.closers, pool.Close)
			b.feed = repository.NewPgChangeFeed(pool, channel, logger)
		}
		return b, nil

	default:
		b.close()
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
