package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/go-tenant-auth/internal/config"
	"github.com/jrsteele09/go-tenant-auth/token/refresh"
	"github.com/jrsteele09/go-tenant-auth/token/refresh/memory"
	"github.com/jrsteele09/go-tenant-auth/token/refresh/postgres"
	refreshredis "github.com/jrsteele09/go-tenant-auth/token/refresh/redis"
	"github.com/rs/zerolog"
)

const (
	memoryCleanupInterval = time.Minute
	reapInterval          = time.Hour
)

// openRefreshRepo builds the refresh token backend named by the store driver.
// The returned func releases its connections.
func openRefreshRepo(ctx context.Context, c config.StoreConfig, logger zerolog.Logger) (refresh.Repo, func() error, error) {
	noop := func() error { return nil }

	switch driver := c.GetStoreDriver(); driver {
	case config.StoreMemory:
		return memory.New(c.GetRetention(), memoryCleanupInterval), noop, nil

	case config.StorePostgres:
		db, err := postgres.Open(ctx, c.GetPostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		repo := postgres.New(db)
		go reapExpired(ctx, repo, c.GetRetention(), reapInterval, logger)
		return repo, db.Close, nil

	case config.StoreRedis:
		client, err := refreshredis.Connect(ctx, c.GetRedisAddr(), c.GetRedisPassword(), c.GetRedisDB())
		if err != nil {
			return nil, nil, err
		}
		repo := refreshredis.New(client,
			refreshredis.WithPrefix(c.GetRedisPrefix()),
			refreshredis.WithRetention(c.GetRetention()),
		)
		return repo, client.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

type expiredDeleter interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// reapExpired deletes rows whose expiry is older than the retention window until ctx ends
func reapExpired(ctx context.Context, repo expiredDeleter, retention, interval time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := repo.DeleteExpired(ctx, now.Add(-retention))
			if err != nil {
				logger.Err(err).Msg("failed to reap expired refresh tokens")
				continue
			}
			if n > 0 {
				logger.Debug().Int64("deleted", n).Msg("reaped expired refresh tokens")
			}
		}
	}
}
