package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/r2r72/newsletter/internal/config"
	"github.com/r2r72/newsletter/internal/repository/pg"
	"github.com/r2r72/newsletter/internal/repository/redisstream"
	"github.com/r2r72/newsletter/internal/service/subscription"
)

// Compile-time checks for every sink.
var (
	_ subscription.Repository = (*pg.SubscriptionRepository)(nil)
	_ subscription.Repository = (*redisstream.Publisher)(nil)
	_ subscription.Repository = subscription.Discard{}
)

// openRepository builds the sink named in cfg. The returned func releases its
// connections.
func openRepository(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (subscription.Repository, func(), error) {
	switch cfg.Sink {
	case config.SinkDiscard, "":
		return subscription.Discard{}, func() {}, nil

	case config.SinkPostgres:
		pool, err := pg.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		db := pg.OpenSQL(pool)
		repo := pg.NewSubscriptionRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			pool.Close()
			return nil, nil, err
		}
		log.Info("postgres sink ready")
		return repo, func() {
			db.Close()
			pool.Close()
		}, nil

	case config.SinkRedis:
		client, err := redisstream.NewClient(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		log.Info("redis stream sink ready", "stream", cfg.RedisStream)
		return redisstream.NewPublisher(client, cfg.RedisStream, cfg.StreamMaxLen), func() {
			client.Close()
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown sink %q", cfg.Sink)
	}
}
