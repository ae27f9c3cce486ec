package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/gogotex/cocktails/internal/config"
	"github.com/gogotex/cocktails/internal/database"
	"github.com/gogotex/cocktails/internal/recipe/repository"
	"github.com/gogotex/cocktails/internal/recipe/service"
	"github.com/gogotex/cocktails/pkg/logger"
)

// backend is an opened document store together with the clients that must be
// released with it.
type backend struct {
	store   repository.Store
	mongo   *repository.MongoRepo
	redis   *redis.Client
	ping    func(context.Context) error
	closers []func(context.Context) error
}

// openBackend connects the store selected by cfg.Store.Backend and wraps it
// with the fetch throttle and instrumentation.
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	b := &backend{}
	var raw repository.Store
	switch cfg.Store.Backend {
	case config.BackendMemory:
		raw = repository.NewMemoryRepo()
		logger.Warnf("using the in-memory store; data is lost on exit")
	case config.BackendMongo:
		client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, client.Disconnect)
		b.ping = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		b.mongo = repository.NewMongoRepo(client.Database(cfg.MongoDB.Database))
		raw = b.mongo
		logger.Infof("connected to MongoDB database %q", cfg.MongoDB.Database)
	case config.BackendRedis:
		client, err := connectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		b.redis = client
		b.closers = append(b.closers, func(context.Context) error { return client.Close() })
		b.ping = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		raw = repository.NewRedisRepo(client, cfg.Redis.Prefix)
		logger.Infof("connected to Redis at %s", cfg.Redis.Addr())
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	throttled := repository.NewThrottled(raw, cfg.Store.FetchRPS, cfg.Store.FetchBurst)
	b.store = repository.NewInstrumented(throttled, logger.L().Named("store"))
	return b, nil
}

func connectRedis(ctx context.Context, rc config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: rc.Addr(), Password: rc.Password, DB: rc.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", rc.Addr(), err)
	}
	return client, nil
}

// newService builds the query facade over the opened store.
func newService(cfg *config.Config, b *backend) service.Service {
	return service.New(b.store,
		service.WithNativeAggregation(cfg.Store.NativeAggregation),
		service.WithLookupConcurrency(cfg.Store.LookupConcurrency),
	)
}

// Ready reports whether the underlying store answers. The memory store is
// always ready.
func (b *backend) Ready(ctx context.Context) error {
	if b.ping == nil {
		return nil
	}
	return b.ping(ctx)
}

func (b *backend) Close(ctx context.Context) error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
