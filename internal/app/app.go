// Package app constructs the service's dependency graph from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/ricky-kiva/andro-tourism-app/internal/cache"
	"github.com/ricky-kiva/andro-tourism-app/internal/config"
	"github.com/ricky-kiva/andro-tourism-app/internal/storage"
	"github.com/ricky-kiva/andro-tourism-app/internal/telemetry"
	"github.com/ricky-kiva/andro-tourism-app/internal/tourism"
)

// App holds every long-lived dependency. Fields are nil-safe only where noted.
type App struct {
	Pool       *pgxpool.Pool
	Redis      *redis.Client // nil when REDIS_URL is unset
	Feed       *cache.Feed   // nil when REDIS_URL is unset
	Hub        *storage.Hub
	Store      *storage.Store
	Client     *tourism.Client
	Registry   *prometheus.Registry
	Metrics    *telemetry.Metrics
	Repository *tourism.Repository

	log *slog.Logger
}

// Build connects to Postgres and, when configured, Redis in parallel, applies
// migrations and wires the repository.
func Build(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	a := &App{log: log}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("database connect panicked: %v", r)
			}
		}()
		pool, err := storage.Connect(gCtx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		a.Pool = pool
		return nil
	})
	if cfg.Redis.URL != "" {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("redis connect panicked: %v", r)
				}
			}()
			client, err := cache.Connect(gCtx, cfg.Redis.URL)
			if err != nil {
				return fmt.Errorf("connecting to redis: %w", err)
			}
			a.Redis = client
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.Close()
		return nil, err
	}

	n, err := storage.RunMigrations(ctx, a.Pool, cfg.Database.MigrationsDir, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	log.Info("migrations applied", "count", n)

	a.Client, err = tourism.NewClientWithURL(cfg.TourismAPI.URL,
		tourism.WithTimeout(cfg.TourismAPI.Timeout),
		tourism.WithPinnedKeys(cfg.TourismAPI.Pins...),
		tourism.WithLogger(log),
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating tourism api client: %w", err)
	}

	a.Hub = storage.NewHub()
	var storeOpts []storage.StoreOption
	if a.Redis != nil {
		a.Feed = cache.NewFeed(a.Redis, a.Hub, log)
		storeOpts = append(storeOpts, storage.WithPublisher(a.Feed))
	} else {
		log.Info("redis not configured; change feed disabled")
	}
	a.Store = storage.NewStore(a.Pool, a.Hub, log, storeOpts...)

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.Metrics = telemetry.NewMetrics(a.Registry)

	a.Repository = tourism.NewRepository(a.Store, a.Client, log,
		tourism.WithObserver(a.Metrics),
		tourism.WithWriteTimeout(cfg.FavoriteWriteTimeout),
	)

	return a, nil
}

// RunFeed relays remote store changes until ctx is done. Without Redis it
// just waits for ctx.
func (a *App) RunFeed(ctx context.Context) error {
	if a.Feed == nil {
		<-ctx.Done()
		return nil
	}
	return a.Feed.Run(ctx)
}

// RedisPinger returns nil when Redis is not configured.
func (a *App) RedisPinger() interface{ Ping(context.Context) error } {
	if a.Redis == nil {
		return nil
	}
	return cache.Pinger{Client: a.Redis}
}

// Close waits for pending favourite writes, then releases connections.
func (a *App) Close() {
	if a.Repository != nil {
		a.Repository.Wait()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.log.Warn("closing redis", "err", err)
		}
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}
