package hub

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/storefront/pkg/httpserver"
	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/notifications"
	"github.com/dmitrymomot/storefront/pkg/notifications/pgstore"
	"github.com/dmitrymomot/storefront/pkg/pg"
	"github.com/dmitrymomot/storefront/pkg/redis"
)

// Run builds a hub from cfg and serves it until ctx is cancelled. Postgres
// and Redis are used when their connection URLs are set. A nil listener
// listens on cfg.HTTP.Addr. ready, when set, receives the hub once it serves.
func Run(ctx context.Context, cfg Config, ln net.Listener, log *slog.Logger, ready func(*Hub)) error {
	if log == nil {
		log = slog.Default()
	}
	if cfg.JWTSecret == "" {
		return ErrMissingJWTSecret
	}

	opts := []Option{WithLogger(log)}
	var cleanup []func()
	defer func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}()

	if cfg.Postgres.ConnectionString != "" {
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		cleanup = append(cleanup, pool.Close)
		if err := pg.Migrate(ctx, pool, pgstore.Migrations, pgstore.MigrationsDir, cfg.Postgres, log); err != nil {
			return err
		}
		opts = append(opts,
			WithStorage(pgstore.New(pool)),
			WithHealthCheck("postgres", pg.Healthcheck(pool)),
		)
		log.LogAttrs(ctx, slog.LevelInfo, "Using Postgres notification storage")
	} else {
		log.LogAttrs(ctx, slog.LevelInfo, "PG_CONN_URL not set, using in-memory notification storage")
	}

	var relay *notifications.RedisDeliverer
	if cfg.Redis.ConnectionURL != "" {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		cleanup = append(cleanup, func() { _ = client.Close() })
		relay = notifications.NewRedisDeliverer(client, notifications.WithRedisLogger(log))
		opts = append(opts,
			WithDeliverer(relay),
			WithHealthCheck("redis", redis.Healthcheck(client)),
		)
		log.LogAttrs(ctx, slog.LevelInfo, "Relaying notifications through Redis")
	}

	h, err := New(cfg, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	if ln == nil {
		ln, err = net.Listen("tcp", cfg.HTTP.Addr)
		if err != nil {
			return errors.Join(httpserver.ErrStart, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log)).Serve(gctx, ln, h.Handler())
	})
	if relay != nil {
		g.Go(func() error {
			return relay.Relay(gctx, h.Feeds())
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return h.Close()
	})

	if ready != nil {
		ready(h)
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.LogAttrs(context.Background(), slog.LevelError, "Hub stopped", logger.Error(err))
		return err
	}
	return nil
}
