package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geocoder89/pupsorders/internal/config"
	"github.com/geocoder89/pupsorders/internal/db"
	"github.com/geocoder89/pupsorders/internal/observability"
	"github.com/geocoder89/pupsorders/internal/repo/memory"
	"github.com/geocoder89/pupsorders/internal/repo/mongodb"
	"github.com/geocoder89/pupsorders/internal/repo/postgres"
	"github.com/geocoder89/pupsorders/internal/service"
)

type userStore interface {
	service.UserStore
	Ping(ctx context.Context) error
}

// openStore connects the configured backend. The returned close func is never nil.
func openStore(ctx context.Context, cfg config.Config, prom *observability.Prom, log *slog.Logger) (userStore, func(), error) {
	switch cfg.StoreDriver {
	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return nil, func() {}, fmt.Errorf("postgres connect: %w", err)
		}
		if err := db.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, func() {}, fmt.Errorf("postgres schema: %w", err)
		}
		log.Info("user store ready", "driver", "postgres")
		return postgres.NewUsersRepo(pool, prom), pool.Close, nil

	case "mongo", "mongodb":
		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, func() {}, fmt.Errorf("mongo connect: %w", err)
		}
		closeFn := func() {
			cctx, cancel := config.WithTimeout(context.Background(), cfg.StoreTimeout)
			defer cancel()
			if err := client.Disconnect(cctx); err != nil {
				log.Error("mongo disconnect failed", "err", err)
			}
		}

		repo := mongodb.NewUsersRepo(client.Database(cfg.MongoDB), prom)
		if err := repo.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, func() {}, fmt.Errorf("mongo indexes: %w", err)
		}
		log.Info("user store ready", "driver", "mongo", "database", cfg.MongoDB)
		return repo, closeFn, nil

	case "memory":
		log.Warn("using in-memory user store; data is lost on restart")
		return memory.NewUsersRepo(), func() {}, nil

	default:
		return nil, func() {}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
