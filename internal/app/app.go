// Package app assembles the attendance services from configuration.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/BrandonDHaskell/rollcall/internal/config"
	dbpkg "github.com/BrandonDHaskell/rollcall/internal/db"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/lock"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/service"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/store"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/store/memory"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/store/postgres"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/store/sqlite"
)

// App holds the wired services and the resources behind them.
type App struct {
	Scans   *service.ScanService
	Sync    *service.SyncService
	Reports *service.ReportService
	Persons *service.PersonService

	// Ready reports whether the event store is reachable.
	Ready func(ctx context.Context) error

	closers []func()
}

// New opens the configured store and lock backend. On error every resource
// opened so far is released.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (_ *App, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	var (
		events store.EventStore
		people store.PersonStore
		pg     *postgres.DB
	)

	switch cfg.Store {
	case "memory":
		ev := memory.NewEventStore(nil)
		events, people = ev, memory.NewPersonStore()
		a.Ready = ev.Ping
	case "sqlite":
		sqlDB, err := dbpkg.Open(ctx, dbpkg.Config{Path: cfg.DBPath})
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		a.onClose(func() { _ = sqlDB.Close() })
		writer := dbpkg.NewWorker(sqlDB)
		a.onClose(writer.Close)

		if err := seed(ctx, cfg, sqlDB, logger); err != nil {
			return nil, err
		}
		ev := sqlite.NewEventStore(sqlDB, writer, nil)
		events, people = ev, sqlite.NewPersonStore(sqlDB, writer, nil)
		a.Ready = ev.Ping
	case "postgres":
		if pg, err = a.connectPostgres(ctx, cfg); err != nil {
			return nil, err
		}
		events, people = postgres.NewEventStore(pg, nil), postgres.NewPersonStore(pg, nil)
		a.Ready = pg.Ready
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	var locker lock.Locker
	if _, ok := events.(store.DerivingAppender); ok {
		logger.Info("per-badge serialization runs in the store transaction; lock backend unused",
			zap.String("lock_backend", cfg.LockBackend))
	} else if locker, err = a.newLocker(ctx, cfg, pg); err != nil {
		return nil, err
	}

	settings := service.Settings{
		Location:     cfg.Location(),
		StoreTimeout: cfg.StoreTimeout,
		Logger:       logger,
	}
	a.Scans = service.NewScanService(events, people, locker, settings)
	a.Sync = service.NewSyncService(events, people, settings)
	a.Reports = service.NewReportService(events, people, settings)
	a.Persons = service.NewPersonService(people, settings)

	logger.Info("store ready",
		zap.String("store", cfg.Store),
		zap.String("lock_backend", cfg.LockBackend),
		zap.String("timezone", cfg.Location().String()),
	)
	return a, nil
}

func (a *App) newLocker(ctx context.Context, cfg config.Config, pg *postgres.DB) (lock.Locker, error) {
	switch cfg.LockBackend {
	case "local":
		return lock.NewKeyedMutex(), nil
	case "redis":
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.RedisAddr},
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		a.onClose(func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		return lock.NewRedisLocker(client, cfg.LockTTL), nil
	case "postgres":
		if pg == nil {
			var err error
			if pg, err = a.connectPostgres(ctx, cfg); err != nil {
				return nil, err
			}
		}
		return postgres.NewAdvisoryLocker(pg), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", cfg.LockBackend)
	}
}

func (a *App) connectPostgres(ctx context.Context, cfg config.Config) (*postgres.DB, error) {
	pg, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	a.onClose(pg.Close)
	if err := pg.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return pg, nil
}

func seed(ctx context.Context, cfg config.Config, sqlDB *sql.DB, logger *zap.Logger) error {
	if !cfg.SeedDev {
		return nil
	}
	if cfg.Env != "dev" {
		return errors.New("ROLLCALL_SEED_DEV is only allowed with ROLLCALL_ENV=dev")
	}
	if err := dbpkg.SeedDev(ctx, sqlDB, dbpkg.SeedDevOptions{}); err != nil {
		return fmt.Errorf("seed dev: %w", err)
	}
	logger.Info("dev persons seeded", zap.Int("count", len(dbpkg.DefaultDevPeople)))
	return nil
}

func (a *App) onClose(fn func()) { a.closers = append(a.closers, fn) }

// Close releases resources in reverse order of acquisition. It is safe to
// call more than once.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
