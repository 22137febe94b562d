package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/lock"
)

// AdvisoryLocker is a lock.Locker backed by session-level advisory locks, so
// every server instance sharing the database serializes the same badge.
// Each held lock pins one pooled connection until unlock.
type AdvisoryLocker struct {
	pool *pgxpool.Pool
}

func NewAdvisoryLocker(db *DB) *AdvisoryLocker {
	return &AdvisoryLocker{pool: db.Pool}
}

func (l *AdvisoryLocker) Lock(ctx context.Context, key string) (func(), error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", lock.ErrNotAcquired, key, err)
	}
	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock(hashtextextended($1, 0))", key); err != nil {
		// A cancelled wait leaves the session state unknown; drop the conn.
		_ = conn.Conn().Close(context.Background())
		conn.Release()
		return nil, fmt.Errorf("%w: %s: %w", lock.ErrNotAcquired, key, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			rctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if _, err := conn.Exec(rctx, "SELECT pg_advisory_unlock(hashtextextended($1, 0))", key); err != nil {
				_ = conn.Conn().Close(rctx)
			}
			conn.Release()
		})
	}, nil
}
