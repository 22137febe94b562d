package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/store"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

const scanColumns = `sequence, badge_id, device_id, presence_state, occurred_at, signal_strength, battery_level`

// The append lock uses the two-key advisory form, whose key space does not
// overlap the single-key badge locks.
const (
	appendLockClass  int32 = 0x726f6c6c // "roll"
	appendLockObject int32 = 1
)

type EventStore struct {
	pool  *pgxpool.Pool
	clock store.Clock
}

func NewEventStore(db *DB, clock store.Clock) *EventStore {
	return &EventStore{pool: db.Pool, clock: clock}
}

func scanEvent(row pgx.Row) (types.ScanEvent, error) {
	var (
		ev    types.ScanEvent
		state string
	)
	if err := row.Scan(&ev.Sequence, &ev.BadgeID, &ev.DeviceID, &state,
		&ev.OccurredAt, &ev.SignalStrength, &ev.BatteryLevel); err != nil {
		return types.ScanEvent{}, err
	}
	ev.PresenceState = types.PresenceState(state)
	ev.OccurredAt = ev.OccurredAt.UTC()
	return ev, nil
}

func (s *EventStore) LatestForBadge(ctx context.Context, badgeID string) (*types.ScanEvent, error) {
	ev, err := latestForBadge(ctx, s.pool, badgeID)
	if err != nil {
		return nil, store.Unavailable("LatestForBadge", err)
	}
	return ev, nil
}

// Append records scan as given. Like AppendNext it holds the append lock
// until commit.
func (s *EventStore) Append(ctx context.Context, scan store.NewScan) (types.ScanEvent, error) {
	var ev types.ScanEvent
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) (err error) {
		ev, err = s.insert(ctx, tx, scan)
		return err
	})
	if err != nil {
		return types.ScanEvent{}, store.Unavailable("Append", err)
	}
	return ev, nil
}

// AppendNext derives and appends in one transaction on one connection. The
// badge's transaction-scoped advisory lock serializes scans of that badge
// across server instances and is released at commit, so no pooled
// connection stays pinned between statements.
func (s *EventStore) AppendNext(ctx context.Context, scan store.NewScan, next func(*types.ScanEvent) types.PresenceState) (types.ScanEvent, error) {
	var ev types.ScanEvent
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", scan.BadgeID); err != nil {
			return err
		}
		last, err := latestForBadge(ctx, tx, scan.BadgeID)
		if err != nil {
			return err
		}
		scan.PresenceState = next(last)
		ev, err = s.insert(ctx, tx, scan)
		return err
	})
	if err != nil {
		return types.ScanEvent{}, store.Unavailable("AppendNext", err)
	}
	return ev, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func latestForBadge(ctx context.Context, q querier, badgeID string) (*types.ScanEvent, error) {
	ev, err := scanEvent(q.QueryRow(ctx, `
SELECT `+scanColumns+`
FROM scan_events
WHERE badge_id = $1
ORDER BY sequence DESC
LIMIT 1`, badgeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// insert takes the table-wide append lock before drawing a sequence. The
// lock is held until commit, so sequences become visible in the order they
// were drawn and a poller advancing its cursor past N has already seen every
// sequence below N.
func (s *EventStore) insert(ctx context.Context, tx pgx.Tx, scan store.NewScan) (types.ScanEvent, error) {
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1, $2)", appendLockClass, appendLockObject); err != nil {
		return types.ScanEvent{}, err
	}
	// Postgres keeps microseconds; truncate so the returned event matches a re-read.
	occurred := s.clock.Now().Truncate(time.Microsecond)
	return scanEvent(tx.QueryRow(ctx, `
INSERT INTO scan_events(badge_id, device_id, presence_state, occurred_at, signal_strength, battery_level)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING `+scanColumns,
		scan.BadgeID, scan.DeviceID, string(scan.PresenceState), occurred,
		scan.SignalStrength, scan.BatteryLevel,
	))
}

func (s *EventStore) ListBetween(ctx context.Context, from, to time.Time, limit int) ([]types.ScanEvent, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}
	return s.query(ctx, "ListBetween", `
SELECT `+scanColumns+`
FROM scan_events
WHERE occurred_at >= $1 AND occurred_at < $2
ORDER BY sequence DESC
LIMIT $3`, from, to, lim)
}

func (s *EventStore) ListAfter(ctx context.Context, afterSeq int64, from, to time.Time) ([]types.ScanEvent, error) {
	return s.query(ctx, "ListAfter", `
SELECT `+scanColumns+`
FROM scan_events
WHERE sequence > $1 AND occurred_at >= $2 AND occurred_at < $3
ORDER BY sequence DESC`, afterSeq, from, to)
}

func (s *EventStore) Ping(ctx context.Context) error {
	return store.Unavailable("Ping", s.pool.Ping(ctx))
}

func (s *EventStore) query(ctx context.Context, op, sql string, args ...any) ([]types.ScanEvent, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, store.Unavailable(op, err)
	}
	defer rows.Close()

	var out []types.ScanEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, store.Unavailable(op, err)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Unavailable(op, err)
	}
	return out, nil
}
