package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	dbpkg "github.com/BrandonDHaskell/rollcall/internal/db"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/store"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

// EventStore keeps the scan log in the scan_events table. Appends go through
// the single-writer Worker; reads use the shared connection.
type EventStore struct {
	db     *sqlx.DB
	writer *dbpkg.Worker
	clock  store.Clock
}

func NewEventStore(db *sql.DB, writer *dbpkg.Worker, clock store.Clock) *EventStore {
	return &EventStore{db: sqlx.NewDb(db, "sqlite"), writer: writer, clock: clock}
}

func (s *EventStore) LatestForBadge(ctx context.Context, badgeID string) (*types.ScanEvent, error) {
	var r scanRow
	err := s.db.GetContext(ctx, &r, `
SELECT `+scanColumns+`
FROM scan_events
WHERE badge_id = ?
ORDER BY sequence DESC
LIMIT 1;
`, badgeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, store.Unavailable("LatestForBadge", err)
	}
	ev := r.event()
	return &ev, nil
}

func (s *EventStore) Append(ctx context.Context, scan store.NewScan) (types.ScanEvent, error) {
	occurred := s.clock.Now()
	ev := types.ScanEvent{
		BadgeID:        scan.BadgeID,
		DeviceID:       scan.DeviceID,
		PresenceState:  scan.PresenceState,
		OccurredAt:     time.UnixMilli(occurred.UnixMilli()).UTC(),
		SignalStrength: scan.SignalStrength,
		BatteryLevel:   scan.BatteryLevel,
	}

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO scan_events(
  badge_id, device_id, presence_state, occurred_at_ms, signal_strength, battery_level
) VALUES (?, ?, ?, ?, ?, ?);
`,
			ev.BadgeID, ev.DeviceID, string(ev.PresenceState), ev.OccurredAt.UnixMilli(),
			nullable(ev.SignalStrength), nullable(ev.BatteryLevel),
		)
		if err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		ev.Sequence, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return types.ScanEvent{}, store.Unavailable("Append", err)
	}
	return ev, nil
}

func (s *EventStore) ListBetween(ctx context.Context, from, to time.Time, limit int) ([]types.ScanEvent, error) {
	q := `
SELECT ` + scanColumns + `
FROM scan_events
WHERE occurred_at_ms >= ? AND occurred_at_ms < ?
ORDER BY sequence DESC`
	args := []any{from.UnixMilli(), to.UnixMilli()}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	var rows []scanRow
	if err := s.db.SelectContext(ctx, &rows, q+";", args...); err != nil {
		return nil, store.Unavailable("ListBetween", err)
	}
	return events(rows), nil
}

func (s *EventStore) ListAfter(ctx context.Context, afterSeq int64, from, to time.Time) ([]types.ScanEvent, error) {
	var rows []scanRow
	err := s.db.SelectContext(ctx, &rows, `
SELECT `+scanColumns+`
FROM scan_events
WHERE sequence > ? AND occurred_at_ms >= ? AND occurred_at_ms < ?
ORDER BY sequence DESC;
`, afterSeq, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, store.Unavailable("ListAfter", err)
	}
	return events(rows), nil
}

func (s *EventStore) Ping(ctx context.Context) error {
	return store.Unavailable("Ping", s.db.PingContext(ctx))
}
