package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

var (
	// ErrUnavailable marks any failure of the backing store, including
	// deadline expiry. Callers match it with errors.Is.
	ErrUnavailable = errors.New("store unavailable")

	ErrEmployeeIDConflict = errors.New("employee id already exists")
)

// UnavailableError wraps a driver error with the store operation that failed.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

// Unavailable wraps err as an UnavailableError. A nil err stays nil.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &UnavailableError{Op: op, Err: err}
}

// ConflictError names the employee id that is already owned by another badge.
type ConflictError struct {
	EmployeeID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("Employee ID '%s' already exists.", e.EmployeeID)
}

func (e *ConflictError) Is(target error) bool { return target == ErrEmployeeIDConflict }

// Clock returns the instant a store stamps on appended events.
type Clock func() time.Time

func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// NewScan is an event about to be appended. Sequence and OccurredAt are
// assigned by the store.
type NewScan struct {
	BadgeID        string
	DeviceID       string
	PresenceState  types.PresenceState
	SignalStrength *int
	BatteryLevel   *int
}

// EventStore is the append-only, sequenced scan log. There is no update or
// delete path.
type EventStore interface {
	// LatestForBadge returns the highest-sequence event for the badge, or
	// nil when the badge has never been scanned.
	LatestForBadge(ctx context.Context, badgeID string) (*types.ScanEvent, error)
	Append(ctx context.Context, scan NewScan) (types.ScanEvent, error)
	// ListBetween returns events with from <= occurred_at < to, newest
	// first. limit <= 0 means unbounded.
	ListBetween(ctx context.Context, from, to time.Time, limit int) ([]types.ScanEvent, error)
	// ListAfter returns events with sequence > afterSeq and
	// from <= occurred_at < to, newest first.
	ListAfter(ctx context.Context, afterSeq int64, from, to time.Time) ([]types.ScanEvent, error)
	Ping(ctx context.Context) error
}

// DerivingAppender is implemented by stores that serialize a badge inside
// their own transaction: AppendNext reads the badge's latest event, asks next
// for the state to record and appends it atomically. Ingestion uses it in
// place of an external lock.Locker.
type DerivingAppender interface {
	AppendNext(ctx context.Context, scan NewScan, next func(last *types.ScanEvent) types.PresenceState) (types.ScanEvent, error)
}

// PersonStore is the identity directory keyed by badge id.
type PersonStore interface {
	// UpsertPerson fully replaces the person stored under p.TagID and
	// reports whether the record was newly created.
	UpsertPerson(ctx context.Context, p types.Person) (created bool, err error)
	// GetPerson returns nil when the badge is not registered.
	GetPerson(ctx context.Context, tagID string) (*types.Person, error)
	GetPeople(ctx context.Context, tagIDs []string) (map[string]types.Person, error)
	CountPeople(ctx context.Context) (int, error)
}
