package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/store"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

// EventStore is an in-memory append-only scan log.
// It is intended for use in tests and dev environments.
type EventStore struct {
	mu      sync.RWMutex
	clock   store.Clock
	events  []types.ScanEvent
	nextSeq int64
	failErr error
}

func NewEventStore(clock store.Clock) *EventStore {
	return &EventStore{clock: clock, nextSeq: 1}
}

// FailWith makes every subsequent call return err wrapped as unavailable.
// Passing nil restores normal operation. Test-only helper.
func (s *EventStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

func (s *EventStore) LatestForBadge(_ context.Context, badgeID string) (*types.ScanEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failErr != nil {
		return nil, store.Unavailable("LatestForBadge", s.failErr)
	}
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].BadgeID == badgeID {
			ev := s.events[i]
			return &ev, nil
		}
	}
	return nil, nil
}

func (s *EventStore) Append(_ context.Context, scan store.NewScan) (types.ScanEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return types.ScanEvent{}, store.Unavailable("Append", s.failErr)
	}

	ev := types.ScanEvent{
		Sequence:       s.nextSeq,
		BadgeID:        scan.BadgeID,
		DeviceID:       scan.DeviceID,
		PresenceState:  scan.PresenceState,
		OccurredAt:     s.clock.Now(),
		SignalStrength: scan.SignalStrength,
		BatteryLevel:   scan.BatteryLevel,
	}
	s.nextSeq++
	s.events = append(s.events, ev)
	return ev, nil
}

func (s *EventStore) ListBetween(_ context.Context, from, to time.Time, limit int) ([]types.ScanEvent, error) {
	return s.list("ListBetween", 0, from, to, limit)
}

func (s *EventStore) ListAfter(_ context.Context, afterSeq int64, from, to time.Time) ([]types.ScanEvent, error) {
	return s.list("ListAfter", afterSeq, from, to, 0)
}

func (s *EventStore) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return store.Unavailable("Ping", s.failErr)
}

func (s *EventStore) list(op string, afterSeq int64, from, to time.Time, limit int) ([]types.ScanEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failErr != nil {
		return nil, store.Unavailable(op, s.failErr)
	}

	var out []types.ScanEvent
	for _, ev := range s.events {
		if ev.Sequence <= afterSeq {
			continue
		}
		if ev.OccurredAt.Before(from) || !ev.OccurredAt.Before(to) {
			continue
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence > out[j].Sequence })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Events returns a copy of all appended events in sequence order. Test-only helper.
func (s *EventStore) Events() []types.ScanEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.ScanEvent, len(s.events))
	copy(out, s.events)
	return out
}
