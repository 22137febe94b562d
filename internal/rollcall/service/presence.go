package service

import (
	"context"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/store"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

// NextState toggles the badge's last recorded state. A badge with no history
// starts IN.
func NextState(last *types.ScanEvent) types.PresenceState {
	if last == nil {
		return types.StateIn
	}
	return last.PresenceState.Opposite()
}

// Deriver computes a badge's next presence state from the event log. It keeps
// no state of its own; callers hold the badge lock across Next and Append.
type Deriver struct {
	events store.EventStore
}

func NewDeriver(events store.EventStore) *Deriver {
	return &Deriver{events: events}
}

func (d *Deriver) Next(ctx context.Context, badgeID string) (types.PresenceState, error) {
	last, err := d.events.LatestForBadge(ctx, badgeID)
	if err != nil {
		return "", err
	}
	return NextState(last), nil
}
