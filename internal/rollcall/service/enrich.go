package service

import (
	"context"
	"time"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/store"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

// UnregisteredName marks badges missing from the identity directory.
const UnregisteredName = "Unregistered"

// NoRecords accompanies an empty query result.
const NoRecords = "No records found"

func lookupPeople(ctx context.Context, people store.PersonStore, evs []types.ScanEvent) (map[string]types.Person, error) {
	seen := make(map[string]struct{}, len(evs))
	ids := make([]string, 0, len(evs))
	for _, ev := range evs {
		if _, ok := seen[ev.BadgeID]; ok {
			continue
		}
		seen[ev.BadgeID] = struct{}{}
		ids = append(ids, ev.BadgeID)
	}
	byTag, err := people.GetPeople(ctx, ids)
	if err != nil {
		return nil, unavailable("GetPeople", err)
	}
	return byTag, nil
}

func enrich(evs []types.ScanEvent, byTag map[string]types.Person, loc *time.Location) []types.EnrichedEvent {
	out := make([]types.EnrichedEvent, 0, len(evs))
	for _, ev := range evs {
		e := types.EnrichedEvent{
			ID:             ev.Sequence,
			TagID:          ev.BadgeID,
			DeviceID:       ev.DeviceID,
			AttendanceType: ev.PresenceState,
			ScanTime:       ev.OccurredAt.In(loc).Format(time.RFC3339),
			SignalStrength: ev.SignalStrength,
			BatteryLevel:   ev.BatteryLevel,
			UserName:       UnregisteredName,
		}
		if p, ok := byTag[ev.BadgeID]; ok {
			e.Registered = true
			e.UserName = p.Name
			e.EmployeeID = p.EmployeeID
			e.Department = deref(p.Department)
			e.Designation = deref(p.Designation)
		}
		out = append(out, e)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
