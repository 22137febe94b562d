package sqlite

import (
	"database/sql"
	"time"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

type scanRow struct {
	Sequence       int64         `db:"sequence"`
	BadgeID        string        `db:"badge_id"`
	DeviceID       string        `db:"device_id"`
	PresenceState  string        `db:"presence_state"`
	OccurredAtMs   int64         `db:"occurred_at_ms"`
	SignalStrength sql.NullInt64 `db:"signal_strength"`
	BatteryLevel   sql.NullInt64 `db:"battery_level"`
}

const scanColumns = `sequence, badge_id, device_id, presence_state, occurred_at_ms, signal_strength, battery_level`

func (r scanRow) event() types.ScanEvent {
	return types.ScanEvent{
		Sequence:       r.Sequence,
		BadgeID:        r.BadgeID,
		DeviceID:       r.DeviceID,
		PresenceState:  types.PresenceState(r.PresenceState),
		OccurredAt:     time.UnixMilli(r.OccurredAtMs).UTC(),
		SignalStrength: intPtr(r.SignalStrength),
		BatteryLevel:   intPtr(r.BatteryLevel),
	}
}

func events(rows []scanRow) []types.ScanEvent {
	out := make([]types.ScanEvent, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.event())
	}
	return out
}

type personRow struct {
	TagID       string         `db:"tag_id"`
	Name        string         `db:"name"`
	EmployeeID  string         `db:"employee_id"`
	Department  sql.NullString `db:"department"`
	Designation sql.NullString `db:"designation"`
	Phone       sql.NullString `db:"phone"`
	Email       sql.NullString `db:"email"`
}

const personColumns = `tag_id, name, employee_id, department, designation, phone, email`

func (r personRow) person() types.Person {
	return types.Person{
		TagID:       r.TagID,
		Name:        r.Name,
		EmployeeID:  r.EmployeeID,
		Department:  strPtr(r.Department),
		Designation: strPtr(r.Designation),
		Phone:       strPtr(r.Phone),
		Email:       strPtr(r.Email),
	}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func strPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// nullable turns a nil pointer into a SQL NULL.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
