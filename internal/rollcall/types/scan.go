package types

import "time"

// DefaultDeviceID is recorded when a scan arrives without a device id.
const DefaultDeviceID = "IOT_DEVICE_DEFAULT"

type PresenceState string

const (
	StateIn  PresenceState = "IN"
	StateOut PresenceState = "OUT"
)

// Opposite returns the state a badge moves to on its next scan.
func (p PresenceState) Opposite() PresenceState {
	if p == StateIn {
		return StateOut
	}
	return StateIn
}

// ScanEvent is one immutable entry of the event log.
type ScanEvent struct {
	Sequence       int64
	BadgeID        string
	DeviceID       string
	PresenceState  PresenceState
	OccurredAt     time.Time
	SignalStrength *int
	BatteryLevel   *int
}

// ScanRequest is a normalized badge scan. Transports are responsible for
// turning their wire payloads into one of these.
type ScanRequest struct {
	Tag      string
	TagID    string
	DeviceID string
	Signal   *int
	Battery  *int
}

type ScanResult struct {
	AttendanceType PresenceState `json:"attendance_type"`
	TagID          string        `json:"tag_id"`
	DeviceID       string        `json:"device_id"`
	Sequence       int64         `json:"sequence"`
	ScanTime       string        `json:"scan_time"`
	UserName       string        `json:"user_name,omitempty"`
}

// EnrichedEvent is a ScanEvent joined with the identity directory.
type EnrichedEvent struct {
	ID             int64         `json:"id"`
	TagID          string        `json:"tag_id"`
	DeviceID       string        `json:"device_id"`
	AttendanceType PresenceState `json:"attendance_type"`
	ScanTime       string        `json:"scan_time"`
	SignalStrength *int          `json:"signal_strength"`
	BatteryLevel   *int          `json:"battery_level"`
	Registered     bool          `json:"registered"`
	UserName       string        `json:"user_name"`
	EmployeeID     string        `json:"employee_id"`
	Department     string        `json:"department"`
	Designation    string        `json:"designation"`
}

type PollResult struct {
	HasUpdates bool            `json:"has_updates"`
	NewRecords []EnrichedEvent `json:"new_records"`
	LastID     int64           `json:"last_id"`
}

type Snapshot struct {
	Date    string          `json:"date"`
	Records []EnrichedEvent `json:"records"`
	Count   int             `json:"count"`
	Message string          `json:"message,omitempty"`
}
