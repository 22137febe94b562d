package types

// ReportRow summarizes one badge on one calendar date. Nil pointers mean the
// value is unavailable.
type ReportRow struct {
	TagID           string   `json:"tag_id"`
	Date            string   `json:"date"`
	Registered      bool     `json:"registered"`
	Name            string   `json:"name"`
	EmployeeID      string   `json:"employee_id"`
	Department      string   `json:"department"`
	Designation     string   `json:"designation"`
	FirstIn         string   `json:"first_in"`
	LastOut         string   `json:"last_out"`
	CheckinCount    int      `json:"total_checkins"`
	CheckoutCount   int      `json:"total_checkouts"`
	WorkingSeconds  *int64   `json:"working_seconds"`
	WorkingHoursRaw *float64 `json:"working_hours_raw"`
	WorkingHours    string   `json:"working_hours"`
}

type Report struct {
	StartDate    string      `json:"start_date"`
	EndDate      string      `json:"end_date"`
	Rows         []ReportRow `json:"rows"`
	TotalRecords int         `json:"total_records"`
	Message      string      `json:"message,omitempty"`
}

type Liveness string

const (
	Online  Liveness = "Online"
	Offline Liveness = "Offline"
)

type DeviceStatus struct {
	DeviceID   string   `json:"device_id"`
	ScansToday int      `json:"scans_today"`
	LastSeen   string   `json:"last_seen"`
	Status     Liveness `json:"status"`
}

type Stats struct {
	Date                 string         `json:"date"`
	TotalRecords         int            `json:"total_records"`
	PresentCount         int            `json:"present_count"`
	RegisteredUsers      int            `json:"registered_users"`
	Checkins             int            `json:"checkins"`
	Checkouts            int            `json:"checkouts"`
	AttendancePercentage float64        `json:"attendance_percentage"`
	Devices              []DeviceStatus `json:"devices"`
}
