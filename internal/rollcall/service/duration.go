package service

import (
	"fmt"
	"math"
	"time"
)

// NotAvailable is shown for times and durations that cannot be computed.
const NotAvailable = "N/A"

// WorkingDuration returns lastOut - firstIn. ok is false when either end is
// missing or the difference is negative; zero is a valid duration.
func WorkingDuration(firstIn, lastOut *time.Time) (d time.Duration, ok bool) {
	if firstIn == nil || lastOut == nil {
		return 0, false
	}
	d = lastOut.Sub(*firstIn)
	if d < 0 {
		return 0, false
	}
	return d, true
}

// HoursRaw converts d to hours rounded to two decimals.
func HoursRaw(d time.Duration) float64 {
	return math.Round(d.Hours()*100) / 100
}

// FormatHoursMinutes renders d as "HH:MM hrs", truncating seconds.
func FormatHoursMinutes(d time.Duration) string {
	total := int64(d / time.Minute)
	return fmt.Sprintf("%02d:%02d hrs", total/60, total%60)
}
