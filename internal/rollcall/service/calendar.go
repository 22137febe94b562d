package service

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// MaxReportDays caps the inclusive span of a report.
const MaxReportDays = 366

// dayBounds returns [midnight, next midnight) of t's calendar date in loc.
func dayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// parseDate parses an optional YYYY-MM-DD in loc; blank means today.
func parseDate(raw string, today time.Time, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		start, _ := dayBounds(today, loc)
		return start, nil
	}
	d, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return d, nil
}

func dateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}
