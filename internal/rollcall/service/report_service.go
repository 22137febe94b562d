package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/store"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

// SnapshotLimit caps the events returned for a single date.
const SnapshotLimit = 200

const clockLayout = "15:04:05"

// ReportService aggregates the event log into snapshots, daily summaries,
// device liveness and attendance stats. It only reads.
type ReportService struct {
	events   store.EventStore
	people   store.PersonStore
	settings Settings
}

func NewReportService(events store.EventStore, people store.PersonStore, settings Settings) *ReportService {
	return &ReportService{events: events, people: people, settings: settings.withDefaults()}
}

type ReportQuery struct {
	StartDate           string
	EndDate             string
	IncludeUnregistered bool
}

// Snapshot returns the newest SnapshotLimit events of date (blank = today).
func (s *ReportService) Snapshot(ctx context.Context, date string) (types.Snapshot, error) {
	loc := s.settings.Location
	day, err := parseDate(date, s.settings.now(), loc)
	if err != nil {
		return types.Snapshot{}, err
	}
	from, to := dayBounds(day, loc)

	sctx, cancel := s.settings.storeCtx(ctx)
	defer cancel()

	evs, err := s.events.ListBetween(sctx, from, to, SnapshotLimit)
	if err != nil {
		return types.Snapshot{}, unavailable("ListBetween", err)
	}
	snap := types.Snapshot{Date: dateKey(day, loc), Records: []types.EnrichedEvent{}}
	if len(evs) == 0 {
		snap.Message = NoRecords
		return snap, nil
	}

	byTag, err := lookupPeople(sctx, s.people, evs)
	if err != nil {
		return types.Snapshot{}, err
	}
	snap.Records = enrich(evs, byTag, loc)
	snap.Count = len(snap.Records)
	return snap, nil
}

type dayAgg struct {
	badgeID   string
	date      string
	firstIn   *time.Time
	lastOut   *time.Time
	checkins  int
	checkouts int
}

// Report builds one row per (badge, date) with at least one event in
// [StartDate, EndDate]. Unregistered badges are skipped unless asked for.
func (s *ReportService) Report(ctx context.Context, q ReportQuery) (rep types.Report, err error) {
	loc := s.settings.Location
	today := s.settings.now()
	start, err := parseDate(q.StartDate, today, loc)
	if err != nil {
		return types.Report{}, err
	}
	end, err := parseDate(q.EndDate, today, loc)
	if err != nil {
		return types.Report{}, err
	}
	if end.Before(start) {
		return types.Report{}, fmt.Errorf("%w: start_date is after end_date", ErrInvalidRange)
	}
	if days := daysBetween(start, end) + 1; days > MaxReportDays {
		return types.Report{}, fmt.Errorf("%w: %d days exceeds %d", ErrInvalidRange, days, MaxReportDays)
	}

	ctx, span := tracer.Start(ctx, "ReportService.Report", trace.WithAttributes(
		attribute.String("rollcall.start_date", dateKey(start, loc)),
		attribute.String("rollcall.end_date", dateKey(end, loc)),
	))
	defer func() { endSpan(span, err) }()

	sctx, cancel := s.settings.storeCtx(ctx)
	defer cancel()

	evs, err := s.events.ListBetween(sctx, start, end.AddDate(0, 0, 1), 0)
	if err != nil {
		return types.Report{}, unavailable("ListBetween", err)
	}
	rep = types.Report{StartDate: dateKey(start, loc), EndDate: dateKey(end, loc), Rows: []types.ReportRow{}}
	if len(evs) == 0 {
		rep.Message = NoRecords
		return rep, nil
	}

	byTag, err := lookupPeople(sctx, s.people, evs)
	if err != nil {
		return types.Report{}, err
	}

	for _, a := range aggregateDays(evs, loc) {
		p, registered := byTag[a.badgeID]
		if !registered && !q.IncludeUnregistered {
			continue
		}
		rep.Rows = append(rep.Rows, s.row(a, p, registered))
	}
	sort.SliceStable(rep.Rows, func(i, j int) bool {
		a, b := rep.Rows[i], rep.Rows[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.TagID != b.TagID {
			return a.TagID < b.TagID
		}
		return a.Date < b.Date
	})
	rep.TotalRecords = len(rep.Rows)
	if rep.TotalRecords == 0 {
		rep.Message = NoRecords
	}
	return rep, nil
}

func (s *ReportService) row(a *dayAgg, p types.Person, registered bool) types.ReportRow {
	loc := s.settings.Location
	r := types.ReportRow{
		TagID:         a.badgeID,
		Date:          a.date,
		Registered:    registered,
		Name:          UnregisteredName,
		FirstIn:       NotAvailable,
		LastOut:       NotAvailable,
		CheckinCount:  a.checkins,
		CheckoutCount: a.checkouts,
		WorkingHours:  NotAvailable,
	}
	if registered {
		r.Name = p.Name
		r.EmployeeID = p.EmployeeID
		r.Department = deref(p.Department)
		r.Designation = deref(p.Designation)
	}
	if a.firstIn != nil {
		r.FirstIn = a.firstIn.In(loc).Format(clockLayout)
	}
	if a.lastOut != nil {
		r.LastOut = a.lastOut.In(loc).Format(clockLayout)
	}
	if d, ok := WorkingDuration(a.firstIn, a.lastOut); ok {
		secs := int64(d / time.Second)
		hrs := HoursRaw(d)
		r.WorkingSeconds = &secs
		r.WorkingHoursRaw = &hrs
		r.WorkingHours = FormatHoursMinutes(d)
	}
	return r
}

// aggregateDays groups events by badge and calendar date in loc.
func aggregateDays(evs []types.ScanEvent, loc *time.Location) []*dayAgg {
	byKey := make(map[[2]string]*dayAgg)
	var order []*dayAgg
	for _, ev := range evs {
		key := [2]string{ev.BadgeID, dateKey(ev.OccurredAt, loc)}
		a, ok := byKey[key]
		if !ok {
			a = &dayAgg{badgeID: key[0], date: key[1]}
			byKey[key] = a
			order = append(order, a)
		}
		t := ev.OccurredAt
		switch ev.PresenceState {
		case types.StateIn:
			a.checkins++
			if a.firstIn == nil || t.Before(*a.firstIn) {
				a.firstIn = &t
			}
		case types.StateOut:
			a.checkouts++
			if a.lastOut == nil || t.After(*a.lastOut) {
				a.lastOut = &t
			}
		}
	}
	return order
}

// Devices lists every device that scanned on date with its liveness at the
// current instant.
func (s *ReportService) Devices(ctx context.Context, date string) ([]types.DeviceStatus, error) {
	evs, _, err := s.dayEvents(ctx, date)
	if err != nil {
		return nil, err
	}
	return s.devices(evs), nil
}

// Stats summarizes attendance on date.
func (s *ReportService) Stats(ctx context.Context, date string) (types.Stats, error) {
	evs, day, err := s.dayEvents(ctx, date)
	if err != nil {
		return types.Stats{}, err
	}

	sctx, cancel := s.settings.storeCtx(ctx)
	defer cancel()
	registered, err := s.people.CountPeople(sctx)
	if err != nil {
		return types.Stats{}, unavailable("CountPeople", err)
	}

	st := types.Stats{
		Date:            day,
		TotalRecords:    len(evs),
		RegisteredUsers: registered,
		Devices:         s.devices(evs),
	}
	present := make(map[string]struct{})
	for _, ev := range evs {
		switch ev.PresenceState {
		case types.StateIn:
			st.Checkins++
			present[ev.BadgeID] = struct{}{}
		case types.StateOut:
			st.Checkouts++
		}
	}
	st.PresentCount = len(present)
	if registered > 0 {
		st.AttendancePercentage = math.Round(float64(st.PresentCount)/float64(registered)*1000) / 10
	}
	return st, nil
}

func (s *ReportService) dayEvents(ctx context.Context, date string) ([]types.ScanEvent, string, error) {
	loc := s.settings.Location
	day, err := parseDate(date, s.settings.now(), loc)
	if err != nil {
		return nil, "", err
	}
	from, to := dayBounds(day, loc)

	sctx, cancel := s.settings.storeCtx(ctx)
	defer cancel()
	evs, err := s.events.ListBetween(sctx, from, to, 0)
	if err != nil {
		return nil, "", unavailable("ListBetween", err)
	}
	return evs, dateKey(day, loc), nil
}

func (s *ReportService) devices(evs []types.ScanEvent) []types.DeviceStatus {
	type agg struct {
		count    int
		lastSeen time.Time
	}
	byDevice := make(map[string]*agg)
	for _, ev := range evs {
		a, ok := byDevice[ev.DeviceID]
		if !ok {
			a = &agg{}
			byDevice[ev.DeviceID] = a
		}
		a.count++
		if ev.OccurredAt.After(a.lastSeen) {
			a.lastSeen = ev.OccurredAt
		}
	}

	now := s.settings.Now()
	out := make([]types.DeviceStatus, 0, len(byDevice))
	for id, a := range byDevice {
		out = append(out, types.DeviceStatus{
			DeviceID:   id,
			ScansToday: a.count,
			LastSeen:   a.lastSeen.In(s.settings.Location).Format(time.RFC3339),
			Status:     Liveness(a.lastSeen, now),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out
}

func daysBetween(start, end time.Time) int {
	// Calendar arithmetic in UTC avoids DST-length days.
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours() / 24)
}
