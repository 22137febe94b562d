package service_test

import (
	"sync"
	"time"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/lock"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/service"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/store/memory"
)

// fakeClock is shared by the stores and services so event times and "now"
// move together.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	clock   *fakeClock
	events  *memory.EventStore
	people  *memory.PersonStore
	scans   *service.ScanService
	sync    *service.SyncService
	reports *service.ReportService
	persons *service.PersonService
}

// monday09 is 2026-03-02 09:00 UTC.
var monday09 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newFixture(start time.Time) *fixture {
	clock := newFakeClock(start)
	events := memory.NewEventStore(clock.Now)
	people := memory.NewPersonStore()
	settings := service.Settings{Location: time.UTC, Now: clock.Now}
	return &fixture{
		clock:   clock,
		events:  events,
		people:  people,
		scans:   service.NewScanService(events, people, lock.NewKeyedMutex(), settings),
		sync:    service.NewSyncService(events, people, settings),
		reports: service.NewReportService(events, people, settings),
		persons: service.NewPersonService(people, settings),
	}
}

func strp(s string) *string { return &s }
func intp(n int) *int { return &n }
