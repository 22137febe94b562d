package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/rollcall/internal/client"
	"github.com/BrandonDHaskell/rollcall/internal/httpapi"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/lock"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/service"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/store/memory"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

func newServer(t *testing.T) (*client.Client, *time.Time) {
	t.Helper()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	events := memory.NewEventStore(clock)
	people := memory.NewPersonStore()
	settings := service.Settings{Location: time.UTC, Now: clock}

	srv := httpapi.NewServer(httpapi.Dependencies{
		ScanService:   service.NewScanService(events, people, lock.NewKeyedMutex(), settings),
		SyncService:   service.NewSyncService(events, people, settings),
		ReportService: service.NewReportService(events, people, settings),
		PersonService: service.NewPersonService(people, settings),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return client.New(ts.URL, nil), &now
}

func TestClient_ScanRegisterReport(t *testing.T) {
	c, now := newServer(t)
	ctx := context.Background()

	reg, err := c.Register(ctx, types.RegisterRequest{TagID: "A1B2", Name: "Ada", EmployeeID: "E1"})
	require.NoError(t, err)
	assert.True(t, reg.Created)

	in, err := c.Scan(ctx, types.ScanRequest{Tag: "A1B2", DeviceID: "gate"})
	require.NoError(t, err)
	assert.Equal(t, types.StateIn, in.AttendanceType)
	assert.Equal(t, "Ada", in.UserName)

	*now = now.Add(8 * time.Hour)
	out, err := c.Scan(ctx, types.ScanRequest{TagID: "A1B2"})
	require.NoError(t, err)
	assert.Equal(t, types.StateOut, out.AttendanceType)
	assert.Equal(t, types.DefaultDeviceID, out.DeviceID)

	rep, err := c.Report(ctx, "2026-03-02", "2026-03-02", false)
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, "09:00:00", rep.Rows[0].FirstIn)
	assert.Equal(t, "17:00:00", rep.Rows[0].LastOut)
	assert.Equal(t, "08:00 hrs", rep.Rows[0].WorkingHours)
}

func TestClient_Updates(t *testing.T) {
	c, _ := newServer(t)
	ctx := context.Background()

	first, err := c.Updates(ctx, 0)
	require.NoError(t, err)
	assert.False(t, first.HasUpdates)

	_, err = c.Scan(ctx, types.ScanRequest{Tag: "X"})
	require.NoError(t, err)

	next, err := c.Updates(ctx, first.LastID)
	require.NoError(t, err)
	assert.True(t, next.HasUpdates)
	require.Len(t, next.NewRecords, 1)
	assert.Equal(t, "X", next.NewRecords[0].TagID)
}

func TestClient_APIErrors(t *testing.T) {
	c, _ := newServer(t)
	ctx := context.Background()

	_, err := c.Scan(ctx, types.ScanRequest{})
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "validation_error", apiErr.Code)

	_, err = c.Register(ctx, types.RegisterRequest{TagID: "T1", Name: "A", EmployeeID: "E"})
	require.NoError(t, err)
	_, err = c.Register(ctx, types.RegisterRequest{TagID: "T2", Name: "B", EmployeeID: "E"})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "Employee ID 'E' already exists.", apiErr.Message)

	_, err = c.Report(ctx, "2026-03-05", "2026-03-01", false)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "validation_error", apiErr.Code)
}
