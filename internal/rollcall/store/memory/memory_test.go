package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/store"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/store/memory"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

func fixedClock(t time.Time) store.Clock {
	return func() time.Time { return t }
}

func TestEventStore_AppendAssignsIncreasingSequence(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	es := memory.NewEventStore(fixedClock(now))
	ctx := context.Background()

	a, err := es.Append(ctx, store.NewScan{BadgeID: "A", DeviceID: "D", PresenceState: types.StateIn})
	require.NoError(t, err)
	b, err := es.Append(ctx, store.NewScan{BadgeID: "B", DeviceID: "D", PresenceState: types.StateIn})
	require.NoError(t, err)

	assert.Equal(t, int64(1), a.Sequence)
	assert.Equal(t, int64(2), b.Sequence)
	assert.Equal(t, now, a.OccurredAt)

	latest, err := es.LatestForBadge(ctx, "A")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, a.Sequence, latest.Sequence)

	none, err := es.LatestForBadge(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestEventStore_ListAfterNewestFirstWithinWindow(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	cur := day.Add(-time.Hour)
	es := memory.NewEventStore(func() time.Time { return cur })
	ctx := context.Background()

	_, err := es.Append(ctx, store.NewScan{BadgeID: "A", PresenceState: types.StateIn}) // yesterday
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		cur = day.Add(time.Duration(i+1) * time.Hour)
		_, err := es.Append(ctx, store.NewScan{BadgeID: "A", PresenceState: types.StateIn})
		require.NoError(t, err)
	}

	got, err := es.ListAfter(ctx, 2, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(4), got[0].Sequence)
	assert.Equal(t, int64(3), got[1].Sequence)

	limited, err := es.ListBetween(ctx, day, day.AddDate(0, 0, 1), 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, int64(4), limited[0].Sequence)
}

func TestEventStore_FailWithSurfacesUnavailable(t *testing.T) {
	es := memory.NewEventStore(nil)
	es.FailWith(errors.New("disk gone"))

	_, err := es.Append(context.Background(), store.NewScan{BadgeID: "A"})
	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.Empty(t, es.Events())
}

func TestPersonStore_UpsertCreateThenReplace(t *testing.T) {
	ps := memory.NewPersonStore()
	ctx := context.Background()
	dept := "Ops"

	created, err := ps.UpsertPerson(ctx, types.Person{TagID: "T1", Name: "Ann", EmployeeID: "E1", Department: &dept})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = ps.UpsertPerson(ctx, types.Person{TagID: "T1", Name: "Ann B", EmployeeID: "E1"})
	require.NoError(t, err)
	assert.False(t, created)

	p, err := ps.GetPerson(ctx, "T1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Ann B", p.Name)
	assert.Nil(t, p.Department)
}

func TestPersonStore_EmployeeIDConflict(t *testing.T) {
	ps := memory.NewPersonStore()
	ctx := context.Background()

	_, err := ps.UpsertPerson(ctx, types.Person{TagID: "T1", Name: "Ann", EmployeeID: "E1"})
	require.NoError(t, err)

	_, err = ps.UpsertPerson(ctx, types.Person{TagID: "T2", Name: "Bob", EmployeeID: "E1"})
	assert.ErrorIs(t, err, store.ErrEmployeeIDConflict)

	n, err := ps.CountPeople(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
