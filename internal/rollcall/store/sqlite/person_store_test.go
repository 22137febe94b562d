package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/store"
	sqlitestore "github.com/BrandonDHaskell/rollcall/internal/rollcall/store/sqlite"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

func newPersonStore(t *testing.T) *sqlitestore.PersonStore {
	t.Helper()
	conn := openTestDB(t)
	return sqlitestore.NewPersonStore(conn, newTestWriter(t, conn), steppingClock(day, time.Second))
}

func strp(s string) *string { return &s }

// ═══════════════════════════════════════════════════════════════════════════
// UpsertPerson
// ═══════════════════════════════════════════════════════════════════════════

func TestPersonStore_Upsert_CreateThenFullReplace(t *testing.T) {
	ps := newPersonStore(t)
	ctx := context.Background()

	created, err := ps.UpsertPerson(ctx, types.Person{
		TagID: "T1", Name: "Ann", EmployeeID: "E1",
		Department: strp("Ops"), Email: strp("ann@example.com"),
	})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = ps.UpsertPerson(ctx, types.Person{TagID: "T1", Name: "Ann Lee", EmployeeID: "E9"})
	require.NoError(t, err)
	assert.False(t, created)

	p, err := ps.GetPerson(ctx, "T1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Ann Lee", p.Name)
	assert.Equal(t, "E9", p.EmployeeID)
	assert.Nil(t, p.Department, "omitted optional fields are cleared")
	assert.Nil(t, p.Email)
}

func TestPersonStore_Upsert_EmployeeIDConflict(t *testing.T) {
	ps := newPersonStore(t)
	ctx := context.Background()

	_, err := ps.UpsertPerson(ctx, types.Person{TagID: "T1", Name: "Ann", EmployeeID: "E1"})
	require.NoError(t, err)

	_, err = ps.UpsertPerson(ctx, types.Person{TagID: "T2", Name: "Bob", EmployeeID: "E1"})
	require.ErrorIs(t, err, store.ErrEmployeeIDConflict)
	assert.Equal(t, "Employee ID 'E1' already exists.", err.Error())

	missing, err := ps.GetPerson(ctx, "T2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// ═══════════════════════════════════════════════════════════════════════════
// Lookups
// ═══════════════════════════════════════════════════════════════════════════

func TestPersonStore_GetPeopleAndCount(t *testing.T) {
	ps := newPersonStore(t)
	ctx := context.Background()

	for _, p := range []types.Person{
		{TagID: "T1", Name: "Ann", EmployeeID: "E1"},
		{TagID: "T2", Name: "Bob", EmployeeID: "E2", Designation: strp("Tech")},
	} {
		_, err := ps.UpsertPerson(ctx, p)
		require.NoError(t, err)
	}

	got, err := ps.GetPeople(ctx, []string{"T2", "T3", "T1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Bob", got["T2"].Name)
	require.NotNil(t, got["T2"].Designation)
	assert.Equal(t, "Tech", *got["T2"].Designation)

	empty, err := ps.GetPeople(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	n, err := ps.CountPeople(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
