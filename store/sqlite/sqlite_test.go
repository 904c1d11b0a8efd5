package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tempwork/accounting"
	"github.com/warp/tempwork/store/sqlite"
	"github.com/warp/tempwork/workspace"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func date(year int, month time.Month, day int) *accounting.Date {
	return accounting.NewDate(year, month, day).Ptr()
}

func kowalski() accounting.PersonAccount {
	return accounting.PersonAccount{
		ID:       "p1",
		FullName: "Jan Kowalski",
		Contracts: []accounting.ContractRange{
			{ID: "c1", StartDate: date(2024, time.January, 1), EndDate: date(2024, time.June, 30)},
			{ID: "c2", StartDate: date(2024, time.August, 1)},
			{ID: "c3"},
		},
	}
}

// =============================================================================
// PERSONS
// =============================================================================

func TestStore_SaveAndGetPerson(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SavePerson(ctx, kowalski()))

	got, err := store.GetPerson(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, kowalski(), *got)
}

func TestStore_GetPerson_Missing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetPerson(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_SavePerson_ReplacesContracts(t *testing.T) {
	// GIVEN: A stored person with three contracts
	// WHEN: Saving a snapshot with one contract removed and the name changed
	// THEN: Only the new snapshot remains

	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SavePerson(ctx, kowalski()))

	next := kowalski()
	next.FullName = "Jan K."
	next.Contracts = next.Contracts[:1]
	require.NoError(t, store.SavePerson(ctx, next))

	got, err := store.GetPerson(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Jan K.", got.FullName)
	assert.Len(t, got.Contracts, 1)
}

func TestStore_ListPersons_InsertionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, store.SavePerson(ctx, accounting.PersonAccount{ID: id}))
	}
	// Updating must not move a person.
	require.NoError(t, store.SavePerson(ctx, accounting.PersonAccount{ID: "zeta", FullName: "Z"}))

	persons, err := store.ListPersons(ctx)
	require.NoError(t, err)
	require.Len(t, persons, 3)
	assert.Equal(t, "zeta", persons[0].ID)
	assert.Equal(t, "Z", persons[0].FullName)
	assert.Equal(t, "alpha", persons[1].ID)
	assert.Equal(t, "mid", persons[2].ID)
	assert.NotNil(t, persons[1].Contracts)
}

func TestStore_DuplicateContractIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := accounting.PersonAccount{ID: "p1", Contracts: []accounting.ContractRange{{ID: "dup"}, {ID: "dup"}}}
	require.NoError(t, store.SavePerson(ctx, p))

	got, err := store.GetPerson(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, got.Contracts, 2)
}

func TestStore_DeletePerson_CascadesContracts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SavePerson(ctx, kowalski()))

	require.NoError(t, store.DeletePerson(ctx, "p1"))

	got, err := store.GetPerson(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Re-adding the same id starts with no stale contracts.
	require.NoError(t, store.SavePerson(ctx, accounting.PersonAccount{ID: "p1"}))
	got, err = store.GetPerson(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, got.Contracts)
}

func TestStore_ReplacePersons(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SavePerson(ctx, kowalski()))

	require.NoError(t, store.ReplacePersons(ctx, []accounting.PersonAccount{{ID: "p2", FullName: "Anna"}}))

	persons, err := store.ListPersons(ctx)
	require.NoError(t, err)
	require.Len(t, persons, 1)
	assert.Equal(t, "p2", persons[0].ID)

	require.NoError(t, store.ReplacePersons(ctx, nil))
	persons, err = store.ListPersons(ctx)
	require.NoError(t, err)
	assert.Empty(t, persons)
}

// =============================================================================
// SETTINGS & SESSIONS
// =============================================================================

func TestStore_Limit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	limit, err := store.GetLimit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, limit)

	require.NoError(t, store.SetLimit(ctx, accounting.Limit540))
	require.NoError(t, store.SetLimit(ctx, accounting.Limit548))

	limit, err = store.GetLimit(ctx)
	require.NoError(t, err)
	assert.Equal(t, accounting.Limit548, limit)
}

func TestStore_Sessions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	savedAt := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)

	state := workspace.AppState{Persons: []accounting.PersonAccount{kowalski()}, LimitInDays: 540}
	require.NoError(t, store.SaveSession(ctx, workspace.Session{Name: "beta", State: state, SavedAt: savedAt}))
	require.NoError(t, store.SaveSession(ctx, workspace.Session{Name: "alpha", State: workspace.AppState{LimitInDays: 548}, SavedAt: savedAt}))

	got, err := store.GetSession(ctx, "beta")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, state, got.State)
	assert.True(t, savedAt.Equal(got.SavedAt))

	sessions, err := store.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "alpha", sessions[0].Name)
	assert.Equal(t, "beta", sessions[1].Name)

	require.NoError(t, store.DeleteSession(ctx, "alpha"))
	missing, err := store.GetSession(ctx, "alpha")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.DeleteAllSessions(ctx))
	sessions, err = store.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestStore_Reset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SavePerson(ctx, kowalski()))
	require.NoError(t, store.SetLimit(ctx, 540))

	require.NoError(t, store.Reset(ctx))

	persons, err := store.ListPersons(ctx)
	require.NoError(t, err)
	assert.Empty(t, persons)
	limit, err := store.GetLimit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, limit)
}
