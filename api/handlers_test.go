/*
handlers_test.go - Tests for the HTTP API

Tests for:
- Stateless calculation (roll-over dates, undated contracts, bad input)
- Limit selection
- Person and contract editing
- Sessions and demo scenarios
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tempwork/accounting"
	"github.com/warp/tempwork/store/sqlite"
	"github.com/warp/tempwork/workspace"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := workspace.NewService(store, workspace.DefaultLimits())
	next := 0
	svc.NewID = func() string {
		next++
		return fmt.Sprintf("id-%d", next)
	}
	return NewRouter(NewHandler(svc), []string{"http://localhost:5173"})
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func str(s string) *string { return &s }

// =============================================================================
// CALCULATE
// =============================================================================

func TestCalculate_Exceeded(t *testing.T) {
	// GIVEN: 366 + 184 days against the 548-day limit
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/calculate", CalculateRequest{
		LimitInDays: 548,
		Contracts: []ContractInput{
			{ID: "c1", StartDate: str("2024-01-01"), EndDate: str("2024-12-31")},
			{ID: "c2", StartDate: str("2025-03-01"), EndDate: str("2025-08-31")},
		},
	})

	// THEN: one exceeded period with a reset date
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[CalculateResponse](t, rec)
	require.Len(t, resp.Periods, 1)
	p := resp.Periods[0]
	assert.Equal(t, 550, p.TotalDaysUsed)
	assert.Equal(t, -2, p.RemainingDays)
	assert.True(t, p.Exceeded)
	assert.Equal(t, 2, p.ExceededBy)
	require.NotNil(t, p.ResetDate)
	assert.Equal(t, "2027-01-01", *p.ResetDate)
	assert.Equal(t, "01.01.2027", *p.ResetDateDisplay)
	assert.Nil(t, p.CanExtendUntil)
	assert.Equal(t, 550, resp.TotalDaysUsed)
}

func TestCalculate_WithinLimit(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/calculate", CalculateRequest{
		LimitInDays: 548,
		Contracts: []ContractInput{
			{ID: "c1", StartDate: str("2024-02-17"), EndDate: str("2025-06-30T00:00:00Z")},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[CalculateResponse](t, rec)
	require.Len(t, resp.Periods, 1)
	p := resp.Periods[0]
	assert.Equal(t, 48, p.RemainingDays)
	require.NotNil(t, p.CanExtendUntil)
	assert.Equal(t, "2025-08-17", *p.CanExtendUntil)
	assert.Equal(t, "17.08.2025", *p.CanExtendUntilDisplay)
	assert.Nil(t, p.ResetDate)
	assert.InDelta(t, 91.24, p.UtilizationPct, 0.001)
}

func TestCalculate_BrowserTimestampsUseCalendarZone(t *testing.T) {
	// GIVEN: 2027-01-01 picked in Warsaw, sent as a UTC timestamp
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)
	prev := accounting.CalendarZone()
	accounting.SetCalendarZone(warsaw)
	t.Cleanup(func() { accounting.SetCalendarZone(prev) })
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/calculate", CalculateRequest{
		LimitInDays: 548,
		Contracts: []ContractInput{
			{ID: "c1", StartDate: str("2024-01-01"), EndDate: str("2024-06-30")},
			{ID: "c2", StartDate: str("2026-12-31T23:00:00.000Z"), EndDate: str("2027-01-30T23:00:00.000Z")},
		},
	})

	// THEN: it starts a second period on that day
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[CalculateResponse](t, rec)
	require.Len(t, resp.Periods, 2)
	require.NotNil(t, resp.Periods[1].StartDate)
	assert.Equal(t, "2027-01-01", *resp.Periods[1].StartDate)
	assert.Equal(t, "2027-01-31", *resp.Periods[1].Contracts[0].EndDate)
}

func TestCalculate_UndatedAndUnparseable(t *testing.T) {
	// GIVEN: no accountable contract; one has a garbage date
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/calculate", CalculateRequest{
		Contracts: []ContractInput{
			{ID: "a", StartDate: str("2025-01-01")},
			{ID: "b", StartDate: str("not-a-date"), EndDate: str("2025-02-01")},
		},
	})

	// THEN: the stored default limit applies and both land in the undated period
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[CalculateResponse](t, rec)
	assert.Equal(t, 548, resp.LimitInDays)
	require.Len(t, resp.Periods, 1)
	p := resp.Periods[0]
	assert.Equal(t, "period-undated", p.ID)
	assert.True(t, p.Undated)
	assert.Len(t, p.Contracts, 2)
	assert.Equal(t, 548, p.RemainingDays)
}

func TestCalculate_Empty(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/calculate", CalculateRequest{LimitInDays: 540})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[CalculateResponse](t, rec)
	assert.Empty(t, resp.Periods)
	assert.NotNil(t, resp.Periods)
}

func TestCalculate_BadInput(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/calculate", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/calculate", CalculateRequest{LimitInDays: -5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid limit_in_days", decode[ErrorResponse](t, rec).Error)
}

// =============================================================================
// LIMITS
// =============================================================================

func TestLimits(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/limits", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	limits := decode[LimitsDTO](t, rec)
	assert.Equal(t, 548, limits.LimitInDays)
	assert.Equal(t, []int{548, 540}, limits.Allowed)

	rec = do(t, router, http.MethodPut, "/api/limits", SetLimitRequest{LimitInDays: 540})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/limits", nil)
	assert.Equal(t, 540, decode[LimitsDTO](t, rec).LimitInDays)

	// Only presets may be selected.
	rec = do(t, router, http.MethodPut, "/api/limits", SetLimitRequest{LimitInDays: 365})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// PERSONS AND CONTRACTS
// =============================================================================

func TestPersonLifecycle(t *testing.T) {
	router := newTestRouter(t)

	// WHEN: a person is created without a body
	rec := do(t, router, http.MethodPost, "/api/persons", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	person := decode[PersonDTO](t, rec)
	assert.Equal(t, "id-1", person.ID)
	require.Len(t, person.Contracts, 1)
	contractID := person.Contracts[0].ID
	assert.Nil(t, person.Contracts[0].StartDate)

	// AND: renamed
	rec = do(t, router, http.MethodPut, "/api/persons/id-1", UpdatePersonRequest{FullName: "  Jan Kowalski "})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Jan Kowalski", decode[PersonDTO](t, rec).FullName)

	// AND: the contract gets dates
	rec = do(t, router, http.MethodPut, "/api/persons/id-1/contracts/"+contractID, UpdateContractRequest{
		StartDate: str("2025-06-01"),
		EndDate:   str("2025-06-10"),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	c := decode[ContractDTO](t, rec)
	assert.Equal(t, 10, c.DaysUsed)

	// THEN: the person carries one dated period
	rec = do(t, router, http.MethodGet, "/api/persons/id-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	person = decode[PersonDTO](t, rec)
	require.Len(t, person.Periods, 1)
	assert.Equal(t, 10, person.TotalDaysUsed)
	assert.Equal(t, 538, person.RemainingDays)
	assert.False(t, person.Exceeded)

	// WHEN: another contract is added and removed
	rec = do(t, router, http.MethodPost, "/api/persons/id-1/contracts", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	added := decode[ContractDTO](t, rec)

	rec = do(t, router, http.MethodDelete, "/api/persons/id-1/contracts/"+added.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/persons", nil)
	people := decode[[]PersonDTO](t, rec)
	require.Len(t, people, 1)
	assert.Len(t, people[0].Contracts, 1)

	// WHEN: the person is deleted
	rec = do(t, router, http.MethodDelete, "/api/persons/id-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/persons/id-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateContract_Errors(t *testing.T) {
	router := newTestRouter(t)
	rec := do(t, router, http.MethodPost, "/api/persons", CreatePersonRequest{FullName: "Anna"})
	require.Equal(t, http.StatusCreated, rec.Code)
	person := decode[PersonDTO](t, rec)
	contractPath := "/api/persons/" + person.ID + "/contracts/" + person.Contracts[0].ID

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"bad start", contractPath, UpdateContractRequest{StartDate: str("2025-13-01")}, http.StatusBadRequest},
		{"bad end", contractPath, UpdateContractRequest{EndDate: str("tomorrow")}, http.StatusBadRequest},
		{"bad body", contractPath, "[", http.StatusBadRequest},
		{"unknown contract", "/api/persons/" + person.ID + "/contracts/nope", UpdateContractRequest{}, http.StatusNotFound},
		{"unknown person", "/api/persons/nope/contracts/x", UpdateContractRequest{}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPut, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestUpdateContract_ClearDates(t *testing.T) {
	router := newTestRouter(t)
	person := decode[PersonDTO](t, do(t, router, http.MethodPost, "/api/persons", nil))
	path := "/api/persons/" + person.ID + "/contracts/" + person.Contracts[0].ID

	do(t, router, http.MethodPut, path, UpdateContractRequest{StartDate: str("2025-01-01"), EndDate: str("2025-01-31")})
	rec := do(t, router, http.MethodPut, path, UpdateContractRequest{StartDate: str("2025-01-01"), EndDate: str("")})

	require.Equal(t, http.StatusOK, rec.Code)
	c := decode[ContractDTO](t, rec)
	assert.Nil(t, c.EndDate)
	assert.Equal(t, 0, c.DaysUsed)
}

func TestClearPersons(t *testing.T) {
	router := newTestRouter(t)
	do(t, router, http.MethodPost, "/api/persons", nil)
	do(t, router, http.MethodPost, "/api/persons", nil)

	rec := do(t, router, http.MethodDelete, "/api/persons", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/persons", nil)
	assert.Empty(t, decode[[]PersonDTO](t, rec))
}

// =============================================================================
// SESSIONS
// =============================================================================

func TestSessions(t *testing.T) {
	router := newTestRouter(t)
	do(t, router, http.MethodPost, "/api/persons", CreatePersonRequest{FullName: "Anna"})

	// GIVEN: a saved session
	rec := do(t, router, http.MethodPost, "/api/sessions", SaveSessionRequest{Name: "March"})
	require.Equal(t, http.StatusCreated, rec.Code)
	session := decode[SessionDTO](t, rec)
	assert.Equal(t, "March", session.Name)
	assert.Equal(t, 1, session.Persons)

	// WHEN: the workspace is cleared and the session loaded
	do(t, router, http.MethodDelete, "/api/persons", nil)
	rec = do(t, router, http.MethodPost, "/api/sessions/March/load", nil)

	// THEN: the person is back
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[StateDTO](t, rec)
	require.Len(t, state.Persons, 1)
	assert.Equal(t, "Anna", state.Persons[0].FullName)

	rec = do(t, router, http.MethodGet, "/api/sessions", nil)
	assert.Len(t, decode[[]SessionDTO](t, rec), 1)

	rec = do(t, router, http.MethodDelete, "/api/sessions/March", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/sessions/March/load", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveSession_BlankName(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/sessions", SaveSessionRequest{Name: "   "})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearSessions(t *testing.T) {
	router := newTestRouter(t)
	do(t, router, http.MethodPost, "/api/sessions", SaveSessionRequest{Name: "a"})
	do(t, router, http.MethodPost, "/api/sessions", SaveSessionRequest{Name: "b"})

	rec := do(t, router, http.MethodDelete, "/api/sessions", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/sessions", nil)
	assert.Empty(t, decode[[]SessionDTO](t, rec))
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestScenarios(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]ScenarioDTO](t, rec)
	require.NotEmpty(t, list)

	rec = do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "limit-exceeded"})
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[StateDTO](t, rec)
	require.Len(t, state.Persons, 1)
	assert.True(t, state.Persons[0].Exceeded)
	assert.Equal(t, -2, state.Persons[0].RemainingDays)

	rec = do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIndex(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/persons")
}
