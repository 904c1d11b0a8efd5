/*
handlers.go - HTTP API handlers for the temporary work calculator

PURPOSE:
  Exposes the period accounting engine and the editable workspace via
  REST API. Handles HTTP request/response, JSON serialization, and
  delegates to the workspace service.

ENDPOINTS:
  Calculation:
    POST   /api/calculate                          Stateless period calculation

  Limits:
    GET    /api/limits                             Current and allowed limits
    PUT    /api/limits                             Select a limit

  Persons:
    GET    /api/persons                            List persons with periods
    POST   /api/persons                            Add person
    DELETE /api/persons                            Remove everyone
    GET    /api/persons/{id}                       Person with periods
    PUT    /api/persons/{id}                       Rename person
    DELETE /api/persons/{id}                       Remove person

  Contracts:
    POST   /api/persons/{id}/contracts             Add empty contract
    PUT    /api/persons/{id}/contracts/{cid}       Set contract dates
    DELETE /api/persons/{id}/contracts/{cid}       Remove contract

  Sessions:
    GET    /api/sessions                           List saved sessions
    POST   /api/sessions                           Save current state
    DELETE /api/sessions                           Remove all sessions
    POST   /api/sessions/{name}/load               Load a session
    DELETE /api/sessions/{name}                    Remove a session

  State:
    GET    /api/state                              Whole workspace

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario endpoints
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/warp/tempwork/accounting"
	"github.com/warp/tempwork/workspace"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Workspace *workspace.Service
}

// NewHandler creates a new handler around the workspace service.
func NewHandler(svc *workspace.Service) *Handler {
	return &Handler{Workspace: svc}
}

// =============================================================================
// CALCULATION
// =============================================================================

// Calculate computes periods for the posted contracts. Nothing is stored.
// A missing limit falls back to the currently selected one; any positive
// limit is accepted.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	limit := req.LimitInDays
	if limit == 0 {
		current, err := h.Workspace.Limit(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load limit", err)
			return
		}
		limit = current
	}
	if err := accounting.ValidateLimit(limit, nil); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid limit_in_days", err)
		return
	}

	periods := accounting.ComputePeriods(toContractRanges(req.Contracts), limit)

	writeJSON(w, http.StatusOK, CalculateResponse{
		LimitInDays:   limit,
		Periods:       toPeriodDTOs(periods, limit),
		TotalDaysUsed: accounting.TotalDaysUsed(periods),
	})
}

// =============================================================================
// LIMITS
// =============================================================================

// GetLimits returns the selected limit and the choices.
func (h *Handler) GetLimits(w http.ResponseWriter, r *http.Request) {
	limit, err := h.Workspace.Limit(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load limit", err)
		return
	}
	writeJSON(w, http.StatusOK, LimitsDTO{LimitInDays: limit, Allowed: h.Workspace.AllowedLimits()})
}

// SetLimit selects a new limit.
func (h *Handler) SetLimit(w http.ResponseWriter, r *http.Request) {
	var req SetLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Workspace.SetLimit(r.Context(), req.LimitInDays); err != nil {
		writeServiceError(w, "Failed to set limit", err)
		return
	}
	writeJSON(w, http.StatusOK, LimitsDTO{LimitInDays: req.LimitInDays, Allowed: h.Workspace.AllowedLimits()})
}

// =============================================================================
// PERSON HANDLERS
// =============================================================================

// ListPersons returns all persons with computed periods.
func (h *Handler) ListPersons(w http.ResponseWriter, r *http.Request) {
	people, err := h.Workspace.People(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list persons", err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonDTOs(people))
}

// GetPerson returns a single person with computed periods.
func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	h.writePerson(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

// CreatePerson adds a person with one empty contract.
func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	// The body is optional: a person may be named later.
	var req CreatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	person, err := h.Workspace.AddPerson(r.Context(), req.FullName)
	if err != nil {
		writeServiceError(w, "Failed to create person", err)
		return
	}
	h.writePerson(w, r, person.ID, http.StatusCreated)
}

// UpdatePerson renames a person.
func (h *Handler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if _, err := h.Workspace.RenamePerson(r.Context(), id, req.FullName); err != nil {
		writeServiceError(w, "Failed to update person", err)
		return
	}
	h.writePerson(w, r, id, http.StatusOK)
}

// DeletePerson removes a person.
func (h *Handler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	if err := h.Workspace.RemovePerson(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, "Failed to delete person", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearPersons removes every person.
func (h *Handler) ClearPersons(w http.ResponseWriter, r *http.Request) {
	if err := h.Workspace.ClearAll(r.Context()); err != nil {
		writeServiceError(w, "Failed to clear persons", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writePerson(w http.ResponseWriter, r *http.Request, id string, status int) {
	summary, err := h.Workspace.Person(r.Context(), id)
	if err != nil {
		writeServiceError(w, "Failed to get person", err)
		return
	}
	writeJSON(w, status, toPersonDTO(summary))
}

// =============================================================================
// CONTRACT HANDLERS
// =============================================================================

// CreateContract appends an empty contract to a person.
func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	c, err := h.Workspace.AddContract(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "Failed to create contract", err)
		return
	}
	writeJSON(w, http.StatusCreated, toContractDTO(c))
}

// UpdateContract sets both dates of a contract.
func (h *Handler) UpdateContract(w http.ResponseWriter, r *http.Request) {
	var req UpdateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := strictDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
		return
	}
	end, err := strictDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date format (use YYYY-MM-DD)", err)
		return
	}

	c, err := h.Workspace.UpdateContract(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "contractID"), start, end)
	if err != nil {
		writeServiceError(w, "Failed to update contract", err)
		return
	}
	writeJSON(w, http.StatusOK, toContractDTO(c))
}

// DeleteContract removes a contract.
func (h *Handler) DeleteContract(w http.ResponseWriter, r *http.Request) {
	err := h.Workspace.RemoveContract(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "contractID"))
	if err != nil {
		writeServiceError(w, "Failed to delete contract", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// ListSessions returns saved sessions ordered by name.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.Workspace.Sessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions", err)
		return
	}
	dtos := make([]SessionDTO, len(sessions))
	for i, s := range sessions {
		dtos[i] = toSessionDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveSession stores the current state under a name.
func (h *Handler) SaveSession(w http.ResponseWriter, r *http.Request) {
	var req SaveSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	session, err := h.Workspace.SaveSession(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, "Failed to save session", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionDTO(session))
}

// LoadSession replaces the current state with a saved session.
func (h *Handler) LoadSession(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Workspace.LoadSession(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeServiceError(w, "Failed to load session", err)
		return
	}
	h.GetState(w, r)
}

// DeleteSession removes a saved session.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Workspace.DeleteSession(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeServiceError(w, "Failed to delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearSessions removes every saved session.
func (h *Handler) ClearSessions(w http.ResponseWriter, r *http.Request) {
	if err := h.Workspace.ClearSessions(r.Context()); err != nil {
		writeServiceError(w, "Failed to clear sessions", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetState returns the whole workspace with computed periods.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	people, err := h.Workspace.People(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list persons", err)
		return
	}
	limit, err := h.Workspace.Limit(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load limit", err)
		return
	}
	writeJSON(w, http.StatusOK, StateDTO{LimitInDays: limit, Persons: toPersonDTOs(people)})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError picks the status from the workspace error taxonomy.
func writeServiceError(w http.ResponseWriter, message string, err error) {
	switch {
	case workspace.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case workspace.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
