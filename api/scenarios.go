/*
scenarios.go - Demo scenario endpoints

PURPOSE:
	Lets the frontend load pre-built workspaces for demos: a worker within
	the limit, one over it, one spanning two periods, and a small team.

USAGE VIA API:

	GET  /api/scenarios
	POST /api/scenarios/load
	{"scenario_id": "limit-exceeded"}

NOTE:

	Loading a scenario replaces all persons and the limit. Saved sessions
	are kept.

SEE ALSO:
  - workspace/scenarios.go: Scenario definitions
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/warp/tempwork/workspace"
)

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	all := workspace.Scenarios()
	dtos := make([]ScenarioDTO, len(all))
	for i, s := range all {
		dtos[i] = ScenarioDTO{ID: s.ID, Name: s.Name, Description: s.Description}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// LoadScenario replaces the workspace with a demo scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if _, err := h.Workspace.LoadScenario(r.Context(), req.ScenarioID); err != nil {
		writeServiceError(w, "Failed to load scenario", err)
		return
	}
	h.GetState(w, r)
}
