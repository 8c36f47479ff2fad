package api

import (
	"net/http"

	"github.com/okian/teamforge/internal/adapters/roster"
)

// TeamsHandler handles one-shot team formation.
type TeamsHandler struct {
	deps TeamDependencies
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(deps TeamDependencies) *TeamsHandler {
	return &TeamsHandler{deps: deps}
}

// HandlePostTeams handles POST /teams requests.
func (h *TeamsHandler) HandlePostTeams(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_teams"
	var req teamsRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	profiles, err := roster.Build(req.Participants)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	f, err := h.deps.FormTeams(r.Context(), profiles, req.options()...)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// HandleGetTeams handles GET /teams/{run_id} requests for archived runs.
func (h *TeamsHandler) HandleGetTeams(w http.ResponseWriter, r *http.Request) {
	f, err := h.deps.Formation(r.Context(), r.PathValue("run_id"))
	if err != nil {
		writeError(w, r, Wrap("api.get_teams", err))
		return
	}
	writeJSON(w, http.StatusOK, f)
}
