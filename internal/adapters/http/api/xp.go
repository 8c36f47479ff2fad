package api

import "net/http"

// XPHandler handles XP event submissions.
type XPHandler struct {
	deps XPDependencies
}

// NewXPHandler creates a new XP handler.
func NewXPHandler(deps XPDependencies) *XPHandler {
	return &XPHandler{deps: deps}
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// HandlePostXP handles POST /xp requests.
func (h *XPHandler) HandlePostXP(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_xp"
	var req xpRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	duplicate, err := h.deps.SubmitXP(r.Context(), req.event())
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}
