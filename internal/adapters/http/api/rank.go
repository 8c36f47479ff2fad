package api

import (
	"context"
	"net/http"
)

// RankDependencies defines the interface for rank operations.
type RankDependencies interface {
	Rank(ctx context.Context, participantID string) (Entry, error)
}

// RankHandler handles rank requests.
type RankHandler struct {
	deps RankDependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps RankDependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// HandleGetRank handles GET /rank/{participant_id} requests.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	entry, err := h.deps.Rank(r.Context(), r.PathValue("participant_id"))
	if err != nil {
		writeError(w, r, Wrap("api.get_rank", err))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
