package api

import (
	"context"
	"net/http"

	"github.com/okian/teamforge/internal/adapters/roster"
	"github.com/okian/teamforge/internal/domain/types"
)

// DraftsHandler handles draft session requests.
type DraftsHandler struct {
	deps DraftDependencies
}

// NewDraftsHandler creates a new drafts handler.
func NewDraftsHandler(deps DraftDependencies) *DraftsHandler {
	return &DraftsHandler{deps: deps}
}

// HandleCreate handles POST /drafts requests.
func (h *DraftsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_draft"
	var req draftRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	profiles, err := roster.Build(req.Participants)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	limit := req.roundTimeLimit(h.deps.DefaultRoundTimeLimit())
	d, err := h.deps.StartDraft(r.Context(), profiles, req.captains(), limit, req.Scheduled)
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	w.Header().Set("Location", "/drafts/"+d.ID)
	writeJSON(w, http.StatusCreated, d)
}

// HandleGet handles GET /drafts/{id} requests.
func (h *DraftsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "api.get_draft", h.deps.Draft)
}

// HandlePick handles POST /drafts/{id}/picks requests.
func (h *DraftsHandler) HandlePick(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_pick"
	var req pickRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	h.respond(w, r, op, func(ctx context.Context, id string) (types.Draft, error) {
		return h.deps.SubmitPick(ctx, id, req.RequestID, req.TeamID, req.ParticipantID, req.Reason)
	})
}

// HandleSkip handles POST /drafts/{id}/skips requests.
func (h *DraftsHandler) HandleSkip(w http.ResponseWriter, r *http.Request) {
	const op = "api.skip_pick"
	var req skipRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	h.respond(w, r, op, func(ctx context.Context, id string) (types.Draft, error) {
		return h.deps.SkipPick(ctx, id, req.TeamID)
	})
}

// HandleOpen handles POST /drafts/{id}/open requests.
func (h *DraftsHandler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "api.open_draft", h.deps.OpenDraft)
}

// HandlePause handles POST /drafts/{id}/pause requests.
func (h *DraftsHandler) HandlePause(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "api.pause_draft", h.deps.PauseDraft)
}

// HandleResume handles POST /drafts/{id}/resume requests.
func (h *DraftsHandler) HandleResume(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "api.resume_draft", h.deps.ResumeDraft)
}

// HandleEnd handles POST /drafts/{id}/end requests.
func (h *DraftsHandler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "api.end_draft", h.deps.EndDraft)
}

func (h *DraftsHandler) respond(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, string) (types.Draft, error)) {
	d, err := fn(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, d)
}
