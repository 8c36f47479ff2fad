// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/okian/teamforge/internal/domain/balance"
	"github.com/okian/teamforge/internal/domain/draft"
	"github.com/okian/teamforge/internal/domain/model"
	"github.com/okian/teamforge/internal/domain/profile"
	"github.com/okian/teamforge/internal/domain/types"
	"github.com/okian/teamforge/pkg/logger"
)

const defaultMaxLeaderboardLimit = 100

// TeamDependencies forms balanced teams in one pass and reads archived runs.
type TeamDependencies interface {
	FormTeams(ctx context.Context, roster []profile.Profile, opts ...balance.Option) (types.Formation, error)
	Formation(ctx context.Context, runID string) (types.Formation, error)
}

// DraftDependencies runs draft sessions.
type DraftDependencies interface {
	DefaultRoundTimeLimit() time.Duration
	StartDraft(ctx context.Context, roster []profile.Profile, captains []draft.Captain, limit time.Duration, scheduled bool) (types.Draft, error)
	Draft(ctx context.Context, id string) (types.Draft, error)
	SubmitPick(ctx context.Context, id, requestID, teamID, participantID, reason string) (types.Draft, error)
	SkipPick(ctx context.Context, id, teamID string) (types.Draft, error)
	OpenDraft(ctx context.Context, id string) (types.Draft, error)
	PauseDraft(ctx context.Context, id string) (types.Draft, error)
	ResumeDraft(ctx context.Context, id string) (types.Draft, error)
	EndDraft(ctx context.Context, id string) (types.Draft, error)
}

// XPDependencies accepts XP events. duplicate reports an already accepted
// event ID.
type XPDependencies interface {
	SubmitXP(ctx context.Context, e model.XPEvent) (duplicate bool, err error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	TeamDependencies
	DraftDependencies
	XPDependencies
	LeaderboardDependencies
	RankDependencies
	StatsProvider
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	teamsHandler       *TeamsHandler
	draftsHandler      *DraftsHandler
	xpHandler          *XPHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
}

// NewServer creates a new API server with all handlers. maxLimit caps the
// leaderboard page size; values below 1 use the default.
func NewServer(deps Dependencies, maxLimit int) *Server {
	if maxLimit < 1 {
		maxLimit = defaultMaxLeaderboardLimit
	}
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		teamsHandler:       NewTeamsHandler(deps),
		draftsHandler:      NewDraftsHandler(deps),
		xpHandler:          NewXPHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
		rankHandler:        NewRankHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /teams", MetricsMiddleware(s.teamsHandler.HandlePostTeams, "teams"))
	mux.HandleFunc("GET /teams/{run_id}", MetricsMiddleware(s.teamsHandler.HandleGetTeams, "teams_run"))

	mux.HandleFunc("POST /drafts", MetricsMiddleware(s.draftsHandler.HandleCreate, "drafts"))
	mux.HandleFunc("GET /drafts/{id}", MetricsMiddleware(s.draftsHandler.HandleGet, "draft"))
	mux.HandleFunc("POST /drafts/{id}/picks", MetricsMiddleware(s.draftsHandler.HandlePick, "draft_picks"))
	mux.HandleFunc("POST /drafts/{id}/skips", MetricsMiddleware(s.draftsHandler.HandleSkip, "draft_skips"))
	mux.HandleFunc("POST /drafts/{id}/open", MetricsMiddleware(s.draftsHandler.HandleOpen, "draft_open"))
	mux.HandleFunc("POST /drafts/{id}/pause", MetricsMiddleware(s.draftsHandler.HandlePause, "draft_pause"))
	mux.HandleFunc("POST /drafts/{id}/resume", MetricsMiddleware(s.draftsHandler.HandleResume, "draft_resume"))
	mux.HandleFunc("POST /drafts/{id}/end", MetricsMiddleware(s.draftsHandler.HandleEnd, "draft_end"))

	mux.HandleFunc("POST /xp", MetricsMiddleware(s.xpHandler.HandlePostXP, "xp"))
	mux.HandleFunc("GET /leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /rank/{participant_id}", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err by its kind. Server errors are logged and their
// detail is withheld.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	p := classify(err)
	resp := errorResponse{Code: p.code, Message: p.message}
	if p.status >= statusInternalError {
		logger.Get().Error(r.Context(), "request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
	} else {
		resp.Detail = err.Error()
	}
	writeJSON(w, p.status, resp)
}
