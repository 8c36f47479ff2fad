// Package service provides the application service that implements the
// dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/teamforge/internal/adapters/archive"
	eventqueue "github.com/okian/teamforge/internal/adapters/mq/queue"
	workerpool "github.com/okian/teamforge/internal/adapters/mq/worker"
	"github.com/okian/teamforge/internal/adapters/repository"
	"github.com/okian/teamforge/internal/domain/balance"
	"github.com/okian/teamforge/internal/domain/dedupe"
	"github.com/okian/teamforge/internal/domain/draft"
	"github.com/okian/teamforge/internal/domain/model"
	"github.com/okian/teamforge/internal/domain/profile"
	"github.com/okian/teamforge/internal/domain/scoring"
	"github.com/okian/teamforge/internal/domain/types"
	"github.com/okian/teamforge/pkg/logger"
	"github.com/okian/teamforge/pkg/metrics"
)

const (
	defaultQueueSize         = 10000
	defaultDedupeSize        = 50000
	defaultRoundTimeLimit    = time.Minute
	defaultTurnCheckInterval = 500 * time.Millisecond
	defaultDraftRetention    = time.Hour
)

// Service implements the API dependencies for team formation, drafts and the
// XP leaderboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	sessions    *repository.Sessions
	leaderboard repository.Store
	events      dedupe.Deduper
	requests    dedupe.Deduper
	eventQueue  eventqueue.Queue
	scorer      scoring.Scorer
	workerPool  *workerpool.Pool
	archive     archive.Archive
	clock       draft.Clock

	// Configuration
	workerCount       int
	queueSize         int
	dedupeSize        int
	activityWeights   map[string]float64
	defaultWeight     float64
	roundTimeLimit    time.Duration
	turnCheckInterval time.Duration
	draftRetention    time.Duration
	themeLabels       []string

	// finished holds completion times of drafts still kept in memory.
	finishedMu sync.Mutex
	finished   map[string]time.Time

	// State
	started bool
	cancel  context.CancelFunc
	loops   sync.WaitGroup

	logger logger.Logger
}

// New constructs a Service. Components are ready immediately; Start launches
// the worker pool and the turn timer.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:       runtime.NumCPU(),
		queueSize:         defaultQueueSize,
		dedupeSize:        defaultDedupeSize,
		defaultWeight:     scoring.DefaultActivityWeight,
		roundTimeLimit:    defaultRoundTimeLimit,
		turnCheckInterval: defaultTurnCheckInterval,
		draftRetention:    defaultDraftRetention,
		finished:          make(map[string]time.Time),
		clock:             draft.ClockFunc(time.Now),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.sessions = repository.NewSessions()
	s.leaderboard = repository.NewTreapStore()
	s.events = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.requests = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.eventQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.scorer = scoring.NewInMemoryScorer(scoring.WithActivityWeights(s.activityWeights, s.defaultWeight))
	return s
}

// Start launches the worker pool and the turn timer. Calling it twice is a
// no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting teamforge service...")

	ctx, s.cancel = context.WithCancel(ctx)
	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s.scorer, s.leaderboard)
	s.workerPool.Start(ctx)

	s.loops.Add(1)
	go func() {
		defer s.loops.Done()
		s.runTurnTimer(ctx)
	}()

	s.started = true
	s.logger.Info(ctx, "teamforge service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Duration("turnCheckInterval", s.turnCheckInterval),
		logger.Bool("archive", s.archive != nil),
	)
	return nil
}

// Stop drains the XP queue and stops background work. Events still queued
// when ctx expires are dropped.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping teamforge service...")

	var errs []error
	if err := s.workerPool.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	s.cancel()
	s.loops.Wait()

	if s.archive != nil {
		if err := s.archive.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close archive: %w", err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "teamforge service stopped")
	return errors.Join(errs...)
}

// FormTeams balances roster in one pass. Configured theme labels apply
// unless opts name their own.
func (s *Service) FormTeams(ctx context.Context, roster []profile.Profile, opts ...balance.Option) (types.Formation, error) {
	start := time.Now()
	all := make([]balance.Option, 0, len(opts)+1)
	if len(s.themeLabels) > 0 {
		all = append(all, balance.WithThemeLabels(s.themeLabels...))
	}
	all = append(all, opts...)

	teams, err := balance.Form(roster, all...)
	metrics.RecordBalanceDuration(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordBalanceRun("rejected")
		return types.Formation{}, err
	}

	spread := balance.Spread(teams)
	metrics.RecordBalanceRun("ok")
	metrics.UpdateTeamSpread(spread)

	runID := uuid.NewString()
	if s.archive != nil {
		if err := s.archive.SaveTeams(ctx, runID, teams); err != nil {
			metrics.RecordErrorByComponent("archive", "save_teams")
			s.logger.Warn(ctx, "failed to archive teams", logger.String("runID", runID), logger.Error(err))
		}
	}
	s.logger.Info(ctx, "teams formed",
		logger.String("runID", runID),
		logger.Int("participants", len(roster)),
		logger.Int("teams", len(teams)),
		logger.Float64("spread", spread),
	)
	return types.Formation{RunID: runID, Teams: types.FromTeams(teams), Spread: spread}, nil
}

// DefaultRoundTimeLimit is the turn budget applied when a draft request
// names none.
func (s *Service) DefaultRoundTimeLimit() time.Duration { return s.roundTimeLimit }

// StartDraft creates a draft session. A scheduled draft waits for OpenDraft
// before the first turn starts.
func (s *Service) StartDraft(ctx context.Context, roster []profile.Profile, captains []draft.Captain, limit time.Duration, scheduled bool) (types.Draft, error) {
	begin := draft.Start
	if scheduled {
		begin = draft.Schedule
	}
	id := uuid.NewString()
	sess, err := begin(roster, captains, limit, draft.WithID(id), draft.WithClock(s.clock))
	if err != nil {
		metrics.RecordDraftRejection(rejectionKind(err))
		return types.Draft{}, err
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return types.Draft{}, err
	}
	metrics.RecordDraftStarted()
	s.logger.Info(ctx, "draft created",
		logger.String("draftID", id),
		logger.String("status", string(sess.Status())),
		logger.Int("participants", len(roster)),
		logger.Int("teams", len(captains)),
		logger.Duration("roundTimeLimit", limit),
	)
	return types.FromSession(sess, s.clock.Now()), nil
}

// Draft returns the current view of a draft. Drafts evicted from memory are
// read back from the archive.
func (s *Service) Draft(ctx context.Context, id string) (types.Draft, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err == nil {
		return types.FromSession(sess, s.clock.Now()), nil
	}
	if s.archive == nil || !errors.Is(err, repository.ErrNotFound) {
		return types.Draft{}, err
	}
	d, aerr := s.archive.LoadDraft(ctx, id)
	if errors.Is(aerr, archive.ErrNotFound) {
		return types.Draft{}, err
	}
	if aerr != nil {
		return types.Draft{}, fmt.Errorf("load archived draft %q: %w", id, aerr)
	}
	return d, nil
}

// Formation returns an archived balancing run.
func (s *Service) Formation(ctx context.Context, runID string) (types.Formation, error) {
	if s.archive == nil {
		return types.Formation{}, fmt.Errorf("formation %q: %w", runID, repository.ErrNotFound)
	}
	f, err := s.archive.LoadTeams(ctx, runID)
	if errors.Is(err, archive.ErrNotFound) {
		return types.Formation{}, fmt.Errorf("formation %q: %w", runID, repository.ErrNotFound)
	}
	if err != nil {
		return types.Formation{}, fmt.Errorf("load formation %q: %w", runID, err)
	}
	return f, nil
}

// SubmitPick records a captain's selection. A non-empty requestID makes the
// call idempotent: a repeated request returns the current state without
// picking again. The request ID is checked under the draft's lock, so a
// repeat that races the first call sees its outcome.
func (s *Service) SubmitPick(ctx context.Context, id, requestID, teamID, participantID, reason string) (types.Draft, error) {
	key := id + "/" + requestID
	duplicate := false
	d, err := s.transition(ctx, id, "pick", func(cur *draft.Session) (*draft.Session, error) {
		if requestID != "" && s.requests.SeenAndRecord(ctx, key) {
			duplicate = true
			return nil, nil
		}
		next, err := cur.SubmitPick(teamID, participantID, reason)
		if err != nil && requestID != "" {
			s.requests.Unrecord(ctx, key)
		}
		return next, err
	})
	switch {
	case err != nil:
	case duplicate:
		s.logger.Debug(ctx, "duplicate pick request", logger.String("draftID", id), logger.String("requestID", requestID))
	default:
		metrics.RecordPick()
	}
	return d, err
}

// SkipPick passes the current turn of teamID.
func (s *Service) SkipPick(ctx context.Context, id, teamID string) (types.Draft, error) {
	d, err := s.transition(ctx, id, "skip", func(cur *draft.Session) (*draft.Session, error) {
		return cur.SkipPick(teamID)
	})
	if err == nil {
		metrics.RecordSkip("manual")
	}
	return d, err
}

// OpenDraft starts a scheduled draft.
func (s *Service) OpenDraft(ctx context.Context, id string) (types.Draft, error) {
	return s.transition(ctx, id, "open", (*draft.Session).Open)
}

// PauseDraft suspends a draft and its turn timer.
func (s *Service) PauseDraft(ctx context.Context, id string) (types.Draft, error) {
	return s.transition(ctx, id, "pause", (*draft.Session).Pause)
}

// ResumeDraft continues a paused draft.
func (s *Service) ResumeDraft(ctx context.Context, id string) (types.Draft, error) {
	return s.transition(ctx, id, "resume", (*draft.Session).Resume)
}

// EndDraft completes a draft early.
func (s *Service) EndDraft(ctx context.Context, id string) (types.Draft, error) {
	return s.transition(ctx, id, "end", (*draft.Session).End)
}

func (s *Service) transition(ctx context.Context, id, op string, fn repository.Transition) (types.Draft, error) {
	var before draft.Status
	next, err := s.sessions.Update(ctx, id, func(cur *draft.Session) (*draft.Session, error) {
		before = cur.Status()
		return fn(cur)
	})
	if err != nil {
		metrics.RecordDraftRejection(rejectionKind(err))
		s.logger.Debug(ctx, "draft transition rejected",
			logger.String("draftID", id),
			logger.String("op", op),
			logger.Error(err),
		)
		return types.Draft{}, err
	}
	if before != draft.Completed && next.Status() == draft.Completed {
		s.completed(ctx, next)
	}
	return types.FromSession(next, s.clock.Now()), nil
}

func (s *Service) completed(ctx context.Context, sess *draft.Session) {
	s.finishedMu.Lock()
	s.finished[sess.ID()] = s.clock.Now()
	s.finishedMu.Unlock()

	metrics.RecordDraftCompleted()
	s.logger.Info(ctx, "draft completed",
		logger.String("draftID", sess.ID()),
		logger.Int("picks", sess.Selections()),
		logger.Int("unassigned", len(sess.RemainingPool())),
	)
	if s.archive == nil {
		return
	}
	if err := s.archive.SaveDraft(ctx, sess); err != nil {
		metrics.RecordErrorByComponent("archive", "save_draft")
		s.logger.Warn(ctx, "failed to archive draft", logger.String("draftID", sess.ID()), logger.Error(err))
	}
}

// runTurnTimer skips turns whose budget ran out until ctx is done.
func (s *Service) runTurnTimer(ctx context.Context) {
	ticker := time.NewTicker(s.turnCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SkipExpiredTurns(ctx)
			s.EvictFinishedDrafts(ctx)
		}
	}
}

// SkipExpiredTurns records a timeout for every draft whose current turn has
// used its budget, and returns how many turns were skipped.
func (s *Service) SkipExpiredTurns(ctx context.Context) int {
	skipped := 0
	for _, id := range s.sessions.IDs() {
		var team string
		_, err := s.sessions.Update(ctx, id, func(cur *draft.Session) (*draft.Session, error) {
			if !cur.Expired(s.clock.Now()) {
				return nil, nil
			}
			_, team, _ = cur.CurrentTeam()
			return cur.SkipPick(team)
		})
		switch {
		case err != nil:
			if !errors.Is(err, repository.ErrNotFound) && ctx.Err() == nil {
				s.logger.Warn(ctx, "turn timeout failed", logger.String("draftID", id), logger.Error(err))
			}
		case team != "":
			skipped++
			metrics.RecordSkip("timeout")
			s.logger.Debug(ctx, "turn timed out", logger.String("draftID", id), logger.String("teamID", team))
		}
	}
	return skipped
}

// EvictFinishedDrafts drops completed drafts that finished more than the
// retention period ago and returns how many were dropped.
func (s *Service) EvictFinishedDrafts(ctx context.Context) int {
	cutoff := s.clock.Now().Add(-s.draftRetention)
	var due []string
	s.finishedMu.Lock()
	for id, at := range s.finished {
		if !at.After(cutoff) {
			due = append(due, id)
			delete(s.finished, id)
		}
	}
	s.finishedMu.Unlock()

	evicted := 0
	for _, id := range due {
		if err := s.sessions.Delete(ctx, id); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				s.logger.Warn(ctx, "failed to evict draft", logger.String("draftID", id), logger.Error(err))
			}
			continue
		}
		evicted++
		s.logger.Debug(ctx, "draft evicted", logger.String("draftID", id))
	}
	return evicted
}

// SubmitXP accepts an XP event for asynchronous scoring. duplicate is true
// when the event ID was already accepted; eventqueue.ErrFull signals
// backpressure.
func (s *Service) SubmitXP(ctx context.Context, e model.XPEvent) (duplicate bool, err error) {
	if s.events.SeenAndRecord(ctx, e.EventID) {
		metrics.RecordXPEventDuplicate()
		return true, nil
	}
	if err := s.eventQueue.Enqueue(ctx, e); err != nil {
		s.events.Unrecord(ctx, e.EventID)
		return false, err
	}
	s.logger.Debug(ctx, "xp event queued",
		logger.String("eventID", e.EventID),
		logger.String("participantID", e.ParticipantID),
		logger.String("activity", e.Activity),
	)
	return false, nil
}

// TopN returns the top N leaderboard entries.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	entries, err := s.leaderboard.TopN(ctx, n)
	if err != nil {
		return nil, err
	}
	out := make([]types.Entry, len(entries))
	for i, e := range entries {
		out[i] = types.Entry{Rank: e.Rank, ParticipantID: e.ParticipantID, XP: e.XP}
	}
	return out, nil
}

// Rank returns the rank and XP for a participant.
func (s *Service) Rank(ctx context.Context, participantID string) (types.Entry, error) {
	e, err := s.leaderboard.Rank(ctx, participantID)
	if err != nil {
		return types.Entry{}, err
	}
	return types.Entry{Rank: e.Rank, ParticipantID: e.ParticipantID, XP: e.XP}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	queueLen := s.eventQueue.Len()
	participants := s.leaderboard.Count(ctx)
	stats := map[string]interface{}{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"queueLength":  queueLen,
		"dedupeSize":   s.events.Size(),
		"drafts":       s.sessions.Len(),
		"finished":     s.finishedLen(),
		"participants": participants,
		"archive":      s.archive != nil,
	}
	if s.workerPool != nil {
		ps := s.workerPool.Stats()
		stats["processed"] = ps.Processed
		stats["failed"] = ps.Failed
	}

	metrics.UpdateQueueSize(queueLen)
	metrics.UpdateTotalParticipants(participants)
	return stats
}

func (s *Service) finishedLen() int {
	s.finishedMu.Lock()
	defer s.finishedMu.Unlock()
	return len(s.finished)
}

func rejectionKind(err error) string {
	switch {
	case errors.Is(err, draft.ErrOutOfTurn):
		return "out_of_turn"
	case errors.Is(err, draft.ErrInvalidSelection):
		return "invalid_selection"
	case errors.Is(err, draft.ErrInvalidStateTransition):
		return "invalid_transition"
	case errors.Is(err, draft.ErrInvalidConfiguration), errors.Is(err, profile.ErrValidation):
		return "invalid_configuration"
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	default:
		return "other"
	}
}
