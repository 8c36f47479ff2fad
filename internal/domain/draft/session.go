// Package draft implements pick-by-pick team formation.
//
// A Session is a value: every transition validates its preconditions and
// returns a fresh Session, leaving the receiver untouched. Rejected calls
// return a nil Session and an error, so the caller's prior state stays
// valid. The package keeps no timers; an external clock decides when a turn
// has run out and calls SkipPick.
package draft

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/teamforge/internal/domain/balance"
	"github.com/okian/teamforge/internal/domain/profile"
)

// Status is the lifecycle state of a Session.
type Status string

// Session states.
const (
	Scheduled Status = "scheduled"
	Active    Status = "active"
	Paused    Status = "paused"
	Completed Status = "completed"
)

// PickKind distinguishes captain selections from timed-out turns.
type PickKind string

// Pick kinds.
const (
	Selection PickKind = "selection"
	Timeout   PickKind = "timeout"
)

// Pick is one entry in the session log.
type Pick struct {
	Number        int
	TeamID        string
	ParticipantID string // empty for a timeout
	Kind          PickKind
	At            time.Time
	Elapsed       time.Duration
	Reason        string
}

// Captain assigns a participant to lead one team.
type Captain struct {
	TeamName      string
	ParticipantID string
}

// Session is the state of one draft.
type Session struct {
	id            string
	status        Status
	pool          []profile.Profile
	teams         []balance.Team
	captains      []string
	turn          int
	picks         []Pick
	limit         time.Duration
	turnStartedAt time.Time
	pausedElapsed time.Duration
	clock         Clock
}

// Start validates the setup and returns an Active session.
func Start(roster []profile.Profile, captains []Captain, roundTimeLimit time.Duration, opts ...Option) (*Session, error) {
	s, err := newSession(roster, captains, roundTimeLimit, opts)
	if err != nil {
		return nil, err
	}
	s.status = Active
	s.turnStartedAt = s.clock.Now()
	return s, nil
}

// Schedule validates the setup and returns a Scheduled session; call Open to
// begin picking.
func Schedule(roster []profile.Profile, captains []Captain, roundTimeLimit time.Duration, opts ...Option) (*Session, error) {
	s, err := newSession(roster, captains, roundTimeLimit, opts)
	if err != nil {
		return nil, err
	}
	s.status = Scheduled
	return s, nil
}

func newSession(roster []profile.Profile, captains []Captain, limit time.Duration, opts []Option) (*Session, error) {
	s := &Session{clock: systemClock{}}
	for _, opt := range opts {
		opt(s)
	}

	if len(roster) == 0 {
		return nil, fmt.Errorf("roster is empty: %w", ErrInvalidConfiguration)
	}
	if err := profile.ValidateRoster(roster); err != nil {
		return nil, fmt.Errorf("invalid roster: %w: %w", err, ErrInvalidConfiguration)
	}
	if len(captains) < 2 {
		return nil, fmt.Errorf("need at least 2 captains, got %d: %w", len(captains), ErrInvalidConfiguration)
	}
	if len(captains) > len(roster) {
		return nil, fmt.Errorf("%d captains for %d participants: %w", len(captains), len(roster), ErrInvalidConfiguration)
	}
	if limit < 0 {
		return nil, fmt.Errorf("negative round time limit %s: %w", limit, ErrInvalidConfiguration)
	}

	known := make(map[string]struct{}, len(roster))
	for _, p := range roster {
		known[p.ID()] = struct{}{}
	}
	seen := make(map[string]struct{}, len(captains))
	s.teams = make([]balance.Team, len(captains))
	s.captains = make([]string, len(captains))
	for i, c := range captains {
		id := strings.TrimSpace(c.ParticipantID)
		if _, ok := known[id]; !ok {
			return nil, fmt.Errorf("captain %q is not in the roster: %w", id, ErrInvalidConfiguration)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("participant %q captains more than one team: %w", id, ErrInvalidConfiguration)
		}
		seen[id] = struct{}{}

		name := strings.TrimSpace(c.TeamName)
		if name == "" {
			name = balance.DefaultName(i)
		}
		s.teams[i] = balance.NewTeam(balance.TeamID(i), name, nil)
		s.captains[i] = id
	}

	s.pool = make([]profile.Profile, len(roster))
	copy(s.pool, roster)
	s.limit = limit
	return s, nil
}

// Open moves a Scheduled session to Active and starts the first turn.
func (s *Session) Open() (*Session, error) {
	if s.status != Scheduled {
		return nil, transitionError("open", s.status)
	}
	next := s.clone()
	next.status = Active
	next.turnStartedAt = next.clock.Now()
	return next, nil
}

// SubmitPick assigns participantID to teamID's roster on teamID's turn.
func (s *Session) SubmitPick(teamID, participantID, reason string) (*Session, error) {
	idx, err := s.checkTurn(teamID)
	if err != nil {
		return nil, err
	}
	at := s.indexInPool(participantID)
	if at < 0 {
		if s.assigned(participantID) {
			return nil, fmt.Errorf("participant %q has already been picked: %w", participantID, ErrInvalidSelection)
		}
		return nil, fmt.Errorf("participant %q is not in this draft: %w", participantID, ErrInvalidSelection)
	}

	now := s.clock.Now()
	next := s.clone()
	chosen := next.pool[at]
	next.pool = append(next.pool[:at:at], next.pool[at+1:]...)
	next.teams[idx] = next.teams[idx].WithMember(chosen)
	next.record(idx, chosen.ID(), Selection, strings.TrimSpace(reason), now)
	if len(next.pool) == 0 {
		next.status = Completed
	}
	return next, nil
}

// SkipPick passes teamID's turn without an assignment, e.g. when its timer
// ran out. Skips never complete a draft.
func (s *Session) SkipPick(teamID string) (*Session, error) {
	idx, err := s.checkTurn(teamID)
	if err != nil {
		return nil, err
	}
	next := s.clone()
	next.record(idx, "", Timeout, "", s.clock.Now())
	return next, nil
}

// Pause suspends an Active session. The running turn's elapsed time is kept.
func (s *Session) Pause() (*Session, error) {
	if s.status != Active {
		return nil, transitionError("pause", s.status)
	}
	next := s.clone()
	next.status = Paused
	next.pausedElapsed = nonNegative(next.clock.Now().Sub(next.turnStartedAt))
	return next, nil
}

// Resume reactivates a Paused session; the current turn continues with the
// time it had left.
func (s *Session) Resume() (*Session, error) {
	if s.status != Paused {
		return nil, transitionError("resume", s.status)
	}
	next := s.clone()
	next.status = Active
	next.turnStartedAt = next.clock.Now().Add(-next.pausedElapsed)
	next.pausedElapsed = 0
	return next, nil
}

// End completes an Active or Paused session early. Participants still in
// the pool stay unassigned.
func (s *Session) End() (*Session, error) {
	if s.status != Active && s.status != Paused {
		return nil, transitionError("end", s.status)
	}
	next := s.clone()
	next.status = Completed
	return next, nil
}

// checkTurn returns the index of teamID if it may act now.
func (s *Session) checkTurn(teamID string) (int, error) {
	if s.status != Active {
		return 0, transitionError("pick", s.status)
	}
	idx := s.teamIndex(teamID)
	if idx < 0 {
		return 0, fmt.Errorf("team %q is not part of this draft: %w", teamID, ErrOutOfTurn)
	}
	cur := balance.SnakeIndex(s.turn, len(s.teams))
	if idx != cur {
		return 0, fmt.Errorf("it's not %s's turn yet, %s is picking: %w", s.teams[idx].Name, s.teams[cur].Name, ErrOutOfTurn)
	}
	return idx, nil
}

func (s *Session) record(team int, participantID string, kind PickKind, reason string, now time.Time) {
	s.picks = append(s.picks, Pick{
		Number:        s.turn + 1,
		TeamID:        s.teams[team].ID,
		ParticipantID: participantID,
		Kind:          kind,
		At:            now,
		Elapsed:       nonNegative(now.Sub(s.turnStartedAt)),
		Reason:        reason,
	})
	s.turn++
	s.turnStartedAt = now
}

func (s *Session) clone() *Session {
	next := *s
	next.pool = append([]profile.Profile(nil), s.pool...)
	next.teams = append([]balance.Team(nil), s.teams...)
	next.captains = append([]string(nil), s.captains...)
	next.picks = append([]Pick(nil), s.picks...)
	return &next
}

func (s *Session) teamIndex(teamID string) int {
	for i, t := range s.teams {
		if t.ID == teamID {
			return i
		}
	}
	return -1
}

func (s *Session) indexInPool(participantID string) int {
	for i, p := range s.pool {
		if p.ID() == participantID {
			return i
		}
	}
	return -1
}

func (s *Session) assigned(participantID string) bool {
	for _, t := range s.teams {
		for _, p := range t.Members {
			if p.ID() == participantID {
				return true
			}
		}
	}
	return false
}

func transitionError(op string, from Status) error {
	return fmt.Errorf("cannot %s a %s draft: %w", op, from, ErrInvalidStateTransition)
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
