package draft

import (
	"time"

	"github.com/okian/teamforge/internal/domain/balance"
	"github.com/okian/teamforge/internal/domain/profile"
)

// ID returns the session identifier set with WithID.
func (s *Session) ID() string { return s.id }

// Status returns the lifecycle state.
func (s *Session) Status() Status { return s.status }

// RemainingPool returns the unassigned participants in roster order.
func (s *Session) RemainingPool() []profile.Profile {
	return append([]profile.Profile(nil), s.pool...)
}

// Teams returns the teams in turn-slot order.
func (s *Session) Teams() []balance.Team {
	return append([]balance.Team(nil), s.teams...)
}

// Captain returns the captain participant ID of the team at index i.
func (s *Session) Captain(i int) string {
	if i < 0 || i >= len(s.captains) {
		return ""
	}
	return s.captains[i]
}

// Picks returns the pick log, including timeouts.
func (s *Session) Picks() []Pick {
	return append([]Pick(nil), s.picks...)
}

// CurrentPickIndex counts turns taken so far, picks and skips alike.
func (s *Session) CurrentPickIndex() int { return s.turn }

// Selections counts accepted picks, excluding timeouts.
func (s *Session) Selections() int {
	n := 0
	for _, p := range s.picks {
		if p.Kind == Selection {
			n++
		}
	}
	return n
}

// CurrentTeam returns the index and ID of the team whose turn it is. ok is
// false once the draft is completed.
func (s *Session) CurrentTeam() (idx int, teamID string, ok bool) {
	if s.status == Completed || len(s.teams) == 0 {
		return 0, "", false
	}
	idx = balance.SnakeIndex(s.turn, len(s.teams))
	return idx, s.teams[idx].ID, true
}

// Round is the 1-indexed round of the current turn.
func (s *Session) Round() int {
	if len(s.teams) == 0 {
		return 0
	}
	return s.turn/len(s.teams) + 1
}

// TurnOrder returns the team indices of the next k turns, starting with the
// current one. It returns nil when k is not positive.
func (s *Session) TurnOrder(k int) []int {
	if k <= 0 {
		return nil
	}
	out := make([]int, 0, k)
	for i := 0; i < k; i++ {
		out = append(out, balance.SnakeIndex(s.turn+i, len(s.teams)))
	}
	return out
}

// RoundTimeLimit is the per-turn budget; zero means unlimited.
func (s *Session) RoundTimeLimit() time.Duration { return s.limit }

// TurnStartedAt is when the current turn opened.
func (s *Session) TurnStartedAt() time.Time { return s.turnStartedAt }

// TurnTimeRemaining reports how much of the current turn's budget is left at
// now. ok is false when the draft is not Active or has no limit.
func (s *Session) TurnTimeRemaining(now time.Time) (remaining time.Duration, ok bool) {
	if s.status != Active || s.limit == 0 {
		return 0, false
	}
	return nonNegative(s.limit - now.Sub(s.turnStartedAt)), true
}

// Expired reports whether the current turn has used up its budget at now.
func (s *Session) Expired(now time.Time) bool {
	remaining, ok := s.TurnTimeRemaining(now)
	return ok && remaining == 0
}

// TeamForTurn is the team index acting on 0-based turn in a draft of
// teamCount teams: forward in odd rounds, reversed in even ones.
func TeamForTurn(turn, teamCount int) int { return balance.SnakeIndex(turn, teamCount) }
