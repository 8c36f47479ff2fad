package simulate

import (
	"errors"
	"fmt"

	"github.com/okian/teamforge/internal/domain/balance"
	"github.com/okian/teamforge/internal/domain/draft"
	"github.com/okian/teamforge/internal/domain/profile"
)

// ErrNoProgress is returned when a strategy keeps the draft from finishing.
var ErrNoProgress = errors.New("auto draft made no progress")

// Strategy chooses a participant from pool for team. Returning ok=false
// skips the turn.
type Strategy func(pool []profile.Profile, team balance.Team) (choice profile.Profile, ok bool)

// BestAvailable always takes the strongest remaining participant.
func BestAvailable(pool []profile.Profile, _ balance.Team) (profile.Profile, bool) {
	if len(pool) == 0 {
		return profile.Profile{}, false
	}
	return balance.Rank(pool)[0], true
}

// RoleFirst takes the strongest participant whose preferred role the team
// lacks, falling back to the strongest overall.
func RoleFirst(pool []profile.Profile, team balance.Team) (profile.Profile, bool) {
	have := make(map[profile.Role]bool, len(team.Members))
	for _, m := range team.Members {
		have[m.Role()] = true
	}
	ranked := balance.Rank(pool)
	for _, p := range ranked {
		if !have[p.Role()] {
			return p, true
		}
	}
	return BestAvailable(pool, team)
}

// AutoDraft plays s to completion with strategy, returning the final session.
// Every consecutive run of skips longer than one full round aborts with
// ErrNoProgress.
func AutoDraft(s *draft.Session, strategy Strategy) (*draft.Session, error) {
	skips := 0
	for s.Status() == draft.Active {
		idx, teamID, _ := s.CurrentTeam()
		choice, ok := strategy(s.RemainingPool(), s.Teams()[idx])

		var err error
		if ok {
			s, err = s.SubmitPick(teamID, choice.ID(), "auto")
			skips = 0
		} else {
			s, err = s.SkipPick(teamID)
			skips++
		}
		if err != nil {
			return nil, fmt.Errorf("auto draft turn for %s: %w", teamID, err)
		}
		if skips > len(s.Teams()) {
			return nil, ErrNoProgress
		}
	}
	return s, nil
}
