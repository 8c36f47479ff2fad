// Package types contains the JSON read shapes shared by the HTTP API, the
// CLI and the archive.
package types

import (
	"time"

	"github.com/okian/teamforge/internal/domain/balance"
	"github.com/okian/teamforge/internal/domain/draft"
	"github.com/okian/teamforge/internal/domain/profile"
)

// Entry represents a leaderboard entry
type Entry struct {
	Rank          int     `json:"rank"`
	ParticipantID string  `json:"participant_id"`
	XP            float64 `json:"xp"`
}

// Member is a participant as shown on a team or in the pool.
type Member struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Role     string         `json:"role"`
	Skills   map[string]int `json:"skills"`
	Strength float64        `json:"strength"`
}

// Team is a formed or drafting team.
type Team struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Members         []Member `json:"members"`
	AverageStrength float64  `json:"average_strength"`
	BalanceScore    float64  `json:"balance_score"`
	RoleCoverage    int      `json:"role_coverage"`
}

// Formation is the result of one balancing run.
type Formation struct {
	RunID  string  `json:"run_id"`
	Teams  []Team  `json:"teams"`
	Spread float64 `json:"spread"`
}

// Pick is one entry of a draft log.
type Pick struct {
	Number        int       `json:"number"`
	TeamID        string    `json:"team_id"`
	ParticipantID string    `json:"participant_id,omitempty"`
	Kind          string    `json:"kind"`
	At            time.Time `json:"at"`
	ElapsedMS     int64     `json:"elapsed_ms"`
	Reason        string    `json:"reason,omitempty"`
}

// Draft is the full view of a draft session.
type Draft struct {
	ID                    string     `json:"id"`
	Status                string     `json:"status"`
	Round                 int        `json:"round"`
	PickIndex             int        `json:"pick_index"`
	CurrentTeamID         string     `json:"current_team_id,omitempty"`
	Captains              []string   `json:"captains"`
	RoundTimeLimitSeconds int        `json:"round_time_limit_seconds"`
	TurnStartedAt         *time.Time `json:"turn_started_at,omitempty"`
	TimeRemainingMS       *int64     `json:"time_remaining_ms,omitempty"`
	Teams                 []Team     `json:"teams"`
	Pool                  []Member   `json:"pool"`
	Picks                 []Pick     `json:"picks"`
}

// FromProfile converts a profile.
func FromProfile(p profile.Profile) Member {
	skills := make(map[string]int, len(profile.Dimensions()))
	for s, v := range p.Skills() {
		skills[string(s)] = v
	}
	return Member{
		ID:       p.ID(),
		Name:     p.DisplayName(),
		Role:     string(p.Role()),
		Skills:   skills,
		Strength: p.OverallStrength(),
	}
}

// FromProfiles converts a slice, never returning nil.
func FromProfiles(ps []profile.Profile) []Member {
	out := make([]Member, 0, len(ps))
	for _, p := range ps {
		out = append(out, FromProfile(p))
	}
	return out
}

// FromTeam converts a team.
func FromTeam(t balance.Team) Team {
	return Team{
		ID:              t.ID,
		Name:            t.Name,
		Members:         FromProfiles(t.Members),
		AverageStrength: t.AverageStrength,
		BalanceScore:    t.BalanceScore,
		RoleCoverage:    t.RoleCoverage,
	}
}

// FromTeams converts teams in order.
func FromTeams(ts []balance.Team) []Team {
	out := make([]Team, 0, len(ts))
	for _, t := range ts {
		out = append(out, FromTeam(t))
	}
	return out
}

// FromSession renders s as seen at now.
func FromSession(s *draft.Session, now time.Time) Draft {
	teams := s.Teams()
	d := Draft{
		ID:                    s.ID(),
		Status:                string(s.Status()),
		Round:                 s.Round(),
		PickIndex:             s.CurrentPickIndex(),
		Captains:              make([]string, len(teams)),
		RoundTimeLimitSeconds: int(s.RoundTimeLimit() / time.Second),
		Teams:                 FromTeams(teams),
		Pool:                  FromProfiles(s.RemainingPool()),
		Picks:                 []Pick{},
	}
	for i := range teams {
		d.Captains[i] = s.Captain(i)
	}
	if _, teamID, ok := s.CurrentTeam(); ok {
		d.CurrentTeamID = teamID
	}
	if started := s.TurnStartedAt(); !started.IsZero() && s.Status() != draft.Completed {
		d.TurnStartedAt = &started
	}
	if left, ok := s.TurnTimeRemaining(now); ok {
		ms := left.Milliseconds()
		d.TimeRemainingMS = &ms
	}
	for _, p := range s.Picks() {
		d.Picks = append(d.Picks, Pick{
			Number:        p.Number,
			TeamID:        p.TeamID,
			ParticipantID: p.ParticipantID,
			Kind:          string(p.Kind),
			At:            p.At,
			ElapsedMS:     p.Elapsed.Milliseconds(),
			Reason:        p.Reason,
		})
	}
	return d
}
