package balance

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/okian/teamforge/internal/domain/profile"
)

// Form partitions roster into balanced teams.
//
// Exactly one of WithTeamCount or WithTargetTeamSize must be supplied.
// Participants are ranked by overall strength (desc, participant ID asc)
// and dealt into teams in snake order: 0..n-1, n-1..0, 0..n-1, ...
// The result is ordered by team ID and is a pure function of the roster
// order and options.
func Form(roster []profile.Profile, opts ...Option) ([]Team, error) {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	n, err := cfg.teamCount(len(roster))
	if err != nil {
		return nil, err
	}
	if err := profile.ValidateRoster(roster); err != nil {
		return nil, fmt.Errorf("invalid roster: %w: %w", err, ErrInvalidConfiguration)
	}

	ordered := Rank(roster)
	if cfg.tieSeed != nil {
		shuffleTies(ordered, *cfg.tieSeed)
	}

	buckets := make([][]profile.Profile, n)
	for i, p := range ordered {
		b := SnakeIndex(i, n)
		buckets[b] = append(buckets[b], p)
	}

	teams := make([]Team, n)
	for i := range buckets {
		teams[i] = NewTeam(TeamID(i), cfg.label(i), buckets[i])
	}
	SortByID(teams)
	return teams, nil
}

// SnakeIndex returns the bucket for the i-th pick (0-based) across n buckets.
// Even rounds run forward and odd rounds run backward, so the bucket that
// picks last in one round picks first in the next.
func SnakeIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	round, pos := i/n, i%n
	if round%2 == 0 {
		return pos
	}
	return n - 1 - pos
}

// Rank returns a copy of roster ordered by overall strength descending, ties
// broken by participant ID ascending.
func Rank(roster []profile.Profile) []profile.Profile {
	out := make([]profile.Profile, len(roster))
	copy(out, roster)
	sort.SliceStable(out, func(i, j int) bool { return Stronger(out[i], out[j]) })
	return out
}

// Stronger is the total order used for ranking.
func Stronger(a, b profile.Profile) bool {
	sa, sb := a.OverallStrength(), b.OverallStrength()
	if sa != sb {
		return sa > sb
	}
	return a.ID() < b.ID()
}

// SortByID orders teams by the numeric suffix of their generated IDs.
func SortByID(teams []Team) {
	sort.SliceStable(teams, func(i, j int) bool {
		oi, oj := teamOrdinal(teams[i].ID), teamOrdinal(teams[j].ID)
		if oi != oj {
			return oi < oj
		}
		return teams[i].ID < teams[j].ID
	})
}

// Spread is the largest difference in average strength between any two teams.
func Spread(teams []Team) float64 {
	if len(teams) == 0 {
		return 0
	}
	lo, hi := teams[0].AverageStrength, teams[0].AverageStrength
	for _, t := range teams[1:] {
		if t.AverageStrength < lo {
			lo = t.AverageStrength
		}
		if t.AverageStrength > hi {
			hi = t.AverageStrength
		}
	}
	return hi - lo
}

// shuffleTies permutes each run of equally strong participants with a
// seeded source. The run boundaries, and so the snake buckets each strength
// level lands in, are unchanged.
func shuffleTies(ordered []profile.Profile, seed int64) {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible tie-breaking, not security
	for start := 0; start < len(ordered); {
		end := start + 1
		for end < len(ordered) && ordered[end].OverallStrength() == ordered[start].OverallStrength() {
			end++
		}
		run := ordered[start:end]
		rng.Shuffle(len(run), func(i, j int) { run[i], run[j] = run[j], run[i] })
		start = end
	}
}
