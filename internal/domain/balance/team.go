// Package balance partitions a roster into teams of balanced strength.
package balance

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/teamforge/internal/domain/profile"
)

// perfectBalance is the score of a team with no measurable skill spread.
const perfectBalance = 10.0

const teamIDPrefix = "team-"

// Team is one group of participants with its derived metrics. Build teams
// with NewTeam or WithMember so the derived fields always match Members.
type Team struct {
	ID              string
	Name            string
	Members         []profile.Profile
	AverageStrength float64
	BalanceScore    float64
	RoleCoverage    int
}

// NewTeam builds a team and computes every derived field from members.
func NewTeam(id, name string, members []profile.Profile) Team {
	m := make([]profile.Profile, len(members))
	copy(m, members)
	return Team{
		ID:              id,
		Name:            name,
		Members:         m,
		AverageStrength: averageStrength(m),
		BalanceScore:    balanceScore(m),
		RoleCoverage:    roleCoverage(m),
	}
}

// WithMember returns a copy of t with p appended and all derived fields
// recomputed. t itself is left untouched.
func (t Team) WithMember(p profile.Profile) Team {
	m := make([]profile.Profile, 0, len(t.Members)+1)
	m = append(m, t.Members...)
	m = append(m, p)
	return NewTeam(t.ID, t.Name, m)
}

// Size is the member count.
func (t Team) Size() int { return len(t.Members) }

// MemberIDs lists member participant IDs in pick order.
func (t Team) MemberIDs() []string {
	ids := make([]string, len(t.Members))
	for i, p := range t.Members {
		ids[i] = p.ID()
	}
	return ids
}

// TeamID returns the identifier of the team at bucket index i (0-based).
func TeamID(i int) string { return teamIDPrefix + strconv.Itoa(i+1) }

// teamOrdinal extracts the numeric suffix of a generated team ID; foreign IDs
// sort after generated ones.
func teamOrdinal(id string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(id, teamIDPrefix))
	if err != nil || !strings.HasPrefix(id, teamIDPrefix) {
		return math.MaxInt
	}
	return n
}

// DefaultName is the label used when no theme labels are supplied.
func DefaultName(i int) string { return fmt.Sprintf("Team %d", i+1) }

func averageStrength(members []profile.Profile) float64 {
	if len(members) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range members {
		sum += p.OverallStrength()
	}
	return sum / float64(len(members))
}

// balanceScore is 10 - sqrt(variance of the per-skill member averages).
// Teams with fewer than two members score a perfect 10 by convention.
func balanceScore(members []profile.Profile) float64 {
	if len(members) < 2 {
		return perfectBalance
	}
	dims := profile.Dimensions()
	avgs := make([]float64, len(dims))
	for i, d := range dims {
		sum := 0
		for _, p := range members {
			sum += p.Rating(d)
		}
		avgs[i] = float64(sum) / float64(len(members))
	}
	score := perfectBalance - math.Sqrt(variance(avgs))
	return math.Max(0, math.Min(perfectBalance, score))
}

// variance is the population variance of xs.
func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	v := 0.0
	for _, x := range xs {
		v += (x - mean) * (x - mean)
	}
	return v / float64(len(xs))
}

func roleCoverage(members []profile.Profile) int {
	seen := make(map[profile.Role]struct{}, len(members))
	for _, p := range members {
		seen[p.Role()] = struct{}{}
	}
	return len(seen)
}
