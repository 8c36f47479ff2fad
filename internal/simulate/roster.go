// Package simulate generates synthetic rosters and plays out drafts
// automatically. The CLI uses it for dry runs; tests use it to cover many
// roster shapes with reproducible seeds.
package simulate

import (
	"fmt"
	"math/rand"

	"github.com/okian/teamforge/internal/domain/profile"
)

// Performer bands for generated ratings, inclusive.
type band struct{ lo, hi int }

var bands = []band{
	{1, 4},  // beginner
	{3, 7},  // developing
	{5, 8},  // proficient
	{7, 10}, // advanced
	{1, 10}, // uneven
}

var firstNames = []string{
	"Ada", "Grace", "Alan", "Katherine", "Linus", "Margaret", "Dennis", "Barbara",
	"Ken", "Radia", "Guido", "Frances", "Tim", "Hedy", "John", "Annie",
}

var roles = []profile.Role{profile.Leader, profile.Coder, profile.Tester, profile.Designer}

// Roster generates n valid profiles with IDs s-001, s-002, ... drawn from rng.
func Roster(rng *rand.Rand, n int) []profile.Profile {
	out := make([]profile.Profile, 0, n)
	for i := 0; i < n; i++ {
		b := bands[rng.Intn(len(bands))]
		skills := make(map[profile.Skill]int, len(profile.Dimensions()))
		for _, d := range profile.Dimensions() {
			skills[d] = b.lo + rng.Intn(b.hi-b.lo+1)
		}
		name := fmt.Sprintf("%s %c.", firstNames[rng.Intn(len(firstNames))], 'A'+rune(i%26))
		p, err := profile.New(fmt.Sprintf("s-%03d", i+1), name, skills, roles[rng.Intn(len(roles))])
		if err != nil {
			// Generated ratings are always inside the valid range.
			panic(err)
		}
		out = append(out, p)
	}
	return out
}

// Uniform builds a profile whose five ratings sum to total (5..50), spread as
// evenly as possible. It is handy for rosters with exact strength steps.
func Uniform(id string, total int, role profile.Role) (profile.Profile, error) {
	dims := profile.Dimensions()
	skills := make(map[profile.Skill]int, len(dims))
	base, extra := total/len(dims), total%len(dims)
	for i, d := range dims {
		skills[d] = base
		if i < extra {
			skills[d]++
		}
	}
	return profile.New(id, id, skills, role)
}
