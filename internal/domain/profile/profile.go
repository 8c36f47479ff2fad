// Package profile models a participant's multi-dimensional skill ratings.
//
// A Profile is an immutable snapshot: it is validated once at construction
// and every accessor hands out copies, so balancing and drafting code can
// share profiles freely without synchronization.
package profile

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Rating bounds, inclusive.
const (
	MinRating = 1
	MaxRating = 10
)

// Skill names one rated dimension.
type Skill string

// The fixed skill dimensions every profile carries.
const (
	ProblemSolving Skill = "problemSolving"
	Coding         Skill = "coding"
	Debugging      Skill = "debugging"
	Creativity     Skill = "creativity"
	Collaboration  Skill = "collaboration"
)

var dimensions = []Skill{ProblemSolving, Coding, Debugging, Creativity, Collaboration}

// Dimensions returns the required skill dimensions in canonical order.
func Dimensions() []Skill {
	out := make([]Skill, len(dimensions))
	copy(out, dimensions)
	return out
}

// ParseSkill resolves a skill name case-insensitively.
func ParseSkill(s string) (Skill, error) {
	s = strings.TrimSpace(s)
	for _, d := range dimensions {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown skill %q: %w", s, ErrValidation)
}

// Role is the participant's preferred team role. It is informational only.
type Role string

// Supported roles.
const (
	Leader   Role = "Leader"
	Coder    Role = "Coder"
	Tester   Role = "Tester"
	Designer Role = "Designer"
)

var roles = []Role{Leader, Coder, Tester, Designer}

// ParseRole resolves a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	for _, r := range roles {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q: %w", s, ErrValidation)
}

// Profile is a validated, read-only skill snapshot of one participant.
type Profile struct {
	id     string
	name   string
	skills map[Skill]int
	role   Role
	prior  map[string]struct{}
}

// Option applies an optional attribute to a Profile under construction.
type Option func(*Profile)

// WithPriorGroupmates records participants this one has already been grouped
// with. The balancer does not use it yet.
func WithPriorGroupmates(ids ...string) Option {
	return func(p *Profile) {
		for _, id := range ids {
			id = strings.TrimSpace(id)
			if id != "" && id != p.id {
				p.prior[id] = struct{}{}
			}
		}
	}
}

// input is the validated shape of New's arguments.
type input struct {
	ParticipantID string        `validate:"required"`
	DisplayName   string        `validate:"required"`
	Skills        map[Skill]int `validate:"required,dive,keys,oneof=problemSolving coding debugging creativity collaboration,endkeys,min=1,max=10"`
	Role          Role          `validate:"oneof=Leader Coder Tester Designer"`
}

// validate is shared; validator caches struct metadata per instance.
var validate = validator.New()

// New validates the inputs and builds a Profile.
// It fails with ErrValidation when an identifier is blank, the role is
// unknown, a rating is outside [MinRating, MaxRating], or a dimension is
// missing or unknown.
func New(participantID, displayName string, skills map[Skill]int, role Role, opts ...Option) (Profile, error) {
	in := input{
		ParticipantID: strings.TrimSpace(participantID),
		DisplayName:   strings.TrimSpace(displayName),
		Skills:        skills,
		Role:          role,
	}
	if err := validate.Struct(in); err != nil {
		return Profile{}, fmt.Errorf("profile %q: %s: %w", in.ParticipantID, describe(err), ErrValidation)
	}
	for _, d := range dimensions {
		if _, ok := skills[d]; !ok {
			return Profile{}, fmt.Errorf("profile %q: missing skill %s: %w", in.ParticipantID, d, ErrValidation)
		}
	}

	p := Profile{
		id:     in.ParticipantID,
		name:   in.DisplayName,
		skills: make(map[Skill]int, len(dimensions)),
		role:   role,
		prior:  make(map[string]struct{}),
	}
	for _, d := range dimensions {
		p.skills[d] = skills[d]
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p, nil
}

// describe flattens validator errors into one readable line.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		case "min", "max":
			parts = append(parts, fmt.Sprintf("%s=%v out of range [%d,%d]", fe.Field(), fe.Value(), MinRating, MaxRating))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s=%v is not recognised", fe.Field(), fe.Value()))
		default:
			parts = append(parts, fe.Field()+" failed "+fe.Tag())
		}
	}
	return strings.Join(parts, "; ")
}

// ID returns the participant identifier.
func (p Profile) ID() string { return p.id }

// DisplayName returns the human-readable name.
func (p Profile) DisplayName() string { return p.name }

// Role returns the preferred role.
func (p Profile) Role() Role { return p.role }

// Rating returns the rating for one dimension, or 0 for an unknown one.
func (p Profile) Rating(s Skill) int { return p.skills[s] }

// Skills returns a copy of the ratings.
func (p Profile) Skills() map[Skill]int {
	out := make(map[Skill]int, len(p.skills))
	for k, v := range p.skills {
		out[k] = v
	}
	return out
}

// OverallStrength is the arithmetic mean of all ratings. It is derived on
// every call so it can never drift from the ratings.
func (p Profile) OverallStrength() float64 {
	if len(p.skills) == 0 {
		return 0
	}
	sum := 0
	for _, v := range p.skills {
		sum += v
	}
	return float64(sum) / float64(len(p.skills))
}

// PriorGroupmates returns the recorded prior groupmates, sorted.
func (p Profile) PriorGroupmates() []string {
	out := make([]string, 0, len(p.prior))
	for id := range p.prior {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// GroupedWith reports whether id is a recorded prior groupmate.
func (p Profile) GroupedWith(id string) bool {
	_, ok := p.prior[id]
	return ok
}

// ValidateRoster rejects empty participant IDs and duplicates.
func ValidateRoster(roster []Profile) error {
	seen := make(map[string]struct{}, len(roster))
	for i, p := range roster {
		if p.id == "" {
			return fmt.Errorf("roster entry %d has no participant id: %w", i, ErrValidation)
		}
		if _, dup := seen[p.id]; dup {
			return fmt.Errorf("duplicate participant %q: %w", p.id, ErrValidation)
		}
		seen[p.id] = struct{}{}
	}
	return nil
}
