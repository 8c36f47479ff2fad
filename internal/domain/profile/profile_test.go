package profile_test

import (
	"errors"
	"testing"

	"github.com/okian/teamforge/internal/domain/profile"
	. "github.com/smartystreets/goconvey/convey"
)

func skills(ps, c, d, cr, co int) map[profile.Skill]int {
	return map[profile.Skill]int{
		profile.ProblemSolving: ps,
		profile.Coding:         c,
		profile.Debugging:      d,
		profile.Creativity:     cr,
		profile.Collaboration:  co,
	}
}

func TestNew(t *testing.T) {
	Convey("Given valid profile input", t, func() {
		p, err := profile.New("p-1", "Ada", skills(9, 8, 7, 6, 5), profile.Coder)

		Convey("Then the profile is built", func() {
			So(err, ShouldBeNil)
			So(p.ID(), ShouldEqual, "p-1")
			So(p.DisplayName(), ShouldEqual, "Ada")
			So(p.Role(), ShouldEqual, profile.Coder)
			So(p.Rating(profile.Coding), ShouldEqual, 8)
		})

		Convey("Then overall strength is the mean of the ratings", func() {
			So(p.OverallStrength(), ShouldEqual, 7.0)
		})

		Convey("Then mutating the returned skills does not change the profile", func() {
			s := p.Skills()
			s[profile.Coding] = 1
			So(p.Rating(profile.Coding), ShouldEqual, 8)
			So(p.OverallStrength(), ShouldEqual, 7.0)
		})
	})

	Convey("Given the caller mutates its input map after construction", t, func() {
		in := skills(5, 5, 5, 5, 5)
		p, err := profile.New("p-1", "Ada", in, profile.Leader)
		So(err, ShouldBeNil)
		in[profile.Coding] = 10

		Convey("Then the profile keeps its snapshot", func() {
			So(p.Rating(profile.Coding), ShouldEqual, 5)
		})
	})

	Convey("Given invalid input", t, func() {
		cases := []struct {
			name   string
			id     string
			dn     string
			skills map[profile.Skill]int
			role   profile.Role
		}{
			{"rating above range", "p", "n", skills(11, 5, 5, 5, 5), profile.Coder},
			{"rating below range", "p", "n", skills(0, 5, 5, 5, 5), profile.Coder},
			{"blank id", "  ", "n", skills(5, 5, 5, 5, 5), profile.Coder},
			{"blank name", "p", "", skills(5, 5, 5, 5, 5), profile.Coder},
			{"unknown role", "p", "n", skills(5, 5, 5, 5, 5), profile.Role("Pilot")},
			{"nil skills", "p", "n", nil, profile.Coder},
			{"missing dimension", "p", "n", map[profile.Skill]int{profile.Coding: 5}, profile.Coder},
			{"unknown dimension", "p", "n", func() map[profile.Skill]int {
				m := skills(5, 5, 5, 5, 5)
				m["juggling"] = 5
				return m
			}(), profile.Coder},
		}
		for _, tc := range cases {
			Convey("When "+tc.name, func() {
				_, err := profile.New(tc.id, tc.dn, tc.skills, tc.role)

				Convey("Then it fails with a validation error", func() {
					So(err, ShouldNotBeNil)
					So(errors.Is(err, profile.ErrValidation), ShouldBeTrue)
				})
			})
		}
	})
}

func TestPriorGroupmates(t *testing.T) {
	Convey("Given prior groupmates including blanks and self", t, func() {
		p, err := profile.New("p-1", "Ada", skills(5, 5, 5, 5, 5), profile.Tester,
			profile.WithPriorGroupmates("p-3", " ", "p-1", "p-2", "p-3"))
		So(err, ShouldBeNil)

		Convey("Then only distinct other participants are kept, sorted", func() {
			So(p.PriorGroupmates(), ShouldResemble, []string{"p-2", "p-3"})
			So(p.GroupedWith("p-2"), ShouldBeTrue)
			So(p.GroupedWith("p-1"), ShouldBeFalse)
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given skill and role names in any case", t, func() {
		s, err := profile.ParseSkill(" ProblemSolving ")
		So(err, ShouldBeNil)
		So(s, ShouldEqual, profile.ProblemSolving)

		r, err := profile.ParseRole("designer")
		So(err, ShouldBeNil)
		So(r, ShouldEqual, profile.Designer)

		Convey("Then unknown names are validation errors", func() {
			_, err := profile.ParseSkill("speed")
			So(errors.Is(err, profile.ErrValidation), ShouldBeTrue)
			_, err = profile.ParseRole("goalie")
			So(errors.Is(err, profile.ErrValidation), ShouldBeTrue)
		})
	})

	Convey("Given the dimension list", t, func() {
		d := profile.Dimensions()
		d[0] = "mutated"

		Convey("Then callers get a copy", func() {
			So(profile.Dimensions()[0], ShouldEqual, profile.ProblemSolving)
			So(len(profile.Dimensions()), ShouldEqual, 5)
		})
	})
}

func TestValidateRoster(t *testing.T) {
	Convey("Given a roster with a duplicate id", t, func() {
		a, _ := profile.New("a", "A", skills(5, 5, 5, 5, 5), profile.Coder)
		b, _ := profile.New("b", "B", skills(5, 5, 5, 5, 5), profile.Coder)

		So(profile.ValidateRoster([]profile.Profile{a, b}), ShouldBeNil)

		err := profile.ValidateRoster([]profile.Profile{a, b, a})
		So(errors.Is(err, profile.ErrValidation), ShouldBeTrue)

		Convey("Then a zero-value profile is rejected too", func() {
			err := profile.ValidateRoster([]profile.Profile{a, {}})
			So(errors.Is(err, profile.ErrValidation), ShouldBeTrue)
		})
	})
}
