package simulate_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/teamforge/internal/domain/balance"
	"github.com/okian/teamforge/internal/domain/draft"
	"github.com/okian/teamforge/internal/domain/profile"
	"github.com/okian/teamforge/internal/simulate"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRoster(t *testing.T) {
	Convey("Given the same seed twice", t, func() {
		a := simulate.Roster(rand.New(rand.NewSource(3)), 12)
		b := simulate.Roster(rand.New(rand.NewSource(3)), 12)

		Convey("Then both rosters are identical and valid", func() {
			So(len(a), ShouldEqual, 12)
			So(a[0].ID(), ShouldEqual, "s-001")
			So(profile.ValidateRoster(a), ShouldBeNil)
			So(cmp.Diff(a[5].Skills(), b[5].Skills()), ShouldBeEmpty)
		})
	})
}

func TestUniform(t *testing.T) {
	Convey("Given a total of 37", t, func() {
		p, err := simulate.Uniform("x", 37, profile.Designer)
		So(err, ShouldBeNil)
		So(p.OverallStrength(), ShouldAlmostEqual, 7.4, 1e-9)
		So(p.Rating(profile.ProblemSolving), ShouldEqual, 8)
		So(p.Rating(profile.Collaboration), ShouldEqual, 7)
	})

	Convey("Given a total above the maximum", t, func() {
		_, err := simulate.Uniform("x", 60, profile.Designer)
		So(errors.Is(err, profile.ErrValidation), ShouldBeTrue)
	})
}

func TestAutoDraft(t *testing.T) {
	Convey("Given a draft of 10 over three teams", t, func() {
		roster := simulate.Roster(rand.New(rand.NewSource(11)), 10)
		s, err := draft.Start(roster, []draft.Captain{
			{ParticipantID: roster[0].ID()},
			{ParticipantID: roster[1].ID()},
			{ParticipantID: roster[2].ID()},
		}, 0)
		So(err, ShouldBeNil)

		Convey("When played with BestAvailable", func() {
			done, err := simulate.AutoDraft(s, simulate.BestAvailable)

			Convey("Then it matches the balancer's snake assignment", func() {
				So(err, ShouldBeNil)
				So(done.Status(), ShouldEqual, draft.Completed)
				formed, err := balance.Form(roster, balance.WithTeamCount(3))
				So(err, ShouldBeNil)
				for i, tm := range done.Teams() {
					So(tm.MemberIDs(), ShouldResemble, formed[i].MemberIDs())
				}
			})
		})

		Convey("When played with RoleFirst", func() {
			done, err := simulate.AutoDraft(s, simulate.RoleFirst)
			So(err, ShouldBeNil)
			So(done.Selections(), ShouldEqual, 10)
		})

		Convey("When the strategy never picks", func() {
			never := func([]profile.Profile, balance.Team) (profile.Profile, bool) { return profile.Profile{}, false }
			_, err := simulate.AutoDraft(s, never)
			So(errors.Is(err, simulate.ErrNoProgress), ShouldBeTrue)
		})
	})
}
