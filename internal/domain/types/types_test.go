package types_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/teamforge/internal/domain/draft"
	"github.com/okian/teamforge/internal/domain/profile"
	"github.com/okian/teamforge/internal/domain/types"
	"github.com/okian/teamforge/internal/simulate"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFromSession(t *testing.T) {
	Convey("Given an active draft with one pick made", t, func() {
		start := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
		now := start
		clock := draft.ClockFunc(func() time.Time { return now })

		var roster []profile.Profile
		for i, total := range []int{40, 35, 30} {
			p, err := simulate.Uniform(string(rune('a'+i)), total, profile.Tester)
			So(err, ShouldBeNil)
			roster = append(roster, p)
		}
		s, err := draft.Start(roster, []draft.Captain{{TeamName: "Owls", ParticipantID: "a"}, {ParticipantID: "b"}},
			30*time.Second, draft.WithClock(clock), draft.WithID("d-9"))
		So(err, ShouldBeNil)
		now = now.Add(4 * time.Second)
		s, err = s.SubmitPick("team-1", "c", "")
		So(err, ShouldBeNil)

		Convey("When rendered 10 seconds into the next turn", func() {
			v := types.FromSession(s, now.Add(10*time.Second))

			Convey("Then the view reflects the session", func() {
				So(v.ID, ShouldEqual, "d-9")
				So(v.Status, ShouldEqual, "active")
				So(v.PickIndex, ShouldEqual, 1)
				So(v.CurrentTeamID, ShouldEqual, "team-2")
				So(v.Captains, ShouldResemble, []string{"a", "b"})
				So(v.RoundTimeLimitSeconds, ShouldEqual, 30)
				So(*v.TimeRemainingMS, ShouldEqual, 20000)
				So(len(v.Pool), ShouldEqual, 2)
				So(v.Teams[0].Name, ShouldEqual, "Owls")
				So(v.Teams[0].Members[0].ID, ShouldEqual, "c")
				So(v.Teams[0].Members[0].Skills["coding"], ShouldEqual, 6)
				So(v.Picks[0].ElapsedMS, ShouldEqual, 4000)
			})

			Convey("Then it encodes with snake_case keys", func() {
				raw, err := json.Marshal(v)
				So(err, ShouldBeNil)
				So(string(raw), ShouldContainSubstring, `"current_team_id":"team-2"`)
				So(string(raw), ShouldContainSubstring, `"role":"Tester"`)
			})
		})

		Convey("When the draft is ended", func() {
			ended, err := s.End()
			So(err, ShouldBeNil)
			v := types.FromSession(ended, now)

			Convey("Then turn timing is omitted", func() {
				So(v.CurrentTeamID, ShouldBeEmpty)
				So(v.TurnStartedAt, ShouldBeNil)
				So(v.TimeRemainingMS, ShouldBeNil)
			})
		})
	})
}
