package scoring_test

import (
	"context"
	"math"
	"testing"

	"github.com/okian/teamforge/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryScorer_Score(t *testing.T) {
	Convey("Given a scorer with classroom activity weights", t, func() {
		scorer := scoring.NewInMemoryScorer(
			scoring.WithActivityWeights(map[string]float64{
				"challenge_solved": 25,
				"bug_fixed":        15,
				"peer_review":      5,
				"ignored":          -3,
			}, 8),
		)
		ctx := context.Background()

		Convey("When scoring a solved challenge", func() {
			res, err := scorer.Score(ctx, scoring.Input{ParticipantID: "s-1", Activity: "challenge_solved", RawMetric: 2})

			Convey("Then XP is metric times weight", func() {
				So(err, ShouldBeNil)
				So(res.ParticipantID, ShouldEqual, "s-1")
				So(res.XP, ShouldEqual, 50)
			})
		})

		Convey("When the activity name has odd casing", func() {
			res, err := scorer.Score(ctx, scoring.Input{ParticipantID: "s-1", Activity: " Bug_Fixed ", RawMetric: 1})
			So(err, ShouldBeNil)
			So(res.XP, ShouldEqual, 15)
		})

		Convey("When the activity is unknown or had a negative weight", func() {
			So(scorer.Weight("quiz"), ShouldEqual, 8)
			So(scorer.Weight("ignored"), ShouldEqual, 8)
		})

		Convey("When the product exceeds the cap", func() {
			res, err := scorer.Score(ctx, scoring.Input{ParticipantID: "s-2", Activity: "challenge_solved", RawMetric: 100})
			So(err, ShouldBeNil)
			So(res.XP, ShouldEqual, scoring.MaxXP)
		})

		Convey("When the metric is negative", func() {
			res, err := scorer.Score(ctx, scoring.Input{ParticipantID: "s-2", Activity: "peer_review", RawMetric: -4})
			So(err, ShouldBeNil)
			So(res.XP, ShouldEqual, 0)
		})

		Convey("When the metric is not finite", func() {
			_, err := scorer.Score(ctx, scoring.Input{ParticipantID: "s-2", RawMetric: math.Inf(1)})
			So(err, ShouldNotBeNil)
		})

		Convey("When the context is already cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := scorer.Score(cancelled, scoring.Input{ParticipantID: "s-3", RawMetric: 1})

			Convey("Then scoring fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "context cancelled")
			})
		})
	})

	Convey("Given a scorer without options", t, func() {
		scorer := scoring.NewInMemoryScorer()
		res, err := scorer.Score(context.Background(), scoring.Input{ParticipantID: "x", Activity: "anything", RawMetric: 3})
		So(err, ShouldBeNil)
		So(res.XP, ShouldEqual, 3*scoring.DefaultActivityWeight)
	})
}
