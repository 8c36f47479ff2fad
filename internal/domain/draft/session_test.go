package draft_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/teamforge/internal/domain/balance"
	"github.com/okian/teamforge/internal/domain/draft"
	"github.com/okian/teamforge/internal/domain/profile"
	"github.com/okian/teamforge/internal/simulate"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeClock struct{ now time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func ids(ps []profile.Profile) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID())
	}
	return out
}

func roster(t *testing.T, n int) []profile.Profile {
	t.Helper()
	out := make([]profile.Profile, n)
	for i := range out {
		p, err := simulate.Uniform(fmt.Sprintf("p%02d", i+1), 50-i, profile.Coder)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = p
	}
	return out
}

func captains(n int) []draft.Captain {
	out := make([]draft.Captain, n)
	for i := range out {
		out[i] = draft.Captain{TeamName: fmt.Sprintf("Crew %d", i+1), ParticipantID: fmt.Sprintf("p%02d", i+1)}
	}
	return out
}

// snapshot captures the observable state for equality checks.
type snapshot struct {
	Status  draft.Status
	Pool    []string
	Members [][]string
	Turn    int
	Picks   int
}

func snap(s *draft.Session) snapshot {
	out := snapshot{Status: s.Status(), Pool: ids(s.RemainingPool()), Turn: s.CurrentPickIndex(), Picks: len(s.Picks())}
	for _, tm := range s.Teams() {
		out.Members = append(out.Members, tm.MemberIDs())
	}
	return out
}

func TestStart(t *testing.T) {
	Convey("Given eight participants and four captains", t, func() {
		clock := newFakeClock()
		s, err := draft.Start(roster(t, 8), captains(4), time.Minute, draft.WithClock(clock), draft.WithID("d-1"))

		Convey("Then the draft is active with empty teams and a full pool", func() {
			So(err, ShouldBeNil)
			So(s.ID(), ShouldEqual, "d-1")
			So(s.Status(), ShouldEqual, draft.Active)
			So(len(s.RemainingPool()), ShouldEqual, 8)
			So(s.CurrentPickIndex(), ShouldEqual, 0)
			So(s.Round(), ShouldEqual, 1)
			So(s.Captain(2), ShouldEqual, "p03")
			So(s.Captain(9), ShouldBeEmpty)
			So(s.TurnStartedAt(), ShouldEqual, clock.now)
			for i, tm := range s.Teams() {
				So(tm.Size(), ShouldEqual, 0)
				So(tm.ID, ShouldEqual, balance.TeamID(i))
				So(tm.Name, ShouldEqual, fmt.Sprintf("Crew %d", i+1))
			}
		})

		Convey("Then the turn order snakes", func() {
			So(s.TurnOrder(10), ShouldResemble, []int{0, 1, 2, 3, 3, 2, 1, 0, 0, 1})
		})
	})

	Convey("Given invalid setups", t, func() {
		r := roster(t, 4)
		cases := map[string]func() error{
			"an empty roster": func() error {
				_, err := draft.Start(nil, captains(2), 0)
				return err
			},
			"one captain": func() error {
				_, err := draft.Start(r, captains(1), 0)
				return err
			},
			"more captains than participants": func() error {
				_, err := draft.Start(r[:2], captains(3), 0)
				return err
			},
			"an unknown captain": func() error {
				_, err := draft.Start(r, []draft.Captain{{ParticipantID: "p01"}, {ParticipantID: "ghost"}}, 0)
				return err
			},
			"a captain leading twice": func() error {
				_, err := draft.Start(r, []draft.Captain{{ParticipantID: "p01"}, {ParticipantID: "p01"}}, 0)
				return err
			},
			"a negative time limit": func() error {
				_, err := draft.Start(r, captains(2), -time.Second)
				return err
			},
			"a duplicate participant": func() error {
				_, err := draft.Start(append(r, r[0]), captains(2), 0)
				return err
			},
		}
		for name, run := range cases {
			Convey("When starting with "+name, func() {
				err := run()

				Convey("Then the configuration is rejected", func() {
					So(errors.Is(err, draft.ErrInvalidConfiguration), ShouldBeTrue)
				})
			})
		}
	})

	Convey("Given captains without team names", t, func() {
		s, err := draft.Start(roster(t, 3), []draft.Captain{{ParticipantID: "p01"}, {TeamName: "  ", ParticipantID: "p02"}}, 0)
		So(err, ShouldBeNil)
		So(s.Teams()[0].Name, ShouldEqual, "Team 1")
		So(s.Teams()[1].Name, ShouldEqual, "Team 2")
	})
}

func TestSubmitPick(t *testing.T) {
	Convey("Given an active draft with two teams and four participants", t, func() {
		clock := newFakeClock()
		s, err := draft.Start(roster(t, 4), captains(2), 0, draft.WithClock(clock))
		So(err, ShouldBeNil)

		Convey("When team 1 picks on its turn", func() {
			clock.advance(7 * time.Second)
			next, err := s.SubmitPick("team-1", "p03", " needs a tester ")

			Convey("Then the participant moves from the pool to the team", func() {
				So(err, ShouldBeNil)
				So(ids(next.RemainingPool()), ShouldResemble, []string{"p01", "p02", "p04"})
				So(next.Teams()[0].MemberIDs(), ShouldResemble, []string{"p03"})
				So(next.CurrentPickIndex(), ShouldEqual, 1)
				_, teamID, ok := next.CurrentTeam()
				So(ok, ShouldBeTrue)
				So(teamID, ShouldEqual, "team-2")
			})

			Convey("Then the pick is logged with timing", func() {
				picks := next.Picks()
				So(len(picks), ShouldEqual, 1)
				So(picks[0].Number, ShouldEqual, 1)
				So(picks[0].Kind, ShouldEqual, draft.Selection)
				So(picks[0].Elapsed, ShouldEqual, 7*time.Second)
				So(picks[0].Reason, ShouldEqual, "needs a tester")
				So(next.Selections(), ShouldEqual, 1)
			})

			Convey("Then the original session is untouched", func() {
				So(len(s.RemainingPool()), ShouldEqual, 4)
				So(s.CurrentPickIndex(), ShouldEqual, 0)
			})

			Convey("When the same participant is picked again", func() {
				_, err := next.SubmitPick("team-2", "p03", "")

				Convey("Then it is rejected as already picked", func() {
					So(errors.Is(err, draft.ErrInvalidSelection), ShouldBeTrue)
					So(err.Error(), ShouldContainSubstring, "already been picked")
				})
			})
		})

		Convey("When team 2 tries to pick first", func() {
			before := snap(s)
			next, err := s.SubmitPick("team-2", "p01", "")

			Convey("Then it is out of turn and nothing changes", func() {
				So(next, ShouldBeNil)
				So(errors.Is(err, draft.ErrOutOfTurn), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "it's not Crew 2's turn yet")
				So(cmp.Diff(before, snap(s)), ShouldBeEmpty)
			})
		})

		Convey("When an unknown team picks", func() {
			_, err := s.SubmitPick("team-9", "p01", "")
			So(errors.Is(err, draft.ErrOutOfTurn), ShouldBeTrue)
		})

		Convey("When an unknown participant is picked", func() {
			_, err := s.SubmitPick("team-1", "nobody", "")

			Convey("Then it is an invalid selection", func() {
				So(errors.Is(err, draft.ErrInvalidSelection), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "not in this draft")
			})
		})

		Convey("When every participant is picked", func() {
			cur := s
			order := []string{"team-1", "team-2", "team-2", "team-1"}
			for i, team := range order {
				cur, err = cur.SubmitPick(team, fmt.Sprintf("p%02d", i+1), "")
				So(err, ShouldBeNil)
			}

			Convey("Then the draft completes after exactly four picks", func() {
				So(cur.Status(), ShouldEqual, draft.Completed)
				So(cur.RemainingPool(), ShouldBeEmpty)
				So(cur.Teams()[0].MemberIDs(), ShouldResemble, []string{"p01", "p04"})
				So(cur.Teams()[1].MemberIDs(), ShouldResemble, []string{"p02", "p03"})
				_, _, ok := cur.CurrentTeam()
				So(ok, ShouldBeFalse)
			})

			Convey("Then further picks are invalid transitions", func() {
				_, err := cur.SkipPick("team-2")
				So(errors.Is(err, draft.ErrInvalidStateTransition), ShouldBeTrue)
			})
		})
	})
}

func TestSkipPick(t *testing.T) {
	Convey("Given an active draft with a one minute limit", t, func() {
		clock := newFakeClock()
		s, err := draft.Start(roster(t, 6), captains(3), time.Minute, draft.WithClock(clock))
		So(err, ShouldBeNil)

		Convey("When the turn runs out", func() {
			clock.advance(61 * time.Second)
			So(s.Expired(clock.now), ShouldBeTrue)
			next, err := s.SkipPick("team-1")

			Convey("Then the turn advances without moving anyone", func() {
				So(err, ShouldBeNil)
				So(len(next.RemainingPool()), ShouldEqual, 6)
				for _, tm := range next.Teams() {
					So(tm.Size(), ShouldEqual, 0)
				}
				So(next.CurrentPickIndex(), ShouldEqual, 1)
				So(next.Picks()[0].Kind, ShouldEqual, draft.Timeout)
				So(next.Selections(), ShouldEqual, 0)
				So(next.Expired(clock.now), ShouldBeFalse)
			})
		})

		Convey("When time remaining is checked mid-turn", func() {
			clock.advance(20 * time.Second)
			left, ok := s.TurnTimeRemaining(clock.now)
			So(ok, ShouldBeTrue)
			So(left, ShouldEqual, 40*time.Second)
		})
	})

	Convey("Given a draft without a limit", t, func() {
		s, _ := draft.Start(roster(t, 2), captains(2), 0)
		_, ok := s.TurnTimeRemaining(time.Now().Add(time.Hour))
		So(ok, ShouldBeFalse)
		So(s.Expired(time.Now().Add(time.Hour)), ShouldBeFalse)
	})
}

func TestLifecycle(t *testing.T) {
	Convey("Given a scheduled draft", t, func() {
		clock := newFakeClock()
		s, err := draft.Schedule(roster(t, 4), captains(2), time.Minute, draft.WithClock(clock))
		So(err, ShouldBeNil)
		So(s.Status(), ShouldEqual, draft.Scheduled)

		Convey("Then picks and pauses are rejected", func() {
			_, err := s.SubmitPick("team-1", "p01", "")
			So(errors.Is(err, draft.ErrInvalidStateTransition), ShouldBeTrue)
			_, err = s.Pause()
			So(errors.Is(err, draft.ErrInvalidStateTransition), ShouldBeTrue)
			_, err = s.End()
			So(errors.Is(err, draft.ErrInvalidStateTransition), ShouldBeTrue)
		})

		Convey("When it is opened", func() {
			active, err := s.Open()
			So(err, ShouldBeNil)
			So(active.Status(), ShouldEqual, draft.Active)

			Convey("Then it cannot be opened twice", func() {
				_, err := active.Open()
				So(errors.Is(err, draft.ErrInvalidStateTransition), ShouldBeTrue)
			})

			Convey("When paused after 20 seconds and resumed later", func() {
				clock.advance(20 * time.Second)
				paused, err := active.Pause()
				So(err, ShouldBeNil)
				So(paused.Status(), ShouldEqual, draft.Paused)

				_, err = paused.SubmitPick("team-1", "p01", "")
				So(errors.Is(err, draft.ErrInvalidStateTransition), ShouldBeTrue)
				_, ok := paused.TurnTimeRemaining(clock.now)
				So(ok, ShouldBeFalse)

				clock.advance(10 * time.Minute)
				resumed, err := paused.Resume()
				So(err, ShouldBeNil)

				Convey("Then the turn keeps its remaining 40 seconds", func() {
					left, ok := resumed.TurnTimeRemaining(clock.now)
					So(ok, ShouldBeTrue)
					So(left, ShouldEqual, 40*time.Second)
				})

				Convey("Then resuming again is rejected", func() {
					_, err := resumed.Resume()
					So(errors.Is(err, draft.ErrInvalidStateTransition), ShouldBeTrue)
				})
			})

			Convey("When it is ended early", func() {
				ended, err := active.End()

				Convey("Then it is completed with the pool left as is", func() {
					So(err, ShouldBeNil)
					So(ended.Status(), ShouldEqual, draft.Completed)
					So(len(ended.RemainingPool()), ShouldEqual, 4)
				})
			})
		})
	})
}

func TestAutoDraftCompletes(t *testing.T) {
	Convey("Given a 4-team draft over 13 participants", t, func() {
		s, err := draft.Start(roster(t, 13), captains(4), 0)
		So(err, ShouldBeNil)

		Convey("When picks follow the snake order", func() {
			var expected []int
			for s.Status() == draft.Active {
				idx, teamID, _ := s.CurrentTeam()
				expected = append(expected, idx)
				s, err = s.SubmitPick(teamID, s.RemainingPool()[0].ID(), "")
				So(err, ShouldBeNil)
			}

			Convey("Then exactly 13 picks were made in snake order", func() {
				So(len(s.Picks()), ShouldEqual, 13)
				So(expected, ShouldResemble, []int{0, 1, 2, 3, 3, 2, 1, 0, 0, 1, 2, 3, 3})
				So(s.Round(), ShouldEqual, 4)
			})
		})
	})
}

func TestCompletionIgnoresSkips(t *testing.T) {
	Convey("Given a 2-team draft over 5 participants", t, func() {
		s, err := draft.Start(roster(t, 5), captains(2), 0)
		So(err, ShouldBeNil)

		Convey("When skips are mixed in between the picks", func() {
			skipAfter := map[int]bool{0: true, 2: true, 3: true}
			selections := 0
			for selections < 5 {
				if skipAfter[selections] {
					_, teamID, _ := s.CurrentTeam()
					s, err = s.SkipPick(teamID)
					So(err, ShouldBeNil)
					So(s.Status(), ShouldEqual, draft.Active)
					So(len(s.RemainingPool()), ShouldEqual, 5-selections)
					delete(skipAfter, selections)
					continue
				}

				_, teamID, _ := s.CurrentTeam()
				s, err = s.SubmitPick(teamID, s.RemainingPool()[0].ID(), "")
				So(err, ShouldBeNil)
				selections++
				if selections < 5 {
					So(s.Status(), ShouldEqual, draft.Active)
					So(s.RemainingPool(), ShouldNotBeEmpty)
				}
			}

			Convey("Then it completes on the fifth selection, not the fifth turn", func() {
				So(s.Status(), ShouldEqual, draft.Completed)
				So(s.RemainingPool(), ShouldBeEmpty)
				So(s.Selections(), ShouldEqual, 5)
				So(len(s.Picks()), ShouldEqual, 8)
				So(s.CurrentPickIndex(), ShouldEqual, 8)
			})
		})
	})
}

func TestTurnOrder_NonPositive(t *testing.T) {
	Convey("Given an active draft", t, func() {
		s, err := draft.Start(roster(t, 4), captains(2), 0)
		So(err, ShouldBeNil)

		Convey("Then asking for no turns returns nothing", func() {
			So(s.TurnOrder(0), ShouldBeNil)
			So(s.TurnOrder(-3), ShouldBeNil)
			So(s.TurnOrder(2), ShouldResemble, []int{0, 1})
		})
	})
}

func TestTeamForTurn(t *testing.T) {
	Convey("Given three teams", t, func() {
		got := make([]int, 9)
		for i := range got {
			got[i] = draft.TeamForTurn(i, 3)
		}
		So(got, ShouldResemble, []int{0, 1, 2, 2, 1, 0, 0, 1, 2})
	})
}
