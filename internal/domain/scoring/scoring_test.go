package scoring_test

import (
	"testing"

	"github.com/okian/scorecard/internal/domain/round"
	scoring "github.com/okian/scorecard/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func pars(p int) []int {
	out := make([]int, round.HoleCount)
	for i := range out {
		out[i] = p
	}
	return out
}

func play(t *testing.T, r round.Round, strokes ...int) round.Round {
	t.Helper()
	for _, s := range strokes {
		var err error
		if r, err = round.RecordScore(r, s); err != nil {
			t.Fatalf("record %d: %v", s, err)
		}
	}
	return r
}

func TestFormatRelative(t *testing.T) {
	Convey("Given scores relative to par", t, func() {
		So(scoring.FormatRelative(0), ShouldEqual, "E")
		So(scoring.FormatRelative(3), ShouldEqual, "+3")
		So(scoring.FormatRelative(-2), ShouldEqual, "-2")
	})

	Convey("Given a hole score", t, func() {
		v := 1
		So(scoring.FormatHole(round.PlayerScore{}), ShouldEqual, "-")
		So(scoring.FormatHole(round.PlayerScore{Value: &v}), ShouldEqual, "+1")
	})
}

func TestPlayerSummary(t *testing.T) {
	Convey("Given a player after two holes", t, func() {
		r, err := round.Start([]string{"Ana"}, pars(3), round.OrderFixed)
		So(err, ShouldBeNil)
		r = play(t, r, 5, 2)

		p, ok := r.Player(0)
		So(ok, ShouldBeTrue)
		So(scoring.PlayerSummary(p), ShouldEqual, "+1 (7)")
	})

	Convey("Given a player who has not played", t, func() {
		So(scoring.PlayerSummary(round.Player{}), ShouldEqual, "E (0)")
	})
}

func TestStandings(t *testing.T) {
	Convey("Given three players where two share the lead", t, func() {
		r, err := round.Start([]string{"Ana", "Ben", "Cy"}, pars(4), round.OrderFixed)
		So(err, ShouldBeNil)
		r = play(t, r, 5, 3, 3)

		entries := scoring.Standings(r.Players)

		Convey("Then tied players share a rank and the next rank is skipped", func() {
			So(entries, ShouldHaveLength, 3)
			So(entries[0].Name, ShouldEqual, "Ben")
			So(entries[0].Rank, ShouldEqual, 1)
			So(entries[1].Name, ShouldEqual, "Cy")
			So(entries[1].Rank, ShouldEqual, 1)
			So(entries[2].Name, ShouldEqual, "Ana")
			So(entries[2].Rank, ShouldEqual, 3)
		})

		Convey("Then entries carry the display summary", func() {
			So(entries[0].Summary, ShouldEqual, "-1 (3)")
			So(entries[2].RelativeToPar, ShouldEqual, 1)
		})

		Convey("Then the input slice is left alone", func() {
			So(r.Players[0].Name, ShouldEqual, "Ana")
		})
	})

	Convey("Given no players", t, func() {
		So(scoring.Standings(nil), ShouldBeEmpty)
	})
}

func TestResult(t *testing.T) {
	Convey("Given an ended round", t, func() {
		r, err := round.Start([]string{"Ana", "Ben"}, pars(4), round.OrderFixed)
		So(err, ShouldBeNil)
		for h := 0; h < round.HoleCount-1; h++ {
			r = play(t, r, 4, 4)
		}

		Convey("When one player wins", func() {
			res, err := round.ComputeResult(play(t, r, 3, 4))
			So(err, ShouldBeNil)

			view := scoring.Result("r1", res)
			So(view.ID, ShouldEqual, "r1")
			So(view.IsTie, ShouldBeFalse)
			So(view.Winners, ShouldHaveLength, 1)
			So(view.Winners[0].Name, ShouldEqual, "Ana")
			So(view.Title, ShouldEqual, "Congratulations, Ana! 🏆")
			So(view.Standings[1].Rank, ShouldEqual, 2)
		})

		Convey("When both players tie", func() {
			res, err := round.ComputeResult(play(t, r, 5, 5))
			So(err, ShouldBeNil)

			view := scoring.Result("r1", res)
			So(view.IsTie, ShouldBeTrue)
			So(view.Winners, ShouldHaveLength, 2)
			So(view.Title, ShouldEqual, "What a thrilling tie! 🤝")
		})
	})

	Convey("Given a result without winners", t, func() {
		So(scoring.ResultTitle(round.Result{}), ShouldEqual, "Nobody finished the round")
	})
}
