package model_test

import (
	"encoding/json"
	"testing"
	"time"

	model "github.com/okian/scorecard/internal/domain/model"
	"github.com/okian/scorecard/internal/domain/round"
	"github.com/smartystreets/goconvey/convey"
)

func TestSnapshot(t *testing.T) {
	convey.Convey("Given a snapshot of a started round", t, func() {
		pars := make([]int, round.HoleCount)
		for i := range pars {
			pars[i] = 3
		}
		r, err := round.Start([]string{"Ana", "Ben"}, pars, round.OrderBestScore, round.WithCourse("Pirate Cove", "easy"))
		convey.So(err, convey.ShouldBeNil)
		r, err = round.RecordScore(r, 2)
		convey.So(err, convey.ShouldBeNil)

		now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
		snap := model.Snapshot{RoundID: "r1", Version: 2, Round: r, CreatedAt: now, UpdatedAt: now}

		convey.Convey("When it is encoded and decoded", func() {
			b, err := json.Marshal(snap)
			convey.So(err, convey.ShouldBeNil)

			var got model.Snapshot
			convey.So(json.Unmarshal(b, &got), convey.ShouldBeNil)

			convey.Convey("Then the round survives verbatim", func() {
				convey.So(got.RoundID, convey.ShouldEqual, "r1")
				convey.So(got.Version, convey.ShouldEqual, 2)
				convey.So(got.Round.Validate(), convey.ShouldBeNil)
				convey.So(got.Round.CourseName, convey.ShouldEqual, "Pirate Cove")
				convey.So(*got.Round.Players[0].Score[0].Value, convey.ShouldEqual, -1)
				convey.So(got.Round.Players[1].Score[0].Value, convey.ShouldBeNil)
				convey.So(got.Round.OrderMode, convey.ShouldEqual, round.OrderBestScore)
			})
		})

		convey.Convey("When it is wrapped in a job", func() {
			job := model.SnapshotJob{Snapshot: snap, Enqueued: now}

			convey.Convey("Then it is a write by default", func() {
				convey.So(job.Delete, convey.ShouldBeFalse)
				convey.So(job.Snapshot.RoundID, convey.ShouldEqual, "r1")
			})
		})
	})
}
