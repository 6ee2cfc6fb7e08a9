package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a custom registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then metrics are registered on that registry", func() {
				So(manager, ShouldNotBeNil)
				manager.roundsStarted.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("golf"),
				WithHistogramBuckets([]float64{1, 10}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.roundsStarted.Inc()

			Convey("Then names and labels follow the options", func() {
				expected := `
# HELP test_golf_started_total Total number of rounds started
# TYPE test_golf_started_total counter
test_golf_started_total{env="test"} 1
`
				So(testutil.GatherAndCompare(registry, strings.NewReader(expected), "test_golf_started_total"), ShouldBeNil)
			})
		})

		Convey("When empty options are given", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "scorecard")
				So(manager.subsystem, ShouldEqual, "rounds")
				So(manager.histogramBuckets, ShouldNotBeEmpty)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording round lifecycle metrics", func() {
			before := testutil.ToFloat64(globalManager.roundsStarted)
			RecordRoundStarted()
			RecordRoundEnded()
			RecordRoundDiscarded()
			UpdateActiveRounds(3)

			So(testutil.ToFloat64(globalManager.roundsStarted), ShouldEqual, before+1)
			So(testutil.ToFloat64(globalManager.activeRounds), ShouldEqual, 3)
		})

		Convey("When recording operation metrics", func() {
			before := testutil.ToFloat64(globalManager.operationErrors.WithLabelValues("record_score", "validation_error"))
			RecordOperationError("record_score", "validation_error")
			RecordOperationLatency("record_score", 0.3)
			RecordScoreRecorded()
			RecordScoreEdited()
			RecordPlayerRemoved()
			RecordIdempotentReplay()

			So(testutil.ToFloat64(globalManager.operationErrors.WithLabelValues("record_score", "validation_error")), ShouldEqual, before+1)
		})

		Convey("When recording snapshot, queue and worker metrics", func() {
			So(func() {
				RecordSnapshotWrite("save", 1.5)
				RecordSnapshotFailure("delete")
				RecordSnapshotRestored()
				RecordSnapshotRejected()
				UpdateQueueSize(4)
				UpdateQueueCapacity(16)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerCount(2)
				RecordWorkerError()
			}, ShouldNotPanic)

			So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 4)
			So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 2)
		})

		Convey("When recording websocket and HTTP metrics", func() {
			So(func() {
				UpdateWebsocketSubscribers(5)
				RecordWebsocketDropped()
				RecordWebsocketBroadcast()
				RecordHTTPRequest("/rounds", "POST", "201")
				RecordHTTPRequestDuration("/rounds", "POST", "201", 2.5)
			}, ShouldNotPanic)

			So(testutil.ToFloat64(globalManager.websocketClients), ShouldEqual, 5)
		})

		Convey("When reading the registry", func() {
			So(GetRegistry(), ShouldNotBeNil)
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
