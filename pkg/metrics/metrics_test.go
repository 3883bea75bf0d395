package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given manager options", t, func() {
		Convey("When creating with a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("loop"),
				WithHistogramBuckets([]float64{1, 10}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors are registered under the namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.framesProcessed.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_loop_frames_processed_total")
			})
		})

		Convey("When empty options are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "pinchctl")
				So(manager.subsystem, ShouldEqual, "control")
				So(manager.histogramBuckets, ShouldNotBeEmpty)
			})
		})
	})
}

func TestRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When an actuator call succeeds", func() {
			before := testutil.ToFloat64(globalManager.actuatorCalls.WithLabelValues("volume", ResultOK))
			RecordActuatorCall("volume", ResultOK, 55)

			Convey("Then the counter and applied gauge move", func() {
				after := testutil.ToFloat64(globalManager.actuatorCalls.WithLabelValues("volume", ResultOK))
				So(after-before, ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.appliedValue.WithLabelValues("volume")), ShouldEqual, 55)
			})
		})

		Convey("When a throttled call is recorded", func() {
			RecordActuatorCall("brightness", ResultOK, 40)
			RecordActuatorCall("brightness", ResultThrottled, 90)

			Convey("Then the applied gauge keeps the last successful value", func() {
				So(testutil.ToFloat64(globalManager.appliedValue.WithLabelValues("brightness")), ShouldEqual, 40)
			})
		})

		Convey("When a reading is recorded", func() {
			RecordReading("brightness", 45)

			Convey("Then the channel gauge holds the smoothed value", func() {
				So(testutil.ToFloat64(globalManager.channelValue.WithLabelValues("brightness")), ShouldEqual, 45)
			})
		})

		Convey("When loop metrics are recorded", func() {
			So(func() {
				RecordFrameProcessed(12.5)
				RecordFrameDropped()
				RecordHandsDetected(2)
				RecordDetectError()
				RecordScreenshot("kbinani", ResultOK)
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
