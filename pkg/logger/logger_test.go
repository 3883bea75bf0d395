package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given an uninitialized package", t, func() {
		Convey("When Init is called", func() {
			err := Init()

			Convey("Then the global logger is available", func() {
				So(err, ShouldBeNil)
				So(Get(), ShouldNotBeNil)
				So(Named("test"), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})
	})
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		So(SetLevelString("info"), ShouldBeNil)
		var buf bytes.Buffer
		log := New(&buf).Named("actuator")
		ctx := context.Background()

		Convey("When an info record is written", func() {
			log.Info(ctx, "applied level", String("channel", "volume"), Int("percent", 55))

			Convey("Then the message, component and fields are present", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "applied level")
				So(out, ShouldContainSubstring, "component=actuator")
				So(out, ShouldContainSubstring, "channel=volume")
				So(out, ShouldContainSubstring, "percent=55")
				So(out, ShouldContainSubstring, "source=")
			})
		})

		Convey("When an error field is attached", func() {
			log.Error(ctx, "setter failed", Error(errors.New("boom")))

			Convey("Then it is rendered under the error key", func() {
				So(buf.String(), ShouldContainSubstring, "error=boom")
			})
		})

		Convey("When debug is below the configured level", func() {
			log.Debug(ctx, "hidden")

			Convey("Then nothing is written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the level is lowered to debug", func() {
			So(SetLevelString("debug"), ShouldBeNil)
			log.Debug(ctx, "visible")
			So(SetLevelString("info"), ShouldBeNil)

			Convey("Then debug records are written", func() {
				So(buf.String(), ShouldContainSubstring, "visible")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level names", t, func() {
		for _, lvl := range []string{"debug", "info", "", "warn", "warning", "error", "ERROR"} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("verbose"), ShouldNotBeNil)
		So(SetLevelString("info"), ShouldBeNil)
	})
}

func TestNop(t *testing.T) {
	Convey("Given a nop logger", t, func() {
		So(func() {
			Nop().Named("x").Error(context.Background(), "dropped", Error(errors.New("x")))
		}, ShouldNotPanic)
	})
}
