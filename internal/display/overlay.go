package display

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"gocv.io/x/gocv"

	"github.com/ayusman/pinchctl/internal/control"
	"github.com/ayusman/pinchctl/internal/gesture"
)

// Bar geometry on a 1280x720 frame; Y is measured from the bottom edge.
const (
	barWidth   = 350
	barHeight  = 35
	barBottom  = 100
	volumeBarX = 60
	brightBarX = 440
)

var (
	barTrack  = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	barFill   = color.RGBA{R: 100, G: 200, B: 50, A: 255}
	textWhite = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	textTitle = color.RGBA{R: 255, G: 255, A: 255}
	pinchLine = color.RGBA{R: 255, G: 200, B: 200, A: 255}
	panelBg   = color.RGBA{A: 255}
	pausedRed = color.RGBA{R: 230, G: 40, B: 40, A: 255}
)

// Overlay is what gets drawn on top of a frame.
type Overlay struct {
	Readings []gesture.Reading
	// Levels are the smoothed channel values.
	Levels  [control.ChannelCount]float64
	Paused  bool
	QuitKey string
}

// Instructions returns the help lines drawn in the top-left panel.
func (o Overlay) Instructions() []string {
	quit := o.QuitKey
	if quit == "" {
		quit = "q"
	}
	return []string{
		"GESTURE CONTROLS:",
		" Left Pinch - Volume",
		" Right Pinch - Brightness",
		fmt.Sprintf(" Press '%s' to Quit", strings.ToUpper(quit)),
	}
}

// BarLabel formats a channel level the way the bars show it.
func BarLabel(ch control.Channel, level float64) string {
	name := "Volume"
	if ch == control.Brightness {
		name = "Brightness"
	}
	return fmt.Sprintf("%s: %d%%", name, control.ClampPercent(level))
}

// Draw renders o onto frame in place.
func Draw(frame *gocv.Mat, o Overlay) {
	if frame == nil || frame.Empty() {
		return
	}

	for _, r := range o.Readings {
		drawPinch(frame, r.Thumb, r.Index)
	}

	y := frame.Rows() - barBottom
	drawBar(frame, image.Pt(volumeBarX, y), o.Levels[control.Volume], BarLabel(control.Volume, o.Levels[control.Volume]))
	drawBar(frame, image.Pt(brightBarX, y), o.Levels[control.Brightness], BarLabel(control.Brightness, o.Levels[control.Brightness]))

	drawInstructions(frame, o.Instructions())

	if o.Paused {
		gocv.PutText(frame, "PAUSED", image.Pt(frame.Cols()-180, 50), gocv.FontHersheySimplex, 1.2, pausedRed, 3)
	}
}

func drawPinch(frame *gocv.Mat, thumb, index image.Point) {
	gocv.Line(frame, thumb, index, pinchLine, 4)
	for _, p := range []image.Point{thumb, index} {
		gocv.Circle(frame, p, 12, textWhite, -1)
		gocv.Circle(frame, p, 6, panelBg, -1)
	}
}

// FillWidth is the filled part of a bar for level.
func FillWidth(level float64) int {
	return barWidth * control.ClampPercent(level) / 100
}

func drawBar(frame *gocv.Mat, at image.Point, level float64, label string) {
	track := image.Rect(at.X, at.Y, at.X+barWidth, at.Y+barHeight)
	gocv.Rectangle(frame, track, barTrack, -1)
	if fill := FillWidth(level); fill > 0 {
		gocv.Rectangle(frame, image.Rect(at.X, at.Y, at.X+fill, at.Y+barHeight), barFill, -1)
	}
	gocv.PutText(frame, label, image.Pt(at.X, at.Y-10), gocv.FontHersheySimplex, 0.65, textWhite, 2)
}

func drawInstructions(frame *gocv.Mat, lines []string) {
	gocv.Rectangle(frame, image.Rect(10, 10, 350, 30+len(lines)*24), panelBg, -1)
	for i, line := range lines {
		c, scale := textWhite, 0.65
		if i == 0 {
			c, scale = textTitle, 0.7
		}
		gocv.PutText(frame, line, image.Pt(20, 40+i*24), gocv.FontHersheyDuplex, scale, c, 2)
	}
}
