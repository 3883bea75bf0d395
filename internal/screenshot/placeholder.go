package screenshot

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"
)

// Placeholder geometry.
const (
	placeholderWidth  = 1920
	placeholderHeight = 1080
	previewWidth      = 320
	previewHeight     = 240
	previewMargin     = 20
)

var (
	darkBlue  = gocv.NewScalar(139, 0, 0, 0) // BGR
	white     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black     = color.RGBA{A: 255}
	lightGray = color.RGBA{R: 211, G: 211, B: 211, A: 255}
)

// PlaceholderMethod renders a stand-in image with a caption, the time and a
// preview of the current annotated frame.
type PlaceholderMethod struct {
	Now func() time.Time
}

// Name implements Method.
func (PlaceholderMethod) Name() string { return "placeholder" }

// Capture implements Method.
func (p PlaceholderMethod) Capture(_ context.Context, path string, overlay *gocv.Mat) (string, error) {
	img := p.Render(overlay)
	defer img.Close()

	if !gocv.IMWrite(path, img) {
		return "", fmt.Errorf("write %s failed", path)
	}
	return path, nil
}

// Render draws the placeholder. The caller closes the result.
func (p PlaceholderMethod) Render(overlay *gocv.Mat) gocv.Mat {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	img := gocv.NewMatWithSizeFromScalar(darkBlue, placeholderHeight, placeholderWidth, gocv.MatTypeCV8UC3)

	const caption = "Screenshot Captured!"
	const scale, thickness = 2.0, 3
	size := gocv.GetTextSize(caption, gocv.FontHersheySimplex, scale, thickness)
	org := image.Pt((placeholderWidth-size.X)/2, (placeholderHeight+size.Y)/2)

	gocv.PutText(&img, caption, org.Add(image.Pt(2, 2)), gocv.FontHersheySimplex, scale, black, thickness)
	gocv.PutText(&img, caption, org, gocv.FontHersheySimplex, scale, white, thickness)
	gocv.PutText(&img, now().Format("2006-01-02 15:04:05"), org.Add(image.Pt(0, 60)),
		gocv.FontHersheySimplex, 1.2, lightGray, 2)

	if overlay != nil && !overlay.Empty() {
		pastePreview(&img, *overlay)
	}
	return img
}

func pastePreview(dst *gocv.Mat, overlay gocv.Mat) {
	bgr := gocv.NewMat()
	defer bgr.Close()
	switch overlay.Channels() {
	case 1:
		gocv.CvtColor(overlay, &bgr, gocv.ColorGrayToBGR)
	case 4:
		gocv.CvtColor(overlay, &bgr, gocv.ColorBGRAToBGR)
	default:
		overlay.CopyTo(&bgr)
	}

	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(bgr, &small, image.Pt(previewWidth, previewHeight), 0, 0, gocv.InterpolationLinear)

	x := placeholderWidth - previewWidth - previewMargin
	y := previewMargin
	rect := image.Rect(x, y, x+previewWidth, y+previewHeight)

	roi := dst.Region(rect)
	small.CopyTo(&roi)
	roi.Close()

	gocv.Rectangle(dst, rect.Inset(-2), white, 2)
}
