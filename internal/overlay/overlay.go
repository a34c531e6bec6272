package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/oshokin/driver-sentry/internal/domain/behavior"
	"github.com/oshokin/driver-sentry/internal/signal"
	"github.com/oshokin/driver-sentry/internal/threshold"
)

// blinkPeriod is the frame count of one half of the alert blink cycle.
const blinkPeriod = 5

var (
	colorBelow   = color.RGBA{G: 255, A: 255}
	colorAlert   = color.RGBA{R: 255, A: 255}
	colorBlink   = color.RGBA{R: 255, G: 255, A: 255}
	colorText    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorWarning = color.RGBA{R: 255, G: 165, A: 255}
)

// Draw annotates one frame: green boxes for tags below threshold, blinking
// red/yellow boxes for crossed tags, the label above each region and an
// alert banner with the primary tag's progress.
func Draw(img *gocv.Mat, o *behavior.Observation, result *threshold.Result) {
	for tag, regions := range o.Regions {
		crossed := result.Statuses[tag] == behavior.StatusCrossed

		for _, region := range regions {
			if crossed {
				gocv.Rectangle(img, region, blinkColor(o.Index), 4)
			} else {
				gocv.Rectangle(img, region, colorBelow, 2)
			}

			gocv.PutText(img, string(tag),
				image.Pt(region.Min.X, region.Min.Y-10),
				gocv.FontHersheySimplex, 0.8, colorText, 2)
		}
	}

	if result.Primary == "" {
		return
	}

	banner := fmt.Sprintf("ALERT: %s (%.0f%%)", result.Primary, result.Progress[result.Primary]*100)
	gocv.PutText(img, banner,
		image.Pt(img.Cols()/3, img.Rows()/2),
		gocv.FontHersheySimplex, 1.2, colorAlert, 3)
}

// DrawHUD renders the landmark pipeline's geometry readout.
func DrawHUD(img *gocv.Mat, reading signal.Reading, closedFrames float64) {
	gocv.PutText(img, fmt.Sprintf("EAR: %.3f", reading.EAR),
		image.Pt(10, 30), gocv.FontHersheySimplex, 0.8, colorText, 2)
	gocv.PutText(img, fmt.Sprintf("Head: %s", reading.Direction),
		image.Pt(10, 60), gocv.FontHersheySimplex, 0.8, colorText, 2)
	gocv.PutText(img, fmt.Sprintf("Closed frames: %.0f", closedFrames),
		image.Pt(10, 90), gocv.FontHersheySimplex, 0.7, colorText, 2)

	if reading.FaceFound && reading.Direction != "forward" {
		gocv.PutText(img, fmt.Sprintf("HEAD %s", reading.Direction),
			image.Pt(10, img.Rows()-10), gocv.FontHersheySimplex, 0.9, colorWarning, 2)
	}
}

// blinkColor alternates red and yellow every few frames.
func blinkColor(frameIndex int) color.RGBA {
	if (frameIndex/blinkPeriod)%2 == 0 {
		return colorAlert
	}

	return colorBlink
}
