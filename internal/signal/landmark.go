package signal

import (
	"math"
	"time"

	"github.com/oshokin/driver-sentry/internal/config"
	"github.com/oshokin/driver-sentry/internal/detect"
	"github.com/oshokin/driver-sentry/internal/domain/behavior"
)

// Reading is the per-frame geometry the landmark adapter derives, exposed
// for HUD display alongside the observation.
type Reading struct {
	// FaceFound is false when the frame had no usable face.
	FaceFound bool
	// EAR is the averaged eye aspect ratio; low values mean closed eyes.
	EAR float64
	// Yaw is the normalized horizontal nose displacement.
	Yaw float64
	// Pitch is the normalized vertical nose displacement.
	Pitch float64
	// Direction is a coarse head-direction label for display.
	Direction string
}

// Landmark adapts facial-landmark geometry into observations: eye closure
// from the eye aspect ratio, head turn and head down from nose displacement
// normalized by the inter-eye distance.
type Landmark struct {
	geom config.Geometry
}

// NewLandmark creates an adapter with the configured geometry tuning.
func NewLandmark(geom config.Geometry) *Landmark {
	return &Landmark{geom: geom}
}

// Observe derives tags from one frame's landmarks. Zero points, or indices
// outside the landmark set, mean no face: an empty observation, never an
// error.
func (a *Landmark) Observe(index int, delta time.Duration, points []detect.Point) (*behavior.Observation, Reading) {
	o := behavior.NewObservation(index, delta)

	if len(points) == 0 || !indicesInRange(points, a.geom.LeftEye) || !indicesInRange(points, a.geom.RightEye) {
		return o, Reading{Direction: "no-face"}
	}

	leftEAR := eyeAspectRatio(points, a.geom.LeftEye)
	rightEAR := eyeAspectRatio(points, a.geom.RightEye)
	ear := (leftEAR + rightEAR) / 2

	yaw, pitch := a.noseDisplacement(points)

	reading := Reading{
		FaceFound: true,
		EAR:       ear,
		Yaw:       yaw,
		Pitch:     pitch,
		Direction: a.direction(yaw, pitch),
	}

	if ear < a.geom.EARThreshold {
		o.Mark(a.geom.EyesClosedTag)
	}

	if math.Abs(yaw) > a.geom.YawThreshold {
		o.Mark(a.geom.HeadTurnedTag)
	}

	if pitch > a.geom.PitchThreshold {
		o.Mark(a.geom.HeadDownTag)
	}

	return o, reading
}

// noseDisplacement returns the nose offset from the eye midpoint,
// normalized by the inter-eye distance. A missing nose index falls back to
// the midpoint itself; a degenerate face scale falls back to 1.0 instead of
// dividing by zero.
func (a *Landmark) noseDisplacement(points []detect.Point) (yaw, pitch float64) {
	leftCenter := eyeCenter(points, a.geom.LeftEye)
	rightCenter := eyeCenter(points, a.geom.RightEye)

	midX := (leftCenter.X + rightCenter.X) / 2
	midY := (leftCenter.Y + rightCenter.Y) / 2

	nose := detect.Point{X: midX, Y: midY}
	if a.geom.Nose >= 0 && a.geom.Nose < len(points) {
		nose = points[a.geom.Nose]
	}

	faceScale := euclidean(leftCenter, rightCenter)
	if faceScale == 0 {
		faceScale = 1.0
	}

	return (nose.X - midX) / faceScale, (nose.Y - midY) / faceScale
}

// direction labels the dominant head pose for display.
func (a *Landmark) direction(yaw, pitch float64) string {
	switch {
	case yaw < -a.geom.YawThreshold:
		return "left"
	case yaw > a.geom.YawThreshold:
		return "right"
	case pitch > a.geom.PitchThreshold:
		return "down"
	case pitch < -a.geom.PitchThreshold:
		return "up"
	default:
		return "forward"
	}
}

// eyeAspectRatio computes EAR over six ordered contour points p1..p6:
// (|p2-p6| + |p3-p5|) / (2*|p1-p4|). It fails safe to 0.0 (reads as
// closed) when the horizontal distance is zero.
func eyeAspectRatio(points []detect.Point, eye []int) float64 {
	p1, p2, p3 := points[eye[0]], points[eye[1]], points[eye[2]]
	p4, p5, p6 := points[eye[3]], points[eye[4]], points[eye[5]]

	horizontal := euclidean(p1, p4)
	if horizontal == 0 {
		return 0.0
	}

	return (euclidean(p2, p6) + euclidean(p3, p5)) / (2 * horizontal)
}

// eyeCenter averages the contour points of one eye.
func eyeCenter(points []detect.Point, eye []int) detect.Point {
	var sumX, sumY float64

	for _, i := range eye {
		sumX += points[i].X
		sumY += points[i].Y
	}

	n := float64(len(eye))

	return detect.Point{X: sumX / n, Y: sumY / n}
}

// euclidean is the distance between two landmarks.
func euclidean(a, b detect.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// indicesInRange reports whether every index addresses a real landmark.
func indicesInRange(points []detect.Point, indices []int) bool {
	for _, i := range indices {
		if i < 0 || i >= len(points) {
			return false
		}
	}

	return true
}
