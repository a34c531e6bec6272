package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/driver-sentry/internal/config"
	"github.com/oshokin/driver-sentry/internal/detect"
)

// testGeometry uses compact landmark indices: left eye 0-5, right eye 6-11,
// nose 12.
func testGeometry() config.Geometry {
	return config.Geometry{
		EARThreshold:   0.25,
		YawThreshold:   0.18,
		PitchThreshold: 0.18,
		LeftEye:        []int{0, 1, 2, 3, 4, 5},
		RightEye:       []int{6, 7, 8, 9, 10, 11},
		Nose:           12,
		EyesClosedTag:  "Eyes Closed",
		HeadTurnedTag:  "Head Turned",
		HeadDownTag:    "Head Down",
	}
}

// openEye returns a six-point contour with EAR 2/3.
func openEye(offsetX float64) []detect.Point {
	return []detect.Point{
		{X: offsetX + 0, Y: 0},
		{X: offsetX + 1, Y: -1},
		{X: offsetX + 2, Y: -1},
		{X: offsetX + 3, Y: 0},
		{X: offsetX + 2, Y: 1},
		{X: offsetX + 1, Y: 1},
	}
}

// closedEye returns a six-point contour with zero vertical spread.
func closedEye(offsetX float64) []detect.Point {
	return []detect.Point{
		{X: offsetX + 0, Y: 0},
		{X: offsetX + 1, Y: 0},
		{X: offsetX + 2, Y: 0},
		{X: offsetX + 3, Y: 0},
		{X: offsetX + 2, Y: 0},
		{X: offsetX + 1, Y: 0},
	}
}

func face(left, right []detect.Point, nose detect.Point) []detect.Point {
	points := append(append([]detect.Point{}, left...), right...)

	return append(points, nose)
}

// TestEyeAspectRatio verifies the EAR formula on a synthetic contour.
func TestEyeAspectRatio(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 2.0/3.0, eyeAspectRatio(openEye(0), []int{0, 1, 2, 3, 4, 5}), 1e-9)
	require.InDelta(t, 0, eyeAspectRatio(closedEye(0), []int{0, 1, 2, 3, 4, 5}), 1e-9)
}

// TestEARDegenerateGeometry verifies zero horizontal eye distance fails
// safe to 0.0 instead of dividing by zero.
func TestEARDegenerateGeometry(t *testing.T) {
	t.Parallel()

	collapsed := make([]detect.Point, 6)

	require.InDelta(t, 0, eyeAspectRatio(collapsed, []int{0, 1, 2, 3, 4, 5}), 1e-9)
}

// TestLandmarkEyesOpen verifies an open-eyed forward face activates nothing.
func TestLandmarkEyesOpen(t *testing.T) {
	t.Parallel()

	a := NewLandmark(testGeometry())
	points := face(openEye(0), openEye(10), detect.Point{X: 6.5, Y: 0})

	o, reading := a.Observe(0, 100*time.Millisecond, points)

	require.True(t, o.Empty())
	require.True(t, reading.FaceFound)
	require.InDelta(t, 2.0/3.0, reading.EAR, 1e-9)
	require.Equal(t, "forward", reading.Direction)
}

// TestLandmarkEyesClosed verifies a low EAR activates the eyes-closed tag.
func TestLandmarkEyesClosed(t *testing.T) {
	t.Parallel()

	a := NewLandmark(testGeometry())
	points := face(closedEye(0), closedEye(10), detect.Point{X: 6.5, Y: 0})

	o, reading := a.Observe(0, 100*time.Millisecond, points)

	require.True(t, o.Active("Eyes Closed"))
	require.InDelta(t, 0, reading.EAR, 1e-9)
}

// TestLandmarkHeadTurn verifies normalized nose displacement activates the
// head tags past the configured thresholds.
func TestLandmarkHeadTurn(t *testing.T) {
	t.Parallel()

	a := NewLandmark(testGeometry())

	// Inter-eye distance is 10, so nose x offset 2.5 normalizes to 0.25.
	o, reading := a.Observe(0, 0, face(openEye(0), openEye(10), detect.Point{X: 9, Y: 0}))
	require.True(t, o.Active("Head Turned"))
	require.False(t, o.Active("Head Down"))
	require.Equal(t, "right", reading.Direction)
	require.InDelta(t, 0.25, reading.Yaw, 1e-9)

	o, reading = a.Observe(0, 0, face(openEye(0), openEye(10), detect.Point{X: 6.5, Y: 2.5}))
	require.True(t, o.Active("Head Down"))
	require.Equal(t, "down", reading.Direction)
	require.InDelta(t, 0.25, reading.Pitch, 1e-9)
}

// TestLandmarkNoFace verifies missing landmarks produce an empty
// observation, not an error.
func TestLandmarkNoFace(t *testing.T) {
	t.Parallel()

	a := NewLandmark(testGeometry())

	o, reading := a.Observe(0, 0, nil)
	require.True(t, o.Empty())
	require.False(t, reading.FaceFound)
	require.Equal(t, "no-face", reading.Direction)

	// Too few points for the configured indices counts as no face.
	o, _ = a.Observe(0, 0, openEye(0))
	require.True(t, o.Empty())
}
