package signal

import (
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/driver-sentry/internal/detect"
	"github.com/oshokin/driver-sentry/internal/domain/behavior"
)

// TestCleanLabel verifies prefix stripping and pass-through.
func TestCleanLabel(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Texting", CleanLabel("c1 - Texting"))
	require.Equal(t, "Talking on the phone", CleanLabel("c2 - Talking on the phone"))
	require.Equal(t, "Eyes Closed", CleanLabel("Eyes Closed"))
	require.Equal(t, "Texting", CleanLabel("c1 - c2 - Texting"))
}

// TestDiscreteObserve verifies tag matching, unknown-label dropping and
// region collapsing.
func TestDiscreteObserve(t *testing.T) {
	t.Parallel()

	a := NewDiscrete([]behavior.Tag{"Texting", "Eyes Closed"})

	o := a.Observe(3, 100*time.Millisecond, []detect.Detection{
		{Label: "c1 - Texting", Confidence: 0.9, Rect: image.Rect(0, 0, 10, 10)},
		{Label: "c1 - Texting", Confidence: 0.7, Rect: image.Rect(5, 5, 15, 15)},
		{Label: "c7 - Hair and Makeup", Confidence: 0.8, Rect: image.Rect(1, 1, 2, 2)},
	})

	require.Equal(t, 3, o.Index)
	require.True(t, o.Active("Texting"))
	require.False(t, o.Active("Hair and Makeup"))
	require.Len(t, o.Regions, 1)
	require.Len(t, o.Regions["Texting"], 2)
}

// TestDiscreteEmptyFrame verifies no detections produce an empty observation.
func TestDiscreteEmptyFrame(t *testing.T) {
	t.Parallel()

	a := NewDiscrete([]behavior.Tag{"Texting"})
	o := a.Observe(0, 100*time.Millisecond, nil)

	require.True(t, o.Empty())
}
