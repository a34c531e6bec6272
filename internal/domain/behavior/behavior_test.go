package behavior

import (
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestObservationMark verifies duplicate regions collapse to one active tag.
func TestObservationMark(t *testing.T) {
	t.Parallel()

	o := NewObservation(0, 33*time.Millisecond)
	require.True(t, o.Empty())

	o.Mark("Texting", image.Rect(0, 0, 10, 10))
	o.Mark("Texting", image.Rect(5, 5, 20, 20))

	require.True(t, o.Active("Texting"))
	require.False(t, o.Active("Yawning"))
	require.Len(t, o.Regions, 1)
	require.Len(t, o.Regions["Texting"], 2)
}

// TestObservationClone verifies that Clone returns a deep copy and handles nil safely.
func TestObservationClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*Observation)(nil).Clone())

	o := NewObservation(7, 100*time.Millisecond)
	o.Mark("Eyes Closed")
	o.Mark("Texting", image.Rect(1, 2, 3, 4))

	c := o.Clone()
	require.Equal(t, o, c)
	require.NotSame(t, o, c)

	// Mutating the clone must not touch the original.
	c.Regions["Texting"][0] = image.Rect(9, 9, 9, 9)
	require.Equal(t, image.Rect(1, 2, 3, 4), o.Regions["Texting"][0])

	// Landmark-style tags keep their nil region slice.
	require.Nil(t, c.Regions["Eyes Closed"])
}

// TestStatusString verifies the status and phase display names.
func TestStatusString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "BELOW", StatusBelow.String())
	require.Equal(t, "CROSSED", StatusCrossed.String())
	require.Equal(t, "IDLE", PhaseIdle.String())
	require.Equal(t, "ACTIVE", PhaseActive.String())
}
