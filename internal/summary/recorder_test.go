package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/driver-sentry/internal/config"
	"github.com/oshokin/driver-sentry/internal/domain/behavior"
	"github.com/oshokin/driver-sentry/internal/threshold"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		Mode:      config.ModeVideo,
		VideoFile: "drive.mp4",
		Behaviors: []config.Behavior{
			{Tag: "Eyes Closed", Seconds: 3},
			{Tag: "Texting", Seconds: 8},
		},
	}

	require.NoError(t, config.Validate(cfg))

	return cfg
}

// TestTotalsAreMonotonic verifies totals keep growing across resets of the
// tracker-side accumulators.
func TestTotalsAreMonotonic(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	r := New(cfg)
	delta := 100 * time.Millisecond

	for i := 0; i < 10; i++ {
		o := behavior.NewObservation(i, delta)
		o.Mark("Texting")
		r.Observe(o)
	}

	// A frame without the tag does not shrink the total.
	r.Observe(behavior.NewObservation(10, delta))

	o := behavior.NewObservation(11, delta)
	o.Mark("Texting")
	o.Mark("Unknown Tag")
	r.Observe(o)

	rows := r.Finalize(map[behavior.Tag]float64{}, threshold.New(cfg))
	require.Len(t, rows, 2)

	require.Equal(t, behavior.Tag("Eyes Closed"), rows[0].Tag)
	require.Equal(t, behavior.Tag("Texting"), rows[1].Tag)
	require.InDelta(t, 1.1, rows[1].TotalSeconds, 1e-9)
	require.InDelta(t, 0, rows[0].TotalSeconds, 1e-9)
}

// TestEverTriggeredFinalValueOnly verifies a crossing reset before end of
// stream reports false, and a crossing still live at end reports true.
func TestEverTriggeredFinalValueOnly(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	r := New(cfg)
	e := threshold.New(cfg)

	// The accumulator for Eyes Closed crossed 3.0 mid-stream but was reset;
	// Texting is still at 9.0 at end of stream.
	rows := r.Finalize(map[behavior.Tag]float64{
		"Eyes Closed": 0,
		"Texting":     9.0,
	}, e)

	require.False(t, rows[0].EverTriggered)
	require.True(t, rows[1].EverTriggered)
}

// TestObserveAfterFinalize verifies finalization freezes the totals.
func TestObserveAfterFinalize(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	r := New(cfg)

	r.Finalize(map[behavior.Tag]float64{}, threshold.New(cfg))

	o := behavior.NewObservation(0, time.Second)
	o.Mark("Texting")
	r.Observe(o)

	require.InDelta(t, 0, r.totals["Texting"], 1e-9)
}
