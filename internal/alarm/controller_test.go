package alarm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/driver-sentry/internal/config"
	"github.com/oshokin/driver-sentry/internal/domain/behavior"
)

// fakeSiren records backend calls for assertions.
type fakeSiren struct {
	mu        sync.Mutex
	starts    []float64
	sets      []float64
	stops     int
	failStart bool
}

func (f *fakeSiren) Start(intensity float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.starts = append(f.starts, intensity)

	if f.failStart {
		return errors.New("no audio device")
	}

	return nil
}

func (f *fakeSiren) SetIntensity(intensity float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sets = append(f.sets, intensity)
}

func (f *fakeSiren) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stops++
}

func (f *fakeSiren) snapshot() (starts, sets []float64, stops int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]float64(nil), f.starts...), append([]float64(nil), f.sets...), f.stops
}

func tuning() config.Alarm {
	return config.Alarm{
		IntensityFloor:   0.2,
		IntensityCeiling: 1.0,
		IntensityStep:    0.05,
		Tick:             10 * time.Millisecond,
	}
}

// TestTriggerFromIdle verifies the IDLE to ACTIVE transition side effects.
func TestTriggerFromIdle(t *testing.T) {
	t.Parallel()

	siren := &fakeSiren{}
	c := New(siren, tuning())
	ctx := context.Background()

	require.Equal(t, behavior.PhaseIdle, c.Phase())

	c.Trigger(ctx)

	require.Equal(t, behavior.PhaseActive, c.Phase())
	require.False(t, c.ActivatedAt().IsZero())

	starts, _, _ := siren.snapshot()
	require.Equal(t, []float64{0.2}, starts)

	c.Shutdown(ctx)
}

// TestRetriggerIsNoOp verifies a second trigger never spawns a second
// escalation goroutine: recorded intensities climb by exactly one step.
func TestRetriggerIsNoOp(t *testing.T) {
	t.Parallel()

	siren := &fakeSiren{}
	c := New(siren, tuning())
	ctx := context.Background()

	c.Trigger(ctx)
	c.Trigger(ctx)
	c.Trigger(ctx)

	time.Sleep(65 * time.Millisecond)
	c.Shutdown(ctx)

	starts, sets, _ := siren.snapshot()
	require.Len(t, starts, 1)
	require.NotEmpty(t, sets)

	previous := 0.2
	for _, value := range sets {
		require.InDelta(t, previous+0.05, value, 1e-9)
		previous = value
	}
}

// TestSilenceStopsEscalation verifies ACTIVE to IDLE stops sound
// immediately and the escalation goroutine goes quiet.
func TestSilenceStopsEscalation(t *testing.T) {
	t.Parallel()

	siren := &fakeSiren{}
	c := New(siren, tuning())
	ctx := context.Background()

	c.Trigger(ctx)
	time.Sleep(35 * time.Millisecond)
	c.Silence(ctx)

	require.Equal(t, behavior.PhaseIdle, c.Phase())
	require.InDelta(t, 0.2, c.Intensity(), 1e-9)

	_, setsAtStop, stops := siren.snapshot()
	require.Equal(t, 1, stops)

	// No further intensity changes after the stop.
	time.Sleep(35 * time.Millisecond)

	_, setsLater, _ := siren.snapshot()
	require.Equal(t, len(setsAtStop), len(setsLater))

	// Silence while already idle is a no-op.
	c.Silence(ctx)

	_, _, stops = siren.snapshot()
	require.Equal(t, 1, stops)
}

// TestIntensityCapped verifies the ramp is monotonic and holds at the ceiling.
func TestIntensityCapped(t *testing.T) {
	t.Parallel()

	cfg := tuning()
	cfg.IntensityStep = 0.5

	siren := &fakeSiren{}
	c := New(siren, cfg)
	ctx := context.Background()

	c.Trigger(ctx)
	time.Sleep(60 * time.Millisecond)
	c.Shutdown(ctx)

	_, sets, _ := siren.snapshot()
	require.NotEmpty(t, sets)

	previous := 0.0
	for _, value := range sets {
		require.GreaterOrEqual(t, value, previous)
		require.LessOrEqual(t, value, 1.0)
		previous = value
	}

	require.InDelta(t, 1.0, sets[len(sets)-1], 1e-9)
}

// TestFreshTriggerResetsIntensity verifies every activation ramps from the floor.
func TestFreshTriggerResetsIntensity(t *testing.T) {
	t.Parallel()

	siren := &fakeSiren{}
	c := New(siren, tuning())
	ctx := context.Background()

	c.Trigger(ctx)
	time.Sleep(35 * time.Millisecond)
	require.Greater(t, c.Intensity(), 0.2)
	c.Silence(ctx)

	c.Trigger(ctx)

	starts, _, _ := siren.snapshot()
	require.Equal(t, []float64{0.2, 0.2}, starts)

	c.Shutdown(ctx)
}

// TestVisualOnlyMode verifies a failing sound backend is not fatal and the
// state machine keeps transitioning.
func TestVisualOnlyMode(t *testing.T) {
	t.Parallel()

	siren := &fakeSiren{failStart: true}
	c := New(siren, tuning())
	ctx := context.Background()

	c.Trigger(ctx)
	require.Equal(t, behavior.PhaseActive, c.Phase())

	c.Silence(ctx)
	require.Equal(t, behavior.PhaseIdle, c.Phase())
}

// TestShutdownWithoutTrigger verifies shutdown is safe when the alarm never fired.
func TestShutdownWithoutTrigger(t *testing.T) {
	t.Parallel()

	c := New(&fakeSiren{}, tuning())
	c.Shutdown(context.Background())

	require.Equal(t, behavior.PhaseIdle, c.Phase())
}
