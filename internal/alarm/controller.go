package alarm

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oshokin/driver-sentry/internal/config"
	"github.com/oshokin/driver-sentry/internal/domain/behavior"
	"github.com/oshokin/driver-sentry/internal/logger"
)

// Siren abstracts the sound-producing backend. Implementations must accept
// intensity values in [0, 1]. A no-op implementation keeps the controller
// fully functional in visual-only mode.
type Siren interface {
	// Start begins sound production at the given intensity.
	Start(intensity float64) error
	// SetIntensity adjusts the volume of an already-started siren.
	SetIntensity(intensity float64)
	// Stop silences the siren immediately.
	Stop()
}

// Controller owns the process-wide alarm state. Phase transitions are only
// ever initiated from the frame loop; the background escalation goroutine
// mutates intensity while active and never touches the phase.
type Controller struct {
	// siren produces sound; may be a no-op in visual-only mode.
	siren Siren
	// floor, ceiling and step bound the escalation ramp.
	floor, ceiling, step float64
	// tick is the escalation cadence, independent of the frame rate.
	tick time.Duration

	// phase flips synchronously on trigger/silence so the escalation
	// goroutine observes a stop by its next tick at the latest.
	phase atomic.Int32

	// mu guards intensity, activatedAt and the escalation bookkeeping.
	mu          sync.Mutex
	intensity   float64
	activatedAt time.Time
	cancel      context.CancelFunc
	done        chan struct{}
}

// New creates an idle controller with intensity at the floor.
func New(siren Siren, cfg config.Alarm) *Controller {
	return &Controller{
		siren:     siren,
		floor:     cfg.IntensityFloor,
		ceiling:   cfg.IntensityCeiling,
		step:      cfg.IntensityStep,
		tick:      cfg.Tick,
		intensity: cfg.IntensityFloor,
	}
}

// Trigger transitions IDLE to ACTIVE: resets intensity to the floor, starts
// the siren and launches one escalation goroutine. A trigger while already
// active is a no-op and never spawns a second goroutine.
func (c *Controller) Trigger(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if behavior.Phase(c.phase.Load()) == behavior.PhaseActive {
		return
	}

	c.intensity = c.floor
	c.activatedAt = time.Now()
	c.phase.Store(int32(behavior.PhaseActive))

	if err := c.siren.Start(c.intensity); err != nil {
		// Sound failure degrades to visual-only; the state machine runs on.
		logger.Warnf(ctx, "Siren failed to start, continuing without sound: %v", err)
	}

	escalationCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel
	c.done = make(chan struct{})

	logger.InfoKV(ctx, "Alarm activated", "intensity", c.intensity)

	go c.escalate(escalationCtx, c.done)
}

// Silence transitions ACTIVE to IDLE: flips the phase synchronously, stops
// the siren and joins the escalation goroutine. A silence while idle is a
// no-op.
func (c *Controller) Silence(ctx context.Context) {
	c.mu.Lock()

	if behavior.Phase(c.phase.Load()) == behavior.PhaseIdle {
		c.mu.Unlock()

		return
	}

	c.phase.Store(int32(behavior.PhaseIdle))
	c.cancel()
	c.siren.Stop()
	c.intensity = c.floor
	done := c.done
	c.mu.Unlock()

	<-done

	logger.Info(ctx, "Alarm silenced")
}

// Shutdown forces the alarm idle and waits for the escalation goroutine.
// Safe to call regardless of phase; the stream must never end with the
// alarm audibly active.
func (c *Controller) Shutdown(ctx context.Context) {
	c.Silence(ctx)
}

// Phase returns the current alarm phase.
func (c *Controller) Phase() behavior.Phase {
	return behavior.Phase(c.phase.Load())
}

// Intensity returns the current alarm intensity.
func (c *Controller) Intensity() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.intensity
}

// ActivatedAt returns when the current activation started. Zero while idle
// if the alarm has never fired.
func (c *Controller) ActivatedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.activatedAt
}

// escalate ramps intensity toward the ceiling on a fixed cadence while the
// phase stays active. The ramp is monotonically non-decreasing; once capped
// it holds. At most one trailing tick can land after a stop, but the phase
// check keeps it from producing sound past that.
func (c *Controller) escalate(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if behavior.Phase(c.phase.Load()) != behavior.PhaseActive {
				return
			}

			c.mu.Lock()

			// A stop may have won the race for the lock; never touch the
			// siren after it.
			if behavior.Phase(c.phase.Load()) != behavior.PhaseActive {
				c.mu.Unlock()

				return
			}

			if c.intensity < c.ceiling {
				c.intensity += c.step
				if c.intensity > c.ceiling {
					c.intensity = c.ceiling
				}

				c.siren.SetIntensity(c.intensity)
			}

			c.mu.Unlock()
		}
	}
}
