package tracker

import (
	"time"

	"github.com/oshokin/driver-sentry/internal/config"
	"github.com/oshokin/driver-sentry/internal/domain/behavior"
)

// Tracker accumulates continuous presence per configured tag across frames.
// A tag absent from one observation is reset to zero immediately: a single
// missed frame fully clears progress toward the threshold.
type Tracker struct {
	// policy selects seconds accumulation or consecutive-frame counting.
	policy config.TrackingPolicy
	// rearmCooldown suppresses alert re-fires after a trigger (frames policy).
	rearmCooldown time.Duration
	// order preserves configuration order for snapshots.
	order []behavior.Tag
	// accumulated holds seconds or frame counts per tag, per policy.
	accumulated map[behavior.Tag]float64
	// lastSeen holds the frame index each tag was last active at.
	lastSeen map[behavior.Tag]int
	// lastFired is the wall-clock time of the last alert fire.
	lastFired time.Time
}

// New creates a tracker for the configured tag set and tracking policy.
func New(cfg *config.Config) *Tracker {
	tags := cfg.Tags()

	t := &Tracker{
		policy:        cfg.Tracking.Policy,
		rearmCooldown: cfg.Tracking.RearmCooldown,
		order:         tags,
		accumulated:   make(map[behavior.Tag]float64, len(tags)),
		lastSeen:      make(map[behavior.Tag]int, len(tags)),
	}

	for _, tag := range tags {
		t.accumulated[tag] = 0
		t.lastSeen[tag] = -1
	}

	return t
}

// Update folds one observation into the accumulators. Tags the tracker does
// not know are ignored; known tags absent from the observation are hard-reset.
func (t *Tracker) Update(o *behavior.Observation) {
	for _, tag := range t.order {
		if !o.Active(tag) {
			t.accumulated[tag] = 0

			continue
		}

		if t.policy == config.PolicyFrames {
			t.accumulated[tag]++
		} else {
			t.accumulated[tag] += o.Delta.Seconds()
		}

		t.lastSeen[tag] = o.Index
	}
}

// Accumulated returns the current value for tag, in the policy's units.
func (t *Tracker) Accumulated(tag behavior.Tag) float64 {
	return t.accumulated[tag]
}

// LastSeen returns the frame index tag was last active at, -1 if never.
func (t *Tracker) LastSeen(tag behavior.Tag) int {
	return t.lastSeen[tag]
}

// Snapshot returns a copy of the accumulators.
func (t *Tracker) Snapshot() map[behavior.Tag]float64 {
	snapshot := make(map[behavior.Tag]float64, len(t.accumulated))
	for tag, value := range t.accumulated {
		snapshot[tag] = value
	}

	return snapshot
}

// Armed reports whether a new alert may fire at now. The seconds policy is
// always armed; the frames policy enforces the re-arm cooldown after each
// fire to avoid flicker on live streams.
func (t *Tracker) Armed(now time.Time) bool {
	if t.policy != config.PolicyFrames {
		return true
	}

	if t.lastFired.IsZero() {
		return true
	}

	return now.Sub(t.lastFired) > t.rearmCooldown
}

// NoteFired records an alert fire for the re-arm cooldown.
func (t *Tracker) NoteFired(now time.Time) {
	t.lastFired = now
}
