package sound

// Noop is the visual-only siren: every call succeeds and produces nothing.
// Selected at startup when sound is disabled or no audio device exists.
type Noop struct{}

// Start implements the siren contract without producing sound.
func (Noop) Start(_ float64) error { return nil }

// SetIntensity is a no-op.
func (Noop) SetIntensity(_ float64) {}

// Stop is a no-op.
func (Noop) Stop() {}
