package sound

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/oshokin/driver-sentry/internal/config"
)

// Tone plays a pulsed sine siren through the host audio device. Volume
// follows the alarm intensity. Safe for concurrent use by the frame loop
// and the escalation goroutine.
type Tone struct {
	// otoCtx is the process-wide audio context.
	otoCtx *oto.Context
	// cfg keeps the siren shape: frequency, pulse length, gap.
	cfg config.Alarm
	// mu guards the player lifecycle.
	mu sync.Mutex
	// player streams the pulse wave while the alarm is active.
	player *oto.Player
}

// NewTone initialises the audio backend. An error here means the host has
// no usable audio device; callers degrade to the Noop siren.
func NewTone(cfg config.Alarm) (*Tone, error) {
	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise audio context: %w", err)
	}

	<-ready

	return &Tone{
		otoCtx: otoCtx,
		cfg:    cfg,
	}, nil
}

// Start begins the pulsed siren at the given intensity.
func (t *Tone) Start(intensity float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.player != nil {
		_ = t.player.Close()
	}

	wave := newPulseWave(float64(t.cfg.FrequencyHz), t.cfg.BeepDuration, t.cfg.BeepGap)
	t.player = t.otoCtx.NewPlayer(wave)
	t.player.SetVolume(intensity)
	t.player.Play()

	return nil
}

// SetIntensity adjusts the volume of the running siren.
func (t *Tone) SetIntensity(intensity float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.player != nil {
		t.player.SetVolume(intensity)
	}
}

// Stop silences the siren immediately.
func (t *Tone) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.player != nil {
		_ = t.player.Close()
		t.player = nil
	}
}
