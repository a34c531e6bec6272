package sound

import (
	"math"
	"time"
)

const (
	// sampleRate is the output sample rate in Hz.
	sampleRate = 44100
	// amplitude leaves headroom below the int16 ceiling.
	amplitude = 0.8 * math.MaxInt16
	// bytesPerSample is the size of one mono signed 16-bit sample.
	bytesPerSample = 2
)

// pulseWave is an endless mono int16 stream of sine bursts: BeepDuration of
// tone, BeepGap of silence, repeating. The escalating volume is applied by
// the player, not baked into samples.
type pulseWave struct {
	// frequency is the tone pitch in Hz.
	frequency float64
	// onSamples and periodSamples define the pulse cadence.
	onSamples     int64
	periodSamples int64
	// position is the running sample counter.
	position int64
}

// newPulseWave shapes a siren pulse train. Degenerate durations collapse to
// a continuous tone.
func newPulseWave(frequency float64, on, gap time.Duration) *pulseWave {
	onSamples := int64(on.Seconds() * sampleRate)
	periodSamples := onSamples + int64(gap.Seconds()*sampleRate)

	if onSamples <= 0 || periodSamples <= 0 {
		onSamples = 1
		periodSamples = 1
	}

	return &pulseWave{
		frequency:     frequency,
		onSamples:     onSamples,
		periodSamples: periodSamples,
	}
}

// Read fills p with little-endian samples and never returns an error; the
// stream is infinite and the player stops it by closing.
func (w *pulseWave) Read(p []byte) (int, error) {
	n := len(p) &^ 1

	for i := 0; i < n; i += bytesPerSample {
		var sample int16

		if w.position%w.periodSamples < w.onSamples {
			angle := 2 * math.Pi * w.frequency * float64(w.position) / sampleRate
			sample = int16(amplitude * math.Sin(angle))
		}

		p[i] = byte(sample)
		p[i+1] = byte(sample >> 8)
		w.position++
	}

	return n, nil
}
