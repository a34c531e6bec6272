// Package sound provides siren backends for the alarm controller: a pulsed
// sine tone on the host audio device, and a no-op fallback for visual-only
// operation when audio is disabled or unavailable.
package sound
