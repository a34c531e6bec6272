// Package alarm implements the shared alarm state machine: IDLE until a
// behavior crosses its threshold, ACTIVE with a self-escalating siren while
// any stays crossed, back to IDLE the moment none is.
//
// Phase transitions are initiated exclusively by the frame loop. The
// escalation goroutine only ramps intensity and exits on its next tick
// after the phase flips, so stopping the alarm never races escalation.
package alarm
