// Package monitor runs the driver-safety pipeline: frames from a video
// file or camera are turned into behavior observations, observed durations
// are tracked against per-behavior thresholds, and crossings drive an
// escalating audio-visual alarm. When the stream ends the package produces
// a per-behavior session summary.
package monitor
