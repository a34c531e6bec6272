// Package capture acquires frames from recorded video files or live camera
// devices and annotates them with per-frame elapsed time derived from the
// stream's FPS hint.
package capture
