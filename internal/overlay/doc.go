// Package overlay draws detection boxes, alert banners and the geometry
// HUD onto frames before they are written to the annotated output stream.
package overlay
