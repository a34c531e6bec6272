// Package signal normalizes raw detector outputs into per-frame
// observations: the set of currently-active behavior tags.
//
// Two adapters share the contract: Discrete consumes classified regions
// from a whole-frame object detector, Landmark derives eye closure and
// head pose from facial landmark geometry. Downstream tracking, threshold
// evaluation and alarm control are written once against the observation.
package signal
