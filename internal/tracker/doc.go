// Package tracker turns per-frame observations into per-tag accumulated
// presence, under one of two policies: elapsed seconds (file streams, one
// frame worth 1/fps) or consecutive frames (live streams, with a re-arm
// cooldown after each fired alert).
//
// The reset rule is strict: a tag absent from a single observation loses
// all accumulated progress. There is no grace period and no decay.
package tracker
