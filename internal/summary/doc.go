// Package summary builds the end-of-run report: total observed duration per
// behavior and whether its final accumulated value reached the threshold.
//
// EverTriggered intentionally reflects the final accumulator only. A
// behavior that crossed its threshold mid-stream but was reset before the
// stream ended reports false; see the Finalize doc comment.
package summary
