// Package behavior contains core domain types for driver monitoring.
//
// It defines Tag (a monitored unsafe state), Observation (the normalized
// per-frame set of active tags), Status (threshold classification), Phase
// (alarm lifecycle) and SummaryRow (end-of-run report line) with Clone
// helpers to avoid leaking internal references.
package behavior
