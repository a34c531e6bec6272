// Package threshold classifies accumulated per-tag values as below or
// crossed (boundary inclusive) and selects the single most-overdue crossed
// tag for display emphasis.
package threshold
