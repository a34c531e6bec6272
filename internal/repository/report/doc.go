// Package report persists the end-of-session behavior summary
// as a JSON file so external tooling can consume the results.
package report
