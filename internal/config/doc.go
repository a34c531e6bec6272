// Package config loads and validates YAML settings for the monitor.
//
// The behavior threshold table is an ordered list: its order breaks ties
// when several tags are equally overdue. Validate fills defaults for every
// tunable, so a minimal file needs only a mode, an input and the table.
package config
