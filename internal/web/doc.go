// Package web serves the live monitoring dashboard: the latest per-frame
// evaluation snapshot over REST, a websocket stream of snapshots and the
// finalized session summary.
package web
