// Package monitor renders diagnostic views of an analysis run: a PNG of the
// event signal with detected events marked, and an HTML page of shot speeds
// and per-player statistics.
//
// Dependency rule: monitor may depend on every vision layer but nothing in
// the layers depends on monitor.
package monitor
