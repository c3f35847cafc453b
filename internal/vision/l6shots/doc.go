// Package l6shots owns Layer 6 (Shots) of the court analysis data model.
//
// Responsibilities: classifying each consecutive pair of events into a shot
// record (category, direction, intensity, acting participant, distance and
// speed) from ordered, data-driven rule tables, and accumulating per-player
// and per-innings statistics into a frame-addressable timeline.
//
// Dependency rule: L6 may depend on L1-L5.
package l6shots
