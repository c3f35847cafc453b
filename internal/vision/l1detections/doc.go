// Package l1detections owns Layer 1 (Detections) of the court analysis data
// model.
//
// Responsibilities: decoding the raw per-frame detector output into typed
// detection streams, rejecting malformed boxes and landmark lists, and the
// size/aspect plausibility filters for balls and players.
//
// Dependency rule: L1 may depend only on the vision data model, config and
// monitoring. Malformed input is counted, never returned as an error.
package l1detections
