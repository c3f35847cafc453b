// Package l3events owns Layer 3 (Events) of the court analysis data model.
//
// Responsibilities: deriving a motion signal from a smoothed ball trajectory
// and segmenting it into shot/delivery events. A candidate reversal is only
// confirmed when the changed motion is sustained over the following window,
// which rejects single-frame detector jitter.
//
// Dependency rule: L3 may depend on L1-L2.
package l3events
