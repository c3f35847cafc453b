// Package l2smoothing owns Layer 2 (Smoothing) of the court analysis data
// model.
//
// Responsibilities: turning a sparse, noisy single-identity track into a
// complete per-frame trajectory. Interior gaps are filled linearly, longer
// gaps by a local polynomial fit, the boundaries by forward/backward fill,
// and the result is passed through a centred moving average per channel.
//
// Dependency rule: L2 may depend on L1 and the vision data model.
package l2smoothing
