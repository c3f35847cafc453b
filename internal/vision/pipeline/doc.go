// Package pipeline provides batch orchestration for the court analysis
// layers.
//
// It wires together L1-L6 into a single pass over a captured detection
// stream: decode, filter, smooth, segment, assign roles, project and
// classify. The pipeline does not own domain logic; it delegates to the
// layer packages and hands the finished report to an optional sink.
package pipeline
