// Package vision holds the shared data model for the court/pitch analysis
// layers.
//
// The layers live in sub-packages and follow the same dependency rule as the
// rest of the repository: L(n) may depend on L1..L(n-1) and on this package,
// never on a higher layer.
//
//	l1detections  detector output decoding and validation
//	l2smoothing   gap filling and smoothing of a single track
//	l3events      shot/delivery event segmentation
//	l4projection  mini court/pitch geometry and projection
//	l5roles       participant role assignment
//	l6shots       shot classification and per-event statistics
//
// No SQL/database code is allowed in this package or in the layer packages;
// persistence lives in storage/sqlite.
package vision
