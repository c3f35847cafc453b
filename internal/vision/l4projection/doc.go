// Package l4projection owns Layer 4 (Projection) of the court analysis data
// model.
//
// Responsibilities: the fixed mini court/pitch geometry (canvas, drawn
// surface and drawing landmarks per surface type) and the keypoint-relative
// projection of source-pixel positions into that space, including the
// ball-possession snapping heuristic for racquet sports.
//
// Every projected position lies inside the canvas rectangle. Positions that
// cannot be computed are reported explicitly as fallback positions at the
// canvas centre.
//
// Dependency rule: L4 may depend on L1-L3.
package l4projection
