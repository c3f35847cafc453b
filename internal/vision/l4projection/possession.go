package l4projection

import (
	"math"

	"github.com/banshee-data/court.report/internal/vision"
)

// snap applies the possession heuristic to one ball box. The nearest
// participant is found by box-centre distance in source pixels (lower id wins
// ties); the ball snaps only when that participant is within the threshold
// and has a usable projected position this frame.
func (p *Projector) snap(ball vision.BBox, frame map[vision.TrackID]vision.BBox, projected map[vision.TrackID]vision.Position) (vision.Position, bool) {
	poss := p.opts.Possession
	if !poss.Enabled || len(frame) == 0 {
		return vision.Position{}, false
	}
	center := ball.Center()
	nearest, best := vision.TrackID(0), math.Inf(1)
	found := false
	for _, id := range vision.SortedIDs(frame) {
		if d := center.Distance(frame[id].Center()); d < best {
			nearest, best, found = id, d, true
		}
	}
	if !found || best >= poss.ThresholdPx {
		return vision.Position{}, false
	}
	holder, ok := projected[nearest]
	if !ok || !holder.Usable() {
		return vision.Position{}, false
	}
	jittered := vision.Point{
		X: holder.X + poss.JitterScale*(0.5-p.rng.Float64()),
		Y: holder.Y + poss.JitterScale*(0.5-p.rng.Float64()),
	}
	return vision.Position{Point: p.surface.Canvas.Clamp(jittered), Source: vision.SourceSnapped}, true
}
