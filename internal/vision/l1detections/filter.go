package l1detections

import (
	"github.com/banshee-data/court.report/internal/config"
	"github.com/banshee-data/court.report/internal/monitoring"
	"github.com/banshee-data/court.report/internal/vision"
)

// BallFilter keeps ball boxes whose sides fall within [MinSize, MaxSize] and
// whose width/height ratio falls within [MinAspect, MaxAspect].
type BallFilter struct {
	MinSize   float64
	MaxSize   float64
	MinAspect float64
	MaxAspect float64
}

// PlayerFilter keeps player boxes strictly wider than MinWidth and strictly
// taller than MinHeight.
type PlayerFilter struct {
	MinWidth  float64
	MinHeight float64
}

// NewBallFilter builds a BallFilter from the tuning config.
func NewBallFilter(cfg *config.TuningConfig) BallFilter {
	return BallFilter{
		MinSize:   cfg.GetBallMinSizePx(),
		MaxSize:   cfg.GetBallMaxSizePx(),
		MinAspect: cfg.GetBallMinAspect(),
		MaxAspect: cfg.GetBallMaxAspect(),
	}
}

// NewPlayerFilter builds a PlayerFilter from the tuning config.
func NewPlayerFilter(cfg *config.TuningConfig) PlayerFilter {
	return PlayerFilter{
		MinWidth:  cfg.GetPlayerMinWidthPx(),
		MinHeight: cfg.GetPlayerMinHeightPx(),
	}
}

// Keep reports whether b is a plausible ball.
func (f BallFilter) Keep(b vision.BBox) bool {
	w, h := b.Width(), b.Height()
	if w < f.MinSize || w > f.MaxSize || h < f.MinSize || h > f.MaxSize {
		return false
	}
	if h <= 0 {
		return false
	}
	aspect := w / h
	return aspect >= f.MinAspect && aspect <= f.MaxAspect
}

// Keep reports whether b is large enough to be a player.
func (f PlayerFilter) Keep(b vision.BBox) bool {
	return b.Width() > f.MinWidth && b.Height() > f.MinHeight
}

// Keeper is satisfied by both filters.
type Keeper interface {
	Keep(vision.BBox) bool
}

// Apply returns a filtered copy of dets; dets itself is not modified. Every
// dropped box is counted as FilteredDetections on q.
func Apply(dets vision.Detections, f Keeper, q *monitoring.Quality) vision.Detections {
	out := make(vision.Detections, len(dets))
	dropped := 0
	for i, frame := range dets {
		kept := make(map[vision.TrackID]vision.BBox, len(frame))
		for id, b := range frame {
			if f.Keep(b) {
				kept[id] = b
			} else {
				dropped++
			}
		}
		out[i] = kept
	}
	q.Add(monitoring.FilteredDetections, dropped)
	return out
}
