package l4projection

import (
	"fmt"
	"math/rand/v2"

	"github.com/banshee-data/court.report/internal/config"
	"github.com/banshee-data/court.report/internal/monitoring"
	"github.com/banshee-data/court.report/internal/vision"
)

// RandomSource supplies the possession jitter. *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// Possession configures ball-possession snapping. When the ball's box centre
// is closer than ThresholdPx (source pixels) to a participant's box centre,
// the ball is drawn at that participant's projected position plus
// JitterScale*(0.5-r) on each axis.
type Possession struct {
	Enabled     bool
	ThresholdPx float64
	JitterScale float64
}

// Options configures a Projector.
type Options struct {
	// Allowed restricts the landmarks considered for anchoring. When nil,
	// LandmarkLimit applies.
	Allowed []int
	// LandmarkLimit, when positive, allows only the first LandmarkLimit
	// landmarks. Zero allows all.
	LandmarkLimit int
	Possession    Possession
	// Random is the jitter source. Nil uses a PCG generator seeded with Seed.
	Random RandomSource
	Seed   uint64
}

// OptionsFromTuning extracts the projector options from a tuning config.
func OptionsFromTuning(cfg *config.TuningConfig) Options {
	return Options{
		LandmarkLimit: cfg.GetLandmarkLimit(),
		Possession: Possession{
			Enabled:     cfg.GetPossessionEnabled(),
			ThresholdPx: cfg.GetPossessionThresholdPx(),
			JitterScale: cfg.GetJitterScale(),
		},
		Seed: cfg.GetJitterSeed(),
	}
}

// Projector maps source-pixel positions into mini-surface space. Projection
// of a single point is deterministic; only ProjectFrames draws from the
// random source, and only when possession snapping fires.
type Projector struct {
	surface *Surface
	opts    Options
	rng     RandomSource
}

// NewProjector validates opts against surface and returns a Projector.
func NewProjector(surface *Surface, opts Options) (*Projector, error) {
	if surface == nil {
		return nil, fmt.Errorf("%w: nil surface", config.ErrInvalidConfig)
	}
	if surface.Canvas.Width() < 0 || surface.Canvas.Height() < 0 {
		return nil, fmt.Errorf("%w: inverted canvas %+v", config.ErrInvalidConfig, surface.Canvas)
	}
	if opts.LandmarkLimit < 0 {
		return nil, fmt.Errorf("%w: landmark limit must be non-negative, got %d", config.ErrInvalidConfig, opts.LandmarkLimit)
	}
	if opts.Possession.ThresholdPx < 0 || opts.Possession.JitterScale < 0 {
		return nil, fmt.Errorf("%w: possession threshold and jitter must be non-negative", config.ErrInvalidConfig)
	}
	rng := opts.Random
	if rng == nil {
		rng = rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	}
	return &Projector{surface: surface, opts: opts, rng: rng}, nil
}

// Surface returns the geometry the projector maps into.
func (p *Projector) Surface() *Surface { return p.surface }

// allowed resolves the landmark indices considered for lm.
func (p *Projector) allowed(lm vision.Landmarks) []int {
	if p.opts.Allowed != nil {
		return p.opts.Allowed
	}
	if p.opts.LandmarkLimit == 0 {
		return nil
	}
	n := lm.Len()
	if p.opts.LandmarkLimit < n {
		n = p.opts.LandmarkLimit
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// Project maps pt to the mini surface. The offset of pt from its nearest
// allowed landmark is normalized by the source frame size, scaled by the mini
// dimensions and added to the matching drawing landmark, then clamped to the
// canvas. A non-finite pt, no usable landmark, or a landmark without a
// drawing counterpart yields the fallback position.
func (p *Projector) Project(pt vision.Point, lm vision.Landmarks) vision.Position {
	if !pt.Finite() {
		return p.surface.Fallback()
	}
	idx, _ := lm.Nearest(pt, p.allowed(lm))
	if idx < 0 {
		return p.surface.Fallback()
	}
	anchor, _ := lm.Point(idx)
	mini, ok := p.surface.Keypoint(idx)
	if !ok {
		return p.surface.Fallback()
	}

	s := p.surface
	off := pt.Sub(anchor)
	nx := off.X / max(s.FrameWidth, 1)
	ny := off.Y / max(s.FrameHeight, 1)
	out := vision.Point{X: mini.X + nx*s.MiniWidth, Y: mini.Y + ny*s.MiniHeight}
	if !out.Finite() {
		return s.Fallback()
	}
	return vision.Position{Point: s.Canvas.Clamp(out), Source: vision.SourceDetected}
}

// ProjectFrames projects every participant (from the foot point) and the
// ball (from the box centre) in every frame. Participants absent from a frame
// and ball frames without a box get the fallback position, so each output
// frame has an entry for every participant identity and for the ball.
func (p *Projector) ProjectFrames(participants vision.Detections, ball vision.Track, lm vision.Landmarks, q *monitoring.Quality) (players, balls vision.FramePositions) {
	n := len(participants)
	if len(ball) > n {
		n = len(ball)
	}
	ids := participants.IDs()
	players = make(vision.FramePositions, n)
	balls = make(vision.FramePositions, n)
	fallbacks, snapped := 0, 0

	for f := 0; f < n; f++ {
		var frame map[vision.TrackID]vision.BBox
		if f < len(participants) {
			frame = participants[f]
		}
		players[f] = make(map[vision.TrackID]vision.Position, len(ids))
		for _, id := range ids {
			b, ok := frame[id]
			pos := p.surface.Fallback()
			if ok {
				pos = p.Project(b.Foot(), lm)
			}
			if !pos.Usable() {
				fallbacks++
			}
			players[f][id] = pos
		}

		pos := p.surface.Fallback()
		if f < len(ball) && ball[f].OK {
			if snap, ok := p.snap(ball[f].Box, frame, players[f]); ok {
				pos = snap
				snapped++
			} else {
				pos = p.Project(ball[f].Box.Center(), lm)
			}
		}
		if !pos.Usable() {
			fallbacks++
		}
		balls[f] = map[vision.TrackID]vision.Position{vision.BallID: pos}
	}

	q.Add(monitoring.FallbackPositions, fallbacks)
	q.Add(monitoring.SnappedBallPositions, snapped)
	return players, balls
}
