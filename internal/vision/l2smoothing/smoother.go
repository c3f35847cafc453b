package l2smoothing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/court.report/internal/config"
	"github.com/banshee-data/court.report/internal/monitoring"
	"github.com/banshee-data/court.report/internal/vision"
)

// Config holds the smoother parameters.
type Config struct {
	// Window is the centred moving-average window in frames. 1 disables
	// smoothing.
	Window int
	// LinearGapLimit is the longest run of missing frames filled by linear
	// interpolation. Longer runs are left to the polynomial pass. 0 means no
	// limit.
	LinearGapLimit int
	// PolyOrder is the polynomial order of the second fill pass.
	PolyOrder int
	// PolyContext is the number of valid samples taken either side of a gap
	// for the polynomial fit.
	PolyContext int
	// Fallback is emitted for every frame of a track with no valid sample.
	Fallback vision.BBox
}

// ConfigFromTuning extracts the smoother parameters from a tuning config.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		Window:         cfg.GetSmoothingWindow(),
		LinearGapLimit: cfg.GetLinearGapLimit(),
		PolyOrder:      cfg.GetPolyOrder(),
		PolyContext:    cfg.GetPolyContext(),
	}
}

// Smoother fills and smooths single-identity tracks. It is immutable and safe
// for concurrent use.
type Smoother struct {
	cfg Config
}

// New validates cfg and returns a Smoother.
func New(cfg Config) (*Smoother, error) {
	if cfg.Window < 1 {
		return nil, fmt.Errorf("%w: smoothing window must be at least 1, got %d", config.ErrInvalidConfig, cfg.Window)
	}
	if cfg.LinearGapLimit < 0 {
		return nil, fmt.Errorf("%w: linear gap limit must be non-negative, got %d", config.ErrInvalidConfig, cfg.LinearGapLimit)
	}
	if cfg.PolyOrder < 1 {
		return nil, fmt.Errorf("%w: polynomial order must be at least 1, got %d", config.ErrInvalidConfig, cfg.PolyOrder)
	}
	if cfg.PolyContext < 1 {
		return nil, fmt.Errorf("%w: polynomial context must be at least 1, got %d", config.ErrInvalidConfig, cfg.PolyContext)
	}
	if !cfg.Fallback.Valid() {
		return nil, fmt.Errorf("%w: fallback box %v is not a valid box", config.ErrInvalidConfig, cfg.Fallback)
	}
	return &Smoother{cfg: cfg}, nil
}

// Config returns the smoother parameters.
func (s *Smoother) Config() Config { return s.cfg }

// Smoothed is a complete per-frame trajectory.
type Smoothed struct {
	Boxes []vision.BBox
	// FirstObserved is the first frame that had a real detection, or -1 when
	// the whole track was filled with the fallback box.
	FirstObserved vision.FrameIndex
}

// Len returns the number of frames.
func (s Smoothed) Len() int { return len(s.Boxes) }

// Fallback reports whether the track had no valid sample at all.
func (s Smoothed) Fallback() bool { return s.FirstObserved < 0 }

// Centers returns the per-frame box centres.
func (s Smoothed) Centers() []vision.Point {
	out := make([]vision.Point, len(s.Boxes))
	for i, b := range s.Boxes {
		out[i] = b.Center()
	}
	return out
}

// Track returns the trajectory as a fully populated Track.
func (s Smoothed) Track() vision.Track {
	t := make(vision.Track, len(s.Boxes))
	for i, b := range s.Boxes {
		t[i] = vision.Some(b)
	}
	return t
}

// Smooth returns a trajectory of the same length as track with no missing
// entries. It never fails: an empty track yields the fallback box on every
// frame (counted as EmptyTracks on q) and a single sample is broadcast.
func (s *Smoother) Smooth(track vision.Track, q *monitoring.Quality) Smoothed {
	n := len(track)
	out := Smoothed{Boxes: make([]vision.BBox, n), FirstObserved: track.FirstObserved()}
	if n == 0 {
		return out
	}
	if out.FirstObserved < 0 {
		for i := range out.Boxes {
			out.Boxes[i] = s.cfg.Fallback
		}
		q.Add(monitoring.EmptyTracks, 1)
		return out
	}

	var channels [4][]float64
	for c := range channels {
		channels[c] = make([]float64, n)
	}
	for i, ob := range track {
		vals := [4]float64{math.NaN(), math.NaN(), math.NaN(), math.NaN()}
		if ob.OK {
			vals = [4]float64{ob.Box.X1, ob.Box.Y1, ob.Box.X2, ob.Box.Y2}
		}
		for c := range channels {
			channels[c][i] = vals[c]
		}
	}

	for c := range channels {
		v := channels[c]
		s.fillLinear(v)
		s.fillPolynomial(v)
		fillEdges(v)
		channels[c] = movingAverage(v, s.cfg.Window)
	}

	for i := range out.Boxes {
		out.Boxes[i] = vision.BBox{X1: channels[0][i], Y1: channels[1][i], X2: channels[2][i], Y2: channels[3][i]}
	}
	return out
}

// gap is a run of missing samples [start, end] bounded by valid samples on
// both sides.
type gap struct{ start, end int }

func (g gap) length() int { return g.end - g.start + 1 }

// interiorGaps lists the runs of NaN that have a valid sample on either side.
func interiorGaps(v []float64) []gap {
	var gaps []gap
	lastValid := -1
	for i, x := range v {
		if math.IsNaN(x) {
			continue
		}
		if lastValid >= 0 && i-lastValid > 1 {
			gaps = append(gaps, gap{start: lastValid + 1, end: i - 1})
		}
		lastValid = i
	}
	return gaps
}

// fillLinear interpolates interior gaps between their nearest valid
// neighbours, skipping gaps longer than LinearGapLimit.
func (s *Smoother) fillLinear(v []float64) {
	gaps := interiorGaps(v)
	if len(gaps) == 0 {
		return
	}
	var xs, ys []float64
	for i, x := range v {
		if !math.IsNaN(x) {
			xs = append(xs, float64(i))
			ys = append(ys, x)
		}
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return
	}
	for _, g := range gaps {
		if s.cfg.LinearGapLimit > 0 && g.length() > s.cfg.LinearGapLimit {
			continue
		}
		for i := g.start; i <= g.end; i++ {
			v[i] = pl.Predict(float64(i))
		}
	}
}

// fillPolynomial fills the interior gaps left by the linear pass with a least
// squares polynomial fitted on the neighbouring valid samples. A gap whose fit
// fails is filled linearly between its bounding samples.
func (s *Smoother) fillPolynomial(v []float64) {
	for _, g := range interiorGaps(v) {
		if fitGap(v, g, s.cfg.PolyOrder, s.cfg.PolyContext) {
			continue
		}
		lo, hi := v[g.start-1], v[g.end+1]
		span := float64(g.end - g.start + 2)
		for i := g.start; i <= g.end; i++ {
			frac := float64(i-g.start+1) / span
			v[i] = lo + frac*(hi-lo)
		}
	}
}

// fillEdges forward-fills then backward-fills any remaining missing values.
func fillEdges(v []float64) {
	last := math.NaN()
	for i, x := range v {
		if math.IsNaN(x) {
			v[i] = last
		} else {
			last = x
		}
	}
	next := math.NaN()
	for i := len(v) - 1; i >= 0; i-- {
		if math.IsNaN(v[i]) {
			v[i] = next
		} else {
			next = v[i]
		}
	}
}

// movingAverage applies a centred window of size w. Frame i averages
// [i-w/2, i-w/2+w-1] clipped to the sequence, so edge windows shrink rather
// than pad.
func movingAverage(v []float64, w int) []float64 {
	out := make([]float64, len(v))
	if w <= 1 {
		copy(out, v)
		return out
	}
	for i := range v {
		lo := i - w/2
		hi := lo + w - 1
		if lo < 0 {
			lo = 0
		}
		if hi > len(v)-1 {
			hi = len(v) - 1
		}
		out[i] = stat.Mean(v[lo:hi+1], nil)
	}
	return out
}
