package l3events

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/court.report/internal/vision"
)

// Signal is the derived motion signal of a trajectory. Index i belongs to
// frame i; undefined entries are NaN (the first difference at frame 0).
type Signal struct {
	// Rolling is the denoised signal the deltas are taken from: the vertical
	// midpoint in vertical mode, the speed in velocity mode.
	Rolling []float64
	// Delta is the first difference of Rolling.
	Delta []float64
	// VX and VY are the per-axis midpoint velocities (velocity mode only).
	VX []float64
	VY []float64
}

// trailingMean is a trailing rolling mean over w samples that ignores NaN
// and needs only one valid sample.
func trailingMean(v []float64, w int) []float64 {
	out := make([]float64, len(v))
	buf := make([]float64, 0, w)
	for i := range v {
		buf = buf[:0]
		lo := i - w + 1
		if lo < 0 {
			lo = 0
		}
		for _, x := range v[lo : i+1] {
			if !math.IsNaN(x) {
				buf = append(buf, x)
			}
		}
		if len(buf) == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = stat.Mean(buf, nil)
	}
	return out
}

// diff returns the first difference of v, NaN at index 0.
func diff(v []float64) []float64 {
	out := make([]float64, len(v))
	if len(v) == 0 {
		return out
	}
	out[0] = math.NaN()
	for i := 1; i < len(v); i++ {
		out[i] = v[i] - v[i-1]
	}
	return out
}

// VerticalSignal derives the vertical-midpoint signal used for racquet
// sports, where a shot reverses the ball's travel along the court.
func VerticalSignal(centers []vision.Point, rollingWindow int) Signal {
	mid := make([]float64, len(centers))
	for i, c := range centers {
		mid[i] = c.Y
	}
	rolling := trailingMean(mid, rollingWindow)
	return Signal{Rolling: rolling, Delta: diff(rolling)}
}

// VelocitySignal derives the velocity/acceleration signal used for cricket,
// where deliveries and shots show up as sudden speed or direction changes.
func VelocitySignal(centers []vision.Point, rollingWindow int) Signal {
	xs := make([]float64, len(centers))
	ys := make([]float64, len(centers))
	for i, c := range centers {
		xs[i], ys[i] = c.X, c.Y
	}
	vx, vy := diff(xs), diff(ys)
	speed := make([]float64, len(centers))
	for i := range speed {
		speed[i] = math.Hypot(vx[i], vy[i])
	}
	rolling := trailingMean(speed, rollingWindow)
	return Signal{Rolling: rolling, Delta: diff(rolling), VX: vx, VY: vy}
}
