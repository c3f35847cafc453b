package l3events

import (
	"fmt"
	"math"

	"github.com/banshee-data/court.report/internal/config"
	"github.com/banshee-data/court.report/internal/monitoring"
	"github.com/banshee-data/court.report/internal/vision"
)

// marginFactor sizes the trailing margin, in multiples of the sustained change
// window, that is never flagged.
const marginFactor = 1.2

// Config holds the segmenter parameters.
type Config struct {
	Mode string // config.EventModeVertical or config.EventModeVelocity
	// RollingWindow is the trailing rolling-mean window applied to the raw
	// signal before differencing.
	RollingWindow int
	// MinChangeFrames is W, the minimum sustained change window.
	MinChangeFrames int
	// LookaheadFactor scales W into the number of frames scanned after a
	// candidate.
	LookaheadFactor float64
	// ConfirmCount is the number of agreeing frames a candidate must exceed.
	ConfirmCount int
	// CandidateThreshold is the |acceleration| that makes a frame a candidate
	// in velocity mode.
	CandidateThreshold float64
	// SustainThreshold is the |acceleration| a following frame must exceed to
	// count towards confirmation in velocity mode.
	SustainThreshold float64
}

// ConfigFromTuning extracts the segmenter parameters from a tuning config.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		Mode:               cfg.GetEventMode(),
		RollingWindow:      cfg.GetEventRollingWindow(),
		MinChangeFrames:    cfg.GetEventMinChangeFrames(),
		LookaheadFactor:    cfg.GetEventLookaheadFactor(),
		ConfirmCount:       cfg.GetEventConfirmCount(),
		CandidateThreshold: cfg.GetEventCandidateThreshold(),
		SustainThreshold:   cfg.GetEventSustainThreshold(),
	}
}

// Segmenter detects sustained motion reversals in a smoothed trajectory.
type Segmenter struct {
	cfg Config
}

// New validates cfg and returns a Segmenter.
func New(cfg Config) (*Segmenter, error) {
	switch cfg.Mode {
	case config.EventModeVertical, config.EventModeVelocity:
	default:
		return nil, fmt.Errorf("%w: unknown event mode %q", config.ErrInvalidConfig, cfg.Mode)
	}
	if cfg.RollingWindow < 1 {
		return nil, fmt.Errorf("%w: rolling window must be at least 1, got %d", config.ErrInvalidConfig, cfg.RollingWindow)
	}
	if cfg.MinChangeFrames < 1 {
		return nil, fmt.Errorf("%w: minimum change window must be at least 1, got %d", config.ErrInvalidConfig, cfg.MinChangeFrames)
	}
	if cfg.LookaheadFactor <= 0 {
		return nil, fmt.Errorf("%w: lookahead factor must be positive, got %f", config.ErrInvalidConfig, cfg.LookaheadFactor)
	}
	if cfg.ConfirmCount < 0 {
		return nil, fmt.Errorf("%w: confirm count must be non-negative, got %d", config.ErrInvalidConfig, cfg.ConfirmCount)
	}
	return &Segmenter{cfg: cfg}, nil
}

// Config returns the segmenter parameters.
func (s *Segmenter) Config() Config { return s.cfg }

// Margin returns the number of trailing frames that are never flagged.
func (s *Segmenter) Margin() int {
	return int(marginFactor * float64(s.cfg.MinChangeFrames))
}

// MinFrames returns the number of usable frames below which Detect returns
// no events.
func (s *Segmenter) MinFrames() int {
	return 2 * s.cfg.MinChangeFrames
}

func (s *Segmenter) lookahead() int {
	n := int(s.cfg.LookaheadFactor * float64(s.cfg.MinChangeFrames))
	if n < 1 {
		n = 1
	}
	return n
}

// Signal derives the motion signal for the configured mode.
func (s *Segmenter) Signal(centers []vision.Point) Signal {
	if s.cfg.Mode == config.EventModeVelocity {
		return VelocitySignal(centers, s.cfg.RollingWindow)
	}
	return VerticalSignal(centers, s.cfg.RollingWindow)
}

// Detect returns the confirmed event frames of a smoothed trajectory, given as
// per-frame box centres. firstObserved is the first frame with a real
// detection; no event is reported before it, and a negative value (a track
// with no detection at all) yields no events. Fewer than MinFrames usable
// frames is counted as InsufficientFrames on q and yields no events.
//
// The result is strictly increasing and every frame is below len-Margin.
func (s *Segmenter) Detect(centers []vision.Point, firstObserved vision.FrameIndex, q *monitoring.Quality) vision.EventFrames {
	events := vision.EventFrames{}
	n := len(centers)
	if firstObserved < 0 || n-firstObserved < s.MinFrames() {
		q.Add(monitoring.InsufficientFrames, 1)
		return events
	}

	sig := s.Signal(centers)
	start := firstObserved
	if start < 1 {
		start = 1
	}
	end := n - s.Margin() // exclusive
	for i := start; i < end; i++ {
		var confirmed bool
		if s.cfg.Mode == config.EventModeVelocity {
			confirmed = s.velocityEvent(sig, i)
		} else {
			confirmed = s.verticalEvent(sig, i)
		}
		if confirmed {
			events = append(events, i)
		}
	}
	return events
}

func (s *Segmenter) window(i, n int) (lo, hi int) {
	hi = i + s.lookahead()
	if hi > n-1 {
		hi = n - 1
	}
	return i + 1, hi
}

// verticalEvent: delta changes sign between i and i+1, and more than
// ConfirmCount of the following frames keep the reversed sign.
func (s *Segmenter) verticalEvent(sig Signal, i int) bool {
	d := sig.Delta
	if i+1 >= len(d) {
		return false
	}
	a, b := d[i], d[i+1]
	falling := a > 0 && b < 0
	rising := a < 0 && b > 0
	if !falling && !rising {
		return false
	}
	lo, hi := s.window(i, len(d))
	count := 0
	for j := lo; j <= hi; j++ {
		if (falling && d[j] < 0) || (rising && d[j] > 0) {
			count++
		}
	}
	return count > s.cfg.ConfirmCount
}

// velocityEvent: a sharp acceleration or a direction change on either axis,
// followed by more than ConfirmCount frames of sustained acceleration.
func (s *Segmenter) velocityEvent(sig Signal, i int) bool {
	if i+1 >= len(sig.Delta) {
		return false
	}
	acc := sig.Delta
	sharp := math.Abs(acc[i]) > s.cfg.CandidateThreshold
	turnX := (sig.VX[i] > 0) != (sig.VX[i+1] > 0)
	turnY := (sig.VY[i] > 0) != (sig.VY[i+1] > 0)
	if !sharp && !turnX && !turnY {
		return false
	}
	lo, hi := s.window(i, len(acc))
	count := 0
	for j := lo; j <= hi; j++ {
		if math.Abs(acc[j]) > s.cfg.SustainThreshold {
			count++
		}
	}
	return count > s.cfg.ConfirmCount
}
