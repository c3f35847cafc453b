package l4projection

import (
	"fmt"
	"math"

	"github.com/banshee-data/court.report/internal/config"
	"github.com/banshee-data/court.report/internal/units"
	"github.com/banshee-data/court.report/internal/vision"
)

// Tennis court markings in metres.
const (
	tennisHalfCourtLength  = 11.88
	tennisSinglesWidth     = 8.23
	tennisDoublesAlley     = 1.37
	tennisNoMansLandHeight = 5.48
)

// Cricket pitch markings in metres.
const (
	cricketCreaseOffset  = 2.0
	cricketCreaseInset   = 0.5
	cricketStumpHalf     = 0.1
	cricketBoundaryRatio = 0.4
)

// Rect is an axis-aligned rectangle in mini-surface pixels.
type Rect struct {
	StartX float64 `json:"start_x"`
	StartY float64 `json:"start_y"`
	EndX   float64 `json:"end_x"`
	EndY   float64 `json:"end_y"`
}

func (r Rect) Width() float64  { return r.EndX - r.StartX }
func (r Rect) Height() float64 { return r.EndY - r.StartY }

// Center returns the centre of the rectangle.
func (r Rect) Center() vision.Point {
	return vision.Point{X: (r.StartX + r.EndX) / 2, Y: (r.StartY + r.EndY) / 2}
}

// Contains reports whether p lies inside r, bounds inclusive.
func (r Rect) Contains(p vision.Point) bool {
	return p.X >= r.StartX && p.X <= r.EndX && p.Y >= r.StartY && p.Y <= r.EndY
}

// Clamp moves p to the nearest point inside r.
func (r Rect) Clamp(p vision.Point) vision.Point {
	return vision.Point{
		X: math.Max(r.StartX, math.Min(r.EndX, p.X)),
		Y: math.Max(r.StartY, math.Min(r.EndY, p.Y)),
	}
}

// Inset shrinks r by d on every side.
func (r Rect) Inset(d float64) Rect {
	return Rect{StartX: r.StartX + d, StartY: r.StartY + d, EndX: r.EndX - d, EndY: r.EndY - d}
}

// Surface is the mini court/pitch geometry for one video. It is built once per
// surface type and frame size and never changes afterwards.
type Surface struct {
	Sport config.Sport `json:"sport"`
	// Canvas bounds every projected position.
	Canvas Rect `json:"canvas"`
	// Court is the drawn playing surface inside the canvas padding.
	Court Rect `json:"court"`
	// Keypoints are the drawing landmarks, index-aligned with the detector's
	// landmark convention for the surface type.
	Keypoints []vision.Point `json:"keypoints"`
	// MiniWidth and MiniHeight scale a normalized source offset into
	// mini-surface pixels.
	MiniWidth  float64 `json:"mini_width"`
	MiniHeight float64 `json:"mini_height"`
	// FrameWidth and FrameHeight are the source video dimensions.
	FrameWidth  float64 `json:"frame_width"`
	FrameHeight float64 `json:"frame_height"`
	// Scale converts mini-surface pixels to metres.
	Scale units.Scale `json:"scale"`
	// LengthPx is the drawn length of the playing surface, baseline to
	// baseline or crease end to crease end.
	LengthPx float64 `json:"length_px"`
	// NetY is the vertical position of the net (racquet sports only).
	NetY float64 `json:"net_y,omitempty"`
}

// Keypoint returns drawing landmark i.
func (s *Surface) Keypoint(i int) (vision.Point, bool) {
	if i < 0 || i >= len(s.Keypoints) {
		return vision.Point{}, false
	}
	return s.Keypoints[i], true
}

// Fallback returns the explicit fallback position, the canvas centre.
func (s *Surface) Fallback() vision.Position {
	return vision.Position{Point: s.Canvas.Center(), Source: vision.SourceFallback}
}

// NewSurface builds the mini-surface geometry for the configured sport and a
// source frame of the given size. The canvas is anchored canvas_buffer pixels
// from the top-right corner of the frame.
func NewSurface(cfg *config.TuningConfig, frameWidth, frameHeight float64) (*Surface, error) {
	if frameWidth <= 0 || frameHeight <= 0 {
		return nil, fmt.Errorf("%w: frame size must be positive, got %fx%f", config.ErrInvalidConfig, frameWidth, frameHeight)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	buffer := cfg.GetCanvasBuffer()
	endX := frameWidth - buffer
	endY := buffer + cfg.GetCanvasHeight()
	canvas := Rect{StartX: endX - cfg.GetCanvasWidth(), StartY: endY - cfg.GetCanvasHeight(), EndX: endX, EndY: endY}
	miniWidth := frameWidth * cfg.GetMiniWidthFraction()

	s := &Surface{
		Sport:       config.Sport(cfg.GetSport()),
		Canvas:      canvas,
		Court:       canvas.Inset(cfg.GetCourtPadding()),
		MiniWidth:   miniWidth,
		MiniHeight:  miniWidth * cfg.GetMiniAspect(),
		FrameWidth:  frameWidth,
		FrameHeight: frameHeight,
	}
	switch s.Sport {
	case config.SportCricket:
		s.buildCricket(cfg.GetSurfaceLengthM())
	default:
		s.buildTennis(cfg.GetSurfaceLengthM(), cfg.GetSurfaceWidthM())
	}
	return s, nil
}

// buildTennis lays out the 14 court landmarks: the four doubles corners
// (0-3), the four singles corners (4-7), the service line ends (8-11) and the
// centre service marks (12, 13). Distances are drawn at doubles width over
// the drawn court width.
func (s *Surface) buildTennis(lengthM, widthM float64) {
	court := s.Court
	scale := units.NewScale(widthM, court.Width())
	px := scale.Pixels

	kp := make([]vision.Point, 14)
	kp[0] = vision.Point{X: court.StartX, Y: court.StartY}
	kp[1] = vision.Point{X: court.EndX, Y: court.StartY}
	kp[2] = vision.Point{X: court.StartX, Y: court.StartY + px(2*tennisHalfCourtLength)}
	kp[3] = vision.Point{X: court.StartX + court.Width(), Y: kp[2].Y}
	kp[4] = vision.Point{X: kp[0].X + px(tennisDoublesAlley), Y: kp[0].Y}
	kp[5] = vision.Point{X: kp[2].X + px(tennisDoublesAlley), Y: kp[2].Y}
	kp[6] = vision.Point{X: kp[1].X - px(tennisDoublesAlley), Y: kp[1].Y}
	kp[7] = vision.Point{X: kp[3].X - px(tennisDoublesAlley), Y: kp[3].Y}
	kp[8] = vision.Point{X: kp[4].X, Y: kp[4].Y + px(tennisNoMansLandHeight)}
	kp[9] = vision.Point{X: kp[8].X + px(tennisSinglesWidth), Y: kp[8].Y}
	kp[10] = vision.Point{X: kp[5].X, Y: kp[5].Y - px(tennisNoMansLandHeight)}
	kp[11] = vision.Point{X: kp[10].X + px(tennisSinglesWidth), Y: kp[10].Y}
	kp[12] = vision.Point{X: (kp[8].X + kp[9].X) / 2, Y: kp[8].Y}
	kp[13] = vision.Point{X: (kp[10].X + kp[11].X) / 2, Y: kp[10].Y}

	s.Keypoints = kp
	s.Scale = scale
	s.LengthPx = px(lengthM)
	s.NetY = court.StartY + px(tennisHalfCourtLength)
}

// buildCricket lays out the 16 pitch landmarks: the pitch corners (0-3,
// clockwise from top left), the striker's and bowler's crease ends (4-7),
// the stumps (8-11) and four boundary marks (12-15, top, right, bottom,
// left). Distances are drawn at pitch length over the drawn pitch length.
func (s *Surface) buildCricket(lengthM float64) {
	court := s.Court
	scale := units.NewScale(lengthM, court.Height())
	px := scale.Pixels

	strikerY := court.StartY + px(cricketCreaseOffset)
	bowlerY := court.EndY - px(cricketCreaseOffset)
	center := court.Center()
	radius := math.Min(court.Width(), court.Height()) * cricketBoundaryRatio

	kp := make([]vision.Point, 16)
	kp[0] = vision.Point{X: court.StartX, Y: court.StartY}
	kp[1] = vision.Point{X: court.EndX, Y: court.StartY}
	kp[2] = vision.Point{X: court.EndX, Y: court.EndY}
	kp[3] = vision.Point{X: court.StartX, Y: court.EndY}
	kp[4] = vision.Point{X: court.StartX + px(cricketCreaseInset), Y: strikerY}
	kp[5] = vision.Point{X: court.EndX - px(cricketCreaseInset), Y: strikerY}
	kp[6] = vision.Point{X: court.StartX + px(cricketCreaseInset), Y: bowlerY}
	kp[7] = vision.Point{X: court.EndX - px(cricketCreaseInset), Y: bowlerY}
	kp[8] = vision.Point{X: center.X - px(cricketStumpHalf), Y: strikerY}
	kp[9] = vision.Point{X: center.X + px(cricketStumpHalf), Y: strikerY}
	kp[10] = vision.Point{X: center.X - px(cricketStumpHalf), Y: bowlerY}
	kp[11] = vision.Point{X: center.X + px(cricketStumpHalf), Y: bowlerY}
	kp[12] = vision.Point{X: center.X, Y: center.Y - radius}
	kp[13] = vision.Point{X: center.X + radius, Y: center.Y}
	kp[14] = vision.Point{X: center.X, Y: center.Y + radius}
	kp[15] = vision.Point{X: center.X - radius, Y: center.Y}

	s.Keypoints = kp
	s.Scale = scale
	s.LengthPx = court.Height()
}
