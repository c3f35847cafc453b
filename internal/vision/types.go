package vision

import (
	"math"
	"sort"
)

// FrameIndex is the position of a decoded video frame in the sequence.
// Frame indices are dense and start at zero.
type FrameIndex = int

// TrackID identifies a tracked object. The ball is always BallID; players
// carry the small integer ids handed out by the external tracker.
type TrackID int

// BallID is the fixed identity of the ball track.
const BallID TrackID = 1

// Point is a 2D position, either in source pixels or in mini-surface pixels
// depending on context.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Finite reports whether both coordinates are finite numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Sub returns the component-wise difference p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// BBox is an axis-aligned pixel bounding box (x1, y1) top-left to (x2, y2)
// bottom-right.
type BBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// BoxFromSlice builds a BBox from a raw detector tuple. It returns false for
// anything that is not a well-formed box: wrong length, non-finite values or
// inverted corners.
func BoxFromSlice(v []float64) (BBox, bool) {
	if len(v) != 4 {
		return BBox{}, false
	}
	b := BBox{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}
	return b, b.Valid()
}

// Valid reports whether the box has finite coordinates with x1<=x2, y1<=y2.
func (b BBox) Valid() bool {
	for _, v := range [4]float64{b.X1, b.Y1, b.X2, b.Y2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.X1 <= b.X2 && b.Y1 <= b.Y2
}

// Center returns the centre of the box.
func (b BBox) Center() Point {
	return Point{X: (b.X1 + b.X2) / 2, Y: (b.Y1 + b.Y2) / 2}
}

// Foot returns the bottom-centre of the box, the ground contact point of a
// standing player.
func (b BBox) Foot() Point {
	return Point{X: (b.X1 + b.X2) / 2, Y: b.Y2}
}

func (b BBox) Width() float64  { return b.X2 - b.X1 }
func (b BBox) Height() float64 { return b.Y2 - b.Y1 }

// Slice returns the box as an [x1 y1 x2 y2] tuple.
func (b BBox) Slice() []float64 {
	return []float64{b.X1, b.Y1, b.X2, b.Y2}
}

// OptBox is a box that may be absent for a frame.
type OptBox struct {
	Box BBox
	OK  bool
}

// Some wraps a present box.
func Some(b BBox) OptBox { return OptBox{Box: b, OK: true} }

// None is the absent box.
var None = OptBox{}

// Track is the per-frame box history of a single identity. Entry i belongs to
// frame i; missing detections are represented with OK=false.
type Track []OptBox

// Observed returns the number of frames with a box.
func (t Track) Observed() int {
	n := 0
	for _, b := range t {
		if b.OK {
			n++
		}
	}
	return n
}

// FirstObserved returns the first frame with a box, or -1 when the track is
// empty.
func (t Track) FirstObserved() FrameIndex {
	for i, b := range t {
		if b.OK {
			return i
		}
	}
	return -1
}

// Detections is the per-frame detection stream: one map per frame from
// identity to box. An identity missing from a frame's map has no detection in
// that frame.
type Detections []map[TrackID]BBox

// Track extracts the history of one identity.
func (d Detections) Track(id TrackID) Track {
	t := make(Track, len(d))
	for i, frame := range d {
		if b, ok := frame[id]; ok {
			t[i] = Some(b)
		}
	}
	return t
}

// IDs returns every identity seen in the stream, sorted ascending.
func (d Detections) IDs() []TrackID {
	seen := make(map[TrackID]struct{})
	for _, frame := range d {
		for id := range frame {
			seen[id] = struct{}{}
		}
	}
	return SortedIDs(seen)
}

// SortedIDs returns the keys of m in ascending order.
func SortedIDs[V any](m map[TrackID]V) []TrackID {
	ids := make([]TrackID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Landmarks is the flat [x0 y0 x1 y1 ...] keypoint list produced by the
// external court/pitch keypoint detector.
type Landmarks []float64

// Len returns the number of landmark points.
func (l Landmarks) Len() int { return len(l) / 2 }

// Point returns landmark i. It returns false when i is out of range or the
// coordinates are not finite.
func (l Landmarks) Point(i int) (Point, bool) {
	if i < 0 || 2*i+1 >= len(l) {
		return Point{}, false
	}
	p := Point{X: l[2*i], Y: l[2*i+1]}
	return p, p.Finite()
}

// Nearest returns the index of the landmark closest to p among the allowed
// indices (all landmarks when allowed is nil). Ties go to the earlier index in
// iteration order. It returns -1 when no allowed landmark is usable.
func (l Landmarks) Nearest(p Point, allowed []int) (int, float64) {
	best, bestDist := -1, math.Inf(1)
	visit := func(i int) {
		kp, ok := l.Point(i)
		if !ok {
			return
		}
		if d := p.Distance(kp); d < bestDist {
			best, bestDist = i, d
		}
	}
	if allowed == nil {
		for i := 0; i < l.Len(); i++ {
			visit(i)
		}
	} else {
		for _, i := range allowed {
			visit(i)
		}
	}
	return best, bestDist
}

// PositionSource records how a projected position was obtained.
type PositionSource string

const (
	SourceDetected PositionSource = "detected" // projected from a detection
	SourceSnapped  PositionSource = "snapped"  // ball snapped to the possessing player
	SourceFallback PositionSource = "fallback" // no usable data, mini-surface centre
)

// Position is a point in mini-surface space together with its provenance.
// Fallback positions are structurally valid but carry no information.
type Position struct {
	Point
	Source PositionSource `json:"source"`
}

// Usable reports whether the position came from real data.
func (p Position) Usable() bool {
	return p.Source != "" && p.Source != SourceFallback
}

// FramePositions is the per-frame projected position of each identity.
type FramePositions []map[TrackID]Position

// At returns the usable position of id at frame f.
func (fp FramePositions) At(f FrameIndex, id TrackID) (Position, bool) {
	if f < 0 || f >= len(fp) {
		return Position{}, false
	}
	p, ok := fp[f][id]
	if !ok || !p.Usable() {
		return Position{}, false
	}
	return p, true
}

// RoleLabel is the semantic role of a participant.
type RoleLabel string

const (
	RolePlayer1      RoleLabel = "player_1"
	RolePlayer2      RoleLabel = "player_2"
	RoleBatsman      RoleLabel = "batsman"
	RoleBowler       RoleLabel = "bowler"
	RoleWicketKeeper RoleLabel = "wicket_keeper"
	RoleFielder      RoleLabel = "fielder"
)

// Participant is a detected player box with its role, if one was assigned.
type Participant struct {
	Role *RoleLabel `json:"role,omitempty"`
	Box  BBox       `json:"box"`
}

// ParticipantFrames is the role-filtered, per-frame participant view.
type ParticipantFrames []map[TrackID]Participant

// Boxes strips the role information, returning a plain detection stream.
func (pf ParticipantFrames) Boxes() Detections {
	d := make(Detections, len(pf))
	for i, frame := range pf {
		d[i] = make(map[TrackID]BBox, len(frame))
		for id, p := range frame {
			d[i][id] = p.Box
		}
	}
	return d
}

// EventFrames is a strictly increasing list of frame indices at which a shot
// or delivery happened.
type EventFrames []FrameIndex
