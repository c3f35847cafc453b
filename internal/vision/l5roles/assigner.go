package l5roles

import (
	"fmt"
	"math"
	"sort"

	"github.com/banshee-data/court.report/internal/config"
	"github.com/banshee-data/court.report/internal/monitoring"
	"github.com/banshee-data/court.report/internal/vision"
)

// requiredRoles is the number of ranked roles each strategy needs before an
// assignment counts as complete.
var requiredRoles = map[string]int{
	config.RoleStrategyNearestLandmark: 2,
	config.RoleStrategySurfaceCenter:   2,
}

// Config holds the role assigner parameters.
type Config struct {
	Strategy string
	// MaxParticipants caps the number of identities that receive a role.
	MaxParticipants int
}

// ConfigFromTuning extracts the assigner parameters from a tuning config.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		Strategy:        cfg.GetRoleStrategy(),
		MaxParticipants: cfg.GetMaxParticipants(),
	}
}

// Assignment maps tracker identities to roles for a whole video.
type Assignment map[vision.TrackID]vision.RoleLabel

// IDs returns the assigned identities in ascending order.
func (a Assignment) IDs() []vision.TrackID { return vision.SortedIDs(a) }

// Assigner assigns roles from the first usable frame.
type Assigner struct {
	cfg Config
}

// New validates cfg and returns an Assigner.
func New(cfg Config) (*Assigner, error) {
	if _, ok := requiredRoles[cfg.Strategy]; !ok {
		return nil, fmt.Errorf("%w: unknown role strategy %q", config.ErrInvalidConfig, cfg.Strategy)
	}
	if cfg.MaxParticipants < 1 {
		return nil, fmt.Errorf("%w: max participants must be at least 1, got %d", config.ErrInvalidConfig, cfg.MaxParticipants)
	}
	return &Assigner{cfg: cfg}, nil
}

// FirstUsableFrame returns the first frame with at least one detection, or -1.
func FirstUsableFrame(dets vision.Detections) vision.FrameIndex {
	for i, frame := range dets {
		if len(frame) > 0 {
			return i
		}
	}
	return -1
}

// Assign computes the role mapping from the first usable frame of dets. It
// never fails: with no usable frame or too few landmarks it returns an empty
// mapping, and with fewer identities than roles a partial one. Both cases are
// counted as UnassignedRoles on q.
func (a *Assigner) Assign(dets vision.Detections, lm vision.Landmarks, q *monitoring.Quality) Assignment {
	first := FirstUsableFrame(dets)
	if first < 0 {
		q.Add(monitoring.UnassignedRoles, requiredRoles[a.cfg.Strategy])
		return Assignment{}
	}
	roles := a.AssignFrame(dets[first], lm)
	if missing := requiredRoles[a.cfg.Strategy] - len(roles); missing > 0 {
		q.Add(monitoring.UnassignedRoles, missing)
	}
	return roles
}

type ranked struct {
	id   vision.TrackID
	foot vision.Point
	dist float64
}

// rank orders the identities of frame by distance from their foot point,
// lower identity first on ties.
func rank(frame map[vision.TrackID]vision.BBox, distance func(vision.Point) float64) []ranked {
	out := make([]ranked, 0, len(frame))
	for id, b := range frame {
		foot := b.Foot()
		d := distance(foot)
		if math.IsNaN(d) || math.IsInf(d, 0) {
			continue
		}
		out = append(out, ranked{id: id, foot: foot, dist: d})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].dist != out[j].dist {
			return out[i].dist < out[j].dist
		}
		return out[i].id < out[j].id
	})
	return out
}

// AssignFrame computes the role mapping from a single frame.
func (a *Assigner) AssignFrame(frame map[vision.TrackID]vision.BBox, lm vision.Landmarks) Assignment {
	switch a.cfg.Strategy {
	case config.RoleStrategySurfaceCenter:
		return a.assignSurfaceCenter(frame, lm)
	default:
		return a.assignNearestLandmark(frame, lm)
	}
}

// assignNearestLandmark keeps the identities closest to any landmark as
// player_1 and player_2.
func (a *Assigner) assignNearestLandmark(frame map[vision.TrackID]vision.BBox, lm vision.Landmarks) Assignment {
	roles := Assignment{}
	if idx, _ := lm.Nearest(vision.Point{}, nil); idx < 0 {
		return roles
	}
	labels := []vision.RoleLabel{vision.RolePlayer1, vision.RolePlayer2}
	order := rank(frame, func(p vision.Point) float64 {
		_, d := lm.Nearest(p, nil)
		return d
	})
	for i, r := range order {
		if i >= len(labels) || i >= a.cfg.MaxParticipants {
			break
		}
		roles[r.id] = labels[i]
	}
	return roles
}

// assignSurfaceCenter ranks identities by distance to the pitch centre, the
// midpoint of landmarks 0 and 1. The closest is the batsman; the next is the
// bowler when above the centre line and the wicket keeper otherwise; the
// rest are fielders up to the cap.
func (a *Assigner) assignSurfaceCenter(frame map[vision.TrackID]vision.BBox, lm vision.Landmarks) Assignment {
	roles := Assignment{}
	if lm.Len() < 4 {
		return roles
	}
	p0, ok0 := lm.Point(0)
	p1, ok1 := lm.Point(1)
	if !ok0 || !ok1 {
		return roles
	}
	center := vision.Point{X: (p0.X + p1.X) / 2, Y: (p0.Y + p1.Y) / 2}

	order := rank(frame, center.Distance)
	for i, r := range order {
		if i >= a.cfg.MaxParticipants {
			break
		}
		switch {
		case i == 0:
			roles[r.id] = vision.RoleBatsman
		case i == 1 && r.foot.Y < center.Y:
			roles[r.id] = vision.RoleBowler
		case i == 1:
			roles[r.id] = vision.RoleWicketKeeper
		default:
			roles[r.id] = vision.RoleFielder
		}
	}
	return roles
}

// Filter returns the participant view of dets: only identities with a role,
// each carrying its role. dets itself is not modified.
func Filter(dets vision.Detections, roles Assignment) vision.ParticipantFrames {
	out := make(vision.ParticipantFrames, len(dets))
	for i, frame := range dets {
		view := make(map[vision.TrackID]vision.Participant, len(roles))
		for id, b := range frame {
			role, ok := roles[id]
			if !ok {
				continue
			}
			view[id] = vision.Participant{Role: &role, Box: b}
		}
		out[i] = view
	}
	return out
}
