package l6shots

import (
	"fmt"
	"math"

	"github.com/banshee-data/court.report/internal/config"
	"github.com/banshee-data/court.report/internal/monitoring"
	"github.com/banshee-data/court.report/internal/units"
	"github.com/banshee-data/court.report/internal/vision"
	"github.com/banshee-data/court.report/internal/vision/l4projection"
	"github.com/banshee-data/court.report/internal/vision/l5roles"
)

// Config holds the classifier parameters.
type Config struct {
	Sport     config.Sport
	FrameRate float64
	Thresholds
	Params
}

// ConfigFromTuning extracts the classifier parameters from a tuning config.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		Sport:     config.Sport(cfg.GetSport()),
		FrameRate: cfg.GetFrameRate(),
		Thresholds: Thresholds{
			ShortMaxM:      cfg.GetShortMaxM(),
			MediumMaxM:     cfg.GetMediumMaxM(),
			AggressiveMaxM: cfg.GetAggressiveMaxM(),
		},
		Params: Params{
			StraightEpsilonM: cfg.GetStraightEpsilonM(),
			RunThresholdM:    cfg.GetRunThresholdM(),
			VolleyDistanceM:  cfg.GetVolleyDistanceM(),
			SmashFraction:    cfg.GetSmashFraction(),
		},
	}
}

// ShotRecord is the classification of one consecutive event pair.
type ShotRecord struct {
	EventIndex    int               `json:"event_index"`
	StartFrame    vision.FrameIndex `json:"start_frame"`
	EndFrame      vision.FrameIndex `json:"end_frame"`
	Category      Category          `json:"category"`
	Rule          string            `json:"rule"`
	Direction     Direction         `json:"direction"`
	Intensity     Intensity         `json:"intensity"`
	ParticipantID vision.TrackID    `json:"participant_id"`
	Role          vision.RoleLabel  `json:"role,omitempty"`
	// DisplacementMeters is the ball displacement between the two events.
	DisplacementMeters vision.Point `json:"displacement_m"`
	DistanceMeters     float64      `json:"distance_m"`
	SpeedKmh           float64      `json:"speed_kmh"`
}

// Frames returns the number of frames spanned by the shot.
func (r ShotRecord) Frames() int { return r.EndFrame - r.StartFrame }

// Classifier turns event pairs into shot records. It keeps no state between
// calls.
type Classifier struct {
	cfg        Config
	scale      units.Scale
	netY       float64
	lengthM    float64
	directions []DirectionRule
	rules      []Rule
}

// New validates cfg and binds it to the mini-surface geometry.
func New(cfg Config, surface *l4projection.Surface) (*Classifier, error) {
	if surface == nil {
		return nil, fmt.Errorf("%w: classifier needs a surface", config.ErrInvalidConfig)
	}
	if surface.Scale.MetersPerPixel <= 0 {
		return nil, fmt.Errorf("%w: surface scale must be positive, got %f", config.ErrInvalidConfig, surface.Scale.MetersPerPixel)
	}
	if cfg.FrameRate <= 0 {
		return nil, fmt.Errorf("%w: frame rate must be positive, got %f", config.ErrInvalidConfig, cfg.FrameRate)
	}
	t := cfg.Thresholds
	if !(0 < t.ShortMaxM && t.ShortMaxM < t.MediumMaxM && t.MediumMaxM < t.AggressiveMaxM) {
		return nil, fmt.Errorf("%w: distance thresholds must be positive and increasing, got %v", config.ErrInvalidConfig, t)
	}
	dirs, rules := RulesFor(cfg.Sport)
	return &Classifier{
		cfg:        cfg,
		scale:      surface.Scale,
		netY:       surface.NetY,
		lengthM:    surface.Scale.Meters(surface.LengthPx),
		directions: dirs,
		rules:      rules,
	}, nil
}

// Config returns the classifier parameters.
func (c *Classifier) Config() Config { return c.cfg }

// Actor returns the participant nearest to ball among the usable positions of
// one frame, lower identity first on ties.
func Actor(players map[vision.TrackID]vision.Position, ball vision.Point) (vision.TrackID, vision.Position, bool) {
	var (
		bestID  vision.TrackID
		bestPos vision.Position
		found   bool
	)
	best := math.Inf(1)
	for _, id := range vision.SortedIDs(players) {
		p := players[id]
		if !p.Usable() {
			continue
		}
		if d := p.Distance(ball); d < best {
			best, bestID, bestPos, found = d, id, p, true
		}
	}
	return bestID, bestPos, found
}

// ClassifyPair classifies the ball movement between events start and end.
// It returns false when the ball or every participant lacks a usable position
// at either endpoint.
func (c *Classifier) ClassifyPair(index int, start, end vision.FrameIndex, players, balls vision.FramePositions) (ShotRecord, bool) {
	if end <= start {
		return ShotRecord{}, false
	}
	from, ok := balls.At(start, vision.BallID)
	if !ok {
		return ShotRecord{}, false
	}
	to, ok := balls.At(end, vision.BallID)
	if !ok {
		return ShotRecord{}, false
	}
	if start < 0 || start >= len(players) {
		return ShotRecord{}, false
	}
	actorID, actor, ok := Actor(players[start], from.Point)
	if !ok {
		return ShotRecord{}, false
	}

	d := to.Sub(from.Point)
	dx, dy := c.scale.Meters(d.X), c.scale.Meters(d.Y)
	dist := math.Hypot(dx, dy)

	f := Features{
		First:         index == 0,
		DX:            dx,
		DY:            dy,
		Distance:      dist,
		Intensity:     c.cfg.Bucket(dist),
		Direction:     Direct(c.directions, dx, dy, c.cfg.StraightEpsilonM),
		NetGap:        c.scale.Meters(math.Abs(actor.Y - c.netY)),
		SurfaceLength: c.lengthM,
	}
	switch {
	case actor.Y < c.netY:
		f.Half = -1
	case actor.Y > c.netY:
		f.Half = 1
	}
	cat, rule, ok := Categorize(c.rules, f, c.cfg.Params)
	if !ok {
		return ShotRecord{}, false
	}

	return ShotRecord{
		EventIndex:         index,
		StartFrame:         start,
		EndFrame:           end,
		Category:           cat,
		Rule:               rule,
		Direction:          f.Direction,
		Intensity:          f.Intensity,
		ParticipantID:      actorID,
		DisplacementMeters: vision.Point{X: dx, Y: dy},
		DistanceMeters:     dist,
		SpeedKmh:           units.ConvertSpeed(units.SpeedMPS(dist, end-start, c.cfg.FrameRate), units.KMPH),
	}, true
}

// Classify walks the event list and classifies every consecutive pair. The
// first event is the initial state and the last one is terminal: it only
// closes the previous pair. Skipped pairs are counted on q.
func (c *Classifier) Classify(events vision.EventFrames, players, balls vision.FramePositions, roles l5roles.Assignment, q *monitoring.Quality) []ShotRecord {
	shots := []ShotRecord{}
	for i := 0; i+1 < len(events); i++ {
		rec, ok := c.ClassifyPair(i, events[i], events[i+1], players, balls)
		if !ok {
			q.Add(monitoring.SkippedEventPairs, 1)
			continue
		}
		rec.Role = roles[rec.ParticipantID]
		shots = append(shots, rec)
	}
	return shots
}
