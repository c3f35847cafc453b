package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/court.report/internal/config"
	"github.com/banshee-data/court.report/internal/monitoring"
	"github.com/banshee-data/court.report/internal/timeutil"
	"github.com/banshee-data/court.report/internal/vision"
	"github.com/banshee-data/court.report/internal/vision/l1detections"
	"github.com/banshee-data/court.report/internal/vision/l2smoothing"
	"github.com/banshee-data/court.report/internal/vision/l3events"
	"github.com/banshee-data/court.report/internal/vision/l4projection"
	"github.com/banshee-data/court.report/internal/vision/l5roles"
	"github.com/banshee-data/court.report/internal/vision/l6shots"
)

// RunSink receives every finished report, e.g. to persist it.
type RunSink interface {
	RecordRun(ctx context.Context, report *Report) error
}

// Options are the pipeline switches that are not tuning parameters.
type Options struct {
	// SkipFilters disables the ball and player plausibility filters.
	SkipFilters bool
	// Random overrides the possession jitter source.
	Random l4projection.RandomSource
	// Sink, when non-nil, is handed every report.
	Sink RunSink
	// Clock stamps CreatedAt; nil means the wall clock.
	Clock timeutil.Clock
}

// Report is the full output of one analysis run.
type Report struct {
	RunID     string                `json:"run_id"`
	VideoID   string                `json:"video_id"`
	Sport     config.Sport          `json:"sport"`
	Frames    int                   `json:"frames"`
	CreatedAt time.Time             `json:"created_at"`
	Config    *config.TuningConfig  `json:"config"`
	Surface   *l4projection.Surface `json:"surface"`

	Ball            []vision.BBox         `json:"smoothed_ball"`
	Events          vision.EventFrames    `json:"events"`
	Roles           l5roles.Assignment    `json:"roles"`
	PlayerPositions vision.FramePositions `json:"player_positions"`
	BallPositions   vision.FramePositions `json:"ball_positions"`
	Shots           []l6shots.ShotRecord  `json:"shots"`
	Stats           l6shots.Timeline      `json:"stats"`
	Quality         map[string]int        `json:"quality"`

	// Signal is the event segmenter's motion signal, kept for diagnostics.
	Signal l3events.Signal `json:"-"`
}

// ParamsJSON returns the tuning config of the run as JSON.
func (r *Report) ParamsJSON() ([]byte, error) {
	return json.Marshal(r.Config)
}

// Analyzer runs the layers over one detection stream at a time.
type Analyzer struct {
	cfg        *config.TuningConfig
	opts       Options
	smoother   *l2smoothing.Smoother
	segmenter  *l3events.Segmenter
	assigner   *l5roles.Assigner
	projection l4projection.Options
	shots      l6shots.Config
}

// New validates cfg and builds the frame-size independent stages.
func New(cfg *config.TuningConfig, opts Options) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	smoother, err := l2smoothing.New(l2smoothing.ConfigFromTuning(cfg))
	if err != nil {
		return nil, fmt.Errorf("smoother: %w", err)
	}
	segmenter, err := l3events.New(l3events.ConfigFromTuning(cfg))
	if err != nil {
		return nil, fmt.Errorf("segmenter: %w", err)
	}
	assigner, err := l5roles.New(l5roles.ConfigFromTuning(cfg))
	if err != nil {
		return nil, fmt.Errorf("role assigner: %w", err)
	}
	projection := l4projection.OptionsFromTuning(cfg)
	if opts.Random != nil {
		projection.Random = opts.Random
	}
	return &Analyzer{
		cfg:        cfg,
		opts:       opts,
		smoother:   smoother,
		segmenter:  segmenter,
		assigner:   assigner,
		projection: projection,
		shots:      l6shots.ConfigFromTuning(cfg),
	}, nil
}

// pad extends dets with empty frames up to n.
func pad(dets vision.Detections, n int) vision.Detections {
	for len(dets) < n {
		dets = append(dets, map[vision.TrackID]vision.BBox{})
	}
	return dets
}

// Run analyses one detection stream. Data problems are absorbed and counted
// in the report's quality counters; only configuration problems, a stream
// shorter than the smoothing window and cancellation return errors.
func (a *Analyzer) Run(ctx context.Context, in *Input) (*Report, error) {
	if in.Sport != a.cfg.GetSport() {
		return nil, fmt.Errorf("%w: analyzer is configured for %q but the detection stream is %q", config.ErrInvalidConfig, a.cfg.GetSport(), in.Sport)
	}
	n := in.Frames()
	if w := a.cfg.GetSmoothingWindow(); w >= n {
		return nil, fmt.Errorf("%w: smoothing window %d needs a longer stream than %d frames", config.ErrInvalidConfig, w, n)
	}
	surface, err := l4projection.NewSurface(a.cfg, in.FrameWidth, in.FrameHeight)
	if err != nil {
		return nil, fmt.Errorf("surface: %w", err)
	}
	projector, err := l4projection.NewProjector(surface, a.projection)
	if err != nil {
		return nil, fmt.Errorf("projector: %w", err)
	}
	classifier, err := l6shots.New(a.shots, surface)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}

	q := monitoring.NewQuality()
	balls := pad(l1detections.Decode(in.Ball, q), n)
	players := pad(l1detections.Decode(in.Players, q), n)
	landmarks := l1detections.DecodeLandmarks(in.Landmarks, q)
	if !a.opts.SkipFilters {
		balls = l1detections.Apply(balls, l1detections.NewBallFilter(a.cfg), q)
		players = l1detections.Apply(players, l1detections.NewPlayerFilter(a.cfg), q)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rawBall := balls.Track(vision.BallID)
	smoothed := a.smoother.Smooth(rawBall, q)
	events := a.segmenter.Detect(smoothed.Centers(), smoothed.FirstObserved, q)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	roles := a.assigner.Assign(players, landmarks, q)
	participants := l5roles.Filter(players, roles)

	projected := smoothed.Track()
	if smoothed.Fallback() {
		projected = rawBall
	}
	playerPos, ballPos := projector.ProjectFrames(participants.Boxes(), projected, landmarks, q)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	shots := classifier.Classify(events, playerPos, ballPos, roles, q)

	report := &Report{
		RunID:           uuid.NewString(),
		VideoID:         in.VideoID,
		Sport:           config.Sport(a.cfg.GetSport()),
		Frames:          n,
		CreatedAt:       timeutil.Or(a.opts.Clock).Now(),
		Config:          a.cfg,
		Surface:         surface,
		Ball:            smoothed.Boxes,
		Events:          events,
		Roles:           roles,
		PlayerPositions: playerPos,
		BallPositions:   ballPos,
		Shots:           shots,
		Stats:           classifier.Stats(shots, playerPos, roles, n),
		Quality:         q.Snapshot(),
		Signal:          a.segmenter.Signal(smoothed.Centers()),
	}
	monitoring.Logf("[pipeline] %s: %d frames, %d events, %d shots, %d roles", in.VideoID, n, len(events), len(shots), len(roles))

	if a.opts.Sink != nil {
		if err := a.opts.Sink.RecordRun(ctx, report); err != nil {
			return report, fmt.Errorf("record run %s: %w", report.RunID, err)
		}
	}
	return report, nil
}
