package config

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Sport selects the surface geometry, rule tables and default tuning.
type Sport string

const (
	SportTennis  Sport = "tennis"
	SportCricket Sport = "cricket"
)

// Event signal modes.
const (
	EventModeVertical = "vertical" // vertical midpoint reversals (tennis)
	EventModeVelocity = "velocity" // velocity/acceleration changes (cricket)
)

// Role assignment strategies.
const (
	RoleStrategyNearestLandmark = "nearest_landmark"
	RoleStrategySurfaceCenter   = "surface_center"
)

// ErrInvalidConfig is wrapped by every validation failure so callers can
// detect configuration errors with errors.Is.
var ErrInvalidConfig = errors.New("invalid configuration")

//go:embed defaults/*.json
var defaultsFS embed.FS

// TuningConfig holds every tunable of an analysis run. All fields are
// optional: nil fields fall back to the per-sport defaults returned by the
// Get* accessors, so partial configs are safe.
type TuningConfig struct {
	Sport     *string  `json:"sport,omitempty"`
	FrameRate *float64 `json:"frame_rate,omitempty"`

	// Surface physical constants (metres)
	SurfaceLengthM *float64 `json:"surface_length_m,omitempty"`
	SurfaceWidthM  *float64 `json:"surface_width_m,omitempty"`

	// Detection plausibility filters
	BallMinSizePx    *float64 `json:"ball_min_size_px,omitempty"`
	BallMaxSizePx    *float64 `json:"ball_max_size_px,omitempty"`
	BallMinAspect    *float64 `json:"ball_min_aspect,omitempty"`
	BallMaxAspect    *float64 `json:"ball_max_aspect,omitempty"`
	PlayerMinWidthPx *float64 `json:"player_min_width_px,omitempty"`
	PlayerMinHeight  *float64 `json:"player_min_height_px,omitempty"`

	// Smoother params
	SmoothingWindow *int `json:"smoothing_window,omitempty"`
	LinearGapLimit  *int `json:"linear_gap_limit,omitempty"`
	PolyOrder       *int `json:"poly_order,omitempty"`
	PolyContext     *int `json:"poly_context,omitempty"`

	// Event segmenter params
	EventMode               *string  `json:"event_mode,omitempty"`
	EventRollingWindow      *int     `json:"event_rolling_window,omitempty"`
	EventMinChangeFrames    *int     `json:"event_min_change_frames,omitempty"`
	EventLookaheadFactor    *float64 `json:"event_lookahead_factor,omitempty"`
	EventConfirmCount       *int     `json:"event_confirm_count,omitempty"`
	EventCandidateThreshold *float64 `json:"event_candidate_threshold,omitempty"`
	EventSustainThreshold   *float64 `json:"event_sustain_threshold,omitempty"`

	// Mini surface geometry (pixels)
	CanvasWidth       *float64 `json:"canvas_width,omitempty"`
	CanvasHeight      *float64 `json:"canvas_height,omitempty"`
	CanvasBuffer      *float64 `json:"canvas_buffer,omitempty"`
	CourtPadding      *float64 `json:"court_padding,omitempty"`
	MiniWidthFraction *float64 `json:"mini_width_fraction,omitempty"`
	MiniAspect        *float64 `json:"mini_aspect,omitempty"`
	LandmarkLimit     *int     `json:"landmark_limit,omitempty"` // 0 = all landmarks

	// Ball possession snapping
	PossessionEnabled     *bool    `json:"possession_enabled,omitempty"`
	PossessionThresholdPx *float64 `json:"possession_threshold_px,omitempty"`
	JitterScale           *float64 `json:"jitter_scale,omitempty"`
	JitterSeed            *uint64  `json:"jitter_seed,omitempty"`

	// Role assignment
	RoleStrategy    *string `json:"role_strategy,omitempty"`
	MaxParticipants *int    `json:"max_participants,omitempty"`

	// Shot classification (metres)
	ShortMaxM        *float64 `json:"short_max_m,omitempty"`
	MediumMaxM       *float64 `json:"medium_max_m,omitempty"`
	AggressiveMaxM   *float64 `json:"aggressive_max_m,omitempty"`
	StraightEpsilonM *float64 `json:"straight_epsilon_m,omitempty"`
	RunThresholdM    *float64 `json:"run_threshold_m,omitempty"`
	VolleyDistanceM  *float64 `json:"volley_distance_m,omitempty"`
	SmashFraction    *float64 `json:"smash_fraction,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }
func ptrUint64(v uint64) *uint64    { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns the embedded defaults for sport. It panics when
// the embedded file is missing or broken, which is a build defect.
func DefaultTuningConfig(sport Sport) *TuningConfig {
	data, err := defaultsFS.ReadFile("defaults/" + string(sport) + ".json")
	if err != nil {
		panic(fmt.Sprintf("no embedded defaults for sport %q: %v", sport, err))
	}
	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		panic(fmt.Sprintf("embedded defaults for %q: %v", sport, err))
	}
	return cfg
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// The result is an override: fields omitted from the JSON file stay nil and
// values are only checked with Validate once merged onto the defaults of the
// stream's sport.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return cfg, nil
}

// Merge returns a copy of c with every non-nil field of override applied.
func (c *TuningConfig) Merge(override *TuningConfig) (*TuningConfig, error) {
	base, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal base config: %w", err)
	}
	merged := EmptyTuningConfig()
	if err := json.Unmarshal(base, merged); err != nil {
		return nil, fmt.Errorf("copy base config: %w", err)
	}
	if override == nil {
		return merged, nil
	}
	extra, err := json.Marshal(override)
	if err != nil {
		return nil, fmt.Errorf("marshal override config: %w", err)
	}
	if err := json.Unmarshal(extra, merged); err != nil {
		return nil, fmt.Errorf("apply override config: %w", err)
	}
	return merged, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks that the configuration values are usable. Only
// configuration problems are reported here; data quality problems are
// absorbed by the analysis layers.
func (c *TuningConfig) Validate() error {
	switch Sport(c.GetSport()) {
	case SportTennis, SportCricket:
	default:
		return invalid("unknown sport %q", c.GetSport())
	}
	if c.GetFrameRate() <= 0 {
		return invalid("frame_rate must be positive, got %f", c.GetFrameRate())
	}
	if c.GetSurfaceLengthM() <= 0 {
		return invalid("surface_length_m must be positive, got %f", c.GetSurfaceLengthM())
	}
	if c.GetSurfaceWidthM() <= 0 {
		return invalid("surface_width_m must be positive, got %f", c.GetSurfaceWidthM())
	}
	if c.GetBallMinSizePx() > c.GetBallMaxSizePx() {
		return invalid("ball_min_size_px %f exceeds ball_max_size_px %f", c.GetBallMinSizePx(), c.GetBallMaxSizePx())
	}
	if c.GetBallMinAspect() > c.GetBallMaxAspect() {
		return invalid("ball_min_aspect %f exceeds ball_max_aspect %f", c.GetBallMinAspect(), c.GetBallMaxAspect())
	}

	if w := c.GetSmoothingWindow(); w < 1 {
		return invalid("smoothing_window must be at least 1, got %d", w)
	}
	if c.GetLinearGapLimit() < 0 {
		return invalid("linear_gap_limit must be non-negative, got %d", c.GetLinearGapLimit())
	}
	if o := c.GetPolyOrder(); o < 1 || o > 5 {
		return invalid("poly_order must be between 1 and 5, got %d", o)
	}
	if c.GetPolyContext() < 1 {
		return invalid("poly_context must be at least 1, got %d", c.GetPolyContext())
	}

	switch c.GetEventMode() {
	case EventModeVertical, EventModeVelocity:
	default:
		return invalid("unknown event_mode %q", c.GetEventMode())
	}
	if c.GetEventRollingWindow() < 1 {
		return invalid("event_rolling_window must be at least 1, got %d", c.GetEventRollingWindow())
	}
	if c.GetEventMinChangeFrames() < 1 {
		return invalid("event_min_change_frames must be at least 1, got %d", c.GetEventMinChangeFrames())
	}
	if c.GetEventLookaheadFactor() <= 0 {
		return invalid("event_lookahead_factor must be positive, got %f", c.GetEventLookaheadFactor())
	}
	if c.GetEventConfirmCount() < 0 {
		return invalid("event_confirm_count must be non-negative, got %d", c.GetEventConfirmCount())
	}

	if c.GetCanvasWidth() <= 2*c.GetCourtPadding() || c.GetCanvasHeight() <= 2*c.GetCourtPadding() {
		return invalid("canvas %fx%f too small for padding %f", c.GetCanvasWidth(), c.GetCanvasHeight(), c.GetCourtPadding())
	}
	if c.GetMiniWidthFraction() <= 0 || c.GetMiniAspect() <= 0 {
		return invalid("mini_width_fraction and mini_aspect must be positive")
	}
	if c.GetLandmarkLimit() < 0 {
		return invalid("landmark_limit must be non-negative, got %d", c.GetLandmarkLimit())
	}
	if c.GetPossessionThresholdPx() < 0 || c.GetJitterScale() < 0 {
		return invalid("possession_threshold_px and jitter_scale must be non-negative")
	}

	switch c.GetRoleStrategy() {
	case RoleStrategyNearestLandmark, RoleStrategySurfaceCenter:
	default:
		return invalid("unknown role_strategy %q", c.GetRoleStrategy())
	}
	if c.GetMaxParticipants() < 1 {
		return invalid("max_participants must be at least 1, got %d", c.GetMaxParticipants())
	}

	t1, t2, t3 := c.GetShortMaxM(), c.GetMediumMaxM(), c.GetAggressiveMaxM()
	if !(0 < t1 && t1 < t2 && t2 < t3) {
		return invalid("distance thresholds must satisfy 0 < short (%f) < medium (%f) < aggressive (%f)", t1, t2, t3)
	}
	if c.GetStraightEpsilonM() < 0 {
		return invalid("straight_epsilon_m must be non-negative, got %f", c.GetStraightEpsilonM())
	}
	if c.GetSmashFraction() <= 0 {
		return invalid("smash_fraction must be positive, got %f", c.GetSmashFraction())
	}
	return nil
}
