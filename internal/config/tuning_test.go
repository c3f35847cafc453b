package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultTuningConfig(t *testing.T) {
	cfg := DefaultTuningConfig(SportTennis)

	if cfg.Sport == nil || *cfg.Sport != "tennis" {
		t.Errorf("Expected Sport tennis, got %v", cfg.Sport)
	}
	if cfg.SmoothingWindow == nil || *cfg.SmoothingWindow != 5 {
		t.Errorf("Expected SmoothingWindow 5, got %v", cfg.SmoothingWindow)
	}
	if cfg.EventMinChangeFrames == nil || *cfg.EventMinChangeFrames != 25 {
		t.Errorf("Expected EventMinChangeFrames 25, got %v", cfg.EventMinChangeFrames)
	}
	if cfg.PossessionEnabled == nil || *cfg.PossessionEnabled != true {
		t.Errorf("Expected PossessionEnabled true, got %v", cfg.PossessionEnabled)
	}

	if cfg.GetPolyOrder() != 2 {
		t.Errorf("GetPolyOrder() = %d, want 2", cfg.GetPolyOrder())
	}
	if cfg.GetEventMode() != EventModeVertical {
		t.Errorf("GetEventMode() = %q, want %q", cfg.GetEventMode(), EventModeVertical)
	}
	if cfg.GetCanvasWidth() != 250 || cfg.GetCanvasHeight() != 500 {
		t.Errorf("canvas = %fx%f, want 250x500", cfg.GetCanvasWidth(), cfg.GetCanvasHeight())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default tennis config should validate: %v", err)
	}
}

func TestDefaultTuningConfig_Cricket(t *testing.T) {
	cfg := DefaultTuningConfig(SportCricket)

	if cfg.GetSmoothingWindow() != 3 {
		t.Errorf("GetSmoothingWindow() = %d, want 3", cfg.GetSmoothingWindow())
	}
	if cfg.GetPolyOrder() != 3 {
		t.Errorf("GetPolyOrder() = %d, want 3", cfg.GetPolyOrder())
	}
	if cfg.GetEventMode() != EventModeVelocity {
		t.Errorf("GetEventMode() = %q, want %q", cfg.GetEventMode(), EventModeVelocity)
	}
	if cfg.GetLandmarkLimit() != 8 {
		t.Errorf("GetLandmarkLimit() = %d, want 8", cfg.GetLandmarkLimit())
	}
	if cfg.GetPossessionEnabled() {
		t.Error("cricket should not snap the ball to players by default")
	}
	if cfg.GetRoleStrategy() != RoleStrategySurfaceCenter {
		t.Errorf("GetRoleStrategy() = %q, want %q", cfg.GetRoleStrategy(), RoleStrategySurfaceCenter)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default cricket config should validate: %v", err)
	}
}

func TestDefaultTuningConfig_UnknownSportPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown sport")
		}
	}()
	DefaultTuningConfig(Sport("curling"))
}

// Every accessor on an empty config must agree with the embedded JSON.
func TestDefaultBallWindow(t *testing.T) {
	for _, sport := range []Sport{SportTennis, SportCricket} {
		cfg := DefaultTuningConfig(sport)
		if got := cfg.GetBallMinSizePx(); got != 5 {
			t.Errorf("%s: GetBallMinSizePx() = %f, want 5", sport, got)
		}
		if got := cfg.GetBallMaxSizePx(); got != 40 {
			t.Errorf("%s: GetBallMaxSizePx() = %f, want 40", sport, got)
		}
	}
}

func TestEmbeddedDefaultsMatchBuiltins(t *testing.T) {
	for _, sport := range []Sport{SportTennis, SportCricket} {
		t.Run(string(sport), func(t *testing.T) {
			embedded := DefaultTuningConfig(sport)
			empty := &TuningConfig{Sport: ptrString(string(sport))}

			floats := []struct {
				name      string
				got, want float64
			}{
				{"frame_rate", empty.GetFrameRate(), embedded.GetFrameRate()},
				{"surface_length_m", empty.GetSurfaceLengthM(), embedded.GetSurfaceLengthM()},
				{"surface_width_m", empty.GetSurfaceWidthM(), embedded.GetSurfaceWidthM()},
				{"ball_min_size_px", empty.GetBallMinSizePx(), embedded.GetBallMinSizePx()},
				{"ball_max_size_px", empty.GetBallMaxSizePx(), embedded.GetBallMaxSizePx()},
				{"ball_min_aspect", empty.GetBallMinAspect(), embedded.GetBallMinAspect()},
				{"ball_max_aspect", empty.GetBallMaxAspect(), embedded.GetBallMaxAspect()},
				{"player_min_width_px", empty.GetPlayerMinWidthPx(), embedded.GetPlayerMinWidthPx()},
				{"player_min_height_px", empty.GetPlayerMinHeightPx(), embedded.GetPlayerMinHeightPx()},
				{"event_lookahead_factor", empty.GetEventLookaheadFactor(), embedded.GetEventLookaheadFactor()},
				{"event_candidate_threshold", empty.GetEventCandidateThreshold(), embedded.GetEventCandidateThreshold()},
				{"event_sustain_threshold", empty.GetEventSustainThreshold(), embedded.GetEventSustainThreshold()},
				{"canvas_width", empty.GetCanvasWidth(), embedded.GetCanvasWidth()},
				{"canvas_height", empty.GetCanvasHeight(), embedded.GetCanvasHeight()},
				{"canvas_buffer", empty.GetCanvasBuffer(), embedded.GetCanvasBuffer()},
				{"court_padding", empty.GetCourtPadding(), embedded.GetCourtPadding()},
				{"mini_width_fraction", empty.GetMiniWidthFraction(), embedded.GetMiniWidthFraction()},
				{"mini_aspect", empty.GetMiniAspect(), embedded.GetMiniAspect()},
				{"possession_threshold_px", empty.GetPossessionThresholdPx(), embedded.GetPossessionThresholdPx()},
				{"jitter_scale", empty.GetJitterScale(), embedded.GetJitterScale()},
				{"short_max_m", empty.GetShortMaxM(), embedded.GetShortMaxM()},
				{"medium_max_m", empty.GetMediumMaxM(), embedded.GetMediumMaxM()},
				{"aggressive_max_m", empty.GetAggressiveMaxM(), embedded.GetAggressiveMaxM()},
				{"straight_epsilon_m", empty.GetStraightEpsilonM(), embedded.GetStraightEpsilonM()},
				{"run_threshold_m", empty.GetRunThresholdM(), embedded.GetRunThresholdM()},
				{"volley_distance_m", empty.GetVolleyDistanceM(), embedded.GetVolleyDistanceM()},
				{"smash_fraction", empty.GetSmashFraction(), embedded.GetSmashFraction()},
			}
			for _, f := range floats {
				if f.got != f.want {
					t.Errorf("%s: builtin %v, embedded %v", f.name, f.got, f.want)
				}
			}

			ints := []struct {
				name      string
				got, want int
			}{
				{"smoothing_window", empty.GetSmoothingWindow(), embedded.GetSmoothingWindow()},
				{"linear_gap_limit", empty.GetLinearGapLimit(), embedded.GetLinearGapLimit()},
				{"poly_order", empty.GetPolyOrder(), embedded.GetPolyOrder()},
				{"poly_context", empty.GetPolyContext(), embedded.GetPolyContext()},
				{"event_rolling_window", empty.GetEventRollingWindow(), embedded.GetEventRollingWindow()},
				{"event_min_change_frames", empty.GetEventMinChangeFrames(), embedded.GetEventMinChangeFrames()},
				{"event_confirm_count", empty.GetEventConfirmCount(), embedded.GetEventConfirmCount()},
				{"landmark_limit", empty.GetLandmarkLimit(), embedded.GetLandmarkLimit()},
				{"max_participants", empty.GetMaxParticipants(), embedded.GetMaxParticipants()},
			}
			for _, f := range ints {
				if f.got != f.want {
					t.Errorf("%s: builtin %d, embedded %d", f.name, f.got, f.want)
				}
			}

			if empty.GetEventMode() != embedded.GetEventMode() {
				t.Errorf("event_mode: builtin %q, embedded %q", empty.GetEventMode(), embedded.GetEventMode())
			}
			if empty.GetRoleStrategy() != embedded.GetRoleStrategy() {
				t.Errorf("role_strategy: builtin %q, embedded %q", empty.GetRoleStrategy(), embedded.GetRoleStrategy())
			}
			if empty.GetPossessionEnabled() != embedded.GetPossessionEnabled() {
				t.Errorf("possession_enabled: builtin %v, embedded %v", empty.GetPossessionEnabled(), embedded.GetPossessionEnabled())
			}
			if empty.GetJitterSeed() != embedded.GetJitterSeed() {
				t.Errorf("jitter_seed: builtin %d, embedded %d", empty.GetJitterSeed(), embedded.GetJitterSeed())
			}
		})
	}
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "sport": "cricket",
  "smoothing_window": 7,
  "event_min_change_frames": 10,
  "jitter_seed": 42
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetSmoothingWindow() != 7 {
		t.Errorf("GetSmoothingWindow() = %d, want 7", cfg.GetSmoothingWindow())
	}
	if cfg.GetEventMinChangeFrames() != 10 {
		t.Errorf("GetEventMinChangeFrames() = %d, want 10", cfg.GetEventMinChangeFrames())
	}
	if cfg.GetJitterSeed() != 42 {
		t.Errorf("GetJitterSeed() = %d, want 42", cfg.GetJitterSeed())
	}
	// Omitted fields fall back to the cricket builtins.
	if cfg.GetPolyOrder() != 3 {
		t.Errorf("GetPolyOrder() = %d, want 3", cfg.GetPolyOrder())
	}
	if cfg.PolyOrder != nil {
		t.Errorf("PolyOrder should remain nil, got %v", *cfg.PolyOrder)
	}
}

func TestLoadTuningConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("wrong extension", func(t *testing.T) {
		path := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadTuningConfig(path); err == nil {
			t.Error("expected error for non-.json file")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadTuningConfig(filepath.Join(tmpDir, "missing.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("bad json", func(t *testing.T) {
		path := filepath.Join(tmpDir, "bad.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadTuningConfig(path); err == nil {
			t.Error("expected error for malformed JSON")
		}
	})

	t.Run("too large", func(t *testing.T) {
		path := filepath.Join(tmpDir, "large.json")
		big := make([]byte, 1024*1024+1)
		for i := range big {
			big[i] = ' '
		}
		if err := os.WriteFile(path, big, 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadTuningConfig(path); err == nil {
			t.Error("expected error for oversized file")
		}
	})

	t.Run("invalid values surface after merge", func(t *testing.T) {
		path := filepath.Join(tmpDir, "invalid.json")
		if err := os.WriteFile(path, []byte(`{"smoothing_window": 0}`), 0644); err != nil {
			t.Fatal(err)
		}
		override, err := LoadTuningConfig(path)
		if err != nil {
			t.Fatalf("LoadTuningConfig: %v", err)
		}
		merged, err := DefaultTuningConfig(SportTennis).Merge(override)
		if err != nil {
			t.Fatal(err)
		}
		if err := merged.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestLoadTuningConfig_PartialCricketOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cricket.json")
	if err := os.WriteFile(path, []byte(`{"aggressive_max_m": 14}`), 0644); err != nil {
		t.Fatal(err)
	}

	override, err := LoadTuningConfig(path)
	if err != nil {
		t.Fatalf("a threshold valid for cricket was rejected: %v", err)
	}
	merged, err := DefaultTuningConfig(SportCricket).Merge(override)
	if err != nil {
		t.Fatal(err)
	}
	if err := merged.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if got := merged.GetAggressiveMaxM(); got != 14 {
		t.Errorf("GetAggressiveMaxM() = %f, want 14", got)
	}
	if got := merged.GetMediumMaxM(); got != 9.4 {
		t.Errorf("GetMediumMaxM() = %f, want the cricket default 9.4", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  *TuningConfig
	}{
		{"unknown sport", &TuningConfig{Sport: ptrString("curling")}},
		{"zero frame rate", &TuningConfig{FrameRate: ptrFloat64(0)}},
		{"negative surface", &TuningConfig{SurfaceLengthM: ptrFloat64(-1)}},
		{"ball size inverted", &TuningConfig{BallMinSizePx: ptrFloat64(50), BallMaxSizePx: ptrFloat64(10)}},
		{"zero smoothing window", &TuningConfig{SmoothingWindow: ptrInt(0)}},
		{"negative gap limit", &TuningConfig{LinearGapLimit: ptrInt(-1)}},
		{"poly order too high", &TuningConfig{PolyOrder: ptrInt(9)}},
		{"unknown event mode", &TuningConfig{EventMode: ptrString("sideways")}},
		{"zero change window", &TuningConfig{EventMinChangeFrames: ptrInt(0)}},
		{"zero lookahead", &TuningConfig{EventLookaheadFactor: ptrFloat64(0)}},
		{"canvas too small", &TuningConfig{CanvasWidth: ptrFloat64(30)}},
		{"negative jitter", &TuningConfig{JitterScale: ptrFloat64(-1)}},
		{"unknown role strategy", &TuningConfig{RoleStrategy: ptrString("coin_flip")}},
		{"no participants", &TuningConfig{MaxParticipants: ptrInt(0)}},
		{"thresholds not increasing", &TuningConfig{ShortMaxM: ptrFloat64(20), MediumMaxM: ptrFloat64(10)}},
		{"zero smash fraction", &TuningConfig{SmashFraction: ptrFloat64(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}

	if err := EmptyTuningConfig().Validate(); err != nil {
		t.Errorf("empty config should validate against builtins: %v", err)
	}
}

func TestMerge(t *testing.T) {
	base := DefaultTuningConfig(SportTennis)
	override := &TuningConfig{
		SmoothingWindow:   ptrInt(9),
		PossessionEnabled: ptrBool(false),
		JitterSeed:        ptrUint64(7),
	}

	merged, err := base.Merge(override)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.GetSmoothingWindow() != 9 {
		t.Errorf("GetSmoothingWindow() = %d, want 9", merged.GetSmoothingWindow())
	}
	if merged.GetPossessionEnabled() {
		t.Error("override should disable possession")
	}
	if merged.GetJitterSeed() != 7 {
		t.Errorf("GetJitterSeed() = %d, want 7", merged.GetJitterSeed())
	}
	if merged.GetPolyOrder() != 2 {
		t.Errorf("unrelated fields should survive, GetPolyOrder() = %d", merged.GetPolyOrder())
	}
	if *base.SmoothingWindow != 5 {
		t.Errorf("Merge mutated base: SmoothingWindow = %d", *base.SmoothingWindow)
	}

	copied, err := base.Merge(nil)
	if err != nil {
		t.Fatalf("Merge(nil): %v", err)
	}
	if copied == base {
		t.Error("Merge(nil) should return a copy")
	}
}
