package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/banshee-data/court.report/internal/config"
	"github.com/banshee-data/court.report/internal/vision/l1detections"
)

// maxInputSize bounds detection stream files read from disk.
const maxInputSize = 256 * 1024 * 1024

// Input is an exported detection stream: the ball and player detector output
// of one video plus the court/pitch landmarks of its first frame.
type Input struct {
	Sport       string                  `json:"sport"`
	VideoID     string                  `json:"video_id"`
	FrameRate   float64                 `json:"frame_rate,omitempty"`
	FrameWidth  float64                 `json:"frame_width"`
	FrameHeight float64                 `json:"frame_height"`
	Landmarks   []float64               `json:"landmarks"`
	Ball        []l1detections.RawFrame `json:"ball"`
	Players     []l1detections.RawFrame `json:"players"`
}

// Frames returns the length of the longer of the two detection streams.
func (in *Input) Frames() int {
	return max(len(in.Ball), len(in.Players))
}

// DecodeInput reads a JSON detection stream.
func DecodeInput(r io.Reader) (*Input, error) {
	var in Input
	dec := json.NewDecoder(r)
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("failed to decode detection stream: %w", err)
	}
	if in.Sport == "" {
		in.Sport = string(config.SportTennis)
	}
	return &in, nil
}

// LoadInput reads a JSON detection stream from path.
func LoadInput(path string) (*Input, error) {
	cleanPath := filepath.Clean(path)
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat detection stream: %w", err)
	}
	if info.Size() > maxInputSize {
		return nil, fmt.Errorf("detection stream too large: %d bytes (max %d)", info.Size(), maxInputSize)
	}
	f, err := os.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open detection stream: %w", err)
	}
	defer f.Close()
	return DecodeInput(f)
}

// ConfigFor builds the tuning config of a run: the embedded defaults of the
// input's sport, then override, then the input's own frame rate when it
// carries one.
func ConfigFor(in *Input, override *config.TuningConfig) (*config.TuningConfig, error) {
	sport := config.Sport(in.Sport)
	switch sport {
	case config.SportTennis, config.SportCricket:
	default:
		return nil, fmt.Errorf("%w: unknown sport %q in detection stream", config.ErrInvalidConfig, in.Sport)
	}
	if override != nil && override.Sport != nil && *override.Sport != in.Sport {
		return nil, fmt.Errorf("%w: config is for %q but the detection stream is %q", config.ErrInvalidConfig, *override.Sport, in.Sport)
	}
	cfg, err := config.DefaultTuningConfig(sport).Merge(override)
	if err != nil {
		return nil, err
	}
	if in.FrameRate > 0 {
		fps := in.FrameRate
		cfg.FrameRate = &fps
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
