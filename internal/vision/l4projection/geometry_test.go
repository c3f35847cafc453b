package l4projection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/court.report/internal/config"
	"github.com/banshee-data/court.report/internal/vision"
)

func TestNewSurface_Tennis(t *testing.T) {
	s, err := NewSurface(config.DefaultTuningConfig(config.SportTennis), 1920, 1080)
	require.NoError(t, err)

	assert.Equal(t, Rect{StartX: 1620, StartY: 50, EndX: 1870, EndY: 550}, s.Canvas)
	assert.Equal(t, Rect{StartX: 1640, StartY: 70, EndX: 1850, EndY: 530}, s.Court)
	assert.InDelta(t, 384, s.MiniWidth, 1e-9)
	assert.InDelta(t, 576, s.MiniHeight, 1e-9)
	require.Len(t, s.Keypoints, 14)
	for i, kp := range s.Keypoints {
		assert.True(t, s.Court.Contains(kp), "keypoint %d %v outside court", i, kp)
	}

	// Doubles width spans the drawn court; the net sits between the baselines.
	assert.InDelta(t, 10.97, s.Scale.Meters(s.Court.Width()), 1e-9)
	assert.InDelta(t, (s.Keypoints[0].Y+s.Keypoints[2].Y)/2, s.NetY, 1e-9)
	assert.InDelta(t, 23.77, s.Scale.Meters(s.LengthPx), 1e-9)
	// Singles corners are inset by the alley on both sides.
	assert.InDelta(t, s.Keypoints[6].X-s.Keypoints[4].X, s.Keypoints[9].X-s.Keypoints[8].X, 1e-9)
}

func TestNewSurface_Cricket(t *testing.T) {
	s, err := NewSurface(config.DefaultTuningConfig(config.SportCricket), 1280, 720)
	require.NoError(t, err)

	assert.Equal(t, Rect{StartX: 930, StartY: 50, EndX: 1230, EndY: 410}, s.Canvas)
	require.Len(t, s.Keypoints, 16)
	for i, kp := range s.Keypoints {
		assert.True(t, s.Canvas.Contains(kp), "keypoint %d %v outside canvas", i, kp)
	}
	assert.InDelta(t, 20.12, s.Scale.Meters(s.Court.Height()), 1e-9)
	assert.InDelta(t, 320, s.MiniWidth, 1e-9)
	assert.InDelta(t, 384, s.MiniHeight, 1e-9)
	assert.Zero(t, s.NetY)
}

func TestNewSurface_Errors(t *testing.T) {
	_, err := NewSurface(config.DefaultTuningConfig(config.SportTennis), 0, 720)
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))

	bad := config.DefaultTuningConfig(config.SportTennis)
	zero := 0.0
	bad.SurfaceLengthM = &zero
	_, err = NewSurface(bad, 1280, 720)
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))
}

func TestRect(t *testing.T) {
	r := Rect{StartX: 10, StartY: 20, EndX: 110, EndY: 220}
	assert.Equal(t, vision.Point{X: 60, Y: 120}, r.Center())
	assert.Equal(t, vision.Point{X: 10, Y: 220}, r.Clamp(vision.Point{X: -5, Y: 999}))
	assert.True(t, r.Contains(vision.Point{X: 10, Y: 220}), "bounds inclusive")
	assert.False(t, r.Contains(vision.Point{X: 9.99, Y: 100}))
}
