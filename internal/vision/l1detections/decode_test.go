package l1detections

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/court.report/internal/config"
	"github.com/banshee-data/court.report/internal/monitoring"
	"github.com/banshee-data/court.report/internal/vision"
)

func mustFrames(t *testing.T, s string) []RawFrame {
	t.Helper()
	var frames []RawFrame
	require.NoError(t, json.Unmarshal([]byte(s), &frames))
	return frames
}

func TestDecode(t *testing.T) {
	monitoring.SetLogger(nil)
	raw := mustFrames(t, `[
		{"1": [10, 10, 20, 20]},
		{},
		{"1": [1, 2, 3]},
		{"1": [10, null, 20, 20], "2": [0, 0, 30, 80]},
		{"x": [0, 0, 1, 1], "3": "box", "4": [20, 10, 10, 20]}
	]`)
	q := monitoring.NewQuality()

	dets := Decode(raw, q)

	require.Len(t, dets, 5)
	assert.Equal(t, vision.BBox{X1: 10, Y1: 10, X2: 20, Y2: 20}, dets[0][vision.BallID])
	assert.Empty(t, dets[1])
	assert.Empty(t, dets[2], "three-element tuple is not a box")
	assert.NotContains(t, dets[3], vision.BallID, "null coordinate is not a box")
	assert.Contains(t, dets[3], vision.TrackID(2))
	assert.Empty(t, dets[4])
	assert.Equal(t, 5, q.Count(monitoring.MalformedBoxes))
}

func TestDecode_Empty(t *testing.T) {
	assert.Empty(t, Decode(nil, nil))
}

func TestDecodeLandmarks(t *testing.T) {
	monitoring.SetLogger(nil)

	q := monitoring.NewQuality()
	lm := DecodeLandmarks([]float64{1, 2, 3, 4, 5}, q)
	assert.Equal(t, 2, lm.Len())
	assert.Equal(t, 1, q.Count(monitoring.MalformedLandmarks))

	q = monitoring.NewQuality()
	lm = DecodeLandmarks([]float64{1, 2, math.NaN(), 4}, q)
	assert.Equal(t, 2, lm.Len(), "indices stay stable")
	_, ok := lm.Point(1)
	assert.False(t, ok)
	assert.Equal(t, 1, q.Count(monitoring.MalformedLandmarks))

	q = monitoring.NewQuality()
	DecodeLandmarks([]float64{1, 2, 3, 4}, q)
	assert.Zero(t, q.Count(monitoring.MalformedLandmarks))
}

func TestBallFilter(t *testing.T) {
	f := NewBallFilter(config.DefaultTuningConfig(config.SportTennis))
	tests := []struct {
		name string
		box  vision.BBox
		keep bool
	}{
		{"typical ball", vision.BBox{X1: 0, Y1: 0, X2: 12, Y2: 11}, true},
		{"min size", vision.BBox{X1: 0, Y1: 0, X2: 5, Y2: 5}, true},
		{"too small", vision.BBox{X1: 0, Y1: 0, X2: 4, Y2: 4}, false},
		{"too big", vision.BBox{X1: 0, Y1: 0, X2: 41, Y2: 41}, false},
		{"elongated", vision.BBox{X1: 0, Y1: 0, X2: 30, Y2: 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.keep, f.Keep(tt.box))
		})
	}
}

func TestPlayerFilter(t *testing.T) {
	f := NewPlayerFilter(config.DefaultTuningConfig(config.SportTennis))
	assert.True(t, f.Keep(vision.BBox{X1: 0, Y1: 0, X2: 40, Y2: 120}))
	assert.False(t, f.Keep(vision.BBox{X1: 0, Y1: 0, X2: 20, Y2: 120}), "width must exceed the minimum")
	assert.False(t, f.Keep(vision.BBox{X1: 0, Y1: 0, X2: 40, Y2: 50}), "height must exceed the minimum")
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	monitoring.SetLogger(nil)
	dets := vision.Detections{
		{2: {X1: 0, Y1: 0, X2: 40, Y2: 120}, 3: {X1: 0, Y1: 0, X2: 5, Y2: 5}},
	}
	q := monitoring.NewQuality()

	out := Apply(dets, PlayerFilter{MinWidth: 20, MinHeight: 50}, q)

	assert.Len(t, out[0], 1)
	assert.Contains(t, out[0], vision.TrackID(2))
	assert.Len(t, dets[0], 2, "input untouched")
	assert.Equal(t, 1, q.Count(monitoring.FilteredDetections))
}
