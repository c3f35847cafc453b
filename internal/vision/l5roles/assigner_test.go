package l5roles

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/court.report/internal/config"
	"github.com/banshee-data/court.report/internal/monitoring"
	"github.com/banshee-data/court.report/internal/vision"
)

// pitch has its centre (midpoint of landmarks 0 and 1) at (500, 400).
var pitch = vision.Landmarks{500, 300, 500, 500, 400, 300, 600, 500}

var court = vision.Landmarks{100, 100, 900, 100, 100, 700, 900, 700}

// footAt returns a 40x100 box whose bottom centre is (x, y).
func footAt(x, y float64) vision.BBox {
	return vision.BBox{X1: x - 20, Y1: y - 100, X2: x + 20, Y2: y}
}

func newAssigner(t *testing.T, strategy string, max int) *Assigner {
	t.Helper()
	a, err := New(Config{Strategy: strategy, MaxParticipants: max})
	require.NoError(t, err)
	return a
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Config{Strategy: "closest", MaxParticipants: 2})
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))

	_, err = New(Config{Strategy: config.RoleStrategyNearestLandmark})
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))
}

func TestConfigFromTuning(t *testing.T) {
	cfg := ConfigFromTuning(config.DefaultTuningConfig(config.SportCricket))
	assert.Equal(t, Config{Strategy: config.RoleStrategySurfaceCenter, MaxParticipants: 6}, cfg)
}

func TestAssign_SurfaceCenterCloserIsPrimary(t *testing.T) {
	a := newAssigner(t, config.RoleStrategySurfaceCenter, 6)
	dets := vision.Detections{
		{},
		{
			4: footAt(500, 100), // 300 from centre, above it
			9: footAt(500, 350), // 50 from centre
		},
	}
	q := monitoring.NewQuality()

	got := a.Assign(dets, pitch, q)

	want := Assignment{9: vision.RoleBatsman, 4: vision.RoleBowler}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Assign() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 0, q.Count(monitoring.UnassignedRoles))
}

func TestAssign_SurfaceCenterWicketKeeperAndFielders(t *testing.T) {
	a := newAssigner(t, config.RoleStrategySurfaceCenter, 3)
	dets := vision.Detections{{
		1: footAt(500, 410), // batsman
		2: footAt(500, 600), // below centre: keeper
		3: footAt(800, 400), // fielder
		7: footAt(100, 900), // beyond the cap
	}}

	got := a.Assign(dets, pitch, nil)

	want := Assignment{1: vision.RoleBatsman, 2: vision.RoleWicketKeeper, 3: vision.RoleFielder}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Assign() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssign_SurfaceCenterTooFewLandmarks(t *testing.T) {
	a := newAssigner(t, config.RoleStrategySurfaceCenter, 6)
	dets := vision.Detections{{1: footAt(500, 400)}}
	q := monitoring.NewQuality()

	got := a.Assign(dets, vision.Landmarks{500, 300, 500, 500, 400}, q)

	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.Equal(t, 2, q.Count(monitoring.UnassignedRoles))
}

func TestAssign_NearestLandmark(t *testing.T) {
	a := newAssigner(t, config.RoleStrategyNearestLandmark, 2)
	dets := vision.Detections{{
		3: footAt(400, 400), // far from every corner
		5: footAt(110, 110),
		8: footAt(880, 690),
	}}

	got := a.Assign(dets, court, nil)

	want := Assignment{5: vision.RolePlayer1, 8: vision.RolePlayer2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Assign() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssign_TiesGoToLowerID(t *testing.T) {
	a := newAssigner(t, config.RoleStrategyNearestLandmark, 2)
	dets := vision.Detections{{
		6: footAt(100, 120),
		2: footAt(900, 680),
		4: footAt(100, 680),
	}}

	got := a.Assign(dets, court, nil)

	assert.Equal(t, Assignment{2: vision.RolePlayer1, 4: vision.RolePlayer2}, got)
}

func TestAssign_Partial(t *testing.T) {
	a := newAssigner(t, config.RoleStrategyNearestLandmark, 2)
	q := monitoring.NewQuality()

	got := a.Assign(vision.Detections{{5: footAt(110, 110)}}, court, q)

	assert.Equal(t, Assignment{5: vision.RolePlayer1}, got)
	assert.Equal(t, 1, q.Count(monitoring.UnassignedRoles))
}

func TestAssign_NoUsableFrame(t *testing.T) {
	a := newAssigner(t, config.RoleStrategyNearestLandmark, 2)
	q := monitoring.NewQuality()

	got := a.Assign(vision.Detections{{}, {}}, court, q)

	assert.Empty(t, got)
	assert.Equal(t, 2, q.Count(monitoring.UnassignedRoles))
}

func TestAssign_UsesFirstUsableFrameOnly(t *testing.T) {
	a := newAssigner(t, config.RoleStrategyNearestLandmark, 2)
	dets := vision.Detections{
		{},
		{5: footAt(110, 110)},
		{5: footAt(110, 110), 8: footAt(880, 690)},
	}

	assert.Equal(t, 1, FirstUsableFrame(dets))
	assert.Equal(t, Assignment{5: vision.RolePlayer1}, a.Assign(dets, court, nil))
	assert.Equal(t, -1, FirstUsableFrame(vision.Detections{{}}))
}

func TestFilter(t *testing.T) {
	dets := vision.Detections{
		{5: footAt(110, 110), 6: footAt(300, 300)},
		{6: footAt(300, 310)},
		{5: footAt(120, 110), 8: footAt(880, 690)},
	}
	before := len(dets[0])
	roles := Assignment{5: vision.RolePlayer1, 8: vision.RolePlayer2}

	got := Filter(dets, roles)

	require.Len(t, got, 3)
	assert.Len(t, got[0], 1)
	assert.Empty(t, got[1])
	assert.Len(t, got[2], 2)
	require.NotNil(t, got[2][8].Role)
	assert.Equal(t, vision.RolePlayer2, *got[2][8].Role)
	assert.Equal(t, footAt(120, 110), got[2][5].Box)

	assert.Len(t, dets[0], before, "input must not be modified")
	assert.Contains(t, dets[1], vision.TrackID(6))
}

func TestFilter_RolesAreIndependent(t *testing.T) {
	dets := vision.Detections{{5: footAt(110, 110), 8: footAt(880, 690)}}
	got := Filter(dets, Assignment{5: vision.RolePlayer1, 8: vision.RolePlayer2})

	*got[0][5].Role = vision.RoleFielder

	assert.Equal(t, vision.RolePlayer2, *got[0][8].Role)
}
