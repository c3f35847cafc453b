package config

// builtinDefaults mirrors defaults/<sport>.json. The JSON files are the
// canonical values; these are the fallbacks used by the Get* accessors when
// a field is nil. TestEmbeddedDefaultsMatchBuiltins keeps the two in sync.
type builtinDefaults struct {
	frameRate               float64
	surfaceLengthM          float64
	surfaceWidthM           float64
	ballMinSizePx           float64
	ballMaxSizePx           float64
	ballMinAspect           float64
	ballMaxAspect           float64
	playerMinWidthPx        float64
	playerMinHeightPx       float64
	smoothingWindow         int
	linearGapLimit          int
	polyOrder               int
	polyContext             int
	eventMode               string
	eventRollingWindow      int
	eventMinChangeFrames    int
	eventLookaheadFactor    float64
	eventConfirmCount       int
	eventCandidateThreshold float64
	eventSustainThreshold   float64
	canvasWidth             float64
	canvasHeight            float64
	canvasBuffer            float64
	courtPadding            float64
	miniWidthFraction       float64
	miniAspect              float64
	landmarkLimit           int
	possessionEnabled       bool
	possessionThresholdPx   float64
	jitterScale             float64
	jitterSeed              uint64
	roleStrategy            string
	maxParticipants         int
	shortMaxM               float64
	mediumMaxM              float64
	aggressiveMaxM          float64
	straightEpsilonM        float64
	runThresholdM           float64
	volleyDistanceM         float64
	smashFraction           float64
}

var builtins = map[Sport]builtinDefaults{
	SportTennis: {
		frameRate:             24,
		surfaceLengthM:        23.77,
		surfaceWidthM:         10.97,
		ballMinSizePx:         5,
		ballMaxSizePx:         40,
		ballMinAspect:         0.7,
		ballMaxAspect:         1.3,
		playerMinWidthPx:      20,
		playerMinHeightPx:     50,
		smoothingWindow:       5,
		polyOrder:             2,
		polyContext:           4,
		eventMode:             EventModeVertical,
		eventRollingWindow:    5,
		eventMinChangeFrames:  25,
		eventLookaheadFactor:  1.2,
		eventConfirmCount:     24,
		canvasWidth:           250,
		canvasHeight:          500,
		canvasBuffer:          50,
		courtPadding:          20,
		miniWidthFraction:     0.2,
		miniAspect:            1.5,
		possessionEnabled:     true,
		possessionThresholdPx: 150,
		jitterScale:           5,
		jitterSeed:            1,
		roleStrategy:          RoleStrategyNearestLandmark,
		maxParticipants:       2,
		shortMaxM:             5,
		mediumMaxM:            15,
		aggressiveMaxM:        25,
		straightEpsilonM:      1.0,
		volleyDistanceM:       4.0,
		smashFraction:         0.7,
	},
	SportCricket: {
		frameRate:               24,
		surfaceLengthM:          20.12,
		surfaceWidthM:           3.05,
		ballMinSizePx:           5,
		ballMaxSizePx:           40,
		ballMinAspect:           0.7,
		ballMaxAspect:           1.3,
		playerMinWidthPx:        20,
		playerMinHeightPx:       50,
		smoothingWindow:         3,
		polyOrder:               3,
		polyContext:             4,
		eventMode:               EventModeVelocity,
		eventRollingWindow:      5,
		eventMinChangeFrames:    15,
		eventLookaheadFactor:    1.0,
		eventConfirmCount:       7,
		eventCandidateThreshold: 2,
		eventSustainThreshold:   1,
		canvasWidth:             300,
		canvasHeight:            360,
		canvasBuffer:            50,
		courtPadding:            20,
		miniWidthFraction:       0.25,
		miniAspect:              1.2,
		landmarkLimit:           8,
		possessionThresholdPx:   150,
		jitterScale:             5,
		jitterSeed:              1,
		roleStrategy:            RoleStrategySurfaceCenter,
		maxParticipants:         6,
		shortMaxM:               3.1,
		mediumMaxM:              9.4,
		aggressiveMaxM:          12.6,
		straightEpsilonM:        1.25,
		runThresholdM:           4.7,
		smashFraction:           0.7,
	},
}

// defaults returns the builtin table for the configured sport. Unknown sports
// resolve to tennis so accessors never fail; Validate rejects them.
func (c *TuningConfig) defaults() builtinDefaults {
	if d, ok := builtins[Sport(c.GetSport())]; ok {
		return d
	}
	return builtins[SportTennis]
}

func getFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func getInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func getString(p *string, def string) string {
	if p == nil || *p == "" {
		return def
	}
	return *p
}

// GetSport returns the configured sport or tennis.
func (c *TuningConfig) GetSport() string {
	return getString(c.Sport, string(SportTennis))
}

func (c *TuningConfig) GetFrameRate() float64 {
	return getFloat(c.FrameRate, c.defaults().frameRate)
}

func (c *TuningConfig) GetSurfaceLengthM() float64 {
	return getFloat(c.SurfaceLengthM, c.defaults().surfaceLengthM)
}

func (c *TuningConfig) GetSurfaceWidthM() float64 {
	return getFloat(c.SurfaceWidthM, c.defaults().surfaceWidthM)
}

func (c *TuningConfig) GetBallMinSizePx() float64 {
	return getFloat(c.BallMinSizePx, c.defaults().ballMinSizePx)
}

func (c *TuningConfig) GetBallMaxSizePx() float64 {
	return getFloat(c.BallMaxSizePx, c.defaults().ballMaxSizePx)
}

func (c *TuningConfig) GetBallMinAspect() float64 {
	return getFloat(c.BallMinAspect, c.defaults().ballMinAspect)
}

func (c *TuningConfig) GetBallMaxAspect() float64 {
	return getFloat(c.BallMaxAspect, c.defaults().ballMaxAspect)
}

func (c *TuningConfig) GetPlayerMinWidthPx() float64 {
	return getFloat(c.PlayerMinWidthPx, c.defaults().playerMinWidthPx)
}

func (c *TuningConfig) GetPlayerMinHeightPx() float64 {
	return getFloat(c.PlayerMinHeight, c.defaults().playerMinHeightPx)
}

// GetSmoothingWindow returns the centred moving-average window of the
// smoother. Smaller windows keep sharper reversals for small, fast balls.
func (c *TuningConfig) GetSmoothingWindow() int {
	return getInt(c.SmoothingWindow, c.defaults().smoothingWindow)
}

// GetLinearGapLimit returns the longest gap filled linearly; 0 means no limit.
func (c *TuningConfig) GetLinearGapLimit() int {
	return getInt(c.LinearGapLimit, c.defaults().linearGapLimit)
}

func (c *TuningConfig) GetPolyOrder() int {
	return getInt(c.PolyOrder, c.defaults().polyOrder)
}

func (c *TuningConfig) GetPolyContext() int {
	return getInt(c.PolyContext, c.defaults().polyContext)
}

func (c *TuningConfig) GetEventMode() string {
	return getString(c.EventMode, c.defaults().eventMode)
}

func (c *TuningConfig) GetEventRollingWindow() int {
	return getInt(c.EventRollingWindow, c.defaults().eventRollingWindow)
}

// GetEventMinChangeFrames returns W, the minimum sustained change window.
func (c *TuningConfig) GetEventMinChangeFrames() int {
	return getInt(c.EventMinChangeFrames, c.defaults().eventMinChangeFrames)
}

func (c *TuningConfig) GetEventLookaheadFactor() float64 {
	return getFloat(c.EventLookaheadFactor, c.defaults().eventLookaheadFactor)
}

// GetEventConfirmCount returns the number of agreeing frames an event must
// exceed to be confirmed.
func (c *TuningConfig) GetEventConfirmCount() int {
	return getInt(c.EventConfirmCount, c.defaults().eventConfirmCount)
}

func (c *TuningConfig) GetEventCandidateThreshold() float64 {
	return getFloat(c.EventCandidateThreshold, c.defaults().eventCandidateThreshold)
}

func (c *TuningConfig) GetEventSustainThreshold() float64 {
	return getFloat(c.EventSustainThreshold, c.defaults().eventSustainThreshold)
}

func (c *TuningConfig) GetCanvasWidth() float64 {
	return getFloat(c.CanvasWidth, c.defaults().canvasWidth)
}

func (c *TuningConfig) GetCanvasHeight() float64 {
	return getFloat(c.CanvasHeight, c.defaults().canvasHeight)
}

func (c *TuningConfig) GetCanvasBuffer() float64 {
	return getFloat(c.CanvasBuffer, c.defaults().canvasBuffer)
}

func (c *TuningConfig) GetCourtPadding() float64 {
	return getFloat(c.CourtPadding, c.defaults().courtPadding)
}

func (c *TuningConfig) GetMiniWidthFraction() float64 {
	return getFloat(c.MiniWidthFraction, c.defaults().miniWidthFraction)
}

func (c *TuningConfig) GetMiniAspect() float64 {
	return getFloat(c.MiniAspect, c.defaults().miniAspect)
}

func (c *TuningConfig) GetLandmarkLimit() int {
	return getInt(c.LandmarkLimit, c.defaults().landmarkLimit)
}

func (c *TuningConfig) GetPossessionEnabled() bool {
	if c.PossessionEnabled == nil {
		return c.defaults().possessionEnabled
	}
	return *c.PossessionEnabled
}

func (c *TuningConfig) GetPossessionThresholdPx() float64 {
	return getFloat(c.PossessionThresholdPx, c.defaults().possessionThresholdPx)
}

func (c *TuningConfig) GetJitterScale() float64 {
	return getFloat(c.JitterScale, c.defaults().jitterScale)
}

func (c *TuningConfig) GetJitterSeed() uint64 {
	if c.JitterSeed == nil {
		return c.defaults().jitterSeed
	}
	return *c.JitterSeed
}

func (c *TuningConfig) GetRoleStrategy() string {
	return getString(c.RoleStrategy, c.defaults().roleStrategy)
}

func (c *TuningConfig) GetMaxParticipants() int {
	return getInt(c.MaxParticipants, c.defaults().maxParticipants)
}

func (c *TuningConfig) GetShortMaxM() float64 {
	return getFloat(c.ShortMaxM, c.defaults().shortMaxM)
}

func (c *TuningConfig) GetMediumMaxM() float64 {
	return getFloat(c.MediumMaxM, c.defaults().mediumMaxM)
}

func (c *TuningConfig) GetAggressiveMaxM() float64 {
	return getFloat(c.AggressiveMaxM, c.defaults().aggressiveMaxM)
}

func (c *TuningConfig) GetStraightEpsilonM() float64 {
	return getFloat(c.StraightEpsilonM, c.defaults().straightEpsilonM)
}

func (c *TuningConfig) GetRunThresholdM() float64 {
	return getFloat(c.RunThresholdM, c.defaults().runThresholdM)
}

func (c *TuningConfig) GetVolleyDistanceM() float64 {
	return getFloat(c.VolleyDistanceM, c.defaults().volleyDistanceM)
}

func (c *TuningConfig) GetSmashFraction() float64 {
	return getFloat(c.SmashFraction, c.defaults().smashFraction)
}
