package l6shots

import (
	"math"

	"github.com/banshee-data/court.report/internal/config"
)

// Category is the shot type of a classified event pair.
type Category string

const (
	Serve    Category = "Serve"
	Forehand Category = "Forehand"
	Backhand Category = "Backhand"
	Volley   Category = "Volley"
	Smash    Category = "Smash"

	Defensive Category = "Defensive"
	Drive     Category = "Drive"
	Cut       Category = "Cut"
	Pull      Category = "Pull"
	Sweep     Category = "Sweep"
	Hook      Category = "Hook"
	Flick     Category = "Flick"
	Loft      Category = "Loft"
	Six       Category = "Six"
	Four      Category = "Four"
	Single    Category = "Single"
	DotBall   Category = "Dot Ball"
)

// Runs returns the runs credited for a cricket shot category.
func (c Category) Runs() int {
	switch c {
	case Six:
		return 6
	case Four:
		return 4
	case Single:
		return 1
	}
	return 0
}

// Direction is the coarse direction of the ball displacement.
type Direction string

const (
	Straight Direction = "Straight"
	Left     Direction = "Left"
	Right    Direction = "Right"
	OffSide  Direction = "Off Side"
	LegSide  Direction = "Leg Side"
	Behind   Direction = "Behind Wicket"
)

// Intensity is the magnitude bucket of the ball displacement.
type Intensity string

const (
	IntensityShort      Intensity = "short"
	IntensityMedium     Intensity = "medium"
	IntensityAggressive Intensity = "aggressive"
	IntensityBoundary   Intensity = "boundary"
)

// Thresholds are the ascending upper bounds (metres) of the short, medium and
// aggressive buckets.
type Thresholds struct {
	ShortMaxM      float64
	MediumMaxM     float64
	AggressiveMaxM float64
}

// Bucket returns the intensity of a displacement of the given magnitude. The
// upper bucket test is strict, so a magnitude equal to a bound stays in the
// lower bucket.
func (t Thresholds) Bucket(meters float64) Intensity {
	switch {
	case meters > t.AggressiveMaxM:
		return IntensityBoundary
	case meters > t.MediumMaxM:
		return IntensityAggressive
	case meters > t.ShortMaxM:
		return IntensityMedium
	default:
		return IntensityShort
	}
}

// Features is everything the rule tables look at for one event pair. Lengths
// are in metres on the mini surface, whose y axis grows downwards (away from
// the striker's end in cricket, towards the near baseline in tennis).
type Features struct {
	// First is set for the first event of the video.
	First bool
	// DX and DY are the ball displacement components.
	DX, DY float64
	// Distance is the ball displacement magnitude.
	Distance  float64
	Intensity Intensity
	Direction Direction
	// NetGap is the vertical distance of the acting participant from the net.
	NetGap float64
	// Half is -1 when the acting participant is above the net, +1 below it
	// and 0 on it.
	Half int
	// SurfaceLength is the length of the playing surface.
	SurfaceLength float64
}

// DirectionRule maps a displacement to a direction when Match holds.
type DirectionRule struct {
	Name      string
	Direction Direction
	Match     func(dx, dy, eps float64) bool
}

// Rule maps an event pair to a category when Match holds. Rules are evaluated
// in order and the first match wins.
type Rule struct {
	Name     string
	Category Category
	Match    func(f Features, p Params) bool
}

// Params are the rule-table tunables.
type Params struct {
	StraightEpsilonM float64
	RunThresholdM    float64
	VolleyDistanceM  float64
	SmashFraction    float64
}

func always(Features, Params) bool { return true }

func nearlyStill(dx, dy, eps float64) bool {
	return math.Abs(dx) < eps && math.Abs(dy) < eps
}

var tennisDirections = []DirectionRule{
	{Name: "still", Direction: Straight, Match: nearlyStill},
	{Name: "straight", Direction: Straight, Match: func(dx, _, eps float64) bool { return math.Abs(dx) < eps }},
	{Name: "right", Direction: Right, Match: func(dx, _, _ float64) bool { return dx > 0 }},
	{Name: "left", Direction: Left, Match: func(_, _, _ float64) bool { return true }},
}

var cricketDirections = []DirectionRule{
	{Name: "still", Direction: Straight, Match: nearlyStill},
	{Name: "straight", Direction: Straight, Match: func(dx, _, eps float64) bool { return math.Abs(dx) < eps }},
	{Name: "behind", Direction: Behind, Match: func(dx, dy, _ float64) bool { return dy < 0 && math.Abs(dy) > math.Abs(dx) }},
	{Name: "off side", Direction: OffSide, Match: func(dx, _, _ float64) bool { return dx > 0 }},
	{Name: "leg side", Direction: LegSide, Match: func(_, _, _ float64) bool { return true }},
}

var tennisRules = []Rule{
	{Name: "first shot", Category: Serve, Match: func(f Features, _ Params) bool { return f.First }},
	{Name: "at the net", Category: Volley, Match: func(f Features, p Params) bool { return f.NetGap < p.VolleyDistanceM }},
	{Name: "steep descent", Category: Smash, Match: func(f Features, p Params) bool {
		return f.DY > 0 && f.DY > p.SmashFraction*f.SurfaceLength
	}},
	{Name: "across the body", Category: Backhand, Match: func(f Features, _ Params) bool {
		return (f.Half > 0 && f.DY < 0) || (f.Half < 0 && f.DY > 0)
	}},
	{Name: "default", Category: Forehand, Match: always},
}

// aggressive reports an aggressive displacement in direction d.
func aggressive(f Features, d Direction) bool {
	return f.Intensity == IntensityAggressive && f.Direction == d
}

var cricketRules = []Rule{
	{Name: "blocked", Category: Defensive, Match: func(f Features, _ Params) bool { return f.Intensity == IntensityShort }},
	{Name: "over the rope", Category: Six, Match: func(f Features, _ Params) bool {
		return f.Intensity == IntensityBoundary && math.Abs(f.DY) > math.Abs(f.DX) && f.DY > 0
	}},
	{Name: "along the ground", Category: Four, Match: func(f Features, _ Params) bool { return f.Intensity == IntensityBoundary }},
	{Name: "straight lofted", Category: Loft, Match: func(f Features, _ Params) bool { return aggressive(f, Straight) && f.DY > 0 }},
	{Name: "straight drive", Category: Drive, Match: func(f Features, _ Params) bool { return aggressive(f, Straight) }},
	{Name: "square off side", Category: Cut, Match: func(f Features, _ Params) bool { return aggressive(f, OffSide) && f.DY < 0 }},
	{Name: "off drive", Category: Drive, Match: func(f Features, _ Params) bool { return aggressive(f, OffSide) }},
	{Name: "square leg side", Category: Pull, Match: func(f Features, _ Params) bool {
		return aggressive(f, LegSide) && math.Abs(f.DX) > math.Abs(f.DY)
	}},
	{Name: "leg glance", Category: Flick, Match: func(f Features, _ Params) bool { return aggressive(f, LegSide) }},
	{Name: "fine leg", Category: Sweep, Match: func(f Features, _ Params) bool { return aggressive(f, Behind) && f.DX < 0 }},
	{Name: "behind square", Category: Hook, Match: func(f Features, _ Params) bool { return aggressive(f, Behind) }},
	{Name: "run taken", Category: Single, Match: func(f Features, p Params) bool { return f.Distance > p.RunThresholdM }},
	{Name: "default", Category: DotBall, Match: always},
}

// RulesFor returns the ordered direction and category tables of sport.
func RulesFor(sport config.Sport) ([]DirectionRule, []Rule) {
	if sport == config.SportCricket {
		return cricketDirections, cricketRules
	}
	return tennisDirections, tennisRules
}

// Direct returns the first matching direction, Straight when none matches.
func Direct(rules []DirectionRule, dx, dy, eps float64) Direction {
	for _, r := range rules {
		if r.Match(dx, dy, eps) {
			return r.Direction
		}
	}
	return Straight
}

// Categorize returns the first matching category and the rule that produced
// it. It returns false when no rule matches.
func Categorize(rules []Rule, f Features, p Params) (Category, string, bool) {
	for _, r := range rules {
		if r.Match(f, p) {
			return r.Category, r.Name, true
		}
	}
	return "", "", false
}
