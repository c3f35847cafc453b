package l6shots

import (
	"math"
	"sort"

	"github.com/banshee-data/court.report/internal/config"
	"github.com/banshee-data/court.report/internal/units"
	"github.com/banshee-data/court.report/internal/vision"
	"github.com/banshee-data/court.report/internal/vision/l5roles"
)

// maxShotPower caps the shot power score.
const maxShotPower = 100

// ShotPower scores a shot from its distance: ten points per metre, capped.
func ShotPower(meters float64) float64 {
	return math.Min(maxShotPower, meters*10)
}

// PlayerStats are the running totals of one participant.
type PlayerStats struct {
	ID                    vision.TrackID   `json:"id"`
	Role                  vision.RoleLabel `json:"role,omitempty"`
	Shots                 int              `json:"shots"`
	LastShotSpeedKmh      float64          `json:"last_shot_speed_kmh"`
	TotalShotSpeedKmh     float64          `json:"total_shot_speed_kmh"`
	OpponentSamples       int              `json:"opponent_samples"`
	LastOpponentSpeedKmh  float64          `json:"last_opponent_speed_kmh"`
	TotalOpponentSpeedKmh float64          `json:"total_opponent_speed_kmh"`
	Runs                  int              `json:"runs,omitempty"`
	Fours                 int              `json:"fours,omitempty"`
	Sixes                 int              `json:"sixes,omitempty"`
}

// AvgShotSpeedKmh returns the mean ball speed of the participant's shots.
func (p PlayerStats) AvgShotSpeedKmh() float64 {
	if p.Shots == 0 {
		return 0
	}
	return p.TotalShotSpeedKmh / float64(p.Shots)
}

// AvgOpponentSpeedKmh returns the mean opponent movement speed while the
// participant's shots were in flight.
func (p PlayerStats) AvgOpponentSpeedKmh() float64 {
	if p.OpponentSamples == 0 {
		return 0
	}
	return p.TotalOpponentSpeedKmh / float64(p.OpponentSamples)
}

// Summary is the statistics state after every shot started at or before Frame.
type Summary struct {
	Frame            vision.FrameIndex `json:"frame"`
	Players          []PlayerStats     `json:"players"`
	Runs             int               `json:"runs"`
	Balls            int               `json:"balls"`
	LastShotPower    float64           `json:"last_shot_power"`
	LastBallSpeedKmh float64           `json:"last_ball_speed_kmh"`
}

// StrikeRate returns runs per hundred balls.
func (s Summary) StrikeRate() float64 {
	return float64(s.Runs) / float64(max(s.Balls, 1)) * 100
}

// Player returns the statistics of participant id.
func (s Summary) Player(id vision.TrackID) (PlayerStats, bool) {
	i := sort.Search(len(s.Players), func(i int) bool { return s.Players[i].ID >= id })
	if i < len(s.Players) && s.Players[i].ID == id {
		return s.Players[i], true
	}
	return PlayerStats{}, false
}

func (s Summary) clone() Summary {
	s.Players = append([]PlayerStats(nil), s.Players...)
	return s
}

// Timeline holds one Summary per shot plus the initial empty state. Looking up
// a frame forward-fills from the latest change at or before it.
type Timeline struct {
	Frames  int       `json:"frames"`
	Entries []Summary `json:"entries"`
}

// Final returns the statistics after the last shot.
func (t Timeline) Final() Summary {
	if len(t.Entries) == 0 {
		return Summary{}
	}
	return t.Entries[len(t.Entries)-1]
}

// At returns the statistics as of frame f.
func (t Timeline) At(f vision.FrameIndex) Summary {
	if len(t.Entries) == 0 {
		return Summary{Frame: f}
	}
	i := sort.Search(len(t.Entries), func(i int) bool { return t.Entries[i].Frame > f })
	if i == 0 {
		return t.Entries[0]
	}
	return t.Entries[i-1]
}

// Expand returns the per-frame forward-filled view of the timeline.
func (t Timeline) Expand() []Summary {
	out := make([]Summary, t.Frames)
	for f := range out {
		out[f] = t.At(f)
	}
	return out
}

// opponent returns the rally opponent of a racquet-sport role.
func opponent(roles l5roles.Assignment, role vision.RoleLabel) (vision.TrackID, bool) {
	var want vision.RoleLabel
	switch role {
	case vision.RolePlayer1:
		want = vision.RolePlayer2
	case vision.RolePlayer2:
		want = vision.RolePlayer1
	default:
		return 0, false
	}
	for _, id := range roles.IDs() {
		if roles[id] == want {
			return id, true
		}
	}
	return 0, false
}

// Stats accumulates shots into a timeline over a video of the given number of
// frames. Every role-bearing participant is present from the first entry.
func (c *Classifier) Stats(shots []ShotRecord, players vision.FramePositions, roles l5roles.Assignment, frames int) Timeline {
	state := Summary{}
	index := map[vision.TrackID]int{}
	ensure := func(id vision.TrackID) *PlayerStats {
		if i, ok := index[id]; ok {
			return &state.Players[i]
		}
		state.Players = append(state.Players, PlayerStats{ID: id, Role: roles[id]})
		sort.Slice(state.Players, func(i, j int) bool { return state.Players[i].ID < state.Players[j].ID })
		for i, p := range state.Players {
			index[p.ID] = i
		}
		return &state.Players[index[id]]
	}
	for _, id := range roles.IDs() {
		ensure(id)
	}

	tl := Timeline{Frames: frames, Entries: []Summary{state.clone()}}
	for _, s := range shots {
		p := ensure(s.ParticipantID)
		p.Shots++
		p.LastShotSpeedKmh = s.SpeedKmh
		p.TotalShotSpeedKmh += s.SpeedKmh

		if opp, ok := opponent(roles, s.Role); ok {
			if kmh, ok := c.movementKmh(players, opp, s.StartFrame, s.EndFrame); ok {
				p.OpponentSamples++
				p.LastOpponentSpeedKmh = kmh
				p.TotalOpponentSpeedKmh += kmh
			}
		}

		if c.cfg.Sport == config.SportCricket {
			runs := s.Category.Runs()
			p.Runs += runs
			switch s.Category {
			case Four:
				p.Fours++
			case Six:
				p.Sixes++
			}
			state.Runs += runs
			state.Balls++
		}
		state.LastShotPower = ShotPower(s.DistanceMeters)
		state.LastBallSpeedKmh = s.SpeedKmh
		state.Frame = s.StartFrame
		tl.Entries = append(tl.Entries, state.clone())
	}
	return tl
}

// movementKmh returns the speed of participant id between two frames.
func (c *Classifier) movementKmh(players vision.FramePositions, id vision.TrackID, start, end vision.FrameIndex) (float64, bool) {
	from, ok := players.At(start, id)
	if !ok {
		return 0, false
	}
	to, ok := players.At(end, id)
	if !ok {
		return 0, false
	}
	meters := c.scale.Meters(from.Distance(to.Point))
	return units.ConvertSpeed(units.SpeedMPS(meters, end-start, c.cfg.FrameRate), units.KMPH), true
}
