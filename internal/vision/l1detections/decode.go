package l1detections

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/banshee-data/court.report/internal/monitoring"
	"github.com/banshee-data/court.report/internal/vision"
)

// RawFrame is one frame of detector output as exported by the tracker: a map
// from the identity (as a JSON object key) to an [x1, y1, x2, y2] tuple. The
// values are kept raw so that malformed tuples can be absorbed per entry.
type RawFrame map[string]json.RawMessage

// Decode converts a raw detection stream into typed detections. Entries with a
// non-integer identity, a tuple that is not four finite numbers, or inverted
// corners become "no detection" for that frame and are counted as
// MalformedBoxes on q. Decode never fails; the result has one map per input
// frame.
func Decode(raw []RawFrame, q *monitoring.Quality) vision.Detections {
	out := make(vision.Detections, len(raw))
	malformed := 0
	for i, frame := range raw {
		dets := make(map[vision.TrackID]vision.BBox, len(frame))
		for key, msg := range frame {
			id, err := strconv.Atoi(key)
			if err != nil {
				malformed++
				continue
			}
			box, ok := decodeBox(msg)
			if !ok {
				malformed++
				continue
			}
			dets[vision.TrackID(id)] = box
		}
		out[i] = dets
	}
	q.Add(monitoring.MalformedBoxes, malformed)
	return out
}

// decodeBox accepts only a JSON array of exactly four numbers. Nulls, strings
// and wrong lengths are rejected.
func decodeBox(msg json.RawMessage) (vision.BBox, bool) {
	var vals []*float64
	if err := json.Unmarshal(msg, &vals); err != nil {
		return vision.BBox{}, false
	}
	tuple := make([]float64, len(vals))
	for i, v := range vals {
		if v == nil {
			return vision.BBox{}, false
		}
		tuple[i] = *v
	}
	return vision.BoxFromSlice(tuple)
}

// DecodeLandmarks validates a flat keypoint list. An odd-length list has its
// dangling coordinate dropped; non-finite coordinates are kept in place so
// that landmark indices stay stable, and Landmarks.Point reports them as
// unusable. Both cases are counted as MalformedLandmarks.
func DecodeLandmarks(raw []float64, q *monitoring.Quality) vision.Landmarks {
	n := len(raw)
	bad := 0
	if n%2 != 0 {
		n--
		bad++
	}
	lm := make(vision.Landmarks, n)
	copy(lm, raw[:n])
	for _, v := range lm {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			bad++
			break
		}
	}
	q.Add(monitoring.MalformedLandmarks, bad)
	return lm
}
