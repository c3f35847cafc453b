package monitoring

import (
	"sort"
	"sync"
)

// QualityKind names a class of absorbed data problem.
type QualityKind string

const (
	MalformedBoxes       QualityKind = "malformed_boxes"        // detector tuple not a valid box
	MalformedLandmarks   QualityKind = "malformed_landmarks"    // odd-length or non-finite landmark list
	EmptyTracks          QualityKind = "empty_tracks"           // track with no valid frame, filled with fallback
	FilteredDetections   QualityKind = "filtered_detections"    // dropped by size/aspect plausibility filters
	FallbackPositions    QualityKind = "fallback_positions"     // projected to the mini-surface centre
	SnappedBallPositions QualityKind = "snapped_ball_positions" // ball snapped to the possessing player
	InsufficientFrames   QualityKind = "insufficient_frames"    // sequence too short for the event window
	UnassignedRoles      QualityKind = "unassigned_roles"       // fewer participants than roles
	SkippedEventPairs    QualityKind = "skipped_event_pairs"    // endpoint without a usable position
)

// Quality counts absorbed data problems for one analysis run. The zero value
// is an empty counter set. A nil *Quality discards everything, so components
// can take an optional counter without nil checks.
type Quality struct {
	mu     sync.Mutex
	counts map[QualityKind]int
}

// NewQuality returns an empty counter set.
func NewQuality() *Quality {
	return &Quality{counts: make(map[QualityKind]int)}
}

// Add records n occurrences of kind. The first occurrence of each kind is
// logged through Logf.
func (q *Quality) Add(kind QualityKind, n int) {
	if q == nil || n <= 0 {
		return
	}
	q.mu.Lock()
	if q.counts == nil {
		q.counts = make(map[QualityKind]int)
	}
	first := q.counts[kind] == 0
	q.counts[kind] += n
	q.mu.Unlock()
	if first {
		Logf("data quality: %s (absorbed)", kind)
	}
}

// Count returns the number of occurrences recorded for kind.
func (q *Quality) Count(kind QualityKind) int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.counts[kind]
}

// Snapshot returns a copy of the non-zero counters keyed by kind name.
func (q *Quality) Snapshot() map[string]int {
	out := make(map[string]int)
	if q == nil {
		return out
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for k, v := range q.counts {
		out[string(k)] = v
	}
	return out
}

// Kinds returns the recorded kinds in name order.
func (q *Quality) Kinds() []QualityKind {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	kinds := make([]QualityKind, 0, len(q.counts))
	for k := range q.counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
