package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/banshee-data/court.report/internal/vision/storage/sqlite"
)

// StoreSink persists every report as an analysis run.
type StoreSink struct {
	Runs *sqlite.AnalysisRunStore
	// OmitReport stores only the run summary without the full report JSON.
	OmitReport bool
}

// RecordRun implements RunSink.
func (s *StoreSink) RecordRun(ctx context.Context, r *Report) error {
	params, err := r.ParamsJSON()
	if err != nil {
		return fmt.Errorf("marshal run params: %w", err)
	}
	run := &sqlite.AnalysisRun{
		RunID:      r.RunID,
		VideoID:    r.VideoID,
		Sport:      string(r.Sport),
		ParamsJSON: params,
		EventCount: len(r.Events),
		ShotCount:  len(r.Shots),
		CreatedAt:  r.CreatedAt.UnixNano(),
	}
	if !s.OmitReport {
		if run.ReportJSON, err = json.Marshal(r); err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
	}
	return s.Runs.Insert(ctx, run)
}

// streamMeta is the cached part of an Input that is not a detection stream.
type streamMeta struct {
	Sport       string  `json:"sport"`
	FrameRate   float64 `json:"frame_rate,omitempty"`
	FrameWidth  float64 `json:"frame_width"`
	FrameHeight float64 `json:"frame_height"`
}

// CacheInput stores a detection stream in the cache under its video id.
func CacheInput(ctx context.Context, cache *sqlite.DetectionCache, in *Input) error {
	if in.VideoID == "" {
		return fmt.Errorf("detection stream has no video id")
	}
	parts := []struct {
		kind   string
		frames int
		value  any
	}{
		{sqlite.KindMeta, 0, streamMeta{Sport: in.Sport, FrameRate: in.FrameRate, FrameWidth: in.FrameWidth, FrameHeight: in.FrameHeight}},
		{sqlite.KindLandmarks, 0, in.Landmarks},
		{sqlite.KindBall, len(in.Ball), in.Ball},
		{sqlite.KindPlayers, len(in.Players), in.Players},
	}
	entries := make([]*sqlite.CachedDetections, 0, len(parts))
	for _, p := range parts {
		payload, err := json.Marshal(p.value)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", p.kind, err)
		}
		entries = append(entries, &sqlite.CachedDetections{
			VideoID:     in.VideoID,
			Kind:        p.kind,
			PayloadJSON: payload,
			FrameCount:  p.frames,
		})
	}
	if err := cache.PutAll(ctx, entries); err != nil {
		return fmt.Errorf("cache detections for %s: %w", in.VideoID, err)
	}
	return nil
}

// CachedInput rebuilds a detection stream from the cache. It returns false
// when any part of the stream is missing.
func CachedInput(ctx context.Context, cache *sqlite.DetectionCache, videoID string) (*Input, bool, error) {
	in := &Input{VideoID: videoID}
	var meta streamMeta
	targets := []struct {
		kind string
		dst  any
	}{
		{sqlite.KindMeta, &meta},
		{sqlite.KindLandmarks, &in.Landmarks},
		{sqlite.KindBall, &in.Ball},
		{sqlite.KindPlayers, &in.Players},
	}
	for _, t := range targets {
		d, ok, err := cache.Get(ctx, videoID, t.kind)
		if err != nil || !ok {
			return nil, false, err
		}
		if err := json.Unmarshal(d.PayloadJSON, t.dst); err != nil {
			return nil, false, fmt.Errorf("decode cached %s for %s: %w", t.kind, videoID, err)
		}
	}
	in.Sport = meta.Sport
	in.FrameRate = meta.FrameRate
	in.FrameWidth = meta.FrameWidth
	in.FrameHeight = meta.FrameHeight
	return in, true, nil
}
