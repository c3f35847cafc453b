package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/banshee-data/court.report/internal/timeutil"
)

// Detection cache kinds.
const (
	KindBall      = "ball"
	KindPlayers   = "players"
	KindLandmarks = "landmarks"
	KindMeta      = "meta"
)

// CachedDetections is one cached detector output of a video.
type CachedDetections struct {
	VideoID     string          `json:"video_id"`
	Kind        string          `json:"kind"`
	PayloadJSON json.RawMessage `json:"payload_json"`
	FrameCount  int             `json:"frame_count"`
	CreatedAt   int64           `json:"created_at"`
}

// DetectionCache stores raw detector output per video so reruns with new
// tuning skip the detector.
type DetectionCache struct {
	db *sql.DB
	// Clock stamps entries without a CreatedAt; nil means the real clock.
	Clock timeutil.Clock
}

// NewDetectionCache creates a new DetectionCache.
func NewDetectionCache(db *DB) *DetectionCache {
	return &DetectionCache{db: db.DB}
}

const upsertDetections = `
	INSERT INTO detection_cache (video_id, kind, payload_json, frame_count, created_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (video_id, kind) DO UPDATE SET
		payload_json = excluded.payload_json,
		frame_count = excluded.frame_count,
		created_at = excluded.created_at`

// Put stores or replaces the cached output of kind for a video.
func (c *DetectionCache) Put(ctx context.Context, d *CachedDetections) error {
	return c.PutAll(ctx, []*CachedDetections{d})
}

// PutAll stores or replaces several entries in one transaction. Either every
// entry is written or none is.
func (c *DetectionCache) PutAll(ctx context.Context, entries []*CachedDetections) error {
	now := timeutil.Or(c.Clock).Now().UnixNano()
	for _, d := range entries {
		if d.VideoID == "" || d.Kind == "" {
			return fmt.Errorf("detection cache entry needs a video id and a kind")
		}
		if !json.Valid(d.PayloadJSON) {
			return fmt.Errorf("detection cache payload for %s/%s is not valid JSON", d.VideoID, d.Kind)
		}
		if d.CreatedAt == 0 {
			d.CreatedAt = now
		}
	}
	return retryOnBusy(ctx, func() error {
		tx, err := c.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()
		for _, d := range entries {
			if _, err := tx.ExecContext(ctx, upsertDetections,
				d.VideoID, d.Kind, string(d.PayloadJSON), d.FrameCount, d.CreatedAt,
			); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

// Get returns the cached output of kind for a video. It returns false
// without an error when nothing is cached.
func (c *DetectionCache) Get(ctx context.Context, videoID, kind string) (*CachedDetections, bool, error) {
	d := &CachedDetections{VideoID: videoID, Kind: kind}
	var payload string
	err := c.db.QueryRowContext(ctx, `
		SELECT payload_json, frame_count, created_at
		FROM detection_cache
		WHERE video_id = ? AND kind = ?`,
		videoID, kind,
	).Scan(&payload, &d.FrameCount, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read detection cache %s/%s: %w", videoID, kind, err)
	}
	d.PayloadJSON = json.RawMessage(payload)
	return d, true, nil
}

// Kinds returns the cached kinds of a video in name order.
func (c *DetectionCache) Kinds(ctx context.Context, videoID string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT kind FROM detection_cache WHERE video_id = ? ORDER BY kind`, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list detection cache for %s: %w", videoID, err)
	}
	defer rows.Close()

	var kinds []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, rows.Err()
}

// Delete drops every cached kind of a video.
func (c *DetectionCache) Delete(ctx context.Context, videoID string) error {
	return retryOnBusy(ctx, func() error {
		_, err := c.db.ExecContext(ctx, `DELETE FROM detection_cache WHERE video_id = ?`, videoID)
		return err
	})
}
