package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AnalysisRun is one persisted pipeline run.
type AnalysisRun struct {
	RunID      string          `json:"run_id"`
	VideoID    string          `json:"video_id"`
	Sport      string          `json:"sport"`
	ParamsJSON json.RawMessage `json:"params_json,omitempty"`
	EventCount int             `json:"event_count"`
	ShotCount  int             `json:"shot_count"`
	ReportJSON json.RawMessage `json:"report_json,omitempty"`
	CreatedAt  int64           `json:"created_at"`
}

// AnalysisRunStore provides persistence for analysis runs.
type AnalysisRunStore struct {
	db *sql.DB
}

// NewAnalysisRunStore creates a new AnalysisRunStore.
func NewAnalysisRunStore(db *DB) *AnalysisRunStore {
	return &AnalysisRunStore{db: db.DB}
}

func nullableJSON(v json.RawMessage) interface{} {
	if len(v) == 0 {
		return nil
	}
	return string(v)
}

// Insert persists a new run. If RunID is empty, a UUID is generated.
func (s *AnalysisRunStore) Insert(ctx context.Context, run *AnalysisRun) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO analysis_runs (
				run_id, video_id, sport, params_json,
				event_count, shot_count, report_json, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.VideoID, run.Sport, nullableJSON(run.ParamsJSON),
			run.EventCount, run.ShotCount, nullableJSON(run.ReportJSON), run.CreatedAt,
		)
		return err
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*AnalysisRun, error) {
	var (
		run            AnalysisRun
		params, report sql.NullString
	)
	if err := row.Scan(&run.RunID, &run.VideoID, &run.Sport, &params,
		&run.EventCount, &run.ShotCount, &report, &run.CreatedAt); err != nil {
		return nil, err
	}
	if params.Valid {
		run.ParamsJSON = json.RawMessage(params.String)
	}
	if report.Valid {
		run.ReportJSON = json.RawMessage(report.String)
	}
	return &run, nil
}

const runColumns = `run_id, video_id, sport, params_json, event_count, shot_count, report_json, created_at`

// Get returns the run with the given id. It returns false without an error
// when there is none.
func (s *AnalysisRunStore) Get(ctx context.Context, runID string) (*AnalysisRun, bool, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM analysis_runs WHERE run_id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read analysis run %s: %w", runID, err)
	}
	return run, true, nil
}

// ListByVideo returns the runs of a video, newest first. Report payloads are
// left out.
func (s *AnalysisRunStore) ListByVideo(ctx context.Context, videoID string) ([]*AnalysisRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, video_id, sport, params_json, event_count, shot_count, NULL, created_at
		FROM analysis_runs
		WHERE video_id = ?
		ORDER BY created_at DESC, run_id`, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list analysis runs for %s: %w", videoID, err)
	}
	defer rows.Close()

	var runs []*AnalysisRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Delete removes a run.
func (s *AnalysisRunStore) Delete(ctx context.Context, runID string) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM analysis_runs WHERE run_id = ?`, runID)
		return err
	})
}
