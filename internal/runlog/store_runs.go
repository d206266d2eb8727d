package runlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BeginRun records a new run covering the inclusive stage range and returns it.
func (s *Store) BeginRun(ctx context.Context, firstStage, lastStage int) (*Run, error) {
	now := time.Now().UTC()
	run := &Run{
		ID:         uuid.NewString(),
		Status:     RunStatusRunning,
		FirstStage: firstStage,
		LastStage:  lastStage,
		StartedAt:  now,
	}

	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO runs (id, status, first_stage, last_stage, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID,
		run.Status,
		run.FirstStage,
		run.LastStage,
		now.Format(time.RFC3339Nano),
	); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun marks a run completed or failed.
func (s *Store) FinishRun(ctx context.Context, runID string, status RunStatus, errorMessage string) error {
	now := time.Now().UTC()
	if _, err := s.execWithRetry(
		ctx,
		`UPDATE runs SET status = ?, finished_at = ?, error_message = ? WHERE id = ?`,
		status,
		now.Format(time.RFC3339Nano),
		nullableString(errorMessage),
		runID,
	); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// GetRun fetches a run by identifier, or nil when it does not exist.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// LastRun returns the most recently started run, or nil on an empty log.
func (s *Store) LastRun(ctx context.Context) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last run: %w", err)
	}
	return run, nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// StartStage records a stage entering execution and returns the stage run id.
func (s *Store) StartStage(ctx context.Context, runID string, stageIndex int, stageName string) (int64, error) {
	now := time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO stage_runs (run_id, stage_index, stage_name, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		runID,
		stageIndex,
		stageName,
		StageStatusRunning,
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert stage run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// FinishStage marks a stage run completed or failed.
func (s *Store) FinishStage(ctx context.Context, stageRunID int64, status StageStatus, errorMessage string) error {
	now := time.Now().UTC()
	if _, err := s.execWithRetry(
		ctx,
		`UPDATE stage_runs SET status = ?, finished_at = ?, error_message = ? WHERE id = ?`,
		status,
		now.Format(time.RFC3339Nano),
		nullableString(errorMessage),
		stageRunID,
	); err != nil {
		return fmt.Errorf("finish stage run: %w", err)
	}
	return nil
}

// RecordSkip records a stage the runner bypassed because its outputs existed.
func (s *Store) RecordSkip(ctx context.Context, runID string, stageIndex int, stageName string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO stage_runs (run_id, stage_index, stage_name, status, started_at, finished_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID,
		stageIndex,
		stageName,
		StageStatusSkipped,
		now,
		now,
	); err != nil {
		return fmt.Errorf("record skip: %w", err)
	}
	return nil
}

// StageRuns returns the stage records for a run in execution order.
func (s *Store) StageRuns(ctx context.Context, runID string) ([]*StageRun, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+stageRunColumns+` FROM stage_runs WHERE run_id = ? ORDER BY stage_index, id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query stage runs: %w", err)
	}
	defer rows.Close()

	var stageRuns []*StageRun
	for rows.Next() {
		stageRun, err := scanStageRun(rows)
		if err != nil {
			return nil, err
		}
		stageRuns = append(stageRuns, stageRun)
	}
	return stageRuns, rows.Err()
}
