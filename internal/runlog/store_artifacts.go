package runlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RecordArtifact persists a produced file with its digest and size.
func (s *Store) RecordArtifact(ctx context.Context, runID string, stageIndex int, path, sha256 string, sizeBytes int64) error {
	now := time.Now().UTC()
	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO artifacts (run_id, stage_index, path, sha256, size_bytes, recorded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID,
		stageIndex,
		path,
		sha256,
		sizeBytes,
		now.Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("record artifact: %w", err)
	}
	return nil
}

// Artifacts returns the artifacts recorded for a run in insertion order.
func (s *Store) Artifacts(ctx context.Context, runID string) ([]*Artifact, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+artifactColumns+` FROM artifacts WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []*Artifact
	for rows.Next() {
		artifact, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, rows.Err()
}

// LatestArtifact returns the most recent record for a path across all runs,
// or nil when the path was never recorded.
func (s *Store) LatestArtifact(ctx context.Context, path string) (*Artifact, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+artifactColumns+` FROM artifacts WHERE path = ? ORDER BY id DESC LIMIT 1`,
		path,
	)
	artifact, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest artifact: %w", err)
	}
	return artifact, nil
}
