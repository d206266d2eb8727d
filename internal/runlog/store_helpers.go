package runlog

import (
	"database/sql"
	"errors"
	"time"
)

const runColumns = "id, status, first_stage, last_stage, started_at, finished_at, error_message"

const stageRunColumns = "id, run_id, stage_index, stage_name, status, started_at, finished_at, error_message"

const artifactColumns = "id, run_id, stage_index, path, sha256, size_bytes, recorded_at"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id           string
		statusStr    string
		firstStage   int
		lastStage    int
		startedRaw   sql.NullString
		finishedRaw  sql.NullString
		errorMessage sql.NullString
	)
	if err := scanner.Scan(&id, &statusStr, &firstStage, &lastStage, &startedRaw, &finishedRaw, &errorMessage); err != nil {
		return nil, err
	}

	run := &Run{
		ID:           id,
		Status:       RunStatus(statusStr),
		FirstStage:   firstStage,
		LastStage:    lastStage,
		ErrorMessage: errorMessage.String,
	}
	if started, err := parseTimeString(startedRaw.String); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return run, nil
}

func scanStageRun(scanner interface{ Scan(dest ...any) error }) (*StageRun, error) {
	var (
		id           int64
		runID        string
		stageIndex   int
		stageName    string
		statusStr    string
		startedRaw   sql.NullString
		finishedRaw  sql.NullString
		errorMessage sql.NullString
	)
	if err := scanner.Scan(&id, &runID, &stageIndex, &stageName, &statusStr, &startedRaw, &finishedRaw, &errorMessage); err != nil {
		return nil, err
	}

	stageRun := &StageRun{
		ID:           id,
		RunID:        runID,
		StageIndex:   stageIndex,
		StageName:    stageName,
		Status:       StageStatus(statusStr),
		ErrorMessage: errorMessage.String,
	}
	if started, err := parseTimeString(startedRaw.String); err == nil {
		stageRun.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			stageRun.FinishedAt = &finished
		}
	}
	return stageRun, nil
}

func scanArtifact(scanner interface{ Scan(dest ...any) error }) (*Artifact, error) {
	var (
		id          int64
		runID       string
		stageIndex  int
		path        string
		sha256      string
		sizeBytes   int64
		recordedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &runID, &stageIndex, &path, &sha256, &sizeBytes, &recordedRaw); err != nil {
		return nil, err
	}

	artifact := &Artifact{
		ID:         id,
		RunID:      runID,
		StageIndex: stageIndex,
		Path:       path,
		SHA256:     sha256,
		SizeBytes:  sizeBytes,
	}
	if recorded, err := parseTimeString(recordedRaw.String); err == nil {
		artifact.RecordedAt = recorded
	}
	return artifact, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
