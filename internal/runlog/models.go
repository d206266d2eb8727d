package runlog

import "time"

// RunStatus represents the lifecycle of a pipeline run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// StageStatus represents the outcome of one stage within a run.
type StageStatus string

const (
	StageStatusRunning   StageStatus = "running"
	StageStatusCompleted StageStatus = "completed"
	StageStatusSkipped   StageStatus = "skipped"
	StageStatusFailed    StageStatus = "failed"
)

// Run records one invocation of the pipeline over a stage range.
type Run struct {
	ID           string
	Status       RunStatus
	FirstStage   int
	LastStage    int
	StartedAt    time.Time
	FinishedAt   *time.Time
	ErrorMessage string
}

// StageRun records one stage's outcome inside a run, including stages the
// runner skipped because their artifacts already existed.
type StageRun struct {
	ID           int64
	RunID        string
	StageIndex   int
	StageName    string
	Status       StageStatus
	StartedAt    time.Time
	FinishedAt   *time.Time
	ErrorMessage string
}

// Duration reports how long the stage ran, or zero while it is still running.
func (sr *StageRun) Duration() time.Duration {
	if sr == nil || sr.FinishedAt == nil {
		return 0
	}
	return sr.FinishedAt.Sub(sr.StartedAt)
}

// Artifact records a file a stage produced, with its content digest so later
// runs can tell a finished artifact from a stale or truncated one.
type Artifact struct {
	ID         int64
	RunID      string
	StageIndex int
	Path       string
	SHA256     string
	SizeBytes  int64
	RecordedAt time.Time
}
