package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"sluice/internal/logging"
	"sluice/internal/runlog"
	"sluice/internal/services"
)

// Summary reports what one run did.
type Summary struct {
	RunID    string
	Executed []string
	Skipped  []string
	Duration time.Duration
}

// Runner executes an ordered stage list within an inclusive index range,
// fail-fast on the first stage error. A file lock under the data directory
// enforces a single writer over the working tree.
type Runner struct {
	logger   *slog.Logger
	store    *runlog.Store
	stages   []Stage
	lock     *flock.Flock
	lockPath string
}

// Option configures the runner.
type Option func(*Runner)

// WithRunLog records run and stage history to the given store. Without it the
// runner only logs.
func WithRunLog(store *runlog.Store) Option {
	return func(r *Runner) {
		if store != nil {
			r.store = store
		}
	}
}

// New validates the stage list and constructs a runner. dataDir is the
// working root the run writes beneath; it must already exist.
func New(logger *slog.Logger, dataDir string, stages []Stage, opts ...Option) (*Runner, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	dataDir = strings.TrimSpace(dataDir)
	if dataDir == "" {
		return nil, errors.New("data directory required")
	}
	if len(stages) == 0 {
		return nil, errors.New("at least one stage required")
	}
	for i, st := range stages {
		if strings.TrimSpace(st.Name) == "" {
			return nil, fmt.Errorf("stage %d has no name", st.Index)
		}
		if st.Handler == nil {
			return nil, fmt.Errorf("stage %s has no handler", st.Name)
		}
		if i > 0 && stages[i-1].Index >= st.Index {
			return nil, fmt.Errorf("stage indices must increase: %s (%d) after %s (%d)",
				st.Name, st.Index, stages[i-1].Name, stages[i-1].Index)
		}
	}

	lockPath := filepath.Join(dataDir, "sluice.lock")
	runner := &Runner{
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		stages:   append([]Stage(nil), stages...),
		lock:     flock.New(lockPath),
		lockPath: lockPath,
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner, nil
}

// Stages returns the configured stage list in index order.
func (r *Runner) Stages() []Stage {
	return append([]Stage(nil), r.stages...)
}

// Bounds returns the full index range covering every configured stage.
func (r *Runner) Bounds() Range {
	return Range{Lo: r.stages[0].Index, Hi: r.stages[len(r.stages)-1].Index}
}

// Health reports readiness for every stage inside the range, in index order.
func (r *Runner) Health(ctx context.Context, rng Range) []Health {
	checks := make([]Health, 0, len(r.stages))
	for _, st := range r.stages {
		if !rng.Contains(st.Index) {
			continue
		}
		health := st.Handler.HealthCheck(ctx)
		if health.Name == "" {
			health.Name = st.Name
		}
		checks = append(checks, health)
	}
	return checks
}

// Run executes every stage whose index falls inside rng, in index order.
// Stages outside the range are skipped with a debug log line. The first
// stage error aborts the run.
func (r *Runner) Run(ctx context.Context, rng Range) (*Summary, error) {
	locked, err := r.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire pipeline lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another run is already writing to %s", filepath.Dir(r.lockPath))
	}
	defer func() {
		if unlockErr := r.lock.Unlock(); unlockErr != nil {
			r.logger.Warn("failed to release pipeline lock", logging.Error(unlockErr))
		}
	}()

	start := time.Now()
	summary := &Summary{}

	var run *runlog.Run
	if r.store != nil {
		run, err = r.store.BeginRun(ctx, rng.Lo, rng.Hi)
		if err != nil {
			return nil, fmt.Errorf("record run start: %w", err)
		}
		summary.RunID = run.ID
	} else {
		summary.RunID = uuid.NewString()
	}
	ctx = services.WithRunID(ctx, summary.RunID)

	logger := logging.WithContext(ctx, r.logger)
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("stage_range", rng.String()),
	)

	for _, st := range r.stages {
		if err := ctx.Err(); err != nil {
			r.finishRun(ctx, run, runlog.RunStatusFailed, err)
			summary.Duration = time.Since(start)
			return summary, err
		}
		if !rng.Contains(st.Index) {
			logger.Debug("stage skipped",
				logging.String(logging.FieldEventType, "stage_skipped"),
				logging.String(logging.FieldStage, st.Name),
				logging.Int(logging.FieldStageIndex, st.Index),
			)
			summary.Skipped = append(summary.Skipped, st.Name)
			if run != nil {
				if err := r.store.RecordSkip(ctx, run.ID, st.Index, st.Name); err != nil {
					return summary, fmt.Errorf("record stage skip: %w", err)
				}
			}
			continue
		}
		if err := r.runStage(ctx, run, st); err != nil {
			r.finishRun(ctx, run, runlog.RunStatusFailed, err)
			summary.Duration = time.Since(start)
			return summary, err
		}
		summary.Executed = append(summary.Executed, st.Name)
	}

	summary.Duration = time.Since(start)
	r.finishRun(ctx, run, runlog.RunStatusCompleted, nil)
	logger.Info("run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("stages_executed", len(summary.Executed)),
		logging.Int("stages_skipped", len(summary.Skipped)),
		logging.Duration("elapsed", summary.Duration),
	)
	return summary, nil
}

func (r *Runner) runStage(ctx context.Context, run *runlog.Run, st Stage) error {
	stageCtx := services.WithStage(ctx, st.Name)
	stageCtx = services.WithStageIndex(stageCtx, st.Index)
	stageLogger := logging.WithContext(stageCtx, r.logger)

	if aware, ok := st.Handler.(LoggerAware); ok {
		aware.SetLogger(stageLogger)
	}

	var stageRunID int64
	if run != nil {
		id, err := r.store.StartStage(stageCtx, run.ID, st.Index, st.Name)
		if err != nil {
			return fmt.Errorf("record stage start: %w", err)
		}
		stageRunID = id
	}

	stageLogger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

	start := time.Now()
	if err := st.Handler.Execute(stageCtx); err != nil {
		stageLogger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.Duration("elapsed", time.Since(start)),
			logging.Error(err),
		)
		if run != nil {
			if recErr := r.store.FinishStage(stageCtx, stageRunID, runlog.StageStatusFailed, failureMessage(err)); recErr != nil {
				stageLogger.Error("failed to record stage failure", logging.Error(recErr))
			}
		}
		return err
	}

	if run != nil {
		if err := r.store.FinishStage(stageCtx, stageRunID, runlog.StageStatusCompleted, ""); err != nil {
			return fmt.Errorf("record stage completion: %w", err)
		}
	}
	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// finishRun closes out the run record. It runs even when ctx was cancelled so
// an interrupted run is not left dangling in the history.
func (r *Runner) finishRun(ctx context.Context, run *runlog.Run, status runlog.RunStatus, runErr error) {
	if r.store == nil || run == nil {
		return
	}
	if err := r.store.FinishRun(context.WithoutCancel(ctx), run.ID, status, failureMessage(runErr)); err != nil {
		r.logger.Error("failed to record run completion", logging.Error(err))
	}
}

func failureMessage(err error) string {
	if err == nil {
		return ""
	}
	message := strings.TrimSpace(services.DetailsOf(err).Message)
	if message == "" {
		message = err.Error()
	}
	return message
}
