package stages

import (
	"context"
	"fmt"
	"os"

	"sluice/internal/corpus"
	"sluice/internal/fileutil"
	"sluice/internal/logging"
	"sluice/internal/pipeline"
	"sluice/internal/services"
)

// Split partitions the normalized supervisions into train and dev manifests
// at session granularity and writes the train-side transcript text that the
// lang and lm stages consume. Dev text never reaches that file, so the
// language model stays blind to the held-out sessions.
type Split struct {
	base
}

func NewSplit(env Env) *Split {
	return &Split{base: newBase(env)}
}

func (s *Split) Execute(ctx context.Context) error {
	trainPath := manifestPath(s.cfg, TrainSupervisions)
	devPath := manifestPath(s.cfg, DevSupervisions)
	textPath := transcriptsPath(s.cfg)

	// The three outputs come from one shuffle; regenerate them together.
	if fileutil.NonEmptyFile(trainPath) && fileutil.NonEmptyFile(devPath) && fileutil.NonEmptyFile(textPath) {
		skipExisting(s.logger, trainPath)
		skipExisting(s.logger, devPath)
		skipExisting(s.logger, textPath)
		return nil
	}

	in := manifestPath(s.cfg, NormalizedSupervisions)
	supervisions, err := corpus.ReadManifest(in)
	if err != nil {
		if fileutil.IsNotExist(err) {
			return services.Wrap(services.ErrMissingInput, StageSplit, "read manifest",
				"normalized manifest missing; run the normalize stage first", err)
		}
		return services.Wrap(services.ErrValidation, StageSplit, "read manifest",
			"normalized manifest unreadable", err)
	}

	result, err := corpus.SplitBySession(supervisions, s.cfg.Split.DevSessions, s.cfg.Split.Seed)
	if err != nil {
		return services.Wrap(services.ErrValidation, StageSplit, "split sessions",
			"session partition failed", err)
	}

	if err := corpus.WriteManifest(trainPath, result.Train); err != nil {
		return fmt.Errorf("write train manifest: %w", err)
	}
	if err := corpus.WriteManifest(devPath, result.Dev); err != nil {
		return fmt.Errorf("write dev manifest: %w", err)
	}
	if err := os.MkdirAll(s.cfg.LMDir(), 0o755); err != nil {
		return fmt.Errorf("create lm directory: %w", err)
	}
	lines, err := corpus.WriteText(textPath, result.Train)
	if err != nil {
		return fmt.Errorf("write training transcripts: %w", err)
	}

	s.logger.Info("sessions partitioned",
		logging.Int("train_sessions", len(result.TrainSessions)),
		logging.Int("dev_sessions", len(result.DevSessions)),
		logging.Int("train_records", len(result.Train)),
		logging.Int("dev_records", len(result.Dev)),
		logging.Int("transcript_lines", lines))
	s.env.recordArtifact(ctx, s.logger, trainPath)
	s.env.recordArtifact(ctx, s.logger, devPath)
	s.env.recordArtifact(ctx, s.logger, textPath)
	return nil
}

func (s *Split) HealthCheck(ctx context.Context) pipeline.Health {
	if s.cfg.Split.DevSessions < 1 {
		return pipeline.Unhealthy(StageSplit, fmt.Sprintf("dev_sessions must be at least 1 (got %d)", s.cfg.Split.DevSessions))
	}
	return pipeline.Healthy(StageSplit)
}
