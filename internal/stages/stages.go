package stages

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"sluice/internal/config"
	"sluice/internal/fileutil"
	"sluice/internal/logging"
	"sluice/internal/pipeline"
	"sluice/internal/runlog"
	"sluice/internal/services"
	"sluice/internal/tool"
)

// Stage names, in pipeline order.
const (
	StageDownload  = "download"
	StageManifests = "manifests"
	StageCombine   = "combine"
	StageNormalize = "normalize"
	StageSplit     = "split"
	StageLangPhone = "lang_phone"
	StageLangBPE   = "lang_bpe"
	StageLM        = "lm"
	StageHLG       = "hlg"
)

// Env carries the dependencies stage handlers share. Store and Exec are
// optional: without a store no artifact history is recorded, and without an
// executor each tool client falls back to the real command executor.
type Env struct {
	Config *config.Config
	Logger *slog.Logger
	Store  *runlog.Store
	Exec   tool.Executor
}

// Build constructs the full ordered stage list over the shared environment.
func Build(env Env) ([]pipeline.Stage, error) {
	if env.Config == nil {
		return nil, errors.New("config required")
	}
	if env.Logger == nil {
		env.Logger = logging.NewNop()
	}

	download, err := NewDownload(env)
	if err != nil {
		return nil, err
	}
	manifests, err := NewManifests(env)
	if err != nil {
		return nil, err
	}
	langPhone, err := NewLangPhone(env)
	if err != nil {
		return nil, err
	}
	langBPE, err := NewLangBPE(env)
	if err != nil {
		return nil, err
	}
	lm, err := NewLM(env)
	if err != nil {
		return nil, err
	}
	hlg, err := NewHLG(env)
	if err != nil {
		return nil, err
	}

	return []pipeline.Stage{
		{Index: 0, Name: StageDownload, Handler: download},
		{Index: 1, Name: StageManifests, Handler: manifests},
		{Index: 2, Name: StageCombine, Handler: NewCombine(env)},
		{Index: 3, Name: StageNormalize, Handler: NewNormalize(env)},
		{Index: 4, Name: StageSplit, Handler: NewSplit(env)},
		{Index: 5, Name: StageLangPhone, Handler: langPhone},
		{Index: 6, Name: StageLangBPE, Handler: langBPE},
		{Index: 7, Name: StageLM, Handler: lm},
		{Index: 8, Name: StageHLG, Handler: hlg},
	}, nil
}

// recordArtifact files the artifact's hash and size into the run history.
// History is an observability layer: failures here are logged, never fatal,
// and stage completion remains decided by the file on disk.
func (e Env) recordArtifact(ctx context.Context, logger *slog.Logger, path string) {
	if e.Store == nil {
		return
	}
	runID, ok := services.RunIDFromContext(ctx)
	if !ok {
		return
	}
	stageIndex, _ := services.StageIndexFromContext(ctx)

	sum, err := fileutil.SHA256File(path)
	if err != nil {
		logger.Warn("artifact hash failed", logging.String(logging.FieldArtifact, path), logging.Error(err))
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		logger.Warn("artifact stat failed", logging.String(logging.FieldArtifact, path), logging.Error(err))
		return
	}
	if err := e.Store.RecordArtifact(ctx, runID, stageIndex, path, sum, info.Size()); err != nil {
		logger.Warn("artifact record failed", logging.String(logging.FieldArtifact, path), logging.Error(err))
		return
	}
	logger.Debug("artifact recorded",
		logging.String(logging.FieldArtifact, path),
		logging.Int64("size_bytes", info.Size()),
	)
}

// skipExisting logs an idempotence skip for an artifact that already exists.
func skipExisting(logger *slog.Logger, path string) {
	logger.Debug("output already present, skipping",
		logging.String(logging.FieldEventType, "substep_skipped"),
		logging.String(logging.FieldArtifact, path),
	)
}

// base carries the environment every handler shares. The runner injects a
// stage-scoped logger before each execution through SetLogger.
type base struct {
	env    Env
	cfg    *config.Config
	logger *slog.Logger
}

func newBase(env Env) base {
	return base{env: env, cfg: env.Config, logger: env.Logger}
}

// SetLogger satisfies pipeline.LoggerAware.
func (b *base) SetLogger(logger *slog.Logger) {
	if logger != nil {
		b.logger = logger
	}
}
