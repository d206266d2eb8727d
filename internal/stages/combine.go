package stages

import (
	"context"

	"sluice/internal/corpus"
	"sluice/internal/fileutil"
	"sluice/internal/logging"
	"sluice/internal/pipeline"
	"sluice/internal/services"
)

// Combine merges the per-corpus speech supervisions into one training
// manifest. MUSAN contributes noise recordings, not supervisions, so it
// stays out of the merge.
type Combine struct {
	base
}

func NewCombine(env Env) *Combine {
	return &Combine{base: newBase(env)}
}

func (s *Combine) Execute(ctx context.Context) error {
	out := manifestPath(s.cfg, CombinedSupervisions)
	if fileutil.NonEmptyFile(out) {
		skipExisting(s.logger, out)
		return nil
	}

	count, err := corpus.Combine(out,
		manifestPath(s.cfg, FisherSupervisions),
		manifestPath(s.cfg, SwitchboardSupervisions),
	)
	if err != nil {
		if fileutil.IsNotExist(err) {
			return services.Wrap(services.ErrMissingInput, StageCombine, "read manifests",
				"per-corpus manifests missing; run the manifests stage first", err)
		}
		return services.Wrap(services.ErrValidation, StageCombine, "combine manifests",
			"merging supervisions failed", err)
	}

	s.logger.Info("supervisions combined",
		logging.Int("records", count),
		logging.String(logging.FieldArtifact, out))
	s.env.recordArtifact(ctx, s.logger, out)
	return nil
}

func (s *Combine) HealthCheck(ctx context.Context) pipeline.Health {
	return pipeline.Healthy(StageCombine)
}
