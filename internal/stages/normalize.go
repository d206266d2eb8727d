package stages

import (
	"context"

	"sluice/internal/corpus"
	"sluice/internal/fileutil"
	"sluice/internal/logging"
	"sluice/internal/pipeline"
	"sluice/internal/services"
	"sluice/internal/textnorm"
)

// Normalize rewrites every supervision text with the transcript rule set and
// drops supervisions whose text normalizes away entirely.
type Normalize struct {
	base
}

func NewNormalize(env Env) *Normalize {
	return &Normalize{base: newBase(env)}
}

func (s *Normalize) Execute(ctx context.Context) error {
	out := manifestPath(s.cfg, NormalizedSupervisions)
	if fileutil.NonEmptyFile(out) {
		skipExisting(s.logger, out)
		return nil
	}

	normalizer, err := s.newNormalizer()
	if err != nil {
		return services.Wrap(services.ErrConfiguration, StageNormalize, "load rules",
			"normalization rule set invalid", err)
	}

	in := manifestPath(s.cfg, CombinedSupervisions)
	supervisions, err := corpus.ReadManifest(in)
	if err != nil {
		if fileutil.IsNotExist(err) {
			return services.Wrap(services.ErrMissingInput, StageNormalize, "read manifest",
				"combined manifest missing; run the combine stage first", err)
		}
		return services.Wrap(services.ErrValidation, StageNormalize, "read manifest",
			"combined manifest unreadable", err)
	}

	kept := make([]corpus.Supervision, 0, len(supervisions))
	dropped := 0
	for _, sup := range supervisions {
		sup.Text = normalizer.Normalize(sup.Text)
		if sup.Text == "" {
			dropped++
			continue
		}
		kept = append(kept, sup)
	}
	if len(kept) == 0 {
		return services.Wrap(services.ErrValidation, StageNormalize, "normalize transcripts",
			"no supervisions survived normalization", nil)
	}
	if err := corpus.WriteManifest(out, kept); err != nil {
		return services.Wrap(services.ErrValidation, StageNormalize, "write manifest",
			"writing normalized manifest failed", err)
	}

	s.logger.Info("transcripts normalized",
		logging.Int("records", len(kept)),
		logging.Int("dropped", dropped),
		logging.String(logging.FieldArtifact, out))
	s.env.recordArtifact(ctx, s.logger, out)
	return nil
}

func (s *Normalize) newNormalizer() (*textnorm.Normalizer, error) {
	if path := s.cfg.Normalize.RulesPath; path != "" {
		rules, err := textnorm.LoadRules(path)
		if err != nil {
			return nil, err
		}
		return textnorm.New(rules), nil
	}
	return textnorm.NewDefault()
}

func (s *Normalize) HealthCheck(ctx context.Context) pipeline.Health {
	if _, err := s.newNormalizer(); err != nil {
		return pipeline.Unhealthy(StageNormalize, err.Error())
	}
	return pipeline.Healthy(StageNormalize)
}
