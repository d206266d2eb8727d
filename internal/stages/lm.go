package stages

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"sluice/internal/deps"
	"sluice/internal/fileutil"
	"sluice/internal/lang"
	"sluice/internal/logging"
	"sluice/internal/pipeline"
	"sluice/internal/services"
	"sluice/internal/services/ngramlm"
)

// LM estimates the n-gram language model over the training transcripts. The
// estimator runs with a closed vocabulary taken from the phone lang dir's
// word table, so the model and the decoding graphs agree on the word set.
type LM struct {
	base
	estimator *ngramlm.Client
}

func NewLM(env Env) (*LM, error) {
	opts := []ngramlm.Option{}
	if env.Exec != nil {
		opts = append(opts, ngramlm.WithExecutor(env.Exec))
	}
	client, err := ngramlm.New(env.Config.Tools.Estimator, env.Config.Pipeline.ToolTimeout, opts...)
	if err != nil {
		return nil, err
	}
	return &LM{base: newBase(env), estimator: client}, nil
}

func (s *LM) Execute(ctx context.Context) error {
	if err := os.MkdirAll(s.cfg.LMDir(), 0o755); err != nil {
		return fmt.Errorf("create lm directory: %w", err)
	}

	transcripts := transcriptsPath(s.cfg)
	if !fileutil.NonEmptyFile(transcripts) {
		detail := fmt.Sprintf("%s missing; run the split stage first", transcripts)
		return services.Wrap(services.ErrMissingInput, StageLM, "read transcripts", detail, nil)
	}

	vocabPath, err := s.writeVocabulary(ctx)
	if err != nil {
		return err
	}

	arpa := arpaPath(s.cfg)
	if fileutil.NonEmptyFile(arpa) {
		skipExisting(s.logger, arpa)
		return nil
	}
	s.logger.Info("estimating language model", logging.Int("order", s.cfg.LM.Order))
	request := ngramlm.EstimateRequest{
		TextPath:   transcripts,
		Order:      s.cfg.LM.Order,
		OutputPath: arpa,
		VocabPath:  vocabPath,
	}
	if err := s.estimator.Estimate(ctx, request); err != nil {
		return services.Wrap(services.ErrExternalTool, StageLM, "estimate model",
			"language model estimation failed", err)
	}
	s.logger.Info("language model estimated", logging.String(logging.FieldArtifact, arpa))
	s.env.recordArtifact(ctx, s.logger, arpa)
	return nil
}

// writeVocabulary derives the closed LM vocabulary from the phone lang dir's
// word table, one word per line without the FST-only symbols.
func (s *LM) writeVocabulary(ctx context.Context) (string, error) {
	path := lmVocabPath(s.cfg)
	if fileutil.NonEmptyFile(path) {
		skipExisting(s.logger, path)
		return path, nil
	}

	wordsPath := filepath.Join(s.cfg.LangPhoneDir(), WordsFile)
	table, err := lang.ReadSymbolTable(wordsPath)
	if err != nil {
		if fileutil.IsNotExist(err) {
			detail := fmt.Sprintf("%s missing; run the lang_phone stage first", wordsPath)
			return "", services.Wrap(services.ErrMissingInput, StageLM, "read word table", detail, err)
		}
		return "", services.Wrap(services.ErrValidation, StageLM, "read word table",
			"word table unreadable", err)
	}

	words := table.Words()
	err = fileutil.AtomicWriteTo(path, 0o644, func(w io.Writer) error {
		for _, word := range words {
			if _, err := fmt.Fprintln(w, word); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("write vocabulary: %w", err)
	}
	s.logger.Info("vocabulary written",
		logging.Int("words", len(words)),
		logging.String(logging.FieldArtifact, path))
	s.env.recordArtifact(ctx, s.logger, path)
	return path, nil
}

func (s *LM) HealthCheck(ctx context.Context) pipeline.Health {
	if _, err := deps.LookPathOne(s.cfg.Tools.Estimator); err != nil {
		return pipeline.Unhealthy(StageLM, err.Error())
	}
	return pipeline.Healthy(StageLM)
}
