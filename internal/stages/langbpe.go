package stages

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"sluice/internal/deps"
	"sluice/internal/fileutil"
	"sluice/internal/logging"
	"sluice/internal/pipeline"
	"sluice/internal/services"
	"sluice/internal/services/graphc"
	"sluice/internal/services/spm"
)

// LangBPE builds one lang directory per configured vocabulary size: the
// training text, a BPE model trained at that size, the word table shared
// with the phone lang dir, and the compiled lexicon FSTs. Sizes build in
// parallel; each writes only under its own directory, so concurrent builds
// never touch the same file. The first failure cancels the remaining sizes.
type LangBPE struct {
	base
	spm    *spm.Client
	graphs *graphc.Client
}

func NewLangBPE(env Env) (*LangBPE, error) {
	spmOpts := []spm.Option{}
	graphOpts := []graphc.Option{}
	if env.Exec != nil {
		spmOpts = append(spmOpts, spm.WithExecutor(env.Exec))
		graphOpts = append(graphOpts, graphc.WithExecutor(env.Exec))
	}
	tools := env.Config.Tools
	timeout := env.Config.Pipeline.ToolTimeout
	spmClient, err := spm.New(tools.SpmTrain, timeout, spmOpts...)
	if err != nil {
		return nil, err
	}
	graphClient, err := graphc.New(tools.CompileLG, tools.CompileHLG, timeout, graphOpts...)
	if err != nil {
		return nil, err
	}
	return &LangBPE{base: newBase(env), spm: spmClient, graphs: graphClient}, nil
}

func (s *LangBPE) Execute(ctx context.Context) error {
	if len(s.cfg.BPE.Sizes) == 0 {
		return services.Wrap(services.ErrConfiguration, StageLangBPE, "read config",
			"no BPE vocabulary sizes configured", nil)
	}
	transcripts := transcriptsPath(s.cfg)
	if !fileutil.NonEmptyFile(transcripts) {
		detail := fmt.Sprintf("%s missing; run the split stage first", transcripts)
		return services.Wrap(services.ErrMissingInput, StageLangBPE, "read transcripts", detail, nil)
	}
	wordsSource := filepath.Join(s.cfg.LangPhoneDir(), WordsFile)
	if !fileutil.NonEmptyFile(wordsSource) {
		detail := fmt.Sprintf("%s missing; run the lang_phone stage first", wordsSource)
		return services.Wrap(services.ErrMissingInput, StageLangBPE, "read word table", detail, nil)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	if jobs := s.cfg.Pipeline.Jobs; jobs > 0 {
		group.SetLimit(jobs)
	}
	for _, size := range s.cfg.BPE.Sizes {
		size := size // per-iteration copy; go directive predates 1.22 loop semantics
		group.Go(func() error {
			return s.buildOne(groupCtx, size, transcripts, wordsSource)
		})
	}
	return group.Wait()
}

func (s *LangBPE) buildOne(ctx context.Context, size int, transcripts, wordsSource string) error {
	dir := s.cfg.LangBPEDir(size)
	logger := s.logger.With(logging.Int(logging.FieldVocabSize, size))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create lang directory: %w", err)
	}

	textPath := filepath.Join(dir, BPETextFile)
	if fileutil.NonEmptyFile(textPath) {
		skipExisting(logger, textPath)
	} else if err := fileutil.CopyFile(transcripts, textPath); err != nil {
		return fmt.Errorf("copy training text: %w", err)
	}

	request := spm.TrainRequest{
		InputPath:         textPath,
		ModelPrefix:       filepath.Join(dir, BPEModelPrefix),
		VocabSize:         size,
		CharacterCoverage: s.cfg.BPE.CharacterCoverage,
		InputSentenceSize: s.cfg.BPE.InputSentenceSize,
		UserSymbols:       []string{"<blk>", "<sos/eos>"},
	}
	if fileutil.NonEmptyFile(request.ModelPath()) {
		skipExisting(logger, request.ModelPath())
	} else {
		logger.Info("training BPE model")
		if err := s.spm.Train(ctx, request); err != nil {
			return services.Wrap(services.ErrExternalTool, StageLangBPE,
				fmt.Sprintf("train vocab %d", size), "BPE training failed", err)
		}
		s.env.recordArtifact(ctx, logger, request.ModelPath())
	}

	wordsPath := filepath.Join(dir, WordsFile)
	if fileutil.NonEmptyFile(wordsPath) {
		skipExisting(logger, wordsPath)
	} else if err := fileutil.CopyFileVerified(wordsSource, wordsPath); err != nil {
		return fmt.Errorf("copy word table: %w", err)
	}

	target := graphc.LDisambigPath(dir)
	if fileutil.NonEmptyFile(target) {
		skipExisting(logger, target)
		return nil
	}
	logger.Info("compiling lexicon graph", logging.String("lang_dir", dir))
	if err := s.graphs.CompileL(ctx, dir); err != nil {
		return services.Wrap(services.ErrExternalTool, StageLangBPE,
			fmt.Sprintf("compile vocab %d", size), "lexicon FST compilation failed", err)
	}
	s.env.recordArtifact(ctx, logger, target)
	return nil
}

func (s *LangBPE) HealthCheck(ctx context.Context) pipeline.Health {
	if len(s.cfg.BPE.Sizes) == 0 {
		return pipeline.Unhealthy(StageLangBPE, "no BPE vocabulary sizes configured")
	}
	for _, command := range []string{s.cfg.Tools.SpmTrain, s.cfg.Tools.CompileLG} {
		if _, err := deps.LookPathOne(command); err != nil {
			return pipeline.Unhealthy(StageLangBPE, err.Error())
		}
	}
	return pipeline.Healthy(StageLangBPE)
}
