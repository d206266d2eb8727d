package stages

import (
	"context"
	"fmt"
	"path/filepath"

	"sluice/internal/deps"
	"sluice/internal/fileutil"
	"sluice/internal/logging"
	"sluice/internal/pipeline"
	"sluice/internal/services"
	"sluice/internal/services/graphc"
)

// HLG composes the decoding graph in every lang directory: the phone dir and
// one per BPE vocabulary size. The compiler script converts the ARPA model
// to a grammar FST internally, so the stage hands it the lang dir and the
// model and checks for HLG.fst.
type HLG struct {
	base
	graphs *graphc.Client
}

func NewHLG(env Env) (*HLG, error) {
	opts := []graphc.Option{}
	if env.Exec != nil {
		opts = append(opts, graphc.WithExecutor(env.Exec))
	}
	tools := env.Config.Tools
	client, err := graphc.New(tools.CompileLG, tools.CompileHLG, env.Config.Pipeline.ToolTimeout, opts...)
	if err != nil {
		return nil, err
	}
	return &HLG{base: newBase(env), graphs: client}, nil
}

func (s *HLG) langDirs() []string {
	dirs := []string{s.cfg.LangPhoneDir()}
	for _, size := range s.cfg.BPE.Sizes {
		dirs = append(dirs, s.cfg.LangBPEDir(size))
	}
	return dirs
}

func (s *HLG) Execute(ctx context.Context) error {
	arpa := arpaPath(s.cfg)
	if !fileutil.NonEmptyFile(arpa) {
		detail := fmt.Sprintf("%s missing; run the lm stage first", arpa)
		return services.Wrap(services.ErrMissingInput, StageHLG, "read language model", detail, nil)
	}

	for _, dir := range s.langDirs() {
		lexicon := graphc.LDisambigPath(dir)
		if !fileutil.NonEmptyFile(lexicon) {
			detail := fmt.Sprintf("%s missing; run the lang stages first", lexicon)
			return services.Wrap(services.ErrMissingInput, StageHLG, "verify lang dir", detail, nil)
		}

		target := graphc.HLGPath(dir)
		if fileutil.NonEmptyFile(target) {
			skipExisting(s.logger, target)
			continue
		}
		s.logger.Info("composing decoding graph", logging.String("lang_dir", dir))
		if err := s.graphs.CompileHLG(ctx, dir, arpa); err != nil {
			return services.Wrap(services.ErrExternalTool, StageHLG, "compile "+filepath.Base(dir),
				"decoding graph composition failed", err)
		}
		s.env.recordArtifact(ctx, s.logger, target)
	}
	return nil
}

func (s *HLG) HealthCheck(ctx context.Context) pipeline.Health {
	if _, err := deps.LookPathOne(s.cfg.Tools.CompileHLG); err != nil {
		return pipeline.Unhealthy(StageHLG, err.Error())
	}
	return pipeline.Healthy(StageHLG)
}
