package stages

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"sluice/internal/deps"
	"sluice/internal/fileutil"
	"sluice/internal/logging"
	"sluice/internal/pipeline"
	"sluice/internal/services"
	"sluice/internal/services/lhotse"
)

// Manifests runs the corpus-preparation tool once per corpus, turning raw
// audio and transcripts into supervision manifests. Each corpus carries its
// own completion stamp so a rerun only redoes the corpora that never
// finished.
type Manifests struct {
	base
	lhotse *lhotse.Client
}

// corpusPrep describes one prepare invocation: the tool-facing corpus name,
// its source arguments, the manifest that proves it ran, and the stamp that
// marks it done.
type corpusPrep struct {
	corpus     string
	sourceArgs []string
	artifact   string
	stamp      string
}

func NewManifests(env Env) (*Manifests, error) {
	opts := []lhotse.Option{}
	if env.Exec != nil {
		opts = append(opts, lhotse.WithExecutor(env.Exec))
	}
	client, err := lhotse.New(env.Config.Tools.Lhotse, env.Config.Pipeline.ToolTimeout, opts...)
	if err != nil {
		return nil, err
	}
	return &Manifests{base: newBase(env), lhotse: client}, nil
}

func (s *Manifests) preps() []corpusPrep {
	corpusDir := s.cfg.Paths.CorpusDir
	return []corpusPrep{
		{
			corpus: "fisher-english",
			sourceArgs: []string{
				"--audio-dirs", filepath.Join(corpusDir, FisherAudioPart1),
				"--audio-dirs", filepath.Join(corpusDir, FisherAudioPart2),
				"--transcript-dirs", filepath.Join(corpusDir, FisherTranscriptPart1),
				"--transcript-dirs", filepath.Join(corpusDir, FisherTranscriptPart2),
			},
			artifact: FisherSupervisions,
			stamp:    "prepare_fisher",
		},
		{
			corpus:     "switchboard",
			sourceArgs: []string{filepath.Join(corpusDir, SwitchboardAudio)},
			artifact:   SwitchboardSupervisions,
			stamp:      "prepare_swbd",
		},
		{
			corpus:     "musan",
			sourceArgs: []string{filepath.Join(s.cfg.Paths.DownloadDir, MusanDirName)},
			artifact:   MusanRecordings,
			stamp:      "prepare_musan",
		},
	}
}

func (s *Manifests) Execute(ctx context.Context) error {
	manifestDir := s.cfg.ManifestDir()
	if err := os.MkdirAll(manifestDir, 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}

	for _, prep := range s.preps() {
		if fileutil.HasStamp(manifestDir, prep.stamp) {
			skipExisting(s.logger, fileutil.StampPath(manifestDir, prep.stamp))
			continue
		}
		logger := s.logger.With(logging.String("corpus", prep.corpus))
		logger.Info("preparing manifests")
		if err := s.lhotse.Prepare(ctx, prep.corpus, prep.sourceArgs, manifestDir); err != nil {
			return services.Wrap(services.ErrExternalTool, StageManifests, "prepare "+prep.corpus, "manifest preparation failed", err)
		}
		artifact := filepath.Join(manifestDir, prep.artifact)
		if !fileutil.NonEmptyFile(artifact) {
			detail := fmt.Sprintf("tool finished but %s is missing or empty", artifact)
			return services.Wrap(services.ErrExternalTool, StageManifests, "prepare "+prep.corpus, detail, nil)
		}
		if err := fileutil.WriteStamp(manifestDir, prep.stamp); err != nil {
			return fmt.Errorf("write completion stamp: %w", err)
		}
		logger.Info("manifests prepared", logging.String(logging.FieldArtifact, artifact))
		s.env.recordArtifact(ctx, logger, artifact)
	}
	return nil
}

func (s *Manifests) HealthCheck(ctx context.Context) pipeline.Health {
	if _, err := deps.LookPathOne(s.cfg.Tools.Lhotse); err != nil {
		return pipeline.Unhealthy(StageManifests, err.Error())
	}
	return pipeline.Healthy(StageManifests)
}
