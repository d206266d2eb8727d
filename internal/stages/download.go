package stages

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sluice/internal/deps"
	"sluice/internal/fileutil"
	"sluice/internal/logging"
	"sluice/internal/pipeline"
	"sluice/internal/preflight"
	"sluice/internal/services"
	"sluice/internal/services/lhotse"
)

const musanStamp = "download_musan"

// checkDiskSpace is swapped in tests so they never depend on the host's
// free disk.
var checkDiskSpace = preflight.CheckDiskSpace

// Download verifies the licensed corpora are present and fetches the freely
// downloadable MUSAN corpus. Fisher and Switchboard cannot be downloaded; the
// operator must place them under the corpus directory first.
type Download struct {
	base
	lhotse *lhotse.Client
}

func NewDownload(env Env) (*Download, error) {
	opts := []lhotse.Option{}
	if env.Exec != nil {
		opts = append(opts, lhotse.WithExecutor(env.Exec))
	}
	client, err := lhotse.New(env.Config.Tools.Lhotse, env.Config.Pipeline.ToolTimeout, opts...)
	if err != nil {
		return nil, err
	}
	return &Download{base: newBase(env), lhotse: client}, nil
}

func (s *Download) Execute(ctx context.Context) error {
	if missing := missingCorpusDirs(s.cfg.Paths.CorpusDir); len(missing) > 0 {
		detail := fmt.Sprintf("licensed corpora missing under %s: %s (obtain from the LDC and link them in)",
			s.cfg.Paths.CorpusDir, strings.Join(missing, ", "))
		return services.Wrap(services.ErrMissingInput, StageDownload, "verify corpora", detail, nil)
	}

	downloadDir := s.cfg.Paths.DownloadDir
	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}
	musanDir := filepath.Join(downloadDir, MusanDirName)
	if fileutil.HasStamp(downloadDir, musanStamp) {
		skipExisting(s.logger, musanDir)
		return nil
	}
	if fileutil.Exists(musanDir) {
		// Placed by hand or by an older layout without completion stamps.
		s.logger.Info("corpus directory present without completion stamp, reusing",
			logging.String(logging.FieldArtifact, musanDir))
		return fileutil.WriteStamp(downloadDir, musanStamp)
	}

	if result := checkDiskSpace("download", downloadDir, preflight.MinDownloadSpaceBytes); !result.Passed {
		return services.Wrap(services.ErrValidation, StageDownload, "check disk space", result.Detail, nil)
	}

	s.logger.Info("fetching corpus",
		logging.String("corpus", "musan"),
		logging.String("target", downloadDir))
	if err := s.lhotse.Download(ctx, "musan", downloadDir); err != nil {
		return services.Wrap(services.ErrExternalTool, StageDownload, "download musan", "corpus download failed", err)
	}
	if !fileutil.Exists(musanDir) {
		detail := fmt.Sprintf("download finished but %s does not exist", musanDir)
		return services.Wrap(services.ErrExternalTool, StageDownload, "download musan", detail, nil)
	}
	if err := fileutil.WriteStamp(downloadDir, musanStamp); err != nil {
		return fmt.Errorf("write completion stamp: %w", err)
	}
	s.logger.Info("corpus downloaded", logging.String(logging.FieldArtifact, musanDir))
	return nil
}

func (s *Download) HealthCheck(ctx context.Context) pipeline.Health {
	if _, err := deps.LookPathOne(s.cfg.Tools.Lhotse); err != nil {
		return pipeline.Unhealthy(StageDownload, err.Error())
	}
	if result := preflight.CheckDirectoryAccess("corpus", s.cfg.Paths.CorpusDir, false); !result.Passed {
		return pipeline.Unhealthy(StageDownload, result.Detail)
	}
	if result := preflight.CheckDirectoryAccess("download", s.cfg.Paths.DownloadDir, true); !result.Passed {
		return pipeline.Unhealthy(StageDownload, result.Detail)
	}
	return pipeline.Healthy(StageDownload)
}

// missingCorpusDirs returns the licensed corpus directories absent from root,
// in catalog order.
func missingCorpusDirs(root string) []string {
	var missing []string
	for _, name := range []string{
		FisherAudioPart1,
		FisherTranscriptPart1,
		FisherAudioPart2,
		FisherTranscriptPart2,
		SwitchboardAudio,
	} {
		if !fileutil.Exists(filepath.Join(root, name)) {
			missing = append(missing, name)
		}
	}
	return missing
}
