package preflight

import (
	"sluice/internal/config"
	"sluice/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// MinDownloadSpaceBytes covers the MUSAN archive plus unpacking headroom.
const MinDownloadSpaceBytes = 20 << 30

// RunAll executes the filesystem checks for the given config: the corpus root
// must be readable, every working directory writable, and the download
// filesystem must have room for a corpus fetch.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckDirectoryAccess("Corpus directory", cfg.Paths.CorpusDir, false),
		CheckDirectoryAccess("Download directory", cfg.Paths.DownloadDir, true),
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir, true),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir, true),
		CheckDiskSpace("Download free space", cfg.Paths.DownloadDir, MinDownloadSpaceBytes),
	}
}

// CheckSystemDeps evaluates every external binary the configured pipeline can
// invoke. Both the status command and stage health checks build on this so
// the requirements list lives in one place.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Requirements(cfg))
}
