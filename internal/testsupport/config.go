package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"sluice/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The directories exist on return so preflight checks and file locks work
// without further setup.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CorpusDir = filepath.Join(base, "corpora")
	cfgVal.Paths.DownloadDir = filepath.Join(base, "download")
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	for _, dir := range []string{cfgVal.Paths.CorpusDir, cfgVal.Paths.DownloadDir, cfgVal.Paths.DataDir, cfgVal.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithDevSessions overrides the dev session count on the test config.
func WithDevSessions(count int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Split.DevSessions = count
	}
}

// WithSeed overrides the split shuffle seed on the test config.
func WithSeed(seed int64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Split.Seed = seed
	}
}

// WithBPESizes overrides the vocabulary size list on the test config.
func WithBPESizes(sizes ...int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.BPE.Sizes = sizes
	}
}

// WithCorpusDir points the config at an existing corpus root.
func WithCorpusDir(dir string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.CorpusDir = dir
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default external binaries
// are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"lhotse", "spm_train", "g2p", "ngram-count", "compile_lg", "compile_hlg"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
