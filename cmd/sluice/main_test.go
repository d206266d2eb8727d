package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sluice/internal/config"
	"sluice/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ncorpus_dir = %q\ndownload_dir = %q\ndata_dir = %q\nlog_dir = %q\n",
		cfg.Paths.CorpusDir,
		cfg.Paths.DownloadDir,
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestStagesCommandListsPipeline(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"stages"}, env.configPath)
	if err != nil {
		t.Fatalf("stages: %v", err)
	}
	for _, name := range []string{
		"download", "manifests", "combine", "normalize", "split",
		"lang_phone", "lang_bpe", "lm", "hlg",
	} {
		requireContains(t, out, name)
	}
	requireContains(t, out, "never run")
}

func TestRunRejectsOutOfBoundsRange(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"run", "--stage", "99"}, env.configPath)
	if err == nil {
		t.Fatal("expected out-of-range stage to fail")
	}
	requireContains(t, err.Error(), "valid stages are")
}

func TestRunRejectsInvertedRange(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"run", "--stage", "4", "--stop-stage", "2"}, env.configPath)
	if err == nil {
		t.Fatal("expected inverted range to fail")
	}
	requireContains(t, err.Error(), "past")
}

func TestRunSingleGuardedStage(t *testing.T) {
	env := setupCLITestEnv(t)

	// A pre-existing combined manifest satisfies the combine stage's guard,
	// so a run over just that stage succeeds without external tools.
	combined := filepath.Join(env.cfg.ManifestDir(), "sluice_supervisions_train_all.jsonl.gz")
	testsupport.WriteFile(t, combined, 64)

	out, _, err := runCLI(t, []string{"run", "--stage", "2", "--stop-stage", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "1 stage(s) executed")
	requireContains(t, out, "8 skipped")

	// The stages command reflects the recorded outcome.
	out, _, err = runCLI(t, []string{"stages"}, env.configPath)
	if err != nil {
		t.Fatalf("stages: %v", err)
	}
	requireContains(t, out, "completed")
	requireContains(t, out, "skipped")
}

func TestStatusCommandSections(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Environment")
	requireContains(t, out, "Dependencies")
	requireContains(t, out, "Artifacts")
	requireContains(t, out, "Recent Runs")
	requireContains(t, out, "No runs recorded")
}

func TestVocabSizeOverrideValidation(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"run", "--vocab-size", "-5"}, env.configPath)
	if err == nil {
		t.Fatal("expected negative vocab size to fail")
	}
	requireContains(t, err.Error(), "must be positive")
}
