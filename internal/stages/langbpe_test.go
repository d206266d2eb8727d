package stages

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sluice/internal/config"
	"sluice/internal/fileutil"
	"sluice/internal/services"
	"sluice/internal/services/graphc"
	"sluice/internal/testsupport"
)

func newLangBPE(t *testing.T, cfg *config.Config, script *toolScript) *LangBPE {
	t.Helper()
	handler, err := NewLangBPE(newTestEnv(cfg, script))
	if err != nil {
		t.Fatalf("NewLangBPE: %v", err)
	}
	return handler
}

func seedBPEInputs(t *testing.T, cfg *config.Config) {
	t.Helper()
	seedTranscripts(t, cfg, "HELLO WORLD", "WORLD AGAIN")
	seedWordTable(t, cfg, "HELLO", "WORLD", "AGAIN")
}

func TestLangBPEBuildsEverySize(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBPESizes(500, 2000))
	seedBPEInputs(t, cfg)
	script := &toolScript{}
	handler := newLangBPE(t, cfg, script)

	if err := handler.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	for _, size := range []int{500, 2000} {
		dir := cfg.LangBPEDir(size)
		for _, name := range []string{BPETextFile, BPEModelPrefix + ".model", WordsFile} {
			if !fileutil.NonEmptyFile(filepath.Join(dir, name)) {
				t.Fatalf("size %d missing %s", size, name)
			}
		}
		if !fileutil.NonEmptyFile(graphc.LDisambigPath(dir)) {
			t.Fatalf("size %d missing compiled lexicon FST", size)
		}
	}
	if script.calls("spm_train") != 2 {
		t.Fatalf("expected one training run per size, got %d", script.calls("spm_train"))
	}
	if script.calls("compile_lg") != 2 {
		t.Fatalf("expected one compile per size, got %d", script.calls("compile_lg"))
	}
}

func TestLangBPEPassesSizeToTrainer(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBPESizes(500))
	seedBPEInputs(t, cfg)
	script := &toolScript{}
	handler := newLangBPE(t, cfg, script)

	if err := handler.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var trainArgs []string
	for _, inv := range script.invs {
		if filepath.Base(inv.Binary) == "spm_train" {
			trainArgs = inv.Args
		}
	}
	wantVocab := "--vocab_size=500"
	wantInput := "--input=" + filepath.Join(cfg.LangBPEDir(500), BPETextFile)
	var haveVocab, haveInput bool
	for _, arg := range trainArgs {
		if arg == wantVocab {
			haveVocab = true
		}
		if arg == wantInput {
			haveInput = true
		}
	}
	if !haveVocab || !haveInput {
		t.Fatalf("trainer args missing %q or %q: %v", wantVocab, wantInput, trainArgs)
	}
}

func TestLangBPESecondRunInvokesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBPESizes(500, 2000))
	seedBPEInputs(t, cfg)
	script := &toolScript{}
	handler := newLangBPE(t, cfg, script)

	if err := handler.Execute(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	ran := script.total()
	if err := handler.Execute(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if script.total() != ran {
		t.Fatalf("second run invoked tools: %d then %d", ran, script.total())
	}
}

func TestLangBPETrainingFailureFailsStage(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBPESizes(500, 2000))
	seedBPEInputs(t, cfg)
	script := &toolScript{}
	script.failWith("spm_train", errors.New("trainer out of memory"))
	handler := newLangBPE(t, cfg, script)

	err := handler.Execute(context.Background())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external-tool error, got %v", err)
	}
}

func TestLangBPERequiresUpstreamArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBPESizes(500))
	handler := newLangBPE(t, cfg, &toolScript{})

	err := handler.Execute(context.Background())
	if !errors.Is(err, services.ErrMissingInput) {
		t.Fatalf("expected missing-input error without transcripts, got %v", err)
	}

	seedTranscripts(t, cfg, "HELLO WORLD")
	err = handler.Execute(context.Background())
	if !errors.Is(err, services.ErrMissingInput) {
		t.Fatalf("expected missing-input error without a word table, got %v", err)
	}
}

func TestLangBPERejectsEmptySizeList(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBPESizes())
	seedBPEInputs(t, cfg)
	handler := newLangBPE(t, cfg, &toolScript{})

	err := handler.Execute(context.Background())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLangBPESizesShareNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBPESizes(500, 1000, 2000))
	seedBPEInputs(t, cfg)
	cfg.Pipeline.Jobs = 3
	handler := newLangBPE(t, cfg, &toolScript{})

	if err := handler.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// Deleting one size's directory and rerunning rebuilds only that size.
	if err := os.RemoveAll(cfg.LangBPEDir(1000)); err != nil {
		t.Fatalf("remove lang dir: %v", err)
	}
	script := &toolScript{}
	handler = newLangBPE(t, cfg, script)
	if err := handler.Execute(context.Background()); err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if script.calls("spm_train") != 1 || script.calls("compile_lg") != 1 {
		t.Fatalf("expected exactly one rebuild, got %d trainings and %d compiles",
			script.calls("spm_train"), script.calls("compile_lg"))
	}
	if !fileutil.NonEmptyFile(graphc.LDisambigPath(cfg.LangBPEDir(1000))) {
		t.Fatal("expected the deleted size to be rebuilt")
	}
}
