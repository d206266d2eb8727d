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

func newHLG(t *testing.T, cfg *config.Config, script *toolScript) *HLG {
	t.Helper()
	handler, err := NewHLG(newTestEnv(cfg, script))
	if err != nil {
		t.Fatalf("NewHLG: %v", err)
	}
	return handler
}

func seedHLGInputs(t *testing.T, cfg *config.Config) {
	t.Helper()
	testsupport.WriteText(t, arpaPath(cfg), scriptedARPA)
	dirs := []string{cfg.LangPhoneDir()}
	for _, size := range cfg.BPE.Sizes {
		dirs = append(dirs, cfg.LangBPEDir(size))
	}
	for _, dir := range dirs {
		testsupport.WriteText(t, graphc.LDisambigPath(dir), "fst")
	}
}

func TestHLGComposesEveryLangDir(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBPESizes(500, 2000))
	seedHLGInputs(t, cfg)
	script := &toolScript{}
	handler := newHLG(t, cfg, script)

	if err := handler.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	for _, dir := range []string{cfg.LangPhoneDir(), cfg.LangBPEDir(500), cfg.LangBPEDir(2000)} {
		if !fileutil.NonEmptyFile(graphc.HLGPath(dir)) {
			t.Fatalf("expected decoding graph in %s", dir)
		}
	}
	if script.calls("compile_hlg") != 3 {
		t.Fatalf("expected three compositions, got %d", script.calls("compile_hlg"))
	}

	// Every invocation receives the same ARPA model.
	for _, inv := range script.invs {
		if got := argAfter(inv.Args, "--lm"); got != arpaPath(cfg) {
			t.Fatalf("--lm = %q, want %q", got, arpaPath(cfg))
		}
	}
}

func TestHLGSecondRunInvokesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBPESizes(500))
	seedHLGInputs(t, cfg)
	script := &toolScript{}
	handler := newHLG(t, cfg, script)

	if err := handler.Execute(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := handler.Execute(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if script.calls("compile_hlg") != 2 {
		t.Fatalf("expected one composition per lang dir, got %d", script.calls("compile_hlg"))
	}
}

func TestHLGRebuildsOnlyDeletedGraph(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBPESizes(500))
	seedHLGInputs(t, cfg)
	handler := newHLG(t, cfg, &toolScript{})
	if err := handler.Execute(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	if err := os.Remove(graphc.HLGPath(cfg.LangBPEDir(500))); err != nil {
		t.Fatalf("remove graph: %v", err)
	}
	script := &toolScript{}
	handler = newHLG(t, cfg, script)
	if err := handler.Execute(context.Background()); err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if script.calls("compile_hlg") != 1 {
		t.Fatalf("expected one recomposition, got %d", script.calls("compile_hlg"))
	}
	if got := argAfter(script.invs[0].Args, "--lang-dir"); got != cfg.LangBPEDir(500) {
		t.Fatalf("recomposed %q, want %q", got, cfg.LangBPEDir(500))
	}
}

func TestHLGRequiresModelAndLangDirs(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBPESizes(500))
	handler := newHLG(t, cfg, &toolScript{})

	err := handler.Execute(context.Background())
	if !errors.Is(err, services.ErrMissingInput) {
		t.Fatalf("expected missing-input error without a model, got %v", err)
	}

	testsupport.WriteText(t, arpaPath(cfg), scriptedARPA)
	err = handler.Execute(context.Background())
	if !errors.Is(err, services.ErrMissingInput) {
		t.Fatalf("expected missing-input error without lang dirs, got %v", err)
	}
}

func TestHLGCompositionFailureStopsStage(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBPESizes(500, 2000))
	seedHLGInputs(t, cfg)
	script := &toolScript{}
	script.failWith("compile_hlg", errors.New("composition ran out of memory"))
	handler := newHLG(t, cfg, script)

	err := handler.Execute(context.Background())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external-tool error, got %v", err)
	}
	if script.calls("compile_hlg") != 1 {
		t.Fatalf("failure must stop the stage, got %d invocations", script.calls("compile_hlg"))
	}
	if fileutil.Exists(filepath.Join(cfg.LangBPEDir(2000), "HLG.fst")) {
		t.Fatal("later lang dirs must not be composed after a failure")
	}
}
