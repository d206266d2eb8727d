package stages

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sluice/internal/config"
	"sluice/internal/fileutil"
	"sluice/internal/lang"
	"sluice/internal/services"
	"sluice/internal/services/graphc"
	"sluice/internal/testsupport"
)

func newLangPhone(t *testing.T, cfg *config.Config, script *toolScript) *LangPhone {
	t.Helper()
	handler, err := NewLangPhone(newTestEnv(cfg, script))
	if err != nil {
		t.Fatalf("NewLangPhone: %v", err)
	}
	return handler
}

func TestLangPhoneBuildsCompleteLangDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	seedTranscripts(t, cfg, "HELLO WORLD", "WORLD AGAIN")
	script := &toolScript{}
	handler := newLangPhone(t, cfg, script)

	if err := handler.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	dir := cfg.LangPhoneDir()
	table, err := lang.ReadSymbolTable(filepath.Join(dir, WordsFile))
	if err != nil {
		t.Fatalf("read word table: %v", err)
	}
	for _, word := range []string{"AGAIN", "HELLO", "WORLD", lang.Unknown} {
		if _, ok := table.ID(word); !ok {
			t.Fatalf("word table missing %q", word)
		}
	}

	entries, err := lang.ReadLexicon(filepath.Join(dir, LexiconFile))
	if err != nil {
		t.Fatalf("read lexicon: %v", err)
	}
	if missing := lang.MissingWords(entries, table.Words()); len(missing) > 0 {
		t.Fatalf("lexicon does not cover %v", missing)
	}

	if !fileutil.NonEmptyFile(filepath.Join(dir, TokensFile)) {
		t.Fatal("expected token table")
	}
	if !fileutil.NonEmptyFile(graphc.LDisambigPath(dir)) {
		t.Fatal("expected compiled lexicon FST")
	}
	if script.calls("g2p") != 1 || script.calls("compile_lg") != 1 {
		t.Fatalf("expected one g2p and one compile invocation, got %d and %d",
			script.calls("g2p"), script.calls("compile_lg"))
	}
}

func TestLangPhoneSecondRunInvokesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	seedTranscripts(t, cfg, "HELLO WORLD")
	script := &toolScript{}
	handler := newLangPhone(t, cfg, script)

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

func TestLangPhoneResumesAfterCompileFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	seedTranscripts(t, cfg, "HELLO WORLD")
	script := &toolScript{}
	script.failWith("compile_lg", errors.New("fst compiler crashed"))
	handler := newLangPhone(t, cfg, script)

	err := handler.Execute(context.Background())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external-tool error, got %v", err)
	}

	// The rerun reuses the generated pronunciations and only recompiles.
	g2pRuns := script.calls("g2p")
	script.failWith("compile_lg", nil)
	if err := handler.Execute(context.Background()); err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if script.calls("g2p") != g2pRuns {
		t.Fatalf("rerun must not rerun g2p: %d then %d", g2pRuns, script.calls("g2p"))
	}
	if !fileutil.NonEmptyFile(graphc.LDisambigPath(cfg.LangPhoneDir())) {
		t.Fatal("expected compiled lexicon FST after rerun")
	}
}

func TestLangPhoneSkipsG2PWhenSeedCovers(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	seedTranscripts(t, cfg, "HELLO")
	// An existing word table holding only the reserved symbols: the seed
	// lexicon already pronounces all of them, so no pronunciations need
	// generating.
	seedWordTable(t, cfg)
	script := &toolScript{}
	handler := newLangPhone(t, cfg, script)

	if err := handler.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if script.calls("g2p") != 0 {
		t.Fatalf("g2p should not run with full seed coverage, got %d invocations", script.calls("g2p"))
	}
	if fileutil.Exists(filepath.Join(cfg.LangPhoneDir(), OOVWordsFile)) {
		t.Fatal("no out-of-vocabulary list should be written")
	}
	if !fileutil.Exists(filepath.Join(cfg.LangPhoneDir(), LexiconFile)) {
		t.Fatal("lexicon should still be written from the seed entries")
	}
}

func TestLangPhoneRejectsTranscriptsWithoutRealWords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	// Noise symbols are reserved and never enter the vocabulary, so these
	// transcripts carry nothing to train on.
	seedTranscripts(t, cfg, lang.SpokenNoise+" "+lang.SpokenNoise)
	handler := newLangPhone(t, cfg, &toolScript{})

	err := handler.Execute(context.Background())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLangPhoneRequiresTranscripts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	handler := newLangPhone(t, cfg, &toolScript{})

	err := handler.Execute(context.Background())
	if !errors.Is(err, services.ErrMissingInput) {
		t.Fatalf("expected missing-input error, got %v", err)
	}
}

func TestLangPhoneRejectsIncompletePronunciations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	seedTranscripts(t, cfg, "HELLO WORLD")
	script := &toolScript{}
	handler := newLangPhone(t, cfg, script)

	// A stale generated lexicon that misses WORLD: the stage must refuse to
	// write a lexicon with uncovered words instead of compiling a broken one.
	dir := cfg.LangPhoneDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir lang dir: %v", err)
	}
	testsupport.WriteText(t, filepath.Join(dir, G2PLexiconFile), "HELLO HH AH L OW\n")

	err := handler.Execute(context.Background())
	if err == nil {
		t.Fatal("expected error for uncovered words")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external-tool error, got %v", err)
	}
	if fileutil.Exists(filepath.Join(dir, LexiconFile)) {
		t.Fatal("no lexicon should be written with uncovered words")
	}
}
