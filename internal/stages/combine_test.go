package stages

import (
	"context"
	"errors"
	"os"
	"testing"

	"sluice/internal/corpus"
	"sluice/internal/services"
	"sluice/internal/testsupport"
)

func TestCombineMergesSpeechManifests(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeManifestFile(t, cfg, FisherSupervisions, sessionSupervisions("fe_03_00001", "hello there", "yes"))
	writeManifestFile(t, cfg, SwitchboardSupervisions, sessionSupervisions("sw02001", "uh huh"))
	handler := NewCombine(newTestEnv(cfg, &toolScript{}))

	if err := handler.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	combined, err := corpus.ReadManifest(manifestPath(cfg, CombinedSupervisions))
	if err != nil {
		t.Fatalf("read combined manifest: %v", err)
	}
	if len(combined) != 3 {
		t.Fatalf("expected 3 supervisions, got %d", len(combined))
	}
}

func TestCombineSkipsWhenOutputExists(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeManifestFile(t, cfg, FisherSupervisions, sessionSupervisions("fe_03_00001", "hello"))
	writeManifestFile(t, cfg, SwitchboardSupervisions, sessionSupervisions("sw02001", "hi"))
	handler := NewCombine(newTestEnv(cfg, &toolScript{}))

	if err := handler.Execute(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	out := manifestPath(cfg, CombinedSupervisions)
	before, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat combined manifest: %v", err)
	}

	if err := handler.Execute(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	after, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat combined manifest: %v", err)
	}
	if !after.ModTime().Equal(before.ModTime()) || after.Size() != before.Size() {
		t.Fatal("existing output must not be rewritten")
	}
}

func TestCombineReportsMissingInputs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	handler := NewCombine(newTestEnv(cfg, &toolScript{}))

	err := handler.Execute(context.Background())
	if !errors.Is(err, services.ErrMissingInput) {
		t.Fatalf("expected missing-input error, got %v", err)
	}
}
