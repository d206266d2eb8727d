package runlog_test

import (
	"context"
	"path/filepath"
	"testing"

	"sluice/internal/runlog"
	"sluice/internal/testsupport"
)

func TestBeginAndFinishRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenRunLog(t, cfg)

	ctx := context.Background()
	run, err := store.BeginRun(ctx, 0, 8)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected run ID to be assigned")
	}
	if run.Status != runlog.RunStatusRunning {
		t.Fatalf("expected running status, got %s", run.Status)
	}

	fetched, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if fetched == nil || fetched.FirstStage != 0 || fetched.LastStage != 8 {
		t.Fatalf("unexpected fetched run: %#v", fetched)
	}
	if fetched.FinishedAt != nil {
		t.Fatal("expected unfinished run")
	}

	if err := store.FinishRun(ctx, run.ID, runlog.RunStatusCompleted, ""); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}
	fetched, err = store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun after finish failed: %v", err)
	}
	if fetched.Status != runlog.RunStatusCompleted {
		t.Fatalf("expected completed status, got %s", fetched.Status)
	}
	if fetched.FinishedAt == nil {
		t.Fatal("expected finished timestamp")
	}
}

func TestStageLifecycleAndSkips(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenRunLog(t, cfg)

	ctx := context.Background()
	run, err := store.BeginRun(ctx, 1, 3)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}

	if err := store.RecordSkip(ctx, run.ID, 1, "manifests"); err != nil {
		t.Fatalf("RecordSkip failed: %v", err)
	}
	stageID, err := store.StartStage(ctx, run.ID, 2, "combine")
	if err != nil {
		t.Fatalf("StartStage failed: %v", err)
	}
	if err := store.FinishStage(ctx, stageID, runlog.StageStatusCompleted, ""); err != nil {
		t.Fatalf("FinishStage failed: %v", err)
	}
	failedID, err := store.StartStage(ctx, run.ID, 3, "normalize")
	if err != nil {
		t.Fatalf("StartStage failed: %v", err)
	}
	if err := store.FinishStage(ctx, failedID, runlog.StageStatusFailed, "tool exited 1"); err != nil {
		t.Fatalf("FinishStage failed: %v", err)
	}

	stageRuns, err := store.StageRuns(ctx, run.ID)
	if err != nil {
		t.Fatalf("StageRuns failed: %v", err)
	}
	if len(stageRuns) != 3 {
		t.Fatalf("expected 3 stage runs, got %d", len(stageRuns))
	}
	if stageRuns[0].Status != runlog.StageStatusSkipped || stageRuns[0].StageName != "manifests" {
		t.Fatalf("unexpected first stage run: %#v", stageRuns[0])
	}
	if stageRuns[1].Status != runlog.StageStatusCompleted {
		t.Fatalf("unexpected second stage run: %#v", stageRuns[1])
	}
	if stageRuns[2].Status != runlog.StageStatusFailed || stageRuns[2].ErrorMessage != "tool exited 1" {
		t.Fatalf("unexpected third stage run: %#v", stageRuns[2])
	}
	if stageRuns[1].Duration() < 0 {
		t.Fatal("expected non-negative duration")
	}
}

func TestArtifactsRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenRunLog(t, cfg)

	ctx := context.Background()
	run, err := store.BeginRun(ctx, 0, 0)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}

	path := filepath.Join(cfg.ManifestDir(), "train.jsonl.gz")
	if err := store.RecordArtifact(ctx, run.ID, 4, path, "deadbeef", 1234); err != nil {
		t.Fatalf("RecordArtifact failed: %v", err)
	}

	artifacts, err := store.Artifacts(ctx, run.ID)
	if err != nil {
		t.Fatalf("Artifacts failed: %v", err)
	}
	if len(artifacts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(artifacts))
	}
	got := artifacts[0]
	if got.Path != path || got.SHA256 != "deadbeef" || got.SizeBytes != 1234 || got.StageIndex != 4 {
		t.Fatalf("unexpected artifact: %#v", got)
	}

	latest, err := store.LatestArtifact(ctx, path)
	if err != nil {
		t.Fatalf("LatestArtifact failed: %v", err)
	}
	if latest == nil || latest.ID != got.ID {
		t.Fatalf("expected latest artifact to match, got %#v", latest)
	}

	missing, err := store.LatestArtifact(ctx, "/nowhere")
	if err != nil {
		t.Fatalf("LatestArtifact for missing path failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown path, got %#v", missing)
	}
}

func TestLastRunAndRecentRunsOrdering(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenRunLog(t, cfg)

	ctx := context.Background()
	first, err := store.BeginRun(ctx, 0, 8)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	second, err := store.BeginRun(ctx, 2, 5)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}

	last, err := store.LastRun(ctx)
	if err != nil {
		t.Fatalf("LastRun failed: %v", err)
	}
	if last == nil || last.ID != second.ID {
		t.Fatalf("expected last run %s, got %#v", second.ID, last)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != second.ID || runs[1].ID != first.ID {
		t.Fatalf("unexpected run ordering: %v then %v", runs[0].ID, runs[1].ID)
	}
}

func TestLastRunOnEmptyLog(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenRunLog(t, cfg)

	last, err := store.LastRun(context.Background())
	if err != nil {
		t.Fatalf("LastRun failed: %v", err)
	}
	if last != nil {
		t.Fatalf("expected nil run on empty log, got %#v", last)
	}
}

func TestReopenKeepsSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	store, err := runlog.Open(cfg)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	run, err := store.BeginRun(context.Background(), 0, 1)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := runlog.Open(cfg)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer reopened.Close()

	fetched, err := reopened.GetRun(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("GetRun after reopen failed: %v", err)
	}
	if fetched == nil {
		t.Fatal("expected run to survive reopen")
	}
}
