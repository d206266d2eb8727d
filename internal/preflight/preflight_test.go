package preflight

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sluice/internal/testsupport"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()

	result := CheckDirectoryAccess("Data directory", dir, true)
	if !result.Passed {
		t.Fatalf("expected writable temp dir to pass, got %+v", result)
	}

	missing := CheckDirectoryAccess("Corpus directory", filepath.Join(dir, "absent"), false)
	if missing.Passed {
		t.Fatal("expected missing directory to fail")
	}
	if !strings.Contains(missing.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", missing.Detail)
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	notDir := CheckDirectoryAccess("Corpus directory", file, false)
	if notDir.Passed {
		t.Fatal("expected regular file to fail directory check")
	}
	if !strings.Contains(notDir.Detail, "not a directory") {
		t.Fatalf("unexpected detail %q", notDir.Detail)
	}
}

func TestCheckDiskSpaceThreshold(t *testing.T) {
	original := statfs
	defer func() { statfs = original }()

	statfs = func(path string) (uint64, uint64, error) {
		return 100 << 30, 5 << 30, nil
	}
	low := CheckDiskSpace("Download free space", "/data", 20<<30)
	if low.Passed {
		t.Fatal("expected 5 GiB free to fail a 20 GiB minimum")
	}
	if !strings.Contains(low.Detail, "need at least") {
		t.Fatalf("unexpected detail %q", low.Detail)
	}

	ok := CheckDiskSpace("Download free space", "/data", 1<<30)
	if !ok.Passed {
		t.Fatalf("expected 5 GiB free to pass a 1 GiB minimum, got %+v", ok)
	}

	statfs = func(path string) (uint64, uint64, error) {
		return 0, 0, errors.New("mount gone")
	}
	failed := CheckDiskSpace("Download free space", "/data", 1)
	if failed.Passed {
		t.Fatal("expected statfs error to fail the check")
	}
}

func TestRunAllCoversDirectoriesAndSpace(t *testing.T) {
	original := statfs
	defer func() { statfs = original }()
	statfs = func(path string) (uint64, uint64, error) {
		return 1 << 40, 1 << 40, nil
	}

	cfg := testsupport.NewConfig(t)
	results := RunAll(cfg)
	if len(results) != 5 {
		t.Fatalf("expected 5 checks, got %d", len(results))
	}
	for _, result := range results {
		if !result.Passed {
			t.Fatalf("expected all checks to pass on a fresh test config, got %+v", result)
		}
	}
	if RunAll(nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestCheckSystemDepsListsConfiguredTools(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	statuses := CheckSystemDeps(cfg)
	if len(statuses) != 6 {
		t.Fatalf("expected 6 tool statuses, got %d", len(statuses))
	}
	for _, status := range statuses {
		if !status.Available {
			t.Fatalf("expected stubbed binary %s available, got %+v", status.Name, status)
		}
	}

	cfg.Tools.Estimator = "definitely-not-a-binary"
	statuses = CheckSystemDeps(cfg)
	found := false
	for _, status := range statuses {
		if status.Name == "estimator" {
			found = true
			if status.Available {
				t.Fatal("expected missing estimator to be unavailable")
			}
		}
	}
	if !found {
		t.Fatal("estimator requirement missing from list")
	}
}
