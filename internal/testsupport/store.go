package testsupport

import (
	"testing"

	"sluice/internal/config"
	"sluice/internal/runlog"
)

// MustOpenRunLog opens a runlog.Store for tests and registers cleanup.
func MustOpenRunLog(t testing.TB, cfg *config.Config) *runlog.Store {
	t.Helper()

	store, err := runlog.Open(cfg)
	if err != nil {
		t.Fatalf("runlog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
