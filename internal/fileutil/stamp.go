package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// StampPath returns the completion-stamp path for a named step inside dir.
// Stamps mark multi-file directory outputs as complete; single-file outputs
// use the file itself as the guard.
func StampPath(dir, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "done"
	}
	return filepath.Join(dir, "."+name+".done")
}

// WriteStamp atomically records completion of a named step inside dir.
// The stamp body carries the completion time for operators inspecting the
// tree; its presence is what the pipeline checks.
func WriteStamp(dir, name string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create stamp directory: %w", err)
	}
	body := time.Now().UTC().Format(time.RFC3339) + "\n"
	return AtomicWriteFile(StampPath(dir, name), []byte(body), 0o644)
}

// HasStamp reports whether the named step completed in dir.
func HasStamp(dir, name string) bool {
	return NonEmptyFile(StampPath(dir, name))
}

// ClearStamp removes the named completion stamp, forcing the step to rerun.
func ClearStamp(dir, name string) error {
	err := os.Remove(StampPath(dir, name))
	if err != nil && !IsNotExist(err) {
		return err
	}
	return nil
}
