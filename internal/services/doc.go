// Package services defines the shared error taxonomy and context annotations
// used by external tool wrappers and pipeline stages.
//
// Stage code wraps failures with one of the sentinel errors so the runner and
// CLI can classify them without string matching: ErrMissingInput marks a
// precondition that was absent before any tool ran, ErrExternalTool marks a
// non-zero exit from an invoked command, ErrConfiguration and ErrValidation
// mark operator-fixable problems, and ErrTimeout marks an expired tool budget.
//
// The context helpers carry the run ID and stage identity so loggers deep in
// tool wrappers tag their lines without threading extra parameters.
package services
