// Package pipeline provides the staged batch runner at the heart of sluice.
//
// A pipeline is an ordered list of integer-indexed stages over a shared
// working tree. Each run selects an inclusive index range; stages inside the
// range execute in order, stages outside are skipped with nothing more than a
// debug log line. Stage bodies are idempotent by existence check: expensive
// sub-steps look for their terminal artifact before recomputing, which makes
// re-running after an interruption cheap. The first failing stage aborts the
// whole run; there are no retries and no rollback.
//
// A file lock under the data directory keeps concurrent runs from writing the
// same tree. When a run log store is attached, every run, stage outcome, and
// recorded artifact lands in the history consumed by the status commands.
package pipeline
