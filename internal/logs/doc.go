// Package logs provides the file tailing behind `sluice logs`.
//
// Each pipeline run writes a timestamped log file under the configured log
// directory; this package locates the newest one and streams it with bounded
// memory, supporting "last N lines" reads and follow-mode polling for runs
// still in progress. Callers drive follow loops with context cancellation so
// Ctrl-C exits promptly.
package logs
