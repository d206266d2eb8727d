// Package runlog persists pipeline run history in SQLite.
//
// The Store records each run, the stages it executed or skipped, and the
// artifacts those stages produced together with content digests. Stage
// completion is decided by artifacts on disk, not by this log; the log
// exists so status commands and postmortems can answer what ran, when,
// and what it wrote.
//
// The database lives next to the artifacts under the data root. Deleting
// it loses history only.
package runlog
