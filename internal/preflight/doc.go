// Package preflight provides readiness checks for the directories and
// external binaries the pipeline depends on.
//
// The checks run in two contexts:
//   - The run command consults per-stage health checks (built on these
//     helpers) before executing, so a doomed run fails in seconds instead of
//     after an hours-long download.
//   - The status command displays the full picture: directory access, free
//     disk space, and every configured tool binary.
package preflight
