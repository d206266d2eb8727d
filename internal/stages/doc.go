// Package stages implements the pipeline's stage handlers, from corpus
// download through decoding-graph composition.
//
// Every handler follows the same contract: completed work is detected by the
// artifacts it left on disk and skipped, expensive external-tool sub-steps
// carry their own guards so a rerun resumes at the first missing artifact,
// and the first tool failure stops the stage with a classified error.
// Deleting an artifact is the supported way to force its sub-step to run
// again.
package stages
