// Package corpus holds the record-level manifest plumbing the pipeline owns:
// a minimal supervision model compatible with the corpus tool's JSON-lines
// manifests, gzip-aware manifest IO, order-preserving combination, and the
// session-level train/dev split.
//
// Everything heavier than this (manifest preparation, cut extraction,
// feature computation) belongs to the external corpus tool.
package corpus
