// Package tool runs external corpus-processing commands for pipeline stages.
//
// Every heavy step — manifest preparation, BPE training, grapheme-to-phoneme
// conversion, n-gram estimation, graph compilation — is an already-mature
// external program. This package models them as a single capability: invoke
// with arguments, stream output lines, capture stdout when the tool emits its
// artifact there, and report the exit status. Stages depend on the Executor
// interface, never on os/exec, so tests can count invocations or inject
// failures without spawning processes.
package tool
