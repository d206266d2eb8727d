// Package lhotse mediates access to the lhotse CLI used for corpus downloads
// and manifest preparation.
//
// It normalizes command invocation for the download and prepare subcommands
// and exposes a testable executor seam so stages never call exec.Command
// directly. Expected manifest filenames are corpus knowledge and live with the
// stages that consume them.
package lhotse
