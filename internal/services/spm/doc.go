// Package spm wraps the SentencePiece trainer used to build the subword
// vocabularies. Each vocabulary size trains independently into its own lang
// directory, so the client is safe to call concurrently with distinct model
// prefixes.
package spm
