// Package g2p wraps the grapheme-to-phoneme tool that produces pronunciations
// for words missing from the seed lexicon. The tool contract is a word list
// in, "WORD PHONE..." lines out on stdout.
package g2p
