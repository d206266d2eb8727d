// Package textnorm rewrites raw telephone-speech transcripts into the
// normalized form LM and lexicon stages consume.
//
// Normalization is an ordered regular-expression program over uppercased,
// NFKC-folded text: transcriber annotations map to a spoken-noise token or
// disappear, partial words keep their spoken fragment, punctuation drops,
// whitespace collapses. The default program targets Fisher and Switchboard
// conventions and is embedded; a config-supplied YAML file replaces it
// wholesale when corpora need different handling.
package textnorm
