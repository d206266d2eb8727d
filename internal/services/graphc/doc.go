// Package graphc wraps the external graph-compilation scripts. The lexicon
// compiler turns a populated lang directory into L.fst/L_disambig.fst; the
// HLG compiler converts the ARPA model to a grammar and composes the final
// decoding graph. Both are opaque recipe scripts; this package only knows
// their flags and the artifacts they leave behind.
package graphc
