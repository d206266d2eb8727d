// Package lang builds the symbol tables and pronunciation lexicons that
// populate the lang directories: word tables with reserved specials at
// fixed IDs, vocabulary extraction from normalized transcripts, lexicon
// IO and merging, and phone token inventories.
//
// FST compilation over these files belongs to the external graph compiler;
// this package only produces its text inputs.
package lang
