package lang

// Epsilon is the FST no-label symbol and always takes ID 0.
const Epsilon = "<eps>"

// Silence, spoken-noise, and unknown-word symbols carried by every word
// table and pronounced by the seed lexicon.
const (
	Silence     = "!SIL"
	SpokenNoise = "<SPOKEN_NOISE>"
	Unknown     = "<UNK>"
)

// Disambig is the first disambiguation symbol appended after the words.
const Disambig = "#0"

// PreSpecials returns the symbols occupying the lowest IDs of a word table,
// in ID order.
func PreSpecials() []string {
	return []string{Epsilon, Silence, SpokenNoise, Unknown}
}

// PostSpecials returns the symbols appended after the real words: the
// disambiguation symbol and the sentence boundary markers the grammar uses.
func PostSpecials() []string {
	return []string{Disambig, "<s>", "</s>"}
}

// SeedLexicon returns pronunciations for the pronounceable specials. Real
// words get their pronunciations from a seed dictionary or the g2p tool.
func SeedLexicon() []Entry {
	return []Entry{
		{Word: Silence, Pronunciation: []string{"SIL"}},
		{Word: SpokenNoise, Pronunciation: []string{"SPN"}},
		{Word: Unknown, Pronunciation: []string{"SPN"}},
	}
}

func specialSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, symbol := range PreSpecials() {
		set[symbol] = struct{}{}
	}
	for _, symbol := range PostSpecials() {
		set[symbol] = struct{}{}
	}
	return set
}
