package lang

import "sort"

// BuildTokenTable collects the phone inventory of a lexicon into a symbol
// table: epsilon first, the phones sorted, then the disambiguation symbol.
func BuildTokenTable(entries []Entry) *SymbolTable {
	unique := make(map[string]struct{})
	for _, entry := range entries {
		for _, phone := range entry.Pronunciation {
			if phone == "" || phone == Epsilon || phone == Disambig {
				continue
			}
			unique[phone] = struct{}{}
		}
	}

	phones := make([]string, 0, len(unique))
	for phone := range unique {
		phones = append(phones, phone)
	}
	sort.Strings(phones)

	symbols := make([]string, 0, len(phones)+2)
	symbols = append(symbols, Epsilon)
	symbols = append(symbols, phones...)
	symbols = append(symbols, Disambig)

	table, err := newSymbolTable(symbols)
	if err != nil {
		// Phones are deduplicated and filtered against the fixed symbols.
		panic(err)
	}
	return table
}
