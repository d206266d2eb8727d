package lang

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"sluice/internal/fileutil"
)

// SymbolTable maps symbols to dense integer IDs starting at zero. The slice
// position is the ID, so IDs are contiguous and strictly increasing by
// construction.
type SymbolTable struct {
	symbols []string
	index   map[string]int
}

func newSymbolTable(symbols []string) (*SymbolTable, error) {
	index := make(map[string]int, len(symbols))
	for id, symbol := range symbols {
		if symbol == "" {
			return nil, fmt.Errorf("symbol table: empty symbol at id %d", id)
		}
		if _, dup := index[symbol]; dup {
			return nil, fmt.Errorf("symbol table: duplicate symbol %q", symbol)
		}
		index[symbol] = id
	}
	return &SymbolTable{symbols: symbols, index: index}, nil
}

// BuildWordTable assembles the word symbol table for a vocabulary: the
// reserved pre-specials take the lowest IDs, the words follow deduplicated
// and sorted, and the post-specials close the table. Words colliding with a
// reserved symbol are dropped rather than duplicated.
func BuildWordTable(words []string) *SymbolTable {
	reserved := specialSet()
	unique := make(map[string]struct{}, len(words))
	for _, word := range words {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		if _, isReserved := reserved[word]; isReserved {
			continue
		}
		unique[word] = struct{}{}
	}

	sorted := make([]string, 0, len(unique))
	for word := range unique {
		sorted = append(sorted, word)
	}
	sort.Strings(sorted)

	symbols := make([]string, 0, len(PreSpecials())+len(sorted)+len(PostSpecials()))
	symbols = append(symbols, PreSpecials()...)
	symbols = append(symbols, sorted...)
	symbols = append(symbols, PostSpecials()...)

	table, err := newSymbolTable(symbols)
	if err != nil {
		// Inputs are deduplicated against the reserved set above.
		panic(err)
	}
	return table
}

// Len returns the number of symbols in the table.
func (st *SymbolTable) Len() int {
	return len(st.symbols)
}

// ID returns the ID assigned to symbol.
func (st *SymbolTable) ID(symbol string) (int, bool) {
	id, ok := st.index[symbol]
	return id, ok
}

// Symbol returns the symbol carrying the given ID.
func (st *SymbolTable) Symbol(id int) (string, bool) {
	if id < 0 || id >= len(st.symbols) {
		return "", false
	}
	return st.symbols[id], true
}

// Symbols returns the symbols in ID order.
func (st *SymbolTable) Symbols() []string {
	out := make([]string, len(st.symbols))
	copy(out, st.symbols)
	return out
}

// Words returns the non-reserved symbols in ID order.
func (st *SymbolTable) Words() []string {
	reserved := specialSet()
	var words []string
	for _, symbol := range st.symbols {
		if _, isReserved := reserved[symbol]; isReserved {
			continue
		}
		words = append(words, symbol)
	}
	return words
}

// WriteTo writes the table in the conventional "symbol id" line format.
func (st *SymbolTable) WriteTo(w io.Writer) error {
	buffered := bufio.NewWriter(w)
	for id, symbol := range st.symbols {
		if _, err := fmt.Fprintf(buffered, "%s %d\n", symbol, id); err != nil {
			return err
		}
	}
	return buffered.Flush()
}

// WriteFile atomically writes the table to path.
func (st *SymbolTable) WriteFile(path string) error {
	return fileutil.AtomicWriteTo(path, 0o644, st.WriteTo)
}

// ReadSymbolTable parses a "symbol id" file. IDs must be contiguous from
// zero in file order; anything else indicates a hand-edited or foreign table
// this pipeline should not silently accept.
func ReadSymbolTable(path string) (*SymbolTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open symbol table: %w", err)
	}
	defer f.Close()

	var symbols []string
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("symbol table %s line %d: expected \"symbol id\", got %q", path, lineNo, line)
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("symbol table %s line %d: bad id %q", path, lineNo, fields[1])
		}
		if id != len(symbols) {
			return nil, fmt.Errorf("symbol table %s line %d: id %d out of order (expected %d)", path, lineNo, id, len(symbols))
		}
		symbols = append(symbols, fields[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read symbol table %s: %w", path, err)
	}

	table, err := newSymbolTable(symbols)
	if err != nil {
		return nil, fmt.Errorf("symbol table %s: %w", path, err)
	}
	return table, nil
}
