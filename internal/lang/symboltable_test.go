package lang_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sluice/internal/lang"
	"sluice/internal/testsupport"
)

func TestBuildWordTableLayout(t *testing.T) {
	table := lang.BuildWordTable([]string{"THE", "A", "THE", "ZEBRA", "", "<UNK>"})

	// Reserved specials occupy the lowest IDs in fixed order.
	for wantID, symbol := range []string{"<eps>", "!SIL", "<SPOKEN_NOISE>", "<UNK>"} {
		id, ok := table.ID(symbol)
		if !ok || id != wantID {
			t.Fatalf("expected %s at id %d, got %d (ok=%v)", symbol, wantID, id, ok)
		}
	}

	// Words follow deduplicated and sorted; <UNK> collided with a special
	// and must not appear twice.
	words := table.Words()
	want := []string{"A", "THE", "ZEBRA"}
	if len(words) != len(want) {
		t.Fatalf("unexpected words: %v", words)
	}
	for i := range want {
		if words[i] != want[i] {
			t.Fatalf("word %d: got %q want %q", i, words[i], want[i])
		}
	}
	if id, _ := table.ID("A"); id != 4 {
		t.Fatalf("expected first word at id 4, got %d", id)
	}

	// Post specials close the table.
	symbols := table.Symbols()
	tail := symbols[len(symbols)-3:]
	if tail[0] != "#0" || tail[1] != "<s>" || tail[2] != "</s>" {
		t.Fatalf("unexpected tail symbols: %v", tail)
	}
}

func TestWordTableIDsStrictlyIncreasing(t *testing.T) {
	table := lang.BuildWordTable([]string{"YES", "NO", "MAYBE", "OKAY"})

	prev := -1
	for _, symbol := range table.Symbols() {
		id, ok := table.ID(symbol)
		if !ok {
			t.Fatalf("symbol %q lost its id", symbol)
		}
		if id != prev+1 {
			t.Fatalf("ids not strictly increasing by one: %q has %d after %d", symbol, id, prev)
		}
		prev = id
	}
}

func TestSymbolTableRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")

	table := lang.BuildWordTable([]string{"HELLO", "WORLD"})
	if err := table.WriteFile(path); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read words.txt: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "<eps> 0" {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if len(lines) != table.Len() {
		t.Fatalf("expected %d lines, got %d", table.Len(), len(lines))
	}

	loaded, err := lang.ReadSymbolTable(path)
	if err != nil {
		t.Fatalf("ReadSymbolTable failed: %v", err)
	}
	if loaded.Len() != table.Len() {
		t.Fatalf("round trip changed length: %d vs %d", loaded.Len(), table.Len())
	}
	id, ok := loaded.ID("WORLD")
	if !ok {
		t.Fatal("expected WORLD in loaded table")
	}
	symbol, ok := loaded.Symbol(id)
	if !ok || symbol != "WORLD" {
		t.Fatalf("Symbol(%d) = %q, want WORLD", id, symbol)
	}
}

func TestReadSymbolTableRejectsGaps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")
	testsupport.WriteText(t, path, "<eps> 0\nHELLO 2\n")

	if _, err := lang.ReadSymbolTable(path); err == nil {
		t.Fatal("expected error for non-contiguous ids")
	}
}

func TestReadSymbolTableRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")
	testsupport.WriteText(t, path, "<eps> 0\nHELLO 1\nHELLO 2\n")

	if _, err := lang.ReadSymbolTable(path); err == nil {
		t.Fatal("expected error for duplicate symbol")
	}
}
