package lang

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"sluice/internal/fileutil"
)

// Entry is a single pronunciation for a word.
type Entry struct {
	Word          string
	Pronunciation []string
}

func (e Entry) key() string {
	return e.Word + "\x00" + strings.Join(e.Pronunciation, " ")
}

// ReadLexicon parses a lexicon file: one "word phone phone ..." entry per
// line, blank lines and # comments skipped. Both whitespace and tab
// separators are accepted since seed dictionaries vary.
func ReadLexicon(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lexicon: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("lexicon %s line %d: expected word and pronunciation, got %q", path, lineNo, line)
		}
		entries = append(entries, Entry{Word: fields[0], Pronunciation: fields[1:]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	return entries, nil
}

// WriteLexicon atomically writes entries sorted by word then pronunciation.
func WriteLexicon(path string, entries []Entry) error {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	SortEntries(sorted)

	return fileutil.AtomicWriteTo(path, 0o644, func(w io.Writer) error {
		buffered := bufio.NewWriter(w)
		for _, entry := range sorted {
			if _, err := fmt.Fprintf(buffered, "%s %s\n", entry.Word, strings.Join(entry.Pronunciation, " ")); err != nil {
				return err
			}
		}
		return buffered.Flush()
	})
}

// SortEntries orders entries by word, then pronunciation, in place.
func SortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Word != entries[j].Word {
			return entries[i].Word < entries[j].Word
		}
		return strings.Join(entries[i].Pronunciation, " ") < strings.Join(entries[j].Pronunciation, " ")
	})
}

// MergeLexicons unions entry lists, dropping exact word+pronunciation
// duplicates while keeping alternative pronunciations of the same word.
func MergeLexicons(lists ...[]Entry) []Entry {
	seen := make(map[string]struct{})
	var merged []Entry
	for _, list := range lists {
		for _, entry := range list {
			key := entry.key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, entry)
		}
	}
	SortEntries(merged)
	return merged
}

// MissingWords returns the words with no pronunciation in entries, sorted.
// These are the words handed to the g2p tool.
func MissingWords(entries []Entry, words []string) []string {
	covered := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		covered[entry.Word] = struct{}{}
	}

	var missing []string
	seen := make(map[string]struct{})
	for _, word := range words {
		if _, has := covered[word]; has {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		missing = append(missing, word)
	}
	sort.Strings(missing)
	return missing
}
