package lang

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ExtractWords collects the unique vocabulary of a normalized transcript
// stream (one utterance per line), sorted, with reserved symbols excluded.
func ExtractWords(r io.Reader) ([]string, error) {
	reserved := specialSet()
	unique := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		for _, word := range strings.Fields(scanner.Text()) {
			if _, isReserved := reserved[word]; isReserved {
				continue
			}
			unique[word] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan transcripts: %w", err)
	}

	words := make([]string, 0, len(unique))
	for word := range unique {
		words = append(words, word)
	}
	sort.Strings(words)
	return words, nil
}

// ExtractWordsFromFile runs ExtractWords over a transcript file.
func ExtractWordsFromFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcripts: %w", err)
	}
	defer f.Close()
	return ExtractWords(f)
}
