package corpus

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"sluice/internal/fileutil"
)

// Manifest lines can carry long transcripts; size the scanner generously.
const maxManifestLine = 4 * 1024 * 1024

func isGzipPath(path string) bool {
	return strings.HasSuffix(path, ".gz")
}

// ReadManifest loads a supervision manifest from a JSON-lines file,
// transparently decompressing when the path carries a .gz suffix.
func ReadManifest(path string) ([]Supervision, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if isGzipPath(path) {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip manifest %s: %w", path, err)
		}
		defer gz.Close()
		reader = gz
	}

	var supervisions []Supervision
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), maxManifestLine)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var sup Supervision
		if err := json.Unmarshal([]byte(line), &sup); err != nil {
			return nil, fmt.Errorf("parse manifest %s line %d: %w", path, lineNo, err)
		}
		supervisions = append(supervisions, sup)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return supervisions, nil
}

// WriteManifest writes supervisions as JSON lines, gzip-compressed when the
// path carries a .gz suffix. The write is atomic so an interrupted run never
// leaves a truncated manifest satisfying an existence check.
func WriteManifest(path string, supervisions []Supervision) error {
	return fileutil.AtomicWriteTo(path, 0o644, func(w io.Writer) error {
		var target io.Writer = w
		var gz *gzip.Writer
		if isGzipPath(path) {
			gz = gzip.NewWriter(w)
			target = gz
		}

		buffered := bufio.NewWriter(target)
		for i := range supervisions {
			data, err := json.Marshal(&supervisions[i])
			if err != nil {
				return fmt.Errorf("encode supervision %q: %w", supervisions[i].ID, err)
			}
			if _, err := buffered.Write(data); err != nil {
				return err
			}
			if err := buffered.WriteByte('\n'); err != nil {
				return err
			}
		}
		if err := buffered.Flush(); err != nil {
			return err
		}
		if gz != nil {
			return gz.Close()
		}
		return nil
	})
}

// WriteText writes one line per supervision text, used for LM and BPE
// training corpora. Blank texts are skipped.
func WriteText(path string, supervisions []Supervision) (int, error) {
	written := 0
	err := fileutil.AtomicWriteTo(path, 0o644, func(w io.Writer) error {
		buffered := bufio.NewWriter(w)
		for i := range supervisions {
			text := strings.TrimSpace(supervisions[i].Text)
			if text == "" {
				continue
			}
			if _, err := buffered.WriteString(text); err != nil {
				return err
			}
			if err := buffered.WriteByte('\n'); err != nil {
				return err
			}
			written++
		}
		return buffered.Flush()
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}
