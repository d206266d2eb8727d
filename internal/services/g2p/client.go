package g2p

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"sluice/internal/fileutil"
	"sluice/internal/tool"
)

// Client wraps the grapheme-to-phoneme tool that turns a word list into
// pronunciation lexicon lines on stdout.
type Client struct {
	binary  string
	timeout time.Duration
	exec    tool.Executor
}

// Option configures the client.
type Option func(*Client)

// WithExecutor overrides the command executor, primarily for tests.
func WithExecutor(exec tool.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// New constructs a client for the given g2p binary.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("g2p binary required")
	}
	client := &Client{
		binary: binary,
		exec:   tool.NewCommandExecutor(nil),
	}
	if timeoutSeconds > 0 {
		client.timeout = time.Duration(timeoutSeconds) * time.Second
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Generate runs the tool over the word list at wordsPath and captures its
// stdout into outputPath. The capture is atomic: on tool failure, or when the
// tool prints nothing for a non-empty word list, no output file appears, so
// an existence check never sees a truncated lexicon.
func (c *Client) Generate(ctx context.Context, wordsPath, outputPath string) error {
	wordsPath = strings.TrimSpace(wordsPath)
	if wordsPath == "" {
		return errors.New("word list path required")
	}
	outputPath = strings.TrimSpace(outputPath)
	if outputPath == "" {
		return errors.New("output path required")
	}
	if !fileutil.Exists(wordsPath) {
		return fmt.Errorf("word list %s does not exist", wordsPath)
	}

	err := fileutil.AtomicWriteTo(outputPath, 0o644, func(w io.Writer) error {
		capture := &countingWriter{w: w}
		inv := tool.Invocation{
			Binary:  c.binary,
			Args:    []string{wordsPath},
			Stdout:  capture,
			Timeout: c.timeout,
		}
		if _, err := c.exec.Run(ctx, inv); err != nil {
			return err
		}
		if capture.n == 0 {
			return errors.New("tool printed no pronunciations")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("g2p over %s: %w", wordsPath, err)
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
