package lhotse

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"sluice/internal/tool"
)

// Client wraps the lhotse command-line interface used for corpus downloads
// and manifest preparation.
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

// New constructs a client for the given binary. timeoutSeconds bounds each
// invocation; zero disables the bound.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("lhotse binary required")
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

// Download fetches a corpus lhotse knows how to retrieve (for example musan)
// into targetDir. The directory is created if needed.
func (c *Client) Download(ctx context.Context, corpus, targetDir string) error {
	corpus = strings.TrimSpace(corpus)
	if corpus == "" {
		return errors.New("corpus name required")
	}
	targetDir = strings.TrimSpace(targetDir)
	if targetDir == "" {
		return errors.New("target directory required")
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}

	inv := tool.Invocation{
		Binary:  c.binary,
		Args:    []string{"download", corpus, targetDir},
		Timeout: c.timeout,
	}
	if _, err := c.exec.Run(ctx, inv); err != nil {
		return fmt.Errorf("lhotse download %s: %w", corpus, err)
	}
	return nil
}

// Prepare builds recording and supervision manifests for a corpus into
// outputDir. sourceArgs carries the corpus-specific flags and source paths
// placed between the corpus name and the output directory, matching the
// lhotse CLI convention (for example --audio-dirs for fisher-english or the
// bare corpus root for switchboard).
func (c *Client) Prepare(ctx context.Context, corpus string, sourceArgs []string, outputDir string) error {
	corpus = strings.TrimSpace(corpus)
	if corpus == "" {
		return errors.New("corpus name required")
	}
	outputDir = strings.TrimSpace(outputDir)
	if outputDir == "" {
		return errors.New("output directory required")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}

	args := make([]string, 0, len(sourceArgs)+3)
	args = append(args, "prepare", corpus)
	args = append(args, sourceArgs...)
	args = append(args, outputDir)

	inv := tool.Invocation{
		Binary:  c.binary,
		Args:    args,
		Timeout: c.timeout,
	}
	if _, err := c.exec.Run(ctx, inv); err != nil {
		return fmt.Errorf("lhotse prepare %s: %w", corpus, err)
	}
	return nil
}
