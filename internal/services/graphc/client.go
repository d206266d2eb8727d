package graphc

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"sluice/internal/fileutil"
	"sluice/internal/tool"
)

// LFstPath returns where the compile script leaves the lexicon FST.
func LFstPath(langDir string) string {
	return filepath.Join(langDir, "L.fst")
}

// LDisambigPath returns where the compile script leaves the
// disambiguated lexicon FST, the artifact later composition consumes.
func LDisambigPath(langDir string) string {
	return filepath.Join(langDir, "L_disambig.fst")
}

// HLGPath returns where the HLG compiler leaves the decoding graph.
func HLGPath(langDir string) string {
	return filepath.Join(langDir, "HLG.fst")
}

// Client wraps the two graph-compilation scripts: the lexicon compiler that
// builds L.fst/L_disambig.fst from a lang directory, and the HLG compiler
// that converts the ARPA model to a grammar and composes the decoding graph.
type Client struct {
	compileLG  string
	compileHLG string
	timeout    time.Duration
	exec       tool.Executor
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

// New constructs a client over the lexicon and HLG compile scripts.
func New(compileLG, compileHLG string, timeoutSeconds int, opts ...Option) (*Client, error) {
	compileLG = strings.TrimSpace(compileLG)
	if compileLG == "" {
		return nil, errors.New("lexicon compiler binary required")
	}
	compileHLG = strings.TrimSpace(compileHLG)
	if compileHLG == "" {
		return nil, errors.New("HLG compiler binary required")
	}
	client := &Client{
		compileLG:  compileLG,
		compileHLG: compileHLG,
		exec:       tool.NewCommandExecutor(nil),
	}
	if timeoutSeconds > 0 {
		client.timeout = time.Duration(timeoutSeconds) * time.Second
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// CompileL builds L.fst and L_disambig.fst from the lexicon and token table
// already present in langDir.
func (c *Client) CompileL(ctx context.Context, langDir string) error {
	langDir = strings.TrimSpace(langDir)
	if langDir == "" {
		return errors.New("lang directory required")
	}

	inv := tool.Invocation{
		Binary:  c.compileLG,
		Args:    []string{"--lang-dir", langDir},
		Timeout: c.timeout,
	}
	if _, err := c.exec.Run(ctx, inv); err != nil {
		return fmt.Errorf("compile lexicon graph in %s: %w", langDir, err)
	}
	if !fileutil.NonEmptyFile(LDisambigPath(langDir)) {
		return fmt.Errorf("compiler produced no %s", LDisambigPath(langDir))
	}
	return nil
}

// CompileHLG composes the decoding graph for langDir from the ARPA model at
// lmPath, leaving HLG.fst in the lang directory.
func (c *Client) CompileHLG(ctx context.Context, langDir, lmPath string) error {
	langDir = strings.TrimSpace(langDir)
	if langDir == "" {
		return errors.New("lang directory required")
	}
	lmPath = strings.TrimSpace(lmPath)
	if lmPath == "" {
		return errors.New("language model path required")
	}
	if !fileutil.NonEmptyFile(lmPath) {
		return fmt.Errorf("language model %s is missing or empty", lmPath)
	}

	inv := tool.Invocation{
		Binary:  c.compileHLG,
		Args:    []string{"--lang-dir", langDir, "--lm", lmPath},
		Timeout: c.timeout,
	}
	if _, err := c.exec.Run(ctx, inv); err != nil {
		return fmt.Errorf("compile HLG in %s: %w", langDir, err)
	}
	if !fileutil.NonEmptyFile(HLGPath(langDir)) {
		return fmt.Errorf("compiler produced no %s", HLGPath(langDir))
	}
	return nil
}
