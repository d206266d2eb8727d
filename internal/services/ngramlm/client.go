package ngramlm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"sluice/internal/fileutil"
	"sluice/internal/lang"
	"sluice/internal/tool"
)

// EstimateRequest describes one language-model estimation run.
type EstimateRequest struct {
	// TextPath is the normalized, sentence-per-line training text.
	TextPath string
	Order    int
	// OutputPath receives the ARPA model.
	OutputPath string
	// VocabPath, when set, closes the vocabulary to the listed words; tokens
	// outside it map to the unknown word.
	VocabPath string
}

func (r EstimateRequest) validate() error {
	if strings.TrimSpace(r.TextPath) == "" {
		return errors.New("training text path required")
	}
	if r.Order < 1 {
		return fmt.Errorf("model order must be positive, got %d", r.Order)
	}
	if strings.TrimSpace(r.OutputPath) == "" {
		return errors.New("output path required")
	}
	return nil
}

// Client wraps the SRILM-style n-gram estimator.
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

// New constructs a client for the given estimator binary.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("estimator binary required")
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

// Estimate trains an interpolated Kneser-Ney model and captures the ARPA
// output atomically. "-lm -" directs the estimator to stdout, so a failed or
// empty run leaves no artifact behind.
func (c *Client) Estimate(ctx context.Context, req EstimateRequest) error {
	if err := req.validate(); err != nil {
		return err
	}
	if !fileutil.NonEmptyFile(req.TextPath) {
		return fmt.Errorf("training text %s is missing or empty", req.TextPath)
	}

	args := []string{
		"-order", strconv.Itoa(req.Order),
		"-text", req.TextPath,
	}
	if strings.TrimSpace(req.VocabPath) != "" {
		args = append(args, "-vocab", req.VocabPath)
	}
	args = append(args,
		"-unk", "-map-unk", lang.Unknown,
		"-kndiscount", "-interpolate",
		"-lm", "-",
	)

	err := fileutil.AtomicWriteTo(req.OutputPath, 0o644, func(w io.Writer) error {
		capture := &countingWriter{w: w}
		inv := tool.Invocation{
			Binary:  c.binary,
			Args:    args,
			Stdout:  capture,
			Timeout: c.timeout,
		}
		if _, err := c.exec.Run(ctx, inv); err != nil {
			return err
		}
		if capture.n == 0 {
			return errors.New("estimator printed no model")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("estimate %d-gram over %s: %w", req.Order, req.TextPath, err)
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
