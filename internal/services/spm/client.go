package spm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"sluice/internal/fileutil"
	"sluice/internal/tool"
)

// TrainRequest describes one BPE training run.
type TrainRequest struct {
	// InputPath is the sentence-per-line training text.
	InputPath string
	// ModelPrefix is the output prefix; spm_train writes <prefix>.model and
	// <prefix>.vocab next to it.
	ModelPrefix string
	VocabSize   int
	// CharacterCoverage defaults to 1.0 when zero, the usual setting for
	// English transcripts.
	CharacterCoverage float64
	// InputSentenceSize caps how many sentences the trainer samples. Zero
	// leaves the trainer default in place.
	InputSentenceSize int
	// UserSymbols are reserved pieces injected ahead of learned subwords.
	UserSymbols []string
}

// ModelPath returns the path of the trained model file.
func (r TrainRequest) ModelPath() string {
	return r.ModelPrefix + ".model"
}

// VocabPath returns the path of the trainer's vocabulary listing.
func (r TrainRequest) VocabPath() string {
	return r.ModelPrefix + ".vocab"
}

func (r TrainRequest) validate() error {
	if strings.TrimSpace(r.InputPath) == "" {
		return errors.New("training text path required")
	}
	if strings.TrimSpace(r.ModelPrefix) == "" {
		return errors.New("model prefix required")
	}
	if r.VocabSize < 1 {
		return fmt.Errorf("vocab size must be positive, got %d", r.VocabSize)
	}
	return nil
}

// Client wraps the SentencePiece trainer.
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

// New constructs a client for the given spm_train binary.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("spm_train binary required")
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

// Train runs one BPE training and verifies the model file was produced.
// Word boundaries are the unit of training, so <unk> keeps piece ID 2 and
// sentence markers are disabled; downstream decoding supplies its own.
func (c *Client) Train(ctx context.Context, req TrainRequest) error {
	if err := req.validate(); err != nil {
		return err
	}

	coverage := req.CharacterCoverage
	if coverage <= 0 {
		coverage = 1.0
	}

	args := []string{
		"--input=" + req.InputPath,
		"--model_prefix=" + req.ModelPrefix,
		"--model_type=bpe",
		"--vocab_size=" + strconv.Itoa(req.VocabSize),
		"--character_coverage=" + strconv.FormatFloat(coverage, 'g', -1, 64),
	}
	if req.InputSentenceSize > 0 {
		args = append(args, "--input_sentence_size="+strconv.Itoa(req.InputSentenceSize))
	}
	if len(req.UserSymbols) > 0 {
		args = append(args, "--user_defined_symbols="+strings.Join(req.UserSymbols, ","))
	}
	args = append(args, "--unk_id=2", "--bos_id=-1", "--eos_id=-1")

	inv := tool.Invocation{
		Binary:  c.binary,
		Args:    args,
		Timeout: c.timeout,
	}
	if _, err := c.exec.Run(ctx, inv); err != nil {
		return fmt.Errorf("spm_train vocab %d: %w", req.VocabSize, err)
	}
	if !fileutil.NonEmptyFile(req.ModelPath()) {
		return fmt.Errorf("spm_train produced no model file at %s", req.ModelPath())
	}
	return nil
}
