package tool

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"sluice/internal/logging"
)

// Invocation describes one external command run.
type Invocation struct {
	// Binary is the executable name or path.
	Binary string
	// Args are passed verbatim.
	Args []string
	// Dir is the working directory; empty means the process default.
	Dir string
	// Env entries are appended to the inherited environment.
	Env []string
	// Stdout, when non-nil, receives the raw standard output. Tools that
	// print their artifact to stdout (ARPA emitters and the like) capture it
	// here; log streaming still sees stderr.
	Stdout io.Writer
	// OnLine, when non-nil, receives each output line not claimed by Stdout.
	OnLine func(string)
	// Timeout bounds the invocation. Zero means no limit, matching the
	// historical behavior of the shell recipe this pipeline replaces.
	Timeout time.Duration
}

// Result reports how an invocation finished.
type Result struct {
	ExitCode int
	Duration time.Duration
}

// Executor runs external commands. Stages never call os/exec directly; tests
// substitute a stub to count or fail invocations.
type Executor interface {
	Run(ctx context.Context, inv Invocation) (Result, error)
}

// CommandExecutor is the production Executor backed by os/exec.
type CommandExecutor struct {
	logger *slog.Logger
}

// NewCommandExecutor constructs an executor that streams tool output to the
// given logger at debug level.
func NewCommandExecutor(logger *slog.Logger) *CommandExecutor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &CommandExecutor{logger: logger}
}

// Run executes the invocation, streaming output and returning the exit status.
// A non-zero exit is returned as an error carrying the code in Result.
func (e *CommandExecutor) Run(ctx context.Context, inv Invocation) (Result, error) {
	binary := strings.TrimSpace(inv.Binary)
	if binary == "" {
		return Result{ExitCode: -1}, errors.New("tool binary required")
	}

	runCtx := ctx
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, binary, inv.Args...) //nolint:gosec
	cmd.Dir = inv.Dir
	if len(inv.Env) > 0 {
		cmd.Env = append(cmd.Environ(), inv.Env...)
	}

	forward := inv.OnLine
	if forward == nil {
		logger := e.logger.With(logging.String(logging.FieldTool, binary))
		forward = func(line string) {
			logger.Debug("tool output", logging.String("line", line))
		}
	}

	var stdout io.Reader
	if inv.Stdout != nil {
		cmd.Stdout = inv.Stdout
	} else {
		pipe, err := cmd.StdoutPipe()
		if err != nil {
			return Result{ExitCode: -1}, fmt.Errorf("stdout pipe: %w", err)
		}
		stdout = pipe
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("stderr pipe: %w", err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("start %s: %w", binary, err)
	}

	var wg sync.WaitGroup
	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			forward(scanner.Text())
		}
	}
	if stdout != nil {
		wg.Add(1)
		go scan(stdout)
	}
	wg.Add(1)
	go scan(stderr)
	wg.Wait()

	waitErr := cmd.Wait()
	result := Result{ExitCode: 0, Duration: time.Since(start)}
	if waitErr == nil {
		return result, nil
	}

	result.ExitCode = -1
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	}
	if runCtx.Err() != nil && ctx.Err() == nil {
		return result, fmt.Errorf("%s timed out after %s", binary, inv.Timeout)
	}
	return result, fmt.Errorf("%s exited with status %d: %w", binary, result.ExitCode, waitErr)
}
