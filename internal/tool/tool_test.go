package tool

import (
	"bytes"
	"context"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestRunCapturesStdout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	exec := NewCommandExecutor(nil)
	var out bytes.Buffer

	res, err := exec.Run(context.Background(), Invocation{
		Binary: "sh",
		Args:   []string{"-c", "printf 'line one\\nline two\\n'"},
		Stdout: &out,
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.ExitCode != 0 {
		t.Fatalf("expected exit 0, got %d", res.ExitCode)
	}
	if got := out.String(); got != "line one\nline two\n" {
		t.Fatalf("unexpected stdout capture: %q", got)
	}
}

func TestRunStreamsLines(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	exec := NewCommandExecutor(nil)
	var lines []string

	_, err := exec.Run(context.Background(), Invocation{
		Binary: "sh",
		Args:   []string{"-c", "echo alpha; echo beta 1>&2"},
		OnLine: func(line string) { lines = append(lines, line) },
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	joined := strings.Join(lines, ",")
	if !strings.Contains(joined, "alpha") || !strings.Contains(joined, "beta") {
		t.Fatalf("expected both streams forwarded, got %q", joined)
	}
}

func TestRunReportsExitStatus(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	exec := NewCommandExecutor(nil)

	res, err := exec.Run(context.Background(), Invocation{
		Binary: "sh",
		Args:   []string{"-c", "exit 3"},
	})
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if res.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", res.ExitCode)
	}
}

func TestRunMissingBinary(t *testing.T) {
	exec := NewCommandExecutor(nil)
	if _, err := exec.Run(context.Background(), Invocation{Binary: "  "}); err == nil {
		t.Fatal("expected error for empty binary")
	}
	if _, err := exec.Run(context.Background(), Invocation{Binary: "definitely-not-a-real-binary-name"}); err == nil {
		t.Fatal("expected error for unknown binary")
	}
}

func TestRunTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	exec := NewCommandExecutor(nil)

	_, err := exec.Run(context.Background(), Invocation{
		Binary:  "sh",
		Args:    []string{"-c", "sleep 5"},
		Timeout: 50 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("expected timeout message, got %v", err)
	}
}
