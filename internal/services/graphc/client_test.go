package graphc_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sluice/internal/services/graphc"
	"sluice/internal/tool"
)

// fstCreatingExecutor writes the FST artifact the script under test is
// expected to produce into the --lang-dir argument.
type fstCreatingExecutor struct {
	fstName string
	calls   int
	invs    []tool.Invocation
	err     error
}

func (f *fstCreatingExecutor) Run(ctx context.Context, inv tool.Invocation) (tool.Result, error) {
	f.calls++
	cloned := inv
	cloned.Args = append([]string(nil), inv.Args...)
	f.invs = append(f.invs, cloned)
	if f.err != nil {
		return tool.Result{ExitCode: 1}, f.err
	}
	langDir := ""
	for i, arg := range inv.Args {
		if arg == "--lang-dir" && i+1 < len(inv.Args) {
			langDir = inv.Args[i+1]
		}
	}
	if langDir == "" {
		return tool.Result{}, errors.New("no --lang-dir in args")
	}
	return tool.Result{}, os.WriteFile(filepath.Join(langDir, f.fstName), []byte("fst"), 0o644)
}

func newClient(t *testing.T, exec tool.Executor) *graphc.Client {
	t.Helper()
	client, err := graphc.New("compile_lg", "compile_hlg", 5, graphc.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestNewRequiresBothBinaries(t *testing.T) {
	if _, err := graphc.New("", "compile_hlg", 0); err == nil {
		t.Fatal("expected error for blank lexicon compiler")
	}
	if _, err := graphc.New("compile_lg", "  ", 0); err == nil {
		t.Fatal("expected error for blank HLG compiler")
	}
}

func TestCompileLInvokesScriptAndVerifiesOutput(t *testing.T) {
	langDir := t.TempDir()
	exec := &fstCreatingExecutor{fstName: "L_disambig.fst"}
	client := newClient(t, exec)

	if err := client.CompileL(context.Background(), langDir); err != nil {
		t.Fatalf("CompileL returned error: %v", err)
	}
	if exec.calls != 1 {
		t.Fatalf("expected 1 invocation, got %d", exec.calls)
	}
	got := exec.invs[0]
	if got.Binary != "compile_lg" {
		t.Fatalf("unexpected binary %q", got.Binary)
	}
	want := []string{"--lang-dir", langDir}
	if !equalStrings(got.Args, want) {
		t.Fatalf("unexpected args: got %v want %v", got.Args, want)
	}
}

func TestCompileLErrorsWhenScriptLeavesNothing(t *testing.T) {
	langDir := t.TempDir()
	client := newClient(t, noopExecutor{})

	err := client.CompileL(context.Background(), langDir)
	if err == nil {
		t.Fatal("expected error when no FST produced")
	}
	if !strings.Contains(err.Error(), "L_disambig.fst") {
		t.Fatalf("expected missing-FST error, got: %v", err)
	}
}

func TestCompileHLGPassesLangDirAndModel(t *testing.T) {
	langDir := t.TempDir()
	lmPath := filepath.Join(t.TempDir(), "3gram.arpa")
	if err := os.WriteFile(lmPath, []byte("\\data\\\n"), 0o644); err != nil {
		t.Fatalf("write arpa: %v", err)
	}
	exec := &fstCreatingExecutor{fstName: "HLG.fst"}
	client := newClient(t, exec)

	if err := client.CompileHLG(context.Background(), langDir, lmPath); err != nil {
		t.Fatalf("CompileHLG returned error: %v", err)
	}
	got := exec.invs[0]
	if got.Binary != "compile_hlg" {
		t.Fatalf("unexpected binary %q", got.Binary)
	}
	want := []string{"--lang-dir", langDir, "--lm", lmPath}
	if !equalStrings(got.Args, want) {
		t.Fatalf("unexpected args: got %v want %v", got.Args, want)
	}
	if _, err := os.Stat(graphc.HLGPath(langDir)); err != nil {
		t.Fatalf("expected HLG.fst in lang dir: %v", err)
	}
}

func TestCompileHLGRequiresModelFile(t *testing.T) {
	client := newClient(t, &fstCreatingExecutor{fstName: "HLG.fst"})
	err := client.CompileHLG(context.Background(), t.TempDir(), filepath.Join(t.TempDir(), "absent.arpa"))
	if err == nil {
		t.Fatal("expected error for missing model")
	}
	if !strings.Contains(err.Error(), "missing or empty") {
		t.Fatalf("expected missing-model error, got: %v", err)
	}
}

func TestCompileHLGReturnsExecutorError(t *testing.T) {
	lmPath := filepath.Join(t.TempDir(), "3gram.arpa")
	if err := os.WriteFile(lmPath, []byte("\\data\\\n"), 0o644); err != nil {
		t.Fatalf("write arpa: %v", err)
	}
	client := newClient(t, &fstCreatingExecutor{err: errors.New("boom")})
	if err := client.CompileHLG(context.Background(), t.TempDir(), lmPath); err == nil {
		t.Fatal("expected error from executor")
	}
}

type noopExecutor struct{}

func (noopExecutor) Run(ctx context.Context, inv tool.Invocation) (tool.Result, error) {
	return tool.Result{}, nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
