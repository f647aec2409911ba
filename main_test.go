package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

// runApp runs the CLI in-process. Exit errors are returned rather than
// terminating the test binary.
func runApp(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp(&out, &errOut)
	app.ExitErrHandler = func(*cli.Context, error) {}
	err = app.Run(append([]string{"minitac"}, args...))
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func exitCode(err error) int {
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return -1
}

func TestCompileWritesDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "arith.src", "int x; x = 2 + 3 * 4; print x;")

	stdout, _, err := runApp(t, "compile", src)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if !strings.Contains(stdout, "compiled 4 instructions") {
		t.Errorf("unexpected stdout: %q", stdout)
	}

	got, err := os.ReadFile(filepath.Join(dir, "arith.tac"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "t1 := 3 * 4\nt2 := 2 + t1\nx := t2\nprint x\n"
	if string(got) != want {
		t.Errorf("TAC mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestCompileExplicitOutputAndShowTAC(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "p.src", "int x; x = 1; print x;")
	out := filepath.Join(dir, "custom.tac")

	stdout, _, err := runApp(t, "compile", "-o", out, "--show-tac", src)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if !strings.Contains(stdout, "x := 1\nprint x\n") {
		t.Errorf("expected TAC on stdout, got %q", stdout)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("expected %s to exist: %v", out, err)
	}
}

func TestCompileSemanticErrorWritesNothing(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{"Redeclaration", "int x; bool x;", "semantic error: Variable 'x' already declared"},
		{"TypeMismatch", "int x; x = true;", "semantic error: Type mismatch in assignment to 'x': int = bool"},
		{"Syntax", "int x x = 1;", "syntax error:"},
		{"Lex", "int x; x = 1 # 2;", "lex error:"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			src := writeFile(t, dir, "bad.src", tc.src)

			stdout, _, err := runApp(t, "compile", src)
			if err == nil {
				t.Fatal("expected compile to fail")
			}
			if exitCode(err) != 1 {
				t.Errorf("expected exit code 1, got %d", exitCode(err))
			}
			if !strings.HasPrefix(err.Error(), tc.wantMsg) {
				t.Errorf("error %q does not start with %q", err, tc.wantMsg)
			}
			if stdout != "" {
				t.Errorf("expected no stdout, got %q", stdout)
			}
			if _, err := os.Stat(filepath.Join(dir, "bad.tac")); !os.IsNotExist(err) {
				t.Errorf("expected no TAC file, stat err = %v", err)
			}
		})
	}
}

func TestRunTACFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "loop.tac", `i := 0
L1:
t1 := i < 3
if t1 == 0 goto L2
print i
t2 := i + 1
i := t2
goto L1
L2:
`)
	stdout, stderr, err := runApp(t, "run", path)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stdout != "0\n1\n2\n" {
		t.Errorf("expected 0 1 2, got %q", stdout)
	}
	if stderr != "" {
		t.Errorf("expected empty stderr, got %q", stderr)
	}
}

func TestRunTraceFlag(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "p.tac", "x := 5\nprint x\n")

	stdout, stderr, err := runApp(t, "run", "--trace", path)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stdout != "5\n" {
		t.Errorf("stdout = %q", stdout)
	}
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 trace lines, got %q", stderr)
	}
	if !strings.HasSuffix(lines[0], "x := 5") || !strings.HasSuffix(lines[1], "print x") {
		t.Errorf("unexpected trace: %q", stderr)
	}
}

func TestRunRuntimeErrorKeepsOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "div.tac", "print 7\nt1 := 1 / 0\nprint t1\n")

	stdout, _, err := runApp(t, "run", path)
	if err == nil {
		t.Fatal("expected runtime failure")
	}
	if exitCode(err) != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode(err))
	}
	if !strings.Contains(err.Error(), "division by zero") {
		t.Errorf("unexpected error: %v", err)
	}
	if stdout != "7\n" {
		t.Errorf("output before the failure should be kept, got %q", stdout)
	}
}

func TestRunUndefinedLabel(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.tac", "goto nowhere\n")

	_, _, err := runApp(t, "run", path)
	if err == nil || !strings.Contains(err.Error(), "undefined label 'nowhere'") {
		t.Fatalf("expected undefined label error, got %v", err)
	}
}

func TestExecScenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"Precedence", "int x; x = 2 + 3 * 4; print x;", "14\n"},
		{"Not", "bool a; bool b; a = true; b = !a; print b;", "0\n"},
		{"While", "int i; i = 0; while (i < 3) { print i; i = i + 1; }", "0\n1\n2\n"},
		{"IfElse", "int x; x = 5; if (x > 3) { print 1; } else { print 0; }", "1\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := writeFile(t, t.TempDir(), "p.src", tc.src)
			stdout, _, err := runApp(t, "exec", src)
			if err != nil {
				t.Fatalf("exec failed: %v", err)
			}
			if stdout != tc.want {
				t.Errorf("got %q, want %q", stdout, tc.want)
			}
		})
	}
}

func TestDump(t *testing.T) {
	src := writeFile(t, t.TempDir(), "p.src", "int x; x = 1; print x;")
	stdout, _, err := runApp(t, "dump", src)
	if err != nil {
		t.Fatalf("dump failed: %v", err)
	}
	for _, section := range []string{"== tokens ==", "== ast ==", "== symbols ==", "== tac =="} {
		if !strings.Contains(stdout, section) {
			t.Errorf("dump missing %q:\n%s", section, stdout)
		}
	}
	if !strings.Contains(stdout, "VarDecl(int x)") {
		t.Errorf("dump missing declaration:\n%s", stdout)
	}
}

func TestTestCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a_ok.src", "int x; x = 2 + 3 * 4; print x;")
	writeFile(t, dir, "b_bad.src", "int x; bool x;")
	writeFile(t, dir, "notes.txt", "ignored")

	stdout, _, err := runApp(t, "test", dir)
	if err != nil {
		t.Fatalf("test command failed: %v", err)
	}

	okAt := strings.Index(stdout, "=== Running a_ok.src ===")
	badAt := strings.Index(stdout, "=== Running b_bad.src ===")
	if okAt < 0 || badAt < 0 || okAt > badAt {
		t.Fatalf("files not run in sorted order:\n%s", stdout)
	}
	if !strings.Contains(stdout, "[OUTPUT]\n14\n") {
		t.Errorf("missing output of a_ok.src:\n%s", stdout)
	}
	if !strings.Contains(stdout, "Compiler error:\nsemantic error: Variable 'x' already declared") {
		t.Errorf("missing compiler error for b_bad.src:\n%s", stdout)
	}
	if !strings.HasSuffix(stdout, "=== DONE ===\n") {
		t.Errorf("missing trailer:\n%s", stdout)
	}
	if strings.Contains(stdout, "notes.txt") {
		t.Errorf("non-source file was run:\n%s", stdout)
	}
	if _, err := os.Stat(filepath.Join(dir, "a_ok.tac")); err != nil {
		t.Errorf("expected a_ok.tac to be written: %v", err)
	}
}

func TestMissingArgument(t *testing.T) {
	_, _, err := runApp(t, "run")
	if exitCode(err) != 2 {
		t.Errorf("expected exit code 2, got %d (%v)", exitCode(err), err)
	}
}
