package compiler

import (
	"bytes"
	"errors"
	"testing"

	"minitac/pkg/tac"
	"minitac/pkg/vm"
)

// runCode compiles src, runs it and returns everything it printed.
func runCode(t *testing.T, src string) string {
	t.Helper()
	unit, err := Compile(src)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	// Execute the text form so the formatter and parser are exercised too.
	machine, err := vm.Load(unit.TAC())
	if err != nil {
		t.Fatalf("Load failed: %v\n%s", err, unit.TAC())
	}
	var out bytes.Buffer
	machine.Output = &out
	if err := machine.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return out.String()
}

func TestEndToEnd(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"Precedence", "int x; x = 2 + 3 * 4; print x;", "14\n"},
		{"Not", "bool a; bool b; a = true; b = !a; print b;", "0\n"},
		{"While", "int i; i = 0; while (i < 3) { print i; i = i + 1; }", "0\n1\n2\n"},
		{"IfElse", "int x; x = 5; if (x > 3) { print 1; } else { print 0; }", "1\n"},
		{"ElseTaken", "int x; x = 2; if (x > 3) { print 1; } else { print 0; }", "0\n"},
		{"IfSkipped", "int x; x = 0; if (x > 0) { print 1; } print 2;", "2\n"},
		{"LeftAssociative", "print 10 - 3 - 2; print 100 / 10 / 5;", "5\n2\n"},
		{"Parentheses", "print (2 + 3) * 4;", "20\n"},
		{"TruncatingDivision", "print 7 / 2; print -7 / 2; print 7 / -2;", "3\n-3\n-3\n"},
		{"Negation", "int x; x = 4; print -x; print - -x;", "-4\n4\n"},
		{"PrintBool", "bool b; b = 1 < 2; print b; print !b;", "1\n0\n"},
		{"Logical", "print true && false; print true || false; print !(false || false);", "0\n1\n1\n"},
		{"BoolComparison", "print true == true; print false < true; print true != false;", "1\n1\n1\n"},
		{"Relational", "print 1 <= 1; print 2 >= 3; print 4 == 4; print 4 != 4;", "1\n0\n1\n0\n"},
		{
			name: "Factorial",
			src: `
int n; int acc;
n = 5; acc = 1;
while (n > 1) { acc = acc * n; n = n - 1; }
print acc;`,
			want: "120\n",
		},
		{
			name: "NestedLoops",
			src: `
int i; int j; int count;
i = 0; count = 0;
while (i < 3) {
  j = 0;
  while (j < i) { count = count + 1; j = j + 1; }
  i = i + 1;
}
print count;`,
			want: "3\n",
		},
		{
			name: "FlatScopeAtRuntime",
			src: `
bool first;
first = true;
if (first) { int shared; shared = 41; } else { }
shared = shared + 1;
print shared;`,
			want: "42\n",
		},
		{
			name: "TemporaryNamedVariable",
			src:  "int t1; t1 = 7; print t1 * 2 + t1;",
			want: "21\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := runCode(t, tc.src); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestUnassignedVariableIsRuntimeError(t *testing.T) {
	unit, err := Compile("int x; print x;")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	prog, err := tac.Assemble(unit.Code)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	machine := vm.New(prog)
	machine.Output = &bytes.Buffer{}
	err = machine.Run()
	if !errors.Is(err, vm.ErrUndefined) {
		t.Fatalf("expected undefined variable error, got %v", err)
	}
}

// Evaluating both sides of && means the division still runs.
func TestNoShortCircuitAtRuntime(t *testing.T) {
	unit, err := Compile("bool b; b = false && (1 / 0 == 0);")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	prog, err := tac.Assemble(unit.Code)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	machine := vm.New(prog)
	var trace bytes.Buffer
	machine.Trace = &trace
	err = machine.Run()
	if !errors.Is(err, vm.ErrDivideByZero) {
		t.Fatalf("expected division by zero, got %v", err)
	}
	if !bytes.Contains(trace.Bytes(), []byte("t1 := 1 / 0")) {
		t.Errorf("trace does not show the right operand being evaluated:\n%s", trace.String())
	}
}

func TestDeterministicOutput(t *testing.T) {
	src := `
int i; int sum;
i = 0; sum = 0;
while (i < 20) {
  if (i / 2 * 2 == i) { sum = sum + i; } else { sum = sum - 1; }
  print sum;
  i = i + 1;
}`
	first := runCode(t, src)
	for n := 0; n < 3; n++ {
		if got := runCode(t, src); got != first {
			t.Fatalf("run %d differs:\n%s\n---\n%s", n, got, first)
		}
	}
}

func TestCompileReportsFirstStageError(t *testing.T) {
	tests := []struct {
		src       string
		sentinel  error
		wantStage string
	}{
		{"int x; x = 1 @ 2;", ErrLex, "lex"},
		{"int x; x = ;", ErrSyntax, "syntax"},
		{"int x; bool x;", ErrSemantic, "semantic"},
		{"int x; x = true;", ErrSemantic, "semantic"},
	}
	for _, tc := range tests {
		unit, err := Compile(tc.src)
		if unit != nil {
			t.Errorf("%q: expected no unit on failure", tc.src)
		}
		if !errors.Is(err, tc.sentinel) {
			t.Errorf("%q: expected %v, got %v", tc.src, tc.sentinel, err)
		}
		if got := Stage(err); got != tc.wantStage {
			t.Errorf("%q: Stage = %s, want %s", tc.src, got, tc.wantStage)
		}
	}
}
