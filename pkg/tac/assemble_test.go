package tac

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestAssembleSourceMap(t *testing.T) {
	code := `
; Line 2: comment
i := 0            ; Line 3 -> Code[0]
L1:               ; Line 4: label, points at Code[1]
t1 := i < 2       ; Line 5 -> Code[1]
if t1 == 0 goto L2
print i           ; Line 7 -> Code[3]

t2 := i + 1       ; Line 9 -> Code[4]
i := t2
goto L1           ; Line 11 -> Code[6]
L2:               ; Line 12: label at the end, points at len(Code)
`
	prog, err := AssembleText(code)
	if err != nil {
		t.Fatalf("AssembleText failed: %v", err)
	}

	if len(prog.Code) != 7 {
		t.Fatalf("expected 7 instructions, got %d", len(prog.Code))
	}
	for _, in := range prog.Code {
		if in.Op == OpLabel {
			t.Errorf("label marker left in Code: %s", in)
		}
	}

	wantLabels := map[string]int{"L1": 1, "L2": 7}
	if !reflect.DeepEqual(prog.Labels, wantLabels) {
		t.Errorf("Labels = %v; want %v", prog.Labels, wantLabels)
	}

	wantLines := []int{3, 5, 6, 7, 9, 10, 11}
	if !reflect.DeepEqual(prog.Lines, wantLines) {
		t.Errorf("Lines = %v; want %v", prog.Lines, wantLines)
	}

	if prog.Code[2].Target != 7 {
		t.Errorf("if-goto target = %d; want 7", prog.Code[2].Target)
	}
	if prog.Code[6].Target != 1 {
		t.Errorf("goto target = %d; want 1", prog.Code[6].Target)
	}
	if prog.Line(0) != 3 || prog.Line(-1) != 0 || prog.Line(7) != 0 {
		t.Errorf("Line lookups wrong: %d %d %d", prog.Line(0), prog.Line(-1), prog.Line(7))
	}
}

func TestAssembleStructured(t *testing.T) {
	code := []Instr{
		{Op: OpLabel, Label: "top"},
		{Op: OpGoto, Label: "end"},
		{Op: OpLabel, Label: "end"},
	}
	prog, err := Assemble(code)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if len(prog.Code) != 1 || prog.Code[0].Target != 1 {
		t.Fatalf("unexpected program: %+v", prog.Code)
	}
	if !reflect.DeepEqual(prog.Lines, []int{2}) {
		t.Errorf("Lines = %v; want [2]", prog.Lines)
	}
	if prog.Text() != "top:\ngoto end\nend:\n" {
		t.Errorf("Text() = %q", prog.Text())
	}
	// The input slice is not modified.
	if code[1].Target != 0 {
		t.Errorf("Assemble mutated its input")
	}
}

func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"Duplicate", "L1:\nx := 1\nL1:\n", "duplicate label 'L1' on line 3"},
		{"Undefined", "x := 1\ngoto L9\n", "undefined label 'L9' on line 2"},
		{"UndefinedConditional", "if x == 0 goto nowhere\n", "undefined label 'nowhere' on line 1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := AssembleText(tc.text)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrAssemble) {
				t.Errorf("expected ErrAssemble, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not contain %q", err, tc.want)
			}
		})
	}
}

func TestAssembleRejectsBadNames(t *testing.T) {
	if _, err := Assemble([]Instr{{Op: OpLabel, Label: "1bad"}}); !errors.Is(err, ErrAssemble) {
		t.Errorf("expected ErrAssemble for bad label, got %v", err)
	}
	if _, err := Assemble([]Instr{{Op: OpAssign, Dest: "", Value: ConstOperand(1)}}); !errors.Is(err, ErrAssemble) {
		t.Errorf("expected ErrAssemble for empty destination, got %v", err)
	}
}

func TestAssembleTextParseError(t *testing.T) {
	_, err := AssembleText("x := 1\nbogus line here\n")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if perr.Line != 2 {
		t.Errorf("line = %d; want 2", perr.Line)
	}
}

func TestAssembleEmpty(t *testing.T) {
	prog, err := AssembleText("\n; nothing\n")
	if err != nil {
		t.Fatalf("AssembleText failed: %v", err)
	}
	if len(prog.Code) != 0 {
		t.Errorf("expected no code, got %d instructions", len(prog.Code))
	}
}
