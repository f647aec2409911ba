package tac

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   Instr
		wantOk bool
	}{
		{"Blank", "   ", Instr{}, false},
		{"Comment", "; just a comment", Instr{}, false},
		{"HashComment", "# also a comment", Instr{}, false},
		{"Label", "L1:", Instr{Op: OpLabel, Label: "L1"}, true},
		{"LabelWithSpace", "  loop :  ", Instr{Op: OpLabel, Label: "loop"}, true},
		{
			"AssignConst", "x := 5",
			Instr{Op: OpAssign, Dest: "x", Value: ConstOperand(5)}, true,
		},
		{
			"AssignTight", "t1:=a+b",
			Instr{Op: OpAssign, Dest: "t1", Value: &Binary{Op: Add, L: VarOperand("a"), R: VarOperand("b")}}, true,
		},
		{
			"AssignWithComment", "x := t2 ; copy",
			Instr{Op: OpAssign, Dest: "x", Value: TempOperand("t2")}, true,
		},
		{
			"Print", "print x",
			Instr{Op: OpPrint, Value: VarOperand("x")}, true,
		},
		{
			"PrintParen", "print(x)",
			Instr{Op: OpPrint, Value: VarOperand("x")}, true,
		},
		{"Goto", "goto L2", Instr{Op: OpGoto, Label: "L2"}, true},
		{
			"IfFalse", "if t1 == 0 goto L3",
			Instr{Op: OpIfFalse, Value: TempOperand("t1"), Label: "L3"}, true,
		},
		{
			"IfFalseExpression", "if a < b == 0 goto done",
			Instr{Op: OpIfFalse, Value: &Binary{Op: Lt, L: VarOperand("a"), R: VarOperand("b")}, Label: "done"}, true,
		},
		{
			"AssignToKeywordLikeName", "print := 3",
			Instr{Op: OpAssign, Dest: "print", Value: ConstOperand(3)}, true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok, err := parseLine(tc.input, 1)
			if err != nil {
				t.Fatalf("parseLine(%q) failed: %v", tc.input, err)
			}
			if ok != tc.wantOk {
				t.Fatalf("parseLine(%q) ok = %v; want %v", tc.input, ok, tc.wantOk)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("parseLine(%q) = %#v; want %#v", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseLineErrors(t *testing.T) {
	tests := []string{
		"x = 5",
		"print",
		"goto",
		"goto L1 L2",
		"if x goto L1",
		"if x == 1 goto L1",
		"if x == 0 jump L1",
		"if == 0 goto L1",
		"x := 1 +",
		"x := (1 + 2",
		"x := 1 2",
		"x := a @ b",
		"halt",
		"1 := x",
	}
	for _, input := range tests {
		_, _, err := parseLine(input, 7)
		if err == nil {
			t.Errorf("parseLine(%q): expected error", input)
			continue
		}
		if !errors.Is(err, ErrParse) {
			t.Errorf("parseLine(%q): expected ErrParse, got %v", input, err)
		}
		var perr *ParseError
		if errors.As(err, &perr) && perr.Line != 7 {
			t.Errorf("parseLine(%q): line = %d; want 7", input, perr.Line)
		}
	}
}

func TestParseSkipsBlankLines(t *testing.T) {
	code, lines, err := parse("\n; header\nx := 1\n\nL1:\nprint x\n")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(code) != 3 {
		t.Fatalf("got %d instructions, want 3", len(code))
	}
	if !reflect.DeepEqual(lines, []int{3, 5, 6}) {
		t.Errorf("lines = %v; want [3 5 6]", lines)
	}
}

func TestFormatRoundTrip(t *testing.T) {
	code := []Instr{
		{Op: OpAssign, Dest: "i", Value: ConstOperand(0)},
		{Op: OpLabel, Label: "L1"},
		{Op: OpAssign, Dest: "t1", Value: &Binary{Op: Lt, L: VarOperand("i"), R: ConstOperand(3)}},
		{Op: OpIfFalse, Value: TempOperand("t1"), Label: "L2"},
		{Op: OpAssign, Dest: "t2", Value: &Binary{
			Op: And,
			L:  &Binary{Op: Ne, L: VarOperand("a"), R: ConstOperand(0)},
			R:  &Binary{Op: Ne, L: VarOperand("b"), R: ConstOperand(0)},
		}},
		{Op: OpAssign, Dest: "t3", Value: &Unary{Op: Neg, X: VarOperand("i")}},
		{Op: OpPrint, Value: VarOperand("i")},
		{Op: OpGoto, Label: "L1"},
		{Op: OpLabel, Label: "L2"},
	}
	text := Format(code)
	want := "i := 0\nL1:\nt1 := i < 3\nif t1 == 0 goto L2\nt2 := (a != 0) && (b != 0)\nt3 := -i\nprint i\ngoto L1\nL2:\n"
	if text != want {
		t.Fatalf("Format:\n%s\nwant:\n%s", text, want)
	}

	parsed, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !reflect.DeepEqual(parsed, code) {
		t.Errorf("round trip mismatch:\ngot  %v\nwant %v", parsed, code)
	}
}
