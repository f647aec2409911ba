package tac

import "fmt"

// Program is assembled TAC ready for execution. Code holds no label markers;
// every jump's Target indexes into Code. A jump to a label at the very end
// targets len(Code).
type Program struct {
	Code   []Instr
	Labels map[string]int
	// Lines[i] is the 1-based text line Code[i] came from.
	Lines []int
	// Source is the instruction list as given, labels included.
	Source []Instr
}

// Text renders the program in canonical TAC form.
func (p *Program) Text() string {
	return Format(p.Source)
}

// Line returns the text line of the instruction at pc, or 0.
func (p *Program) Line(pc int) int {
	if pc < 0 || pc >= len(p.Lines) {
		return 0
	}
	return p.Lines[pc]
}

type Assembler struct {
	labels map[string]int
}

func NewAssembler() *Assembler {
	return &Assembler{labels: make(map[string]int)}
}

// Assemble resolves the labels of code. Line numbers are taken to be the
// positions in Format(code).
func Assemble(code []Instr) (*Program, error) {
	lines := make([]int, len(code))
	for i := range lines {
		lines[i] = i + 1
	}
	return NewAssembler().Assemble(code, lines)
}

// AssembleText parses and assembles TAC text.
func AssembleText(text string) (*Program, error) {
	code, lines, err := parse(text)
	if err != nil {
		return nil, err
	}
	return NewAssembler().Assemble(code, lines)
}

func (a *Assembler) Assemble(code []Instr, lines []int) (*Program, error) {
	if len(lines) != len(code) {
		return nil, fmt.Errorf("assemble: %d instructions but %d line numbers", len(code), len(lines))
	}
	if err := a.pass1(code, lines); err != nil {
		return nil, err
	}
	return a.pass2(code, lines)
}

// pass1 records the index each label will have once markers are removed.
func (a *Assembler) pass1(code []Instr, lines []int) error {
	index := 0
	for i, in := range code {
		if in.Op != OpLabel {
			index++
			continue
		}
		if !isIdentifier(in.Label) {
			return &AssembleError{Line: lines[i], Msg: fmt.Sprintf("invalid label name '%s'", in.Label)}
		}
		if _, exists := a.labels[in.Label]; exists {
			return &AssembleError{Line: lines[i], Msg: fmt.Sprintf("duplicate label '%s'", in.Label)}
		}
		a.labels[in.Label] = index
	}
	return nil
}

// pass2 drops label markers and resolves jump targets.
func (a *Assembler) pass2(code []Instr, lines []int) (*Program, error) {
	prog := &Program{
		Labels: a.labels,
		Source: append([]Instr(nil), code...),
	}
	for i, in := range code {
		if in.Op == OpLabel {
			continue
		}
		if in.Op == OpAssign && !isIdentifier(in.Dest) {
			return nil, &AssembleError{Line: lines[i], Msg: fmt.Sprintf("invalid destination '%s'", in.Dest)}
		}
		if in.IsJump() {
			target, ok := a.labels[in.Label]
			if !ok {
				return nil, &AssembleError{Line: lines[i], Msg: fmt.Sprintf("undefined label '%s'", in.Label)}
			}
			in.Target = target
		}
		prog.Code = append(prog.Code, in)
		prog.Lines = append(prog.Lines, lines[i])
	}
	return prog, nil
}
