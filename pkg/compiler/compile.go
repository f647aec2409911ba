package compiler

import "minitac/pkg/tac"

// Unit is the result of compiling one source file.
type Unit struct {
	Program *Program
	Symbols *SymbolTable
	Code    []tac.Instr
}

// TAC renders the generated code as text.
func (u *Unit) TAC() string {
	return tac.Format(u.Code)
}

// Compile runs the whole front end over src. The returned error is the
// LexError, SyntaxError or SemanticError of the first stage that failed.
func Compile(src string) (*Unit, error) {
	prog, err := Parse(src)
	if err != nil {
		return nil, err
	}

	syms, err := Analyze(prog)
	if err != nil {
		return nil, err
	}

	code, err := Generate(prog, syms)
	if err != nil {
		return nil, err
	}

	return &Unit{Program: prog, Symbols: syms, Code: code}, nil
}
