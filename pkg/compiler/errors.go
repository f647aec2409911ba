package compiler

import (
	"errors"
	"fmt"
)

var (
	ErrLex      = errors.New("lex error")
	ErrSyntax   = errors.New("syntax error")
	ErrSemantic = errors.New("semantic error")
)

// LexError reports a character that does not start any token.
type LexError struct {
	Char rune
	Line int
	Col  int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("unexpected char %q at %d:%d", e.Char, e.Line, e.Col)
}

func (e *LexError) Unwrap() error { return ErrLex }

// SyntaxError reports a token the grammar does not allow at its position.
// Snippet holds the offending source line, trimmed.
type SyntaxError struct {
	Msg     string
	Line    int
	Col     int
	Snippet string
}

func (e *SyntaxError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("line %d:%d: %s", e.Line, e.Col, e.Msg)
	}
	return fmt.Sprintf("line %d:%d: %s\n  |> %s", e.Line, e.Col, e.Msg, e.Snippet)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// SemanticError reports a declaration or typing rule violation.
type SemanticError struct {
	Msg  string
	Line int
	Col  int
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("%s at %d:%d", e.Msg, e.Line, e.Col)
}

func (e *SemanticError) Unwrap() error { return ErrSemantic }

// Stage names the pipeline stage err originated from, for diagnostics such
// as "semantic error: ...". It returns "compile" for anything else.
func Stage(err error) string {
	switch {
	case errors.Is(err, ErrLex):
		return "lex"
	case errors.Is(err, ErrSyntax):
		return "syntax"
	case errors.Is(err, ErrSemantic):
		return "semantic"
	default:
		return "compile"
	}
}
