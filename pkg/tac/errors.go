package tac

import (
	"errors"
	"fmt"
)

var (
	ErrParse    = errors.New("tac parse error")
	ErrAssemble = errors.New("tac assembly error")
)

// ParseError reports a line of TAC text that matches no instruction shape.
type ParseError struct {
	Line int
	Text string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Msg, e.Text)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// AssembleError reports a label problem found while resolving jumps.
type AssembleError struct {
	Line int
	Msg  string
}

func (e *AssembleError) Error() string {
	return fmt.Sprintf("%s on line %d", e.Msg, e.Line)
}

func (e *AssembleError) Unwrap() error { return ErrAssemble }
