package vm

import (
	"errors"
	"fmt"
)

var (
	ErrRuntime      = errors.New("runtime error")
	ErrDivideByZero = errors.New("division by zero")
	ErrUndefined    = errors.New("undefined variable")
	ErrBadJump      = errors.New("jump target out of range")
	ErrBadOpcode    = errors.New("unrecognized instruction")
)

// RuntimeError is a fatal condition raised while loading or executing a
// program. PC is -1 when the program could not be loaded at all.
type RuntimeError struct {
	PC    int
	Line  int
	Instr string
	Err   error
}

func (e *RuntimeError) Error() string {
	if e.PC < 0 {
		return fmt.Sprintf("runtime error: %v", e.Err)
	}
	return fmt.Sprintf("runtime error at pc %d (line %d: %s): %v", e.PC, e.Line, e.Instr, e.Err)
}

func (e *RuntimeError) Unwrap() []error {
	return []error{ErrRuntime, e.Err}
}
