// Package vm executes assembled three-address code.
package vm

import (
	"fmt"
	"io"
	"os"
	"sort"

	"minitac/pkg/tac"
)

// VM runs one Program. Variables and temporaries live in a single store
// keyed by name. A VM is not safe for concurrent use.
type VM struct {
	prog *tac.Program
	vars map[string]int64

	PC     int
	Halted bool
	Steps  int // instructions executed so far

	// Err is the fatal error that stopped execution, if any. Once set,
	// Step keeps returning it.
	Err error

	// Output receives print results, one value per line.
	// If nil, os.Stdout is used.
	Output io.Writer

	// Trace, if set, receives one line per executed instruction.
	Trace io.Writer
}

// New returns a VM positioned at the first instruction of prog.
func New(prog *tac.Program) *VM {
	return &VM{
		prog:   prog,
		vars:   make(map[string]int64),
		Halted: len(prog.Code) == 0,
	}
}

// Load parses and assembles TAC text into a fresh VM.
func Load(text string) (*VM, error) {
	prog, err := tac.AssembleText(text)
	if err != nil {
		return nil, &RuntimeError{PC: -1, Err: err}
	}
	return New(prog), nil
}

func (v *VM) outputSink() io.Writer {
	if v.Output != nil {
		return v.Output
	}
	return os.Stdout
}

func (v *VM) Program() *tac.Program {
	return v.prog
}

// Lookup returns the current value of a variable or temporary.
func (v *VM) Lookup(name string) (int64, bool) {
	val, ok := v.vars[name]
	return val, ok
}

// Vars returns a copy of the variable store.
func (v *VM) Vars() map[string]int64 {
	out := make(map[string]int64, len(v.vars))
	for k, val := range v.vars {
		out[k] = val
	}
	return out
}

// VarNames returns the names in the store, sorted.
func (v *VM) VarNames() []string {
	names := make([]string, 0, len(v.vars))
	for k := range v.vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (v *VM) fail(pc int, err error) error {
	rerr := &RuntimeError{PC: pc, Line: v.prog.Line(pc), Err: err}
	if pc >= 0 && pc < len(v.prog.Code) {
		rerr.Instr = v.prog.Code[pc].String()
	}
	v.Err = rerr
	return rerr
}

// Step executes the instruction at PC. It is a no-op once the program has
// halted.
func (v *VM) Step() error {
	if v.Err != nil {
		return v.Err
	}
	if v.Halted {
		return nil
	}
	code := v.prog.Code
	if v.PC < 0 || v.PC > len(code) {
		return v.fail(v.PC, fmt.Errorf("%w: pc %d", ErrBadJump, v.PC))
	}
	if v.PC == len(code) {
		v.Halted = true
		return nil
	}

	in := code[v.PC]
	if v.Trace != nil {
		fmt.Fprintf(v.Trace, "%4d %4d: %s\n", v.PC, v.prog.Line(v.PC), in)
	}
	v.Steps++
	next := v.PC + 1

	switch in.Op {
	case tac.OpAssign:
		val, err := v.eval(in.Value)
		if err != nil {
			return v.fail(v.PC, err)
		}
		v.vars[in.Dest] = val
	case tac.OpPrint:
		val, err := v.eval(in.Value)
		if err != nil {
			return v.fail(v.PC, err)
		}
		if _, err := fmt.Fprintln(v.outputSink(), val); err != nil {
			return v.fail(v.PC, err)
		}
	case tac.OpGoto:
		next = in.Target
	case tac.OpIfFalse:
		val, err := v.eval(in.Value)
		if err != nil {
			return v.fail(v.PC, err)
		}
		if val == 0 {
			next = in.Target
		}
	default:
		return v.fail(v.PC, fmt.Errorf("%w: %s", ErrBadOpcode, in.Op))
	}

	if next < 0 || next > len(code) {
		return v.fail(v.PC, fmt.Errorf("%w: %d", ErrBadJump, next))
	}
	v.PC = next
	if v.PC == len(code) {
		v.Halted = true
	}
	return nil
}

// Run steps until the program falls off the end or fails. There is no step
// limit: a program that loops forever runs forever.
func (v *VM) Run() error {
	for !v.Halted {
		if err := v.Step(); err != nil {
			return err
		}
	}
	return nil
}

// RunSteps executes at most n instructions and reports how many ran.
func (v *VM) RunSteps(n int) (int, error) {
	ran := 0
	for ran < n && !v.Halted {
		before := v.Steps
		if err := v.Step(); err != nil {
			return ran, err
		}
		ran += v.Steps - before
	}
	return ran, nil
}
