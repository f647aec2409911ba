// Package tac models three-address code: a linear list of assignments,
// prints, jumps and labels whose right-hand sides are small expression trees.
// It formats instructions as text, parses that text back, and assembles an
// instruction list into an executable Program with resolved jump targets.
package tac

import (
	"fmt"
	"strconv"
	"strings"
)

// Opcode identifies the shape of an instruction.
type Opcode int

const (
	OpAssign  Opcode = iota // Dest := Value
	OpPrint                 // print Value
	OpGoto                  // goto Label
	OpIfFalse               // if Value == 0 goto Label
	OpLabel                 // Label:
)

var opcodeNames = [...]string{
	OpAssign:  "ASSIGN",
	OpPrint:   "PRINT",
	OpGoto:    "GOTO",
	OpIfFalse: "IFFALSE",
	OpLabel:   "LABEL",
}

func (op Opcode) String() string {
	if int(op) >= 0 && int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// Instr is one TAC instruction. Which fields are meaningful depends on Op.
// Target is filled in by the assembler for OpGoto and OpIfFalse.
type Instr struct {
	Op     Opcode
	Dest   string
	Value  Expr
	Label  string
	Target int
}

// IsJump reports whether the instruction transfers control to Label.
func (in Instr) IsJump() bool {
	return in.Op == OpGoto || in.Op == OpIfFalse
}

func (in Instr) String() string {
	switch in.Op {
	case OpAssign:
		return fmt.Sprintf("%s := %s", in.Dest, in.Value)
	case OpPrint:
		return fmt.Sprintf("print %s", in.Value)
	case OpGoto:
		return fmt.Sprintf("goto %s", in.Label)
	case OpIfFalse:
		return fmt.Sprintf("if %s == 0 goto %s", in.Value, in.Label)
	case OpLabel:
		return in.Label + ":"
	}
	return fmt.Sprintf("<%s>", in.Op)
}

// Format renders code as text, one instruction per line.
func Format(code []Instr) string {
	var sb strings.Builder
	for _, in := range code {
		sb.WriteString(in.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ── Expressions ───────────────────────────────────────────────────────────────

// Expr is an instruction right-hand side: an Operand, a *Unary or a *Binary.
type Expr interface {
	tacExpr()
	String() string
}

type OperandKind int

const (
	Const OperandKind = iota
	Var               // a source-level variable
	Temp              // a compiler temporary
)

// Operand is a leaf: an integer constant or a named storage location.
// Variables and temporaries share one namespace at run time.
type Operand struct {
	Kind  OperandKind
	Name  string
	Value int64
}

func (Operand) tacExpr() {}

func (o Operand) String() string {
	if o.Kind == Const {
		return strconv.FormatInt(o.Value, 10)
	}
	return o.Name
}

func ConstOperand(v int64) Operand    { return Operand{Kind: Const, Value: v} }
func VarOperand(name string) Operand  { return Operand{Kind: Var, Name: name} }
func TempOperand(name string) Operand { return Operand{Kind: Temp, Name: name} }

// Operator is a unary or binary expression operator.
type Operator int

const (
	Neg Operator = iota // unary -
	Add
	Sub
	Mul
	Div
	Lt
	Le
	Gt
	Ge
	Eq
	Ne
	And
	Or
)

var operatorText = [...]string{
	Neg: "-",
	Add: "+",
	Sub: "-",
	Mul: "*",
	Div: "/",
	Lt:  "<",
	Le:  "<=",
	Gt:  ">",
	Ge:  ">=",
	Eq:  "==",
	Ne:  "!=",
	And: "&&",
	Or:  "||",
}

func (op Operator) String() string {
	if int(op) >= 0 && int(op) < len(operatorText) {
		return operatorText[op]
	}
	return fmt.Sprintf("Operator(%d)", int(op))
}

// precedence of binary operators; higher binds tighter.
var precedence = map[Operator]int{
	Or:  1,
	And: 2,
	Eq:  3,
	Ne:  3,
	Lt:  4,
	Le:  4,
	Gt:  4,
	Ge:  4,
	Add: 5,
	Sub: 5,
	Mul: 6,
	Div: 6,
}

type Unary struct {
	Op Operator
	X  Expr
}

func (*Unary) tacExpr() {}

func (u *Unary) String() string {
	return u.Op.String() + wrap(u.X)
}

type Binary struct {
	Op Operator
	L  Expr
	R  Expr
}

func (*Binary) tacExpr() {}

func (b *Binary) String() string {
	return fmt.Sprintf("%s %s %s", wrap(b.L), b.Op, wrap(b.R))
}

// wrap parenthesises compound sub-expressions so the text never depends on
// operator precedence.
func wrap(e Expr) string {
	if _, ok := e.(Operand); ok {
		return e.String()
	}
	return "(" + e.String() + ")"
}
