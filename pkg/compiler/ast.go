package compiler

import (
	"fmt"
	"strings"
)

// Pos is a 1-based source position.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Expr is any expression node. The set of implementations is closed; code
// that needs to handle every variant goes through ExprVisitor.
type Expr interface {
	exprNode()
	Pos() Pos
	// Type is the static type recorded by the Analyzer, TypeUnknown before.
	Type() Type
	setType(Type)
	String() string
}

// Stmt is any statement node, including declarations.
type Stmt interface {
	stmtNode()
	Pos() Pos
	Accept(v StmtVisitor) error
	String() string
}

// exprInfo carries the fields shared by every expression node.
type exprInfo struct {
	At  Pos
	typ Type
}

func (e *exprInfo) exprNode()      {}
func (e *exprInfo) Pos() Pos       { return e.At }
func (e *exprInfo) Type() Type     { return e.typ }
func (e *exprInfo) setType(t Type) { e.typ = t }

// ── Expressions ───────────────────────────────────────────────────────────────

// IntLiteral is a decimal integer constant.
type IntLiteral struct {
	exprInfo
	Value int64
}

func (e *IntLiteral) String() string { return fmt.Sprintf("%d", e.Value) }

// BoolLiteral is true or false.
type BoolLiteral struct {
	exprInfo
	Value bool
}

func (e *BoolLiteral) String() string { return fmt.Sprintf("%t", e.Value) }

// VarRef reads a declared variable.
type VarRef struct {
	exprInfo
	Name string
}

func (e *VarRef) String() string { return e.Name }

// BinaryExpr covers arithmetic, relational and logical operators.
type BinaryExpr struct {
	exprInfo
	Op    TokenType
	Left  Expr
	Right Expr
}

func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, opText[e.Op], e.Right)
}

// UnaryExpr is "-" or "!" applied to one operand.
type UnaryExpr struct {
	exprInfo
	Op    TokenType
	Right Expr
}

func (e *UnaryExpr) String() string {
	return fmt.Sprintf("(%s%s)", opText[e.Op], e.Right)
}

// ── Statements ────────────────────────────────────────────────────────────────

type VarDecl struct {
	At   Pos
	Name string
	Type Type
}

func (s *VarDecl) stmtNode()                  {}
func (s *VarDecl) Pos() Pos                   { return s.At }
func (s *VarDecl) Accept(v StmtVisitor) error { return v.VisitVarDecl(s) }
func (s *VarDecl) String() string             { return fmt.Sprintf("VarDecl(%s %s)", s.Type, s.Name) }

type Assign struct {
	At    Pos
	Name  string
	Value Expr
}

func (s *Assign) stmtNode()                  {}
func (s *Assign) Pos() Pos                   { return s.At }
func (s *Assign) Accept(v StmtVisitor) error { return v.VisitAssign(s) }
func (s *Assign) String() string             { return fmt.Sprintf("Assign(%s = %s)", s.Name, s.Value) }

// IfStmt has an optional Else block; Else is nil when absent.
type IfStmt struct {
	At   Pos
	Cond Expr
	Then *Block
	Else *Block
}

func (s *IfStmt) stmtNode()                  {}
func (s *IfStmt) Pos() Pos                   { return s.At }
func (s *IfStmt) Accept(v StmtVisitor) error { return v.VisitIf(s) }
func (s *IfStmt) String() string {
	if s.Else == nil {
		return fmt.Sprintf("If(%s then %s)", s.Cond, s.Then)
	}
	return fmt.Sprintf("If(%s then %s else %s)", s.Cond, s.Then, s.Else)
}

type WhileStmt struct {
	At   Pos
	Cond Expr
	Body *Block
}

func (s *WhileStmt) stmtNode()                  {}
func (s *WhileStmt) Pos() Pos                   { return s.At }
func (s *WhileStmt) Accept(v StmtVisitor) error { return v.VisitWhile(s) }
func (s *WhileStmt) String() string             { return fmt.Sprintf("While(%s do %s)", s.Cond, s.Body) }

type PrintStmt struct {
	At    Pos
	Value Expr
}

func (s *PrintStmt) stmtNode()                  {}
func (s *PrintStmt) Pos() Pos                   { return s.At }
func (s *PrintStmt) Accept(v StmtVisitor) error { return v.VisitPrint(s) }
func (s *PrintStmt) String() string             { return fmt.Sprintf("Print(%s)", s.Value) }

// Block is a braced statement list. It does not open a new scope.
type Block struct {
	At    Pos
	Stmts []Stmt
}

func (s *Block) stmtNode()                  {}
func (s *Block) Pos() Pos                   { return s.At }
func (s *Block) Accept(v StmtVisitor) error { return v.VisitBlock(s) }
func (s *Block) String() string {
	parts := make([]string, len(s.Stmts))
	for i, st := range s.Stmts {
		parts[i] = st.String()
	}
	return "{" + strings.Join(parts, "; ") + "}"
}

// Program is the root of the tree.
type Program struct {
	Stmts []Stmt
}

// String renders one top-level statement per line.
func (p *Program) String() string {
	var sb strings.Builder
	for _, st := range p.Stmts {
		sb.WriteString(st.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ── Visitors ──────────────────────────────────────────────────────────────────

// StmtVisitor has one method per statement variant. Adding a variant adds a
// method here, so every visitor stops compiling until it handles it.
type StmtVisitor interface {
	VisitVarDecl(s *VarDecl) error
	VisitAssign(s *Assign) error
	VisitIf(s *IfStmt) error
	VisitWhile(s *WhileStmt) error
	VisitPrint(s *PrintStmt) error
	VisitBlock(s *Block) error
}

// ExprVisitor computes an R for each expression variant.
type ExprVisitor[R any] interface {
	VisitIntLiteral(e *IntLiteral) (R, error)
	VisitBoolLiteral(e *BoolLiteral) (R, error)
	VisitVarRef(e *VarRef) (R, error)
	VisitBinary(e *BinaryExpr) (R, error)
	VisitUnary(e *UnaryExpr) (R, error)
}

// WalkExpr dispatches e to the matching method of v.
func WalkExpr[R any](e Expr, v ExprVisitor[R]) (R, error) {
	switch n := e.(type) {
	case *IntLiteral:
		return v.VisitIntLiteral(n)
	case *BoolLiteral:
		return v.VisitBoolLiteral(n)
	case *VarRef:
		return v.VisitVarRef(n)
	case *BinaryExpr:
		return v.VisitBinary(n)
	case *UnaryExpr:
		return v.VisitUnary(n)
	}
	var zero R
	return zero, fmt.Errorf("unknown expression node %T", e)
}

// ── Operators ─────────────────────────────────────────────────────────────────

var opText = map[TokenType]string{
	PLUS:        "+",
	MINUS:       "-",
	STAR:        "*",
	SLASH:       "/",
	LESS:        "<",
	LESS_EQ:     "<=",
	GREATER:     ">",
	GREATER_EQ:  ">=",
	EQUALS:      "==",
	NOT_EQ:      "!=",
	AND_LOGICAL: "&&",
	OR_LOGICAL:  "||",
	NOT:         "!",
}

func isArithmetic(tt TokenType) bool {
	return tt == PLUS || tt == MINUS || tt == STAR || tt == SLASH
}

func isRelational(tt TokenType) bool {
	switch tt {
	case LESS, LESS_EQ, GREATER, GREATER_EQ, EQUALS, NOT_EQ:
		return true
	}
	return false
}

func isLogical(tt TokenType) bool {
	return tt == AND_LOGICAL || tt == OR_LOGICAL
}
