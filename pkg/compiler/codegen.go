package compiler

import (
	"fmt"

	"minitac/pkg/tac"
)

// CodeGen lowers a checked AST to three-address code. Declarations emit
// nothing; every operator node gets a fresh temporary and every branch gets
// fresh labels. Temporaries and labels are numbered from 1 per generator.
type CodeGen struct {
	syms      *SymbolTable
	code      []tac.Instr
	nextTemp  int
	nextLabel int
}

// NewCodeGen returns a generator. syms lists the declared variables so that
// no temporary is given a name already in use; it may be nil.
func NewCodeGen(syms *SymbolTable) *CodeGen {
	return &CodeGen{syms: syms}
}

// Generate lowers prog with a fresh generator.
func Generate(prog *Program, syms *SymbolTable) ([]tac.Instr, error) {
	g := NewCodeGen(syms)
	for _, stmt := range prog.Stmts {
		if err := stmt.Accept(g); err != nil {
			return nil, err
		}
	}
	return g.code, nil
}

func (g *CodeGen) newTemp() string {
	for {
		g.nextTemp++
		name := fmt.Sprintf("t%d", g.nextTemp)
		if g.syms == nil {
			return name
		}
		if _, taken := g.syms.Lookup(name); !taken {
			return name
		}
	}
}

func (g *CodeGen) newLabel() string {
	g.nextLabel++
	return fmt.Sprintf("L%d", g.nextLabel)
}

func (g *CodeGen) emit(in tac.Instr) {
	g.code = append(g.code, in)
}

func (g *CodeGen) assign(dest string, value tac.Expr) {
	g.emit(tac.Instr{Op: tac.OpAssign, Dest: dest, Value: value})
}

func (g *CodeGen) label(name string) {
	g.emit(tac.Instr{Op: tac.OpLabel, Label: name})
}

func (g *CodeGen) jump(name string) {
	g.emit(tac.Instr{Op: tac.OpGoto, Label: name})
}

func (g *CodeGen) jumpIfFalse(cond tac.Operand, name string) {
	g.emit(tac.Instr{Op: tac.OpIfFalse, Value: cond, Label: name})
}

func (g *CodeGen) expr(e Expr) (tac.Operand, error) {
	return WalkExpr[tac.Operand](e, g)
}

func (g *CodeGen) VisitVarDecl(s *VarDecl) error {
	return nil
}

func (g *CodeGen) VisitAssign(s *Assign) error {
	v, err := g.expr(s.Value)
	if err != nil {
		return err
	}
	g.assign(s.Name, v)
	return nil
}

func (g *CodeGen) VisitIf(s *IfStmt) error {
	cond, err := g.expr(s.Cond)
	if err != nil {
		return err
	}
	if s.Else == nil {
		end := g.newLabel()
		g.jumpIfFalse(cond, end)
		if err := s.Then.Accept(g); err != nil {
			return err
		}
		g.label(end)
		return nil
	}

	elseLabel := g.newLabel()
	end := g.newLabel()
	g.jumpIfFalse(cond, elseLabel)
	if err := s.Then.Accept(g); err != nil {
		return err
	}
	g.jump(end)
	g.label(elseLabel)
	if err := s.Else.Accept(g); err != nil {
		return err
	}
	g.label(end)
	return nil
}

func (g *CodeGen) VisitWhile(s *WhileStmt) error {
	start := g.newLabel()
	end := g.newLabel()
	g.label(start)
	cond, err := g.expr(s.Cond)
	if err != nil {
		return err
	}
	g.jumpIfFalse(cond, end)
	if err := s.Body.Accept(g); err != nil {
		return err
	}
	g.jump(start)
	g.label(end)
	return nil
}

func (g *CodeGen) VisitPrint(s *PrintStmt) error {
	v, err := g.expr(s.Value)
	if err != nil {
		return err
	}
	g.emit(tac.Instr{Op: tac.OpPrint, Value: v})
	return nil
}

func (g *CodeGen) VisitBlock(s *Block) error {
	for _, stmt := range s.Stmts {
		if err := stmt.Accept(g); err != nil {
			return err
		}
	}
	return nil
}

func (g *CodeGen) VisitIntLiteral(e *IntLiteral) (tac.Operand, error) {
	return tac.ConstOperand(e.Value), nil
}

func (g *CodeGen) VisitBoolLiteral(e *BoolLiteral) (tac.Operand, error) {
	if e.Value {
		return tac.ConstOperand(1), nil
	}
	return tac.ConstOperand(0), nil
}

func (g *CodeGen) VisitVarRef(e *VarRef) (tac.Operand, error) {
	return tac.VarOperand(e.Name), nil
}

func (g *CodeGen) VisitUnary(e *UnaryExpr) (tac.Operand, error) {
	v, err := g.expr(e.Right)
	if err != nil {
		return tac.Operand{}, err
	}
	switch e.Op {
	case MINUS:
		t := tac.TempOperand(g.newTemp())
		g.assign(t.Name, &tac.Binary{Op: tac.Sub, L: tac.ConstOperand(0), R: v})
		return t, nil
	case NOT:
		// !v is 1 - (v != 0)
		t := tac.TempOperand(g.newTemp())
		inner := tac.TempOperand(g.newTemp())
		g.assign(inner.Name, &tac.Binary{Op: tac.Ne, L: v, R: tac.ConstOperand(0)})
		g.assign(t.Name, &tac.Binary{Op: tac.Sub, L: tac.ConstOperand(1), R: inner})
		return t, nil
	}
	return tac.Operand{}, fmt.Errorf("line %d: unsupported unary operator %s", e.At.Line, e.Op)
}

var binaryOperators = map[TokenType]tac.Operator{
	PLUS:       tac.Add,
	MINUS:      tac.Sub,
	STAR:       tac.Mul,
	SLASH:      tac.Div,
	LESS:       tac.Lt,
	LESS_EQ:    tac.Le,
	GREATER:    tac.Gt,
	GREATER_EQ: tac.Ge,
	EQUALS:     tac.Eq,
	NOT_EQ:     tac.Ne,
}

// VisitBinary lowers both operands before combining them. && and || are
// therefore never short-circuited.
func (g *CodeGen) VisitBinary(e *BinaryExpr) (tac.Operand, error) {
	l, err := g.expr(e.Left)
	if err != nil {
		return tac.Operand{}, err
	}
	r, err := g.expr(e.Right)
	if err != nil {
		return tac.Operand{}, err
	}
	t := tac.TempOperand(g.newTemp())

	if isLogical(e.Op) {
		op := tac.And
		if e.Op == OR_LOGICAL {
			op = tac.Or
		}
		g.assign(t.Name, &tac.Binary{
			Op: op,
			L:  &tac.Binary{Op: tac.Ne, L: l, R: tac.ConstOperand(0)},
			R:  &tac.Binary{Op: tac.Ne, L: r, R: tac.ConstOperand(0)},
		})
		return t, nil
	}

	op, ok := binaryOperators[e.Op]
	if !ok {
		return tac.Operand{}, fmt.Errorf("line %d: unsupported binary operator %s", e.At.Line, e.Op)
	}
	g.assign(t.Name, &tac.Binary{Op: op, L: l, R: r})
	return t, nil
}
