package compiler

import "fmt"

// Analyzer enforces declaration and typing rules in a single top-to-bottom
// pass, recording each expression's type on the node. It stops at the first
// violation.
type Analyzer struct {
	syms *SymbolTable
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{syms: NewSymbolTable()}
}

// Symbols returns the table built so far.
func (a *Analyzer) Symbols() *SymbolTable {
	return a.syms
}

// Analyze checks every statement of prog in order.
func (a *Analyzer) Analyze(prog *Program) error {
	for _, stmt := range prog.Stmts {
		if err := stmt.Accept(a); err != nil {
			return err
		}
	}
	return nil
}

// Analyze checks prog with a fresh Analyzer and returns its symbol table.
func Analyze(prog *Program) (*SymbolTable, error) {
	a := NewAnalyzer()
	if err := a.Analyze(prog); err != nil {
		return nil, err
	}
	return a.syms, nil
}

func semanticErr(at Pos, format string, args ...any) error {
	return &SemanticError{Msg: fmt.Sprintf(format, args...), Line: at.Line, Col: at.Col}
}

// check infers the type of e and records it on the node.
func (a *Analyzer) check(e Expr) (Type, error) {
	t, err := WalkExpr[Type](e, a)
	if err != nil {
		return TypeUnknown, err
	}
	e.setType(t)
	return t, nil
}

func (a *Analyzer) VisitVarDecl(s *VarDecl) error {
	if s.Type != TypeInt && s.Type != TypeBool {
		return semanticErr(s.At, "Unknown type for variable '%s'", s.Name)
	}
	if _, ok := a.syms.Declare(s.Name, s.Type, s.At); !ok {
		return semanticErr(s.At, "Variable '%s' already declared", s.Name)
	}
	return nil
}

func (a *Analyzer) VisitAssign(s *Assign) error {
	sym, ok := a.syms.Lookup(s.Name)
	if !ok {
		return semanticErr(s.At, "Undeclared variable '%s'", s.Name)
	}
	t, err := a.check(s.Value)
	if err != nil {
		return err
	}
	if t != sym.Type {
		return semanticErr(s.At, "Type mismatch in assignment to '%s': %s = %s", s.Name, sym.Type, t)
	}
	return nil
}

func (a *Analyzer) checkCondition(cond Expr, stmt string) error {
	t, err := a.check(cond)
	if err != nil {
		return err
	}
	if t != TypeBool {
		return semanticErr(cond.Pos(), "Condition in %s must be bool", stmt)
	}
	return nil
}

func (a *Analyzer) VisitIf(s *IfStmt) error {
	if err := a.checkCondition(s.Cond, "if"); err != nil {
		return err
	}
	if err := s.Then.Accept(a); err != nil {
		return err
	}
	if s.Else != nil {
		return s.Else.Accept(a)
	}
	return nil
}

func (a *Analyzer) VisitWhile(s *WhileStmt) error {
	if err := a.checkCondition(s.Cond, "while"); err != nil {
		return err
	}
	return s.Body.Accept(a)
}

func (a *Analyzer) VisitPrint(s *PrintStmt) error {
	_, err := a.check(s.Value)
	return err
}

func (a *Analyzer) VisitBlock(s *Block) error {
	for _, stmt := range s.Stmts {
		if err := stmt.Accept(a); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) VisitIntLiteral(e *IntLiteral) (Type, error) {
	return TypeInt, nil
}

func (a *Analyzer) VisitBoolLiteral(e *BoolLiteral) (Type, error) {
	return TypeBool, nil
}

func (a *Analyzer) VisitVarRef(e *VarRef) (Type, error) {
	sym, ok := a.syms.Lookup(e.Name)
	if !ok {
		return TypeUnknown, semanticErr(e.At, "Undeclared variable '%s'", e.Name)
	}
	return sym.Type, nil
}

func (a *Analyzer) VisitUnary(e *UnaryExpr) (Type, error) {
	t, err := a.check(e.Right)
	if err != nil {
		return TypeUnknown, err
	}
	switch e.Op {
	case MINUS:
		if t != TypeInt {
			return TypeUnknown, semanticErr(e.At, "Unary - expects int")
		}
		return TypeInt, nil
	case NOT:
		if t != TypeBool {
			return TypeUnknown, semanticErr(e.At, "Unary ! expects bool")
		}
		return TypeBool, nil
	}
	return TypeUnknown, semanticErr(e.At, "Unknown unary operator %s", e.Op)
}

func (a *Analyzer) VisitBinary(e *BinaryExpr) (Type, error) {
	lt, err := a.check(e.Left)
	if err != nil {
		return TypeUnknown, err
	}
	rt, err := a.check(e.Right)
	if err != nil {
		return TypeUnknown, err
	}
	switch {
	case isArithmetic(e.Op):
		if lt != TypeInt || rt != TypeInt {
			return TypeUnknown, semanticErr(e.At, "Arithmetic operators expect int operands")
		}
		return TypeInt, nil
	case isRelational(e.Op):
		if lt != rt {
			return TypeUnknown, semanticErr(e.At, "Comparison operands must have same type")
		}
		return TypeBool, nil
	case isLogical(e.Op):
		if lt != TypeBool || rt != TypeBool {
			return TypeUnknown, semanticErr(e.At, "Logical operators expect bool operands")
		}
		return TypeBool, nil
	}
	return TypeUnknown, semanticErr(e.At, "Unknown binary operator %s", e.Op)
}
