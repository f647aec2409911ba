package vm

import (
	"fmt"

	"minitac/pkg/tac"
)

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// eval computes e over the current variable store. Both operands of a binary
// operator are always evaluated, left first.
func (v *VM) eval(e tac.Expr) (int64, error) {
	switch n := e.(type) {
	case tac.Operand:
		if n.Kind == tac.Const {
			return n.Value, nil
		}
		val, ok := v.vars[n.Name]
		if !ok {
			return 0, fmt.Errorf("%w '%s'", ErrUndefined, n.Name)
		}
		return val, nil

	case *tac.Unary:
		x, err := v.eval(n.X)
		if err != nil {
			return 0, err
		}
		if n.Op != tac.Neg {
			return 0, fmt.Errorf("unsupported unary operator %s", n.Op)
		}
		return -x, nil

	case *tac.Binary:
		l, err := v.eval(n.L)
		if err != nil {
			return 0, err
		}
		r, err := v.eval(n.R)
		if err != nil {
			return 0, err
		}
		return binary(n.Op, l, r)
	}
	return 0, fmt.Errorf("unsupported expression %T", e)
}

// binary applies op with 64-bit wrapping arithmetic. Division truncates
// toward zero.
func binary(op tac.Operator, l, r int64) (int64, error) {
	switch op {
	case tac.Add:
		return l + r, nil
	case tac.Sub:
		return l - r, nil
	case tac.Mul:
		return l * r, nil
	case tac.Div:
		if r == 0 {
			return 0, ErrDivideByZero
		}
		return l / r, nil
	case tac.Lt:
		return boolToInt(l < r), nil
	case tac.Le:
		return boolToInt(l <= r), nil
	case tac.Gt:
		return boolToInt(l > r), nil
	case tac.Ge:
		return boolToInt(l >= r), nil
	case tac.Eq:
		return boolToInt(l == r), nil
	case tac.Ne:
		return boolToInt(l != r), nil
	case tac.And:
		return boolToInt(l != 0 && r != 0), nil
	case tac.Or:
		return boolToInt(l != 0 || r != 0), nil
	}
	return 0, fmt.Errorf("unsupported binary operator %s", op)
}
