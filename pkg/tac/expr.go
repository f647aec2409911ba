package tac

import (
	"fmt"
	"strconv"
	"strings"
)

type tokKind int

const (
	tokName tokKind = iota
	tokInt
	tokOp // operators, parentheses, ":" and ":="
)

type token struct {
	kind tokKind
	text string
}

// twoCharOps are matched before any single-character operator.
var twoCharOps = []string{":=", "<=", ">=", "==", "!=", "&&", "||"}

const oneCharOps = "+-*/<>():"

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isIdentifier reports whether s is a valid variable, temporary or label name.
func isIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentStart(s[i]) && !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// tokenize splits one line of TAC text.
func tokenize(s string) ([]token, error) {
	var toks []token
	i := 0
scan:
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++
			continue
		case isIdentStart(c):
			j := i + 1
			for j < len(s) && (isIdentStart(s[j]) || isDigit(s[j])) {
				j++
			}
			toks = append(toks, token{tokName, s[i:j]})
			i = j
			continue
		case isDigit(c):
			j := i + 1
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			toks = append(toks, token{tokInt, s[i:j]})
			i = j
			continue
		}
		for _, op := range twoCharOps {
			if strings.HasPrefix(s[i:], op) {
				toks = append(toks, token{tokOp, op})
				i += len(op)
				continue scan
			}
		}
		if strings.IndexByte(oneCharOps, c) >= 0 {
			toks = append(toks, token{tokOp, string(c)})
			i++
			continue
		}
		return nil, fmt.Errorf("unexpected character %q", c)
	}
	return toks, nil
}

var binaryOps = map[string]Operator{
	"+":  Add,
	"-":  Sub,
	"*":  Mul,
	"/":  Div,
	"<":  Lt,
	"<=": Le,
	">":  Gt,
	">=": Ge,
	"==": Eq,
	"!=": Ne,
	"&&": And,
	"||": Or,
}

// exprParser is a precedence-climbing parser over a token slice.
type exprParser struct {
	toks []token
	pos  int
}

func (p *exprParser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *exprParser) parse(minPrec int) (Expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokOp {
			return lhs, nil
		}
		op, isBinary := binaryOps[tok.text]
		if !isBinary || precedence[op] < minPrec {
			return lhs, nil
		}
		p.pos++
		rhs, err := p.parse(precedence[op] + 1)
		if err != nil {
			return nil, err
		}
		lhs = &Binary{Op: op, L: lhs, R: rhs}
	}
}

func (p *exprParser) parseUnary() (Expr, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("unexpected end of expression")
	}
	p.pos++
	switch {
	case tok.kind == tokInt:
		v, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("constant %s out of range", tok.text)
		}
		return ConstOperand(v), nil
	case tok.kind == tokName:
		return nameOperand(tok.text), nil
	case tok.text == "-":
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: Neg, X: x}, nil
	case tok.text == "(":
		inner, err := p.parse(1)
		if err != nil {
			return nil, err
		}
		if closing, ok := p.peek(); !ok || closing.text != ")" {
			return nil, fmt.Errorf("missing ')'")
		}
		p.pos++
		return inner, nil
	}
	return nil, fmt.Errorf("unexpected %q in expression", tok.text)
}

// nameOperand classifies a name: t<digits> is a temporary by convention.
func nameOperand(name string) Operand {
	if len(name) > 1 && name[0] == 't' {
		if _, err := strconv.Atoi(name[1:]); err == nil {
			return TempOperand(name)
		}
	}
	return VarOperand(name)
}

// parseExprTokens parses toks as a single complete expression.
func parseExprTokens(toks []token) (Expr, error) {
	if len(toks) == 0 {
		return nil, fmt.Errorf("missing expression")
	}
	p := &exprParser{toks: toks}
	e, err := p.parse(1)
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		return nil, fmt.Errorf("unexpected %q after expression", tok.text)
	}
	return e, nil
}

// ParseExpr parses a standalone TAC expression such as "(a != 0) && (b != 0)".
func ParseExpr(s string) (Expr, error) {
	toks, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	return parseExprTokens(toks)
}
