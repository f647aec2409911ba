package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser pulls tokens from a Lexer one at a time and builds the AST by
// recursive descent with a single token of lookahead.
//
// Grammar:
//
//	program    = (decl | statement)* EOF
//	decl       = ("int" | "bool") IDENTIFIER ";"
//	statement  = block | if | while | print | assignment
//	block      = "{" (decl | statement)* "}"
//	if         = "if" "(" expression ")" block ("else" block)?
//	while      = "while" "(" expression ")" block
//	print      = "print" expression ";"
//	assignment = IDENTIFIER "=" expression ";"
//	expression = logical_or
//	logical_or = logical_and ("||" logical_and)*
//	logical_and = relational ("&&" relational)*
//	relational = additive (("<"|"<="|">"|">="|"=="|"!=") additive)?
//	additive   = multiplicative (("+" | "-") multiplicative)*
//	multiplicative = unary (("*" | "/") unary)*
//	unary      = ("!" | "-") unary | primary
//	primary    = INTEGER | "true" | "false" | IDENTIFIER | "(" expression ")"
type Parser struct {
	lex         *Lexer
	tok         Token // lookahead
	sourceLines []string
}

// NewParser primes a parser over src. It fails only if the first token
// cannot be lexed.
func NewParser(src string) (*Parser, error) {
	p := &Parser{lex: NewLexer(src), sourceLines: strings.Split(src, "\n")}
	if err := p.next(); err != nil {
		return nil, err
	}
	return p, nil
}

// errorAt builds a SyntaxError carrying the source line where tok appears.
func (p *Parser) errorAt(tok Token, format string, args ...any) error {
	snippet := ""
	if idx := tok.Line - 1; idx >= 0 && idx < len(p.sourceLines) {
		snippet = strings.TrimSpace(p.sourceLines[idx])
	}
	return &SyntaxError{
		Msg:     fmt.Sprintf(format, args...),
		Line:    tok.Line,
		Col:     tok.Col,
		Snippet: snippet,
	}
}

func (p *Parser) next() error {
	tok, err := p.lex.NextToken()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

// peek returns the lookahead token without consuming it.
func (p *Parser) peek() Token {
	return p.tok
}

// advance consumes and returns the lookahead token.
func (p *Parser) advance() (Token, error) {
	tok := p.tok
	if tok.Type == EOF {
		return tok, nil
	}
	return tok, p.next()
}

// expect consumes the lookahead if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.tok
	if tok.Type != tt {
		return tok, p.errorAt(tok, "expected %s, got %s (%q)", tt, tok.Type, tok.Lexeme)
	}
	return p.advance()
}

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (Expr, error) {
	return p.parseLogicalOr()
}

// parseLogicalOr handles ||
func (p *Parser) parseLogicalOr() (Expr, error) {
	expr, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == OR_LOGICAL {
		op, err := p.advance()
		if err != nil {
			return nil, err
		}
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{exprInfo: exprInfo{At: op.Pos()}, Op: op.Type, Left: expr, Right: right}
	}
	return expr, nil
}

// parseLogicalAnd handles &&
func (p *Parser) parseLogicalAnd() (Expr, error) {
	expr, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == AND_LOGICAL {
		op, err := p.advance()
		if err != nil {
			return nil, err
		}
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{exprInfo: exprInfo{At: op.Pos()}, Op: op.Type, Left: expr, Right: right}
	}
	return expr, nil
}

// parseRelational handles at most one comparison: a < b < c is rejected.
func (p *Parser) parseRelational() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if !isRelational(p.peek().Type) {
		return left, nil
	}
	op, err := p.advance()
	if err != nil {
		return nil, err
	}
	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); isRelational(tok.Type) {
		return nil, p.errorAt(tok, "comparison operators cannot be chained, got %s (%q)", tok.Type, tok.Lexeme)
	}
	return &BinaryExpr{exprInfo: exprInfo{At: op.Pos()}, Op: op.Type, Left: left, Right: right}, nil
}

// parseAdditive handles + and -
func (p *Parser) parseAdditive() (Expr, error) {
	expr, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == PLUS || p.peek().Type == MINUS {
		op, err := p.advance()
		if err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{exprInfo: exprInfo{At: op.Pos()}, Op: op.Type, Left: expr, Right: right}
	}
	return expr, nil
}

// parseMultiplicative handles * and /
func (p *Parser) parseMultiplicative() (Expr, error) {
	expr, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == STAR || p.peek().Type == SLASH {
		op, err := p.advance()
		if err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{exprInfo: exprInfo{At: op.Pos()}, Op: op.Type, Left: expr, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if t := p.peek().Type; t == NOT || t == MINUS {
		op, err := p.advance()
		if err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{exprInfo: exprInfo{At: op.Pos()}, Op: op.Type, Right: right}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case INTEGER:
		v, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, p.errorAt(tok, "integer literal %s out of range", tok.Lexeme)
		}
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return &IntLiteral{exprInfo: exprInfo{At: tok.Pos()}, Value: v}, nil
	case TRUE, FALSE:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return &BoolLiteral{exprInfo: exprInfo{At: tok.Pos()}, Value: tok.Type == TRUE}, nil
	case IDENTIFIER:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return &VarRef{exprInfo: exprInfo{At: tok.Pos()}, Name: tok.Lexeme}, nil
	case LPAREN:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return nil, p.errorAt(tok, "expected expression, got %s (%q)", tok.Type, tok.Lexeme)
}

func (p *Parser) parseDecl() (Stmt, error) {
	kw, err := p.advance()
	if err != nil {
		return nil, err
	}
	typ, _ := typeFromKeyword(kw.Type)
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return &VarDecl{At: kw.Pos(), Name: name.Lexeme, Type: typ}, nil
}

func (p *Parser) parseBlock() (*Block, error) {
	open, err := p.expect(LBRACE)
	if err != nil {
		return nil, err
	}
	block := &Block{At: open.Pos()}
	for p.peek().Type != RBRACE && p.peek().Type != EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	if _, err := p.expect(RBRACE); err != nil {
		return nil, err
	}
	return block, nil
}

// parseCondition parses the parenthesised condition of if and while.
func (p *Parser) parseCondition() (Expr, error) {
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *Parser) parseIf() (Stmt, error) {
	kw, err := p.advance()
	if err != nil {
		return nil, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{At: kw.Pos(), Cond: cond, Then: then}
	if p.peek().Type == ELSE {
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		if stmt.Else, err = p.parseBlock(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) parseWhile() (Stmt, error) {
	kw, err := p.advance()
	if err != nil {
		return nil, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{At: kw.Pos(), Cond: cond, Body: body}, nil
}

// parsePrint accepts both "print x;" and "print(x);", the latter through a
// parenthesised primary.
func (p *Parser) parsePrint() (Stmt, error) {
	kw, err := p.advance()
	if err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return &PrintStmt{At: kw.Pos(), Value: value}, nil
}

func (p *Parser) parseAssignment() (Stmt, error) {
	name, err := p.advance()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return &Assign{At: name.Pos(), Name: name.Lexeme, Value: value}, nil
}

func (p *Parser) parseStatement() (Stmt, error) {
	tok := p.peek()
	switch tok.Type {
	case INT, BOOL:
		return p.parseDecl()
	case LBRACE:
		return p.parseBlock()
	case IF:
		return p.parseIf()
	case WHILE:
		return p.parseWhile()
	case PRINT:
		return p.parsePrint()
	case IDENTIFIER:
		return p.parseAssignment()
	}
	return nil, p.errorAt(tok, "expected statement, got %s (%q)", tok.Type, tok.Lexeme)
}

// ParseProgram parses statements until EOF.
func (p *Parser) ParseProgram() (*Program, error) {
	prog := &Program{}
	for p.peek().Type != EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Stmts = append(prog.Stmts, stmt)
	}
	return prog, nil
}

// Parse lexes and parses src into a Program.
func Parse(src string) (*Program, error) {
	p, err := NewParser(src)
	if err != nil {
		return nil, err
	}
	return p.ParseProgram()
}
