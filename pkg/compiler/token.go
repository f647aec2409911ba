package compiler

import "fmt"

// TokenType identifies a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENTIFIER // variable name
	INTEGER    // decimal integer literal

	// Keywords
	INT   // "int"
	BOOL  // "bool"
	IF    // "if"
	ELSE  // "else"
	WHILE // "while"
	PRINT // "print"
	TRUE  // "true"
	FALSE // "false"

	// Paired delimiters
	LBRACE // {
	RBRACE // }
	LPAREN // (
	RPAREN // )

	// Punctuation
	SEMICOLON // ;
	COMMA     // ,

	// Arithmetic operators
	PLUS  // +
	MINUS // -
	STAR  // *
	SLASH // /

	// Logical operators
	AND_LOGICAL // &&
	OR_LOGICAL  // ||
	NOT         // !

	ASSIGN // =

	// Comparison
	EQUALS     // ==
	NOT_EQ     // !=
	LESS       // <
	GREATER    // >
	LESS_EQ    // <=
	GREATER_EQ // >=
)

var tokenNames = [...]string{
	EOF:         "EOF",
	IDENTIFIER:  "IDENTIFIER",
	INTEGER:     "INTEGER",
	INT:         "INT",
	BOOL:        "BOOL",
	IF:          "IF",
	ELSE:        "ELSE",
	WHILE:       "WHILE",
	PRINT:       "PRINT",
	TRUE:        "TRUE",
	FALSE:       "FALSE",
	LBRACE:      "LBRACE",
	RBRACE:      "RBRACE",
	LPAREN:      "LPAREN",
	RPAREN:      "RPAREN",
	SEMICOLON:   "SEMICOLON",
	COMMA:       "COMMA",
	PLUS:        "PLUS",
	MINUS:       "MINUS",
	STAR:        "STAR",
	SLASH:       "SLASH",
	AND_LOGICAL: "AND_LOGICAL",
	OR_LOGICAL:  "OR_LOGICAL",
	NOT:         "NOT",
	ASSIGN:      "ASSIGN",
	EQUALS:      "EQUALS",
	NOT_EQ:      "NOT_EQ",
	LESS:        "LESS",
	GREATER:     "GREATER",
	LESS_EQ:     "LESS_EQ",
	GREATER_EQ:  "GREATER_EQ",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// TokenKind is the coarse category of a TokenType.
type TokenKind int

const (
	KindEOF TokenKind = iota
	KindIdent
	KindKeyword
	KindNumber
	KindOperator
	KindSymbol
)

var kindNames = [...]string{
	KindEOF:      "EOF",
	KindIdent:    "ID",
	KindKeyword:  "KW",
	KindNumber:   "NUMBER",
	KindOperator: "OP",
	KindSymbol:   "SYMBOL",
}

func (k TokenKind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Kind reports the category tt belongs to.
func (tt TokenType) Kind() TokenKind {
	switch {
	case tt == EOF:
		return KindEOF
	case tt == IDENTIFIER:
		return KindIdent
	case tt == INTEGER:
		return KindNumber
	case tt >= INT && tt <= FALSE:
		return KindKeyword
	case tt >= LBRACE && tt <= COMMA:
		return KindSymbol
	default:
		return KindOperator
	}
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Line   int    // 1-based source line
	Col    int    // 1-based column of the first character
}

// Pos returns the token's source position.
func (t Token) Pos() Pos {
	return Pos{Line: t.Line, Col: t.Col}
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  line %d:%d", t.Type, t.Lexeme, t.Line, t.Col)
}
