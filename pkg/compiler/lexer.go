package compiler

import "unicode"

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"int":   INT,
	"bool":  BOOL,
	"if":    IF,
	"else":  ELSE,
	"while": WHILE,
	"print": PRINT,
	"true":  TRUE,
	"false": FALSE,
}

// Lexer holds all mutable state for a single scanning pass over src.
// Tokens are pulled one at a time with NextToken.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
	col  int // 1-based column of the next rune
}

// NewLexer returns a Lexer positioned at the start of src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), line: 1, col: 1}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// skipLineComment discards everything up to end-of-line.
// The opening "//" must already have been consumed.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// scanIdent collects a full identifier or keyword token.
// The first character must still be at l.peek().
func (l *Lexer) scanIdent() Token {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if !isIdentStart(r) && !isDigit(r) {
			break
		}
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	tt := IDENTIFIER
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: lexeme, Line: line, Col: col}
}

// scanInt collects a run of decimal digits. Range checking is left to the
// parser so that the error can name the literal.
func (l *Lexer) scanInt() Token {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.peek()) {
		l.advance()
	}
	return Token{Type: INTEGER, Lexeme: string(l.src[start:l.pos]), Line: line, Col: col}
}

// NextToken scans and returns the next token. Once the input is exhausted it
// keeps returning EOF.
func (l *Lexer) NextToken() (Token, error) {
	for {
		l.skipWhitespace()
		if l.peek() == '/' && l.peek2() == '/' {
			l.advance()
			l.advance()
			l.skipLineComment()
			continue
		}
		break
	}

	if l.pos >= len(l.src) {
		return Token{Type: EOF, Line: l.line, Col: l.col}, nil
	}

	r := l.peek()
	if isIdentStart(r) {
		return l.scanIdent(), nil
	}
	if isDigit(r) {
		return l.scanInt(), nil
	}

	line, col := l.line, l.col
	single := func(tt TokenType) (Token, error) {
		l.advance()
		return Token{Type: tt, Lexeme: string(r), Line: line, Col: col}, nil
	}
	// pair emits the two-rune token when the next rune is second, otherwise
	// falls back to the one-rune token.
	pair := func(second rune, two, one TokenType) (Token, error) {
		if l.peek2() == second {
			l.advance()
			l.advance()
			return Token{Type: two, Lexeme: string([]rune{r, second}), Line: line, Col: col}, nil
		}
		return single(one)
	}

	switch r {
	case '{':
		return single(LBRACE)
	case '}':
		return single(RBRACE)
	case '(':
		return single(LPAREN)
	case ')':
		return single(RPAREN)
	case ';':
		return single(SEMICOLON)
	case ',':
		return single(COMMA)
	case '+':
		return single(PLUS)
	case '-':
		return single(MINUS)
	case '*':
		return single(STAR)
	case '/':
		return single(SLASH)
	case '<':
		return pair('=', LESS_EQ, LESS)
	case '>':
		return pair('=', GREATER_EQ, GREATER)
	case '=':
		return pair('=', EQUALS, ASSIGN)
	case '!':
		return pair('=', NOT_EQ, NOT)
	case '&':
		if l.peek2() == '&' {
			return pair('&', AND_LOGICAL, AND_LOGICAL)
		}
	case '|':
		if l.peek2() == '|' {
			return pair('|', OR_LOGICAL, OR_LOGICAL)
		}
	}

	return Token{}, &LexError{Char: r, Line: line, Col: col}
}

// Lex scans all of src and returns its tokens, terminated by an EOF token.
func Lex(src string) ([]Token, error) {
	l := NewLexer(src)
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}
