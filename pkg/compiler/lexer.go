package compiler

import (
	"fmt"
	"unicode"
)

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"main":   MAIN,
	"reg":    REG,
	"malloc": MALLOC,
	"if":     IF,
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1}
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
	}
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// skipLineComment discards everything up to and including end-of-line.
// The opening "//" must already have been consumed.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) {
		if l.advance() == '\n' {
			return
		}
	}
}

func isHexDigit(r rune) bool {
	return unicode.IsDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// scanIdent collects a full identifier or keyword token.
// The leading letter must still be at l.peek().
func (l *Lexer) scanIdent() Token {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	tt := IDENTIFIER
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: lexeme, Line: line}
}

// scanHex collects a 0x-prefixed hex literal. The '0' must still be at
// l.peek() with 'x' or 'X' right behind it. The lexeme keeps the prefix and
// the original digit case; numeric conversion happens in the parser.
func (l *Lexer) scanHex() (Token, error) {
	line := l.line
	start := l.pos
	l.advance() // 0
	l.advance() // x or X
	for l.pos < len(l.src) && isHexDigit(l.peek()) {
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	if len(lexeme) <= 2 {
		return Token{}, fmt.Errorf("invalid hex literal %q on line %d: expected digits after 0x", lexeme, line)
	}
	return Token{Type: HEX_LITERAL, Lexeme: lexeme, Line: line}, nil
}

// nextToken skips whitespace/comments and returns the next Token.
func (l *Lexer) nextToken() (Token, error) {
	for {
		l.skipWhitespace()
		if l.pos >= len(l.src) {
			return Token{Type: EOF, Lexeme: "", Line: l.line}, nil
		}
		if l.peek() == '/' && l.peek2() == '/' {
			l.advance()
			l.advance()
			l.skipLineComment()
			continue
		}
		break
	}

	ch := l.peek()
	line := l.line

	if unicode.IsLetter(ch) {
		return l.scanIdent(), nil
	}

	if ch == '0' && (l.peek2() == 'x' || l.peek2() == 'X') {
		return l.scanHex()
	}
	// The language has no decimal literal syntax.
	if unicode.IsDigit(ch) {
		return Token{}, fmt.Errorf("invalid number literal starting with %q on line %d: use the 0x prefix for hex values", ch, line)
	}

	l.advance() // consume the character before the switch
	switch ch {
	case '{':
		return Token{LBRACE, "{", line}, nil
	case '}':
		return Token{RBRACE, "}", line}, nil
	case '(':
		return Token{LPAREN, "(", line}, nil
	case ')':
		return Token{RPAREN, ")", line}, nil
	case ';':
		return Token{SEMICOLON, ";", line}, nil
	case '&':
		return Token{AND, "&", line}, nil
	case '|':
		return Token{PIPE, "|", line}, nil
	case '^':
		return Token{CARET, "^", line}, nil
	case '>':
		return Token{GREATER, ">", line}, nil
	case '<':
		return Token{LESS, "<", line}, nil
	case '=':
		if l.peek() == '=' { // lookahead: distinguish = vs ==
			l.advance()
			return Token{EQUALS, "==", line}, nil
		}
		return Token{ASSIGN, "=", line}, nil
	case '+':
		if l.peek() == '+' {
			l.advance()
			return Token{PLUS_PLUS, "++", line}, nil
		}
		return Token{PLUS, "+", line}, nil
	case '-':
		if l.peek() == '-' {
			l.advance()
			return Token{MINUS_MINUS, "--", line}, nil
		}
		return Token{MINUS, "-", line}, nil
	case '/':
		// "//" comments were handled above, so a lone '/' is illegal.
		return Token{}, fmt.Errorf("unexpected character %q on line %d", ch, line)
	default:
		return Token{}, fmt.Errorf("unexpected character %q on line %d", ch, line)
	}
}

// Lex tokenises src and returns all tokens including the final EOF token.
// It returns a non-nil error on the first illegal character or malformed literal.
func Lex(src string) ([]Token, error) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}
