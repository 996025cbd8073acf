package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENTIFIER  // register or variable name
	HEX_LITERAL // hex literal, lexeme keeps the 0x prefix and digit case

	// Keywords
	MAIN   // "main"
	REG    // "reg"
	MALLOC // "malloc"
	IF     // "if"

	// Paired delimiters
	LBRACE // {
	RBRACE // }
	LPAREN // (
	RPAREN // )

	// Punctuation
	ASSIGN    // =
	SEMICOLON // ;

	// Operators
	PLUS        // +
	MINUS       // -
	AND         // &
	PIPE        // |
	CARET       // ^
	PLUS_PLUS   // ++
	MINUS_MINUS // --

	// Comparisons
	GREATER // >
	LESS    // <
	EQUALS  // ==
)

var tokenNames = [...]string{
	EOF:         "EOF",
	IDENTIFIER:  "IDENTIFIER",
	HEX_LITERAL: "HEX_LITERAL",
	MAIN:        "MAIN",
	REG:         "REG",
	MALLOC:      "MALLOC",
	IF:          "IF",
	LBRACE:      "LBRACE",
	RBRACE:      "RBRACE",
	LPAREN:      "LPAREN",
	RPAREN:      "RPAREN",
	ASSIGN:      "ASSIGN",
	SEMICOLON:   "SEMICOLON",
	PLUS:        "PLUS",
	MINUS:       "MINUS",
	AND:         "AND",
	PIPE:        "PIPE",
	CARET:       "CARET",
	PLUS_PLUS:   "PLUS_PLUS",
	MINUS_MINUS: "MINUS_MINUS",
	GREATER:     "GREATER",
	LESS:        "LESS",
	EQUALS:      "EQUALS",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Line   int    // 1-based source line
}

func (t Token) String() string {
	return fmt.Sprintf("%-11s %-10q  line %d", t.Type, t.Lexeme, t.Line)
}
