package compiler

import (
	"reflect"
	"testing"
)

func TestLex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
		wantErr  bool
	}{
		{
			name:  "Empty",
			input: "",
			expected: []Token{
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:  "Basic Tokens",
			input: "{ } ( ) = ; + - & | ^ > <",
			expected: []Token{
				{Type: LBRACE, Lexeme: "{", Line: 1},
				{Type: RBRACE, Lexeme: "}", Line: 1},
				{Type: LPAREN, Lexeme: "(", Line: 1},
				{Type: RPAREN, Lexeme: ")", Line: 1},
				{Type: ASSIGN, Lexeme: "=", Line: 1},
				{Type: SEMICOLON, Lexeme: ";", Line: 1},
				{Type: PLUS, Lexeme: "+", Line: 1},
				{Type: MINUS, Lexeme: "-", Line: 1},
				{Type: AND, Lexeme: "&", Line: 1},
				{Type: PIPE, Lexeme: "|", Line: 1},
				{Type: CARET, Lexeme: "^", Line: 1},
				{Type: GREATER, Lexeme: ">", Line: 1},
				{Type: LESS, Lexeme: "<", Line: 1},
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:  "Keywords and Identifiers",
			input: "main reg malloc if counter HL",
			expected: []Token{
				{Type: MAIN, Lexeme: "main", Line: 1},
				{Type: REG, Lexeme: "reg", Line: 1},
				{Type: MALLOC, Lexeme: "malloc", Line: 1},
				{Type: IF, Lexeme: "if", Line: 1},
				{Type: IDENTIFIER, Lexeme: "counter", Line: 1},
				{Type: IDENTIFIER, Lexeme: "HL", Line: 1},
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:  "Keywords Are Case Sensitive",
			input: "Main REG",
			expected: []Token{
				{Type: IDENTIFIER, Lexeme: "Main", Line: 1},
				{Type: IDENTIFIER, Lexeme: "REG", Line: 1},
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:  "Hex Literals Keep Prefix and Digit Case",
			input: "0x08 0X6000 0xAbCd",
			expected: []Token{
				{Type: HEX_LITERAL, Lexeme: "0x08", Line: 1},
				{Type: HEX_LITERAL, Lexeme: "0X6000", Line: 1},
				{Type: HEX_LITERAL, Lexeme: "0xAbCd", Line: 1},
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:  "Greedy Double Tokens",
			input: "== = ++ + -- -",
			expected: []Token{
				{Type: EQUALS, Lexeme: "==", Line: 1},
				{Type: ASSIGN, Lexeme: "=", Line: 1},
				{Type: PLUS_PLUS, Lexeme: "++", Line: 1},
				{Type: PLUS, Lexeme: "+", Line: 1},
				{Type: MINUS_MINUS, Lexeme: "--", Line: 1},
				{Type: MINUS, Lexeme: "-", Line: 1},
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:  "Line Comments",
			input: "A // the accumulator\nB",
			expected: []Token{
				{Type: IDENTIFIER, Lexeme: "A", Line: 1},
				{Type: IDENTIFIER, Lexeme: "B", Line: 2},
				{Type: EOF, Lexeme: "", Line: 2},
			},
		},
		{
			name:  "Comment At End Of Input",
			input: "A // no newline",
			expected: []Token{
				{Type: IDENTIFIER, Lexeme: "A", Line: 1},
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:  "Adjacent Tokens",
			input: "A+B;",
			expected: []Token{
				{Type: IDENTIFIER, Lexeme: "A", Line: 1},
				{Type: PLUS, Lexeme: "+", Line: 1},
				{Type: IDENTIFIER, Lexeme: "B", Line: 1},
				{Type: SEMICOLON, Lexeme: ";", Line: 1},
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:  "Identifier With Trailing Digits",
			input: "var1 r2d2",
			expected: []Token{
				{Type: IDENTIFIER, Lexeme: "var1", Line: 1},
				{Type: IDENTIFIER, Lexeme: "r2d2", Line: 1},
				{Type: EOF, Lexeme: "", Line: 1},
			},
		},
		{
			name:    "Lone Slash",
			input:   "A / B",
			wantErr: true,
		},
		{
			name:    "Decimal Literal",
			input:   "42",
			wantErr: true,
		},
		{
			name:    "Bare Zero",
			input:   "0",
			wantErr: true,
		},
		{
			name:    "Hex Without Digits",
			input:   "0x",
			wantErr: true,
		},
		{
			name:    "Hex Without Digits Before Semicolon",
			input:   "0x;",
			wantErr: true,
		},
		{
			name:    "Unexpected Character",
			input:   "@",
			wantErr: true,
		},
		{
			name:    "Underscore Not Allowed",
			input:   "_name",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Lex(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Lex() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				if !reflect.DeepEqual(got, tt.expected) {
					t.Errorf("Lex() = %v, want %v", got, tt.expected)
				}
			}
		})
	}
}
