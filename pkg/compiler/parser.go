package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// sixteenBitRegisters is the fixed set of 16-bit register pair names. Any
// other identifier used where a register is expected is treated as 8-bit.
var sixteenBitRegisters = map[string]bool{
	"HL": true,
	"BC": true,
	"DE": true,
	"SP": true,
}

// Is16BitRegister reports whether name is one of the register pair names.
func Is16BitRegister(name string) bool {
	return sixteenBitRegisters[name]
}

// hexValue parses the digits of a 0x-prefixed hex lexeme.
func hexValue(lexeme string) (uint64, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(lexeme, "0x"), "0X")
	return strconv.ParseUint(digits, 16, 64)
}

// validateHex enforces the inclusive bit-width bound of a hex literal:
// 0xFF in 8-bit contexts, 0xFFFF in 16-bit contexts.
func validateHex(lexeme string, want16Bit bool) error {
	num, err := hexValue(lexeme)
	if err != nil {
		return fmt.Errorf("invalid hex literal: %s", lexeme)
	}
	if want16Bit {
		if num > 0xFFFF {
			return fmt.Errorf("16-bit value %s exceeds maximum (0xFFFF)", lexeme)
		}
	} else {
		if num > 0xFF {
			return fmt.Errorf("8-bit value %s exceeds maximum (0xFF)", lexeme)
		}
	}
	return nil
}

// is16BitValue reports whether a literal needs 16-bit storage.
func is16BitValue(lexeme string) bool {
	num, err := hexValue(lexeme)
	if err != nil {
		return false
	}
	return num > 0xFF
}

// Parser consumes the flat token slice produced by the Lexer and builds the
// statement list.
//
// Grammar:
//
//	program   = "main" "{" statement* "}"
//	statement = regDecl | varStmt | ifStmt
//	regDecl   = "reg" IDENTIFIER "=" (HEX | "malloc" "(" HEX ")") ";"
//	varStmt   = IDENTIFIER ("=" HEX | ("+"|"-"|"&"|"|"|"^") "B" | "++" | "--") ";"
//	ifStmt    = "if" "(" IDENTIFIER ("<"|">"|"==") IDENTIFIER ")" "{" statement* "}"
type Parser struct {
	tokens      []Token
	pos         int
	sourceLines []string
}

func NewParser(tokens []Token, rawSource string) *Parser {
	return &Parser{tokens: tokens, sourceLines: strings.Split(rawSource, "\n")}
}

// fmtError wraps an error message with the source line where the token appears.
func (p *Parser) fmtError(tok Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	lineIdx := tok.Line - 1 // Lines are 1-based

	snippet := "<source unavailable>"
	if lineIdx >= 0 && lineIdx < len(p.sourceLines) {
		snippet = strings.TrimSpace(p.sourceLines[lineIdx])
	}

	return fmt.Errorf("line %d: %s\n  |> %s", tok.Line, msg, snippet)
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

// peekNext returns the token immediately after the current one.
func (p *Parser) peekNext() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos+1]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.advance()
	if tok.Type != tt {
		return tok, p.fmtError(tok, "expected %s, got %s (%q)", tt, tok.Type, tok.Lexeme)
	}
	return tok, nil
}

// expectSemicolon terminates every non-if statement.
func (p *Parser) expectSemicolon() error {
	tok := p.advance()
	if tok.Type != SEMICOLON {
		return p.fmtError(tok, "expected ';' at the end of the statement")
	}
	return nil
}

// Parse builds the statement list for a whole program. The "main {" header
// and its matching closing brace are both mandatory, and nothing may follow
// the closing brace.
func Parse(tokens []Token, rawSource string) ([]Stmt, error) {
	p := NewParser(tokens, rawSource)

	if p.peek().Type != MAIN || p.peekNext().Type != LBRACE {
		return nil, p.fmtError(p.peek(), "expected 'main{' at the beginning of the file")
	}
	p.advance() // main
	p.advance() // {

	stmts, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(RBRACE); err != nil {
		return nil, p.fmtError(p.peek(), "expected '}' to close the main block")
	}
	if tok := p.peek(); tok.Type != EOF {
		return nil, p.fmtError(tok, "unexpected %s (%q) after the closing '}' of main", tok.Type, tok.Lexeme)
	}

	return stmts, nil
}

// parseBlock parses statements until it sees a closing brace or runs out of
// input. The brace itself is left for the caller to consume.
func (p *Parser) parseBlock() ([]Stmt, error) {
	var stmts []Stmt
	for p.peek().Type != RBRACE && p.peek().Type != EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func (p *Parser) parseStatement() (Stmt, error) {
	switch p.peek().Type {
	case REG:
		return p.parseRegDecl()
	case IDENTIFIER:
		return p.parseVarStmt()
	case IF:
		return p.parseIf()
	default:
		tok := p.peek()
		return nil, p.fmtError(tok, "expected statement, found %s (%q)", tok.Type, tok.Lexeme)
	}
}

// parseRegDecl handles  reg A = 0x08;  and  reg HL = malloc(0x6000);
func (p *Parser) parseRegDecl() (Stmt, error) {
	p.advance() // reg

	regTok := p.advance()
	if regTok.Type != IDENTIFIER {
		return nil, p.fmtError(regTok, "expected a register name after 'reg'")
	}
	register := regTok.Lexeme

	if tok := p.advance(); tok.Type != ASSIGN {
		return nil, p.fmtError(tok, "expected '=' after register name")
	}

	var stmt Stmt
	switch tok := p.advance(); tok.Type {
	case HEX_LITERAL:
		// Direct value assignment: reg A = 0x08;
		// The immediate-move instruction is 8-bit only; a pair load must go
		// through the malloc form, so a pair name here is a width mismatch.
		if Is16BitRegister(register) {
			return nil, p.fmtError(tok, "cannot load a direct immediate into 16-bit register pair %s; use malloc()", register)
		}
		if err := validateHex(tok.Lexeme, false); err != nil {
			return nil, p.fmtError(tok, "%v", err)
		}
		stmt = &MoveImmediate{Register: register, Value: tok.Lexeme}

	case MALLOC:
		// Fixed-address allocation: reg HL = malloc(0x6000);
		if !Is16BitRegister(register) {
			return nil, p.fmtError(regTok, "malloc() requires a 16-bit register pair, got %s", register)
		}
		if _, err := p.expect(LPAREN); err != nil {
			return nil, err
		}
		addrTok := p.advance()
		if addrTok.Type != HEX_LITERAL {
			return nil, p.fmtError(addrTok, "expected a hex address inside malloc()")
		}
		if err := validateHex(addrTok.Lexeme, true); err != nil {
			return nil, p.fmtError(addrTok, "%v", err)
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		stmt = &LoadImmediateExtended{RegisterPair: register, Address: addrTok.Lexeme}

	default:
		return nil, p.fmtError(tok, "invalid expression after '='")
	}

	if err := p.expectSemicolon(); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseVarStmt handles the three identifier-led forms: static assignment,
// binary op against B, and pair increment/decrement.
func (p *Parser) parseVarStmt() (Stmt, error) {
	identTok := p.advance()
	identifier := identTok.Lexeme

	var stmt Stmt
	switch tok := p.advance(); tok.Type {
	case ASSIGN:
		// Static allocation: counter = 0x06;
		valTok := p.advance()
		if valTok.Type != HEX_LITERAL {
			return nil, p.fmtError(valTok, "expected hex value after '=' for variable %q", identifier)
		}
		// Width is inferred from the literal's magnitude, then re-validated
		// against the inferred width.
		is16 := is16BitValue(valTok.Lexeme)
		if err := validateHex(valTok.Lexeme, is16); err != nil {
			return nil, p.fmtError(valTok, "%v", err)
		}
		stmt = &StaticAssignment{Variable: identifier, Value: valTok.Lexeme, Is16Bit: is16}

	case PLUS, MINUS, AND, PIPE, CARET:
		// Binary operation: A + B;
		var operator BinaryOperator
		switch tok.Type {
		case PLUS:
			operator = OpAdd
		case MINUS:
			operator = OpSub
		case AND:
			operator = OpAnd
		case PIPE:
			operator = OpOr
		case CARET:
			operator = OpXor
		}
		operand := p.advance()
		if operand.Type != IDENTIFIER || operand.Lexeme != "B" {
			return nil, p.fmtError(operand, "second operand must be register B")
		}
		stmt = &BinaryOp{Register: identifier, Operator: operator}

	case PLUS_PLUS, MINUS_MINUS:
		// Pointer increment/decrement: HL++; HL--;
		if !Is16BitRegister(identifier) {
			return nil, p.fmtError(identTok, "increment/decrement requires a 16-bit register pair, got %s", identifier)
		}
		stmt = &PointerIncDec{RegisterPair: identifier, IsIncrement: tok.Type == PLUS_PLUS}

	default:
		return nil, p.fmtError(tok, "unexpected token after identifier %q", identifier)
	}

	if err := p.expectSemicolon(); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseIf handles  if (left cond right) { body }  with a recursive body.
func (p *Parser) parseIf() (Stmt, error) {
	p.advance() // if

	if tok := p.advance(); tok.Type != LPAREN {
		return nil, p.fmtError(tok, "expected '(' after 'if'")
	}

	leftTok := p.advance()
	if leftTok.Type != IDENTIFIER {
		return nil, p.fmtError(leftTok, "expected register or variable name in condition")
	}

	var condition Condition
	switch tok := p.advance(); tok.Type {
	case GREATER:
		condition = CondGreater
	case LESS:
		condition = CondLess
	case EQUALS:
		condition = CondEqual
	default:
		return nil, p.fmtError(tok, "expected condition: '>', '<', or '=='")
	}

	rightTok := p.advance()
	if rightTok.Type != IDENTIFIER {
		return nil, p.fmtError(rightTok, "expected register or variable name in condition")
	}

	if tok := p.advance(); tok.Type != RPAREN {
		return nil, p.fmtError(tok, "expected ')' after condition")
	}
	if tok := p.advance(); tok.Type != LBRACE {
		return nil, p.fmtError(tok, "expected '{' after condition")
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	if tok := p.advance(); tok.Type != RBRACE {
		return nil, p.fmtError(tok, "expected '}' to close if block")
	}

	return &IfStmt{
		Left:      leftTok.Lexeme,
		Condition: condition,
		Right:     rightTok.Lexeme,
		Body:      body,
	}, nil
}
