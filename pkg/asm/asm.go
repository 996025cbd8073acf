// Package asm assembles the 8085 assembly dialect produced by pkg/compiler
// into a raw machine-code image. It is a classic two-pass assembler: pass one
// sizes every instruction and records label addresses, pass two encodes bytes.
package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// registerCodes holds the 3-bit encoding of each 8-bit register operand.
// M addresses memory through the HL pair.
var registerCodes = map[string]byte{
	"B": 0, "C": 1, "D": 2, "E": 3, "H": 4, "L": 5, "M": 6, "A": 7,
}

// pairCodes holds the 2-bit encoding of each register pair operand. The
// single-letter spellings are the classic 8085 forms; the two-letter ones are
// what the compiler emits.
var pairCodes = map[string]byte{
	"B": 0, "BC": 0,
	"D": 1, "DE": 1,
	"H": 2, "HL": 2,
	"SP": 3,
}

var zeroOperandOps = map[string]byte{
	"HLT": 0x76,
	"NOP": 0x00,
}

// aluRegisterOps take one register operand folded into the low three bits.
var aluRegisterOps = map[string]byte{
	"ADD": 0x80,
	"SUB": 0x90,
	"ANA": 0xA0,
	"XRA": 0xA8,
	"ORA": 0xB0,
	"CMP": 0xB8,
}

// pairOps take one register-pair operand folded into bits 4-5.
var pairOps = map[string]byte{
	"INX": 0x03,
	"DCX": 0x0B,
}

// immediate8Ops take one 8-bit immediate operand.
var immediate8Ops = map[string]byte{
	"CPI": 0xFE,
}

// addressOps take one 16-bit address operand, encoded little-endian.
var addressOps = map[string]byte{
	"STA":  0x32,
	"LDA":  0x3A,
	"SHLD": 0x22,
	"LHLD": 0x2A,
	"JMP":  0xC3,
	"JNZ":  0xC2,
	"JZ":   0xCA,
	"JC":   0xDA,
	"JNC":  0xD2,
}

type Assembler struct {
	labels map[string]uint16
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(map[string]uint16),
	}
}

// Assemble is a convenience wrapper around a one-shot Assembler.
func Assemble(code string) ([]byte, map[uint16]int, error) {
	return NewAssembler().Assemble(code)
}

// Assemble encodes the program and returns the image together with an
// address-to-source-line map.
func (a *Assembler) Assemble(code string) ([]byte, map[uint16]int, error) {
	lines := strings.Split(code, "\n")

	if err := a.pass1(lines); err != nil {
		return nil, nil, err
	}

	return a.pass2(lines)
}

func (a *Assembler) pass1(lines []string) error {
	var address uint32

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		for _, lbl := range p.labels {
			if address > 0xFFFF {
				return fmt.Errorf("label '%s' on line %d points past addressable memory", lbl, lineNo)
			}
			key := normalizeLabel(lbl)
			if _, exists := a.labels[key]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			a.labels[key] = uint16(address)
		}

		if p.mnemonic == "" {
			continue
		}

		length, ok := instructionLength(p.mnemonic)
		if !ok {
			return fmt.Errorf("unknown instruction on line %d: %s", lineNo, p.mnemonic)
		}

		if address+uint32(length) > 65536 {
			return fmt.Errorf("program too large near line %d", lineNo)
		}
		address += uint32(length)
	}

	return nil
}

func (a *Assembler) pass2(lines []string) ([]byte, map[uint16]int, error) {
	program := make([]byte, 0)
	sourceMap := make(map[uint16]int)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, nil, err
		}

		if p.mnemonic == "" {
			continue
		}

		sourceMap[uint16(len(program))] = lineNo

		mnemonic := p.mnemonic
		ops := p.operands

		if opcode, ok := zeroOperandOps[mnemonic]; ok {
			if len(ops) != 0 {
				return nil, nil, fmt.Errorf("%s expects 0 operands on line %d", mnemonic, lineNo)
			}
			program = append(program, opcode)
			continue
		}

		if mnemonic == "MOV" {
			if len(ops) != 2 {
				return nil, nil, fmt.Errorf("MOV expects 2 operands on line %d", lineNo)
			}
			dst, err := parseRegister(ops[0], lineNo)
			if err != nil {
				return nil, nil, err
			}
			src, err := parseRegister(ops[1], lineNo)
			if err != nil {
				return nil, nil, err
			}
			opcode := 0x40 | dst<<3 | src
			if opcode == 0x76 { // MOV M,M encodes as HLT and is not a move
				return nil, nil, fmt.Errorf("MOV M,M is not a valid instruction on line %d", lineNo)
			}
			program = append(program, opcode)
			continue
		}

		if mnemonic == "MVI" {
			if len(ops) != 2 {
				return nil, nil, fmt.Errorf("MVI expects 2 operands on line %d", lineNo)
			}
			dst, err := parseRegister(ops[0], lineNo)
			if err != nil {
				return nil, nil, err
			}
			imm, err := a.parseImmediate(ops[1], lineNo)
			if err != nil {
				return nil, nil, err
			}
			if imm > 0xFF {
				return nil, nil, fmt.Errorf("8-bit immediate out of range on line %d: %s", lineNo, ops[1])
			}
			program = append(program, 0x06|dst<<3, byte(imm))
			continue
		}

		if mnemonic == "LXI" {
			if len(ops) != 2 {
				return nil, nil, fmt.Errorf("LXI expects 2 operands on line %d", lineNo)
			}
			rp, err := parsePair(ops[0], lineNo)
			if err != nil {
				return nil, nil, err
			}
			imm, err := a.parseImmediate(ops[1], lineNo)
			if err != nil {
				return nil, nil, err
			}
			program = append(program, 0x01|rp<<4, byte(imm&0xFF), byte(imm>>8))
			continue
		}

		if base, ok := aluRegisterOps[mnemonic]; ok {
			if len(ops) != 1 {
				return nil, nil, fmt.Errorf("%s expects 1 operand on line %d", mnemonic, lineNo)
			}
			reg, err := parseRegister(ops[0], lineNo)
			if err != nil {
				return nil, nil, err
			}
			program = append(program, base|reg)
			continue
		}

		if base, ok := pairOps[mnemonic]; ok {
			if len(ops) != 1 {
				return nil, nil, fmt.Errorf("%s expects 1 operand on line %d", mnemonic, lineNo)
			}
			rp, err := parsePair(ops[0], lineNo)
			if err != nil {
				return nil, nil, err
			}
			program = append(program, base|rp<<4)
			continue
		}

		if opcode, ok := immediate8Ops[mnemonic]; ok {
			if len(ops) != 1 {
				return nil, nil, fmt.Errorf("%s expects 1 operand on line %d", mnemonic, lineNo)
			}
			imm, err := a.parseImmediate(ops[0], lineNo)
			if err != nil {
				return nil, nil, err
			}
			if imm > 0xFF {
				return nil, nil, fmt.Errorf("8-bit immediate out of range on line %d: %s", lineNo, ops[0])
			}
			program = append(program, opcode, byte(imm))
			continue
		}

		if opcode, ok := addressOps[mnemonic]; ok {
			if len(ops) != 1 {
				return nil, nil, fmt.Errorf("%s expects 1 operand on line %d", mnemonic, lineNo)
			}
			addr, err := a.parseImmediate(ops[0], lineNo)
			if err != nil {
				return nil, nil, err
			}
			program = append(program, opcode, byte(addr&0xFF), byte(addr>>8))
			continue
		}

		return nil, nil, fmt.Errorf("unknown instruction on line %d: %s", lineNo, mnemonic)
	}

	return program, sourceMap, nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(raw)
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if beforeColon == "" {
			return p, fmt.Errorf("invalid label on line %d", lineNo)
		}

		if strings.ContainsAny(beforeColon, " \t") {
			break
		}

		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	line = stripTrailer(line)
	line = strings.TrimSpace(line)
	if line == "" {
		return p, nil
	}

	line = strings.ReplaceAll(line, ",", " ")
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return p, nil
	}

	p.mnemonic = strings.ToUpper(fields[0])
	if len(fields) > 1 {
		p.operands = fields[1:]
	}

	return p, nil
}

// stripTrailer cuts the line at the dialect's ';' instruction terminator or
// at a '//' comment, whichever comes first.
func stripTrailer(line string) string {
	semicolon := strings.Index(line, ";")
	doubleSlash := strings.Index(line, "//")

	cut := -1
	if semicolon >= 0 {
		cut = semicolon
	}
	if doubleSlash >= 0 && (cut == -1 || doubleSlash < cut) {
		cut = doubleSlash
	}
	if cut >= 0 {
		return line[:cut]
	}
	return line
}

func parseRegister(token string, lineNo int) (byte, error) {
	code, ok := registerCodes[strings.ToUpper(token)]
	if !ok {
		return 0, fmt.Errorf("invalid register '%s' on line %d", token, lineNo)
	}
	return code, nil
}

func parsePair(token string, lineNo int) (byte, error) {
	code, ok := pairCodes[strings.ToUpper(token)]
	if !ok {
		return 0, fmt.Errorf("invalid register pair '%s' on line %d", token, lineNo)
	}
	return code, nil
}

// parseImmediate accepts H-suffixed hex (06H, 8000H), Go-style prefixed
// numbers (0x06, 10), or a label known from pass one.
func (a *Assembler) parseImmediate(token string, lineNo int) (uint16, error) {
	if len(token) > 1 && (token[len(token)-1] == 'H' || token[len(token)-1] == 'h') {
		digits := token[:len(token)-1]
		if value, err := strconv.ParseUint(digits, 16, 32); err == nil {
			if value > 0xFFFF {
				return 0, fmt.Errorf("immediate out of range on line %d: %s", lineNo, token)
			}
			return uint16(value), nil
		}
	}

	if value, err := strconv.ParseUint(token, 0, 32); err == nil {
		if value > 0xFFFF {
			return 0, fmt.Errorf("immediate out of range on line %d: %s", lineNo, token)
		}
		return uint16(value), nil
	}

	label := normalizeLabel(token)
	if addr, ok := a.labels[label]; ok {
		return addr, nil
	}

	if isIdentifier(token) {
		return 0, fmt.Errorf("undefined label '%s' on line %d", token, lineNo)
	}

	return 0, fmt.Errorf("invalid immediate '%s' on line %d", token, lineNo)
}

// instructionLength returns the byte length of an instruction.
func instructionLength(mnemonic string) (uint16, bool) {
	if _, ok := zeroOperandOps[mnemonic]; ok {
		return 1, true
	}
	if mnemonic == "MOV" {
		return 1, true
	}
	if _, ok := aluRegisterOps[mnemonic]; ok {
		return 1, true
	}
	if _, ok := pairOps[mnemonic]; ok {
		return 1, true
	}
	if mnemonic == "MVI" {
		return 2, true
	}
	if _, ok := immediate8Ops[mnemonic]; ok {
		return 2, true
	}
	if mnemonic == "LXI" {
		return 3, true
	}
	if _, ok := addressOps[mnemonic]; ok {
		return 3, true
	}
	return 0, false
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

func normalizeLabel(label string) string {
	return strings.ToUpper(label)
}
