package compiler

import (
	"fmt"
	"strings"
)

// StaticBase is the first memory slot handed to a static variable.
const StaticBase uint16 = 0x8000

// registerPool is the fixed set of general-purpose registers bound to static
// variables, in priority order. Variables past the pool live in memory only.
var registerPool = [...]string{"A", "B", "C", "D", "E"}

// CodeGen walks a statement list and emits 8085 assembly source text.
// It runs two passes: allocate builds the address and register tables,
// emit lowers each statement against them. Both tables and the label
// counter live on the struct, so a Generate call is self-contained.
type CodeGen struct {
	out       strings.Builder
	addresses map[string]uint16 // variable -> static memory slot
	registers map[string]string // variable -> bound pool register
	nextAddr  uint16
	nextReg   int
	nextLabel int
}

func newCodeGen() *CodeGen {
	return &CodeGen{
		addresses: make(map[string]uint16),
		registers: make(map[string]string),
		nextAddr:  StaticBase,
	}
}

// instr writes one instruction line, terminated with the dialect's ';'.
func (cg *CodeGen) instr(format string, args ...any) {
	fmt.Fprintf(&cg.out, format+";\n", args...)
}

// skipLabel writes the fall-through label that closes a conditional body.
func (cg *CodeGen) skipLabel(id int) {
	fmt.Fprintf(&cg.out, "SKIP_%d:\n", id)
}

// hexOperand strips the 0x prefix and renders the digits upper-case with the
// assembler's H suffix.
func hexOperand(lexeme string) string {
	digits := strings.TrimPrefix(strings.TrimPrefix(lexeme, "0x"), "0X")
	return strings.ToUpper(digits) + "H"
}

// Generate lowers a parser-produced statement list to assembly text.
// Generation cannot fail on a well-formed AST, so there is no error return;
// an impossible operator or condition is a defect and panics.
func Generate(stmts []Stmt) string {
	cg := newCodeGen()
	cg.allocate(stmts)
	cg.emit(stmts)
	return cg.out.String()
}

// allocate is the first pass: every distinct static variable, in first
// discovery order across the whole tree, gets the next memory slot and, while
// the pool lasts, the next pool register. Re-assignments keep the original
// binding.
func (cg *CodeGen) allocate(stmts []Stmt) {
	for _, stmt := range stmts {
		switch n := stmt.(type) {
		case *StaticAssignment:
			if _, seen := cg.addresses[n.Variable]; seen {
				continue
			}
			cg.addresses[n.Variable] = cg.nextAddr
			cg.nextAddr++
			if cg.nextReg < len(registerPool) {
				cg.registers[n.Variable] = registerPool[cg.nextReg]
				cg.nextReg++
			}
		case *IfStmt:
			cg.allocate(n.Body)
		}
	}
}

// resolve maps a condition operand to the register it lives in: the bound
// pool register for a known variable, else the name itself as a literal
// register reference.
func (cg *CodeGen) resolve(name string) string {
	if reg, ok := cg.registers[name]; ok {
		return reg
	}
	return name
}

// emit is the second pass, in the same traversal order as allocate.
func (cg *CodeGen) emit(stmts []Stmt) {
	for _, stmt := range stmts {
		cg.emitStatement(stmt)
	}
}

func (cg *CodeGen) emitStatement(stmt Stmt) {
	switch n := stmt.(type) {
	case *MoveImmediate:
		cg.instr("MVI %s,%s", n.Register, hexOperand(n.Value))

	case *LoadImmediateExtended:
		cg.instr("LXI %s,%s", n.RegisterPair, hexOperand(n.Address))

	case *StaticAssignment:
		cg.emitStaticAssignment(n)

	case *BinaryOp:
		cg.emitBinaryOp(n)

	case *PointerIncDec:
		if n.IsIncrement {
			cg.instr("INX %s", n.RegisterPair)
		} else {
			cg.instr("DCX %s", n.RegisterPair)
		}

	case *IfStmt:
		cg.emitIf(n)

	default:
		panic(fmt.Sprintf("codegen: unhandled statement %T", stmt))
	}
}

func (cg *CodeGen) emitStaticAssignment(n *StaticAssignment) {
	addr := cg.addresses[n.Variable]

	if n.Is16Bit {
		// Stage through the HL pair, store it, then seed the bound register
		// with the low byte.
		cg.instr("LXI H,%s", hexOperand(n.Value))
		cg.instr("SHLD %04XH", addr)
		if reg, ok := cg.registers[n.Variable]; ok {
			cg.instr("MOV %s,L", reg)
		}
		return
	}

	// Stage through the accumulator and store.
	cg.instr("MVI A,%s", hexOperand(n.Value))
	cg.instr("STA %04XH", addr)
	if reg, ok := cg.registers[n.Variable]; ok && reg != "A" {
		cg.instr("MOV %s,A", reg)
	}
}

func (cg *CodeGen) emitBinaryOp(n *BinaryOp) {
	var instruction string
	switch n.Operator {
	case OpAdd:
		instruction = "ADD B"
	case OpSub:
		instruction = "SUB B"
	case OpAnd:
		instruction = "ANA B"
	case OpOr:
		instruction = "ORA B"
	case OpXor:
		instruction = "XRA B"
	default:
		panic(fmt.Sprintf("codegen: unhandled operator %v", n.Operator))
	}

	// The ALU only works through the accumulator: a non-A target costs a
	// move in and a move back out.
	if n.Register != "A" {
		cg.instr("MOV A,%s", n.Register)
	}
	cg.instr("%s", instruction)
	if n.Register != "A" {
		cg.instr("MOV %s,A", n.Register)
	}
}

func (cg *CodeGen) emitIf(n *IfStmt) {
	label := cg.nextLabel
	cg.nextLabel++

	leftReg := cg.resolve(n.Left)
	rightReg := cg.resolve(n.Right)

	if leftReg != "A" {
		cg.instr("MOV A,%s", leftReg)
	}

	if rightReg == "A" {
		// CMP A would compare the accumulator with itself; the immediate
		// zero compare carries the same flags.
		cg.instr("CPI 00H")
	} else {
		cg.instr("CMP %s", rightReg)
	}

	// The jumps skip the body unless the condition holds. CMP leaves Z set
	// on equality and CY set when A was smaller.
	switch n.Condition {
	case CondEqual:
		cg.instr("JNZ SKIP_%d", label)
	case CondGreater:
		cg.instr("JZ SKIP_%d", label)
		cg.instr("JC SKIP_%d", label)
	case CondLess:
		cg.instr("JZ SKIP_%d", label)
		cg.instr("JNC SKIP_%d", label)
	default:
		panic(fmt.Sprintf("codegen: unhandled condition %v", n.Condition))
	}

	cg.emit(n.Body)
	cg.skipLabel(label)
}
