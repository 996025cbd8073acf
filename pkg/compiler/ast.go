package compiler

import "fmt"

// Stmt is implemented by every AST node. The tree is flat except for
// IfStmt.Body, which nests an ordered statement sequence.
type Stmt interface {
	stmtNode()
	String() string
}

// BinaryOperator is the fixed operator set of a BinaryOp statement.
type BinaryOperator int

const (
	OpAdd BinaryOperator = iota // +
	OpSub                       // -
	OpAnd                       // &
	OpOr                        // |
	OpXor                       // ^
)

var binaryOperatorNames = [...]string{
	OpAdd: "+",
	OpSub: "-",
	OpAnd: "&",
	OpOr:  "|",
	OpXor: "^",
}

func (op BinaryOperator) String() string {
	if int(op) >= 0 && int(op) < len(binaryOperatorNames) {
		return binaryOperatorNames[op]
	}
	return fmt.Sprintf("BinaryOperator(%d)", int(op))
}

// Condition is the comparison of an IfStmt.
type Condition int

const (
	CondGreater Condition = iota // >
	CondLess                     // <
	CondEqual                    // ==
)

var conditionNames = [...]string{
	CondGreater: ">",
	CondLess:    "<",
	CondEqual:   "==",
}

func (c Condition) String() string {
	if int(c) >= 0 && int(c) < len(conditionNames) {
		return conditionNames[c]
	}
	return fmt.Sprintf("Condition(%d)", int(c))
}

// MoveImmediate represents  reg A = 0x08;  — an 8-bit immediate load into a
// named register. Register pairs take the malloc form instead.
type MoveImmediate struct {
	Register string
	Value    string // hex lexeme, 0x prefix intact
}

func (*MoveImmediate) stmtNode() {}
func (m *MoveImmediate) String() string {
	return fmt.Sprintf("MoveImmediate(%s = %s)", m.Register, m.Value)
}

// LoadImmediateExtended represents  reg HL = malloc(0x6000);  — a fixed
// address loaded into a 16-bit register pair.
type LoadImmediateExtended struct {
	RegisterPair string
	Address      string // hex lexeme, 0x prefix intact
}

func (*LoadImmediateExtended) stmtNode() {}
func (l *LoadImmediateExtended) String() string {
	return fmt.Sprintf("LoadImmediateExtended(%s = malloc(%s))", l.RegisterPair, l.Address)
}

// StaticAssignment represents  counter = 0x06;  — a named variable bound to
// a literal and a fixed memory slot. Is16Bit is inferred from the literal.
type StaticAssignment struct {
	Variable string
	Value    string // hex lexeme, 0x prefix intact
	Is16Bit  bool
}

func (*StaticAssignment) stmtNode() {}
func (s *StaticAssignment) String() string {
	width := 8
	if s.Is16Bit {
		width = 16
	}
	return fmt.Sprintf("StaticAssignment(%s = %s, %d-bit)", s.Variable, s.Value, width)
}

// BinaryOp represents  A + B;  — Register op B, result replacing Register.
// The second operand is architecturally fixed to register B.
type BinaryOp struct {
	Register string
	Operator BinaryOperator
}

func (*BinaryOp) stmtNode() {}
func (b *BinaryOp) String() string {
	return fmt.Sprintf("BinaryOp(%s %s B)", b.Register, b.Operator)
}

// PointerIncDec represents  HL++;  or  HL--;  on a 16-bit register pair.
type PointerIncDec struct {
	RegisterPair string
	IsIncrement  bool
}

func (*PointerIncDec) stmtNode() {}
func (p *PointerIncDec) String() string {
	op := "--"
	if p.IsIncrement {
		op = "++"
	}
	return fmt.Sprintf("PointerIncDec(%s%s)", p.RegisterPair, op)
}

// IfStmt represents  if (left cond right) { body }.
// Left and Right are raw names; resolution to a concrete register or a
// variable binding happens at code generation.
type IfStmt struct {
	Left      string
	Condition Condition
	Right     string
	Body      []Stmt
}

func (*IfStmt) stmtNode() {}
func (i *IfStmt) String() string {
	return fmt.Sprintf("IfStmt(if %s %s %s, body=%d)", i.Left, i.Condition, i.Right, len(i.Body))
}
