// Package cpu emulates the register/memory core of an Intel 8085: seven
// 8-bit registers, the SP/PC pair, the five condition flags, and 64K of
// memory. Interrupts and I/O ports are not modelled.
package cpu

import (
	"fmt"
	"math/bits"
)

// CPU holds the whole machine state. The zero value is a reset machine with
// empty memory.
type CPU struct {
	A, B, C, D, E, H, L uint8

	PC uint16
	SP uint16

	// Condition flags: zero, sign, parity, carry, auxiliary carry.
	Z, S, P, CY, AC bool

	Memory [65536]byte

	Halted bool
}

func NewCPU() *CPU {
	return &CPU{SP: 0xFFFF}
}

// Load copies a machine-code image into memory at origin and points PC at it.
func (c *CPU) Load(program []byte, origin uint16) error {
	if int(origin)+len(program) > len(c.Memory) {
		return fmt.Errorf("program of %d bytes does not fit at %04XH", len(program), origin)
	}
	copy(c.Memory[origin:], program)
	c.PC = origin
	c.Halted = false
	return nil
}

// Run steps the machine until it halts. maxSteps bounds runaway programs.
func (c *CPU) Run(maxSteps int) error {
	for i := 0; i < maxSteps; i++ {
		if c.Halted {
			return nil
		}
		if err := c.Step(); err != nil {
			return err
		}
	}
	if c.Halted {
		return nil
	}
	return fmt.Errorf("program did not halt within %d steps", maxSteps)
}

// register codes as encoded in instructions
const (
	regB = 0
	regC = 1
	regD = 2
	regE = 3
	regH = 4
	regL = 5
	regM = 6 // memory through HL
	regA = 7
)

func (c *CPU) readReg(code uint8) uint8 {
	switch code {
	case regB:
		return c.B
	case regC:
		return c.C
	case regD:
		return c.D
	case regE:
		return c.E
	case regH:
		return c.H
	case regL:
		return c.L
	case regM:
		return c.Memory[c.HL()]
	default:
		return c.A
	}
}

func (c *CPU) writeReg(code uint8, val uint8) {
	switch code {
	case regB:
		c.B = val
	case regC:
		c.C = val
	case regD:
		c.D = val
	case regE:
		c.E = val
	case regH:
		c.H = val
	case regL:
		c.L = val
	case regM:
		c.Memory[c.HL()] = val
	default:
		c.A = val
	}
}

// BC returns the B/C registers as a 16-bit pair.
func (c *CPU) BC() uint16 { return uint16(c.B)<<8 | uint16(c.C) }

// DE returns the D/E registers as a 16-bit pair.
func (c *CPU) DE() uint16 { return uint16(c.D)<<8 | uint16(c.E) }

// HL returns the H/L registers as a 16-bit pair.
func (c *CPU) HL() uint16 { return uint16(c.H)<<8 | uint16(c.L) }

func (c *CPU) setBC(v uint16) { c.B, c.C = uint8(v>>8), uint8(v) }
func (c *CPU) setDE(v uint16) { c.D, c.E = uint8(v>>8), uint8(v) }
func (c *CPU) setHL(v uint16) { c.H, c.L = uint8(v>>8), uint8(v) }

func (c *CPU) readPair(code uint8) uint16 {
	switch code {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		return c.HL()
	default:
		return c.SP
	}
}

func (c *CPU) writePair(code uint8, v uint16) {
	switch code {
	case 0:
		c.setBC(v)
	case 1:
		c.setDE(v)
	case 2:
		c.setHL(v)
	default:
		c.SP = v
	}
}

func (c *CPU) fetch8() uint8 {
	v := c.Memory[c.PC]
	c.PC++
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := uint16(c.fetch8())
	hi := uint16(c.fetch8())
	return hi<<8 | lo
}

// updateZSP sets the zero, sign and parity flags from an 8-bit result.
// 8085 parity is even parity.
func (c *CPU) updateZSP(result uint8) {
	c.Z = result == 0
	c.S = result&0x80 != 0
	c.P = bits.OnesCount8(result)%2 == 0
}

func (c *CPU) add(operand uint8, carryIn bool) {
	carry := uint16(0)
	if carryIn {
		carry = 1
	}
	sum := uint16(c.A) + uint16(operand) + carry
	c.CY = sum > 0xFF
	c.AC = (c.A&0x0F)+(operand&0x0F)+uint8(carry) > 0x0F
	c.A = uint8(sum)
	c.updateZSP(c.A)
}

// subtract computes A - operand - borrow, optionally writing the result back
// to A. CMP and CPI use the flags-only form.
func (c *CPU) subtract(operand uint8, borrowIn bool, writeBack bool) {
	borrow := uint16(0)
	if borrowIn {
		borrow = 1
	}
	diff := uint16(c.A) - uint16(operand) - borrow
	c.CY = uint16(c.A) < uint16(operand)+borrow
	c.AC = uint16(c.A&0x0F) < uint16(operand&0x0F)+borrow
	result := uint8(diff)
	c.updateZSP(result)
	if writeBack {
		c.A = result
	}
}

func (c *CPU) logical(op uint8, operand uint8) {
	switch op {
	case 4: // ANA
		c.A &= operand
		c.AC = true // 8085 sets AC on ANA
	case 5: // XRA
		c.A ^= operand
		c.AC = false
	default: // ORA
		c.A |= operand
		c.AC = false
	}
	c.CY = false
	c.updateZSP(c.A)
}

func (c *CPU) jumpIf(cond bool) {
	target := c.fetch16()
	if cond {
		c.PC = target
	}
}

// Step fetches, decodes and executes one instruction.
func (c *CPU) Step() error {
	if c.Halted {
		return nil
	}

	opcode := c.fetch8()

	switch {
	case opcode == 0x00: // NOP
		return nil

	case opcode == 0x76: // HLT (would otherwise decode as MOV M,M)
		c.Halted = true
		return nil

	case opcode&0xC0 == 0x40: // MOV dst,src
		dst := (opcode >> 3) & 7
		src := opcode & 7
		c.writeReg(dst, c.readReg(src))
		return nil

	case opcode&0xC7 == 0x06: // MVI dst,d8
		dst := (opcode >> 3) & 7
		c.writeReg(dst, c.fetch8())
		return nil

	case opcode&0xCF == 0x01: // LXI rp,d16
		c.writePair((opcode>>4)&3, c.fetch16())
		return nil

	case opcode&0xCF == 0x03: // INX rp
		rp := (opcode >> 4) & 3
		c.writePair(rp, c.readPair(rp)+1)
		return nil

	case opcode&0xCF == 0x0B: // DCX rp
		rp := (opcode >> 4) & 3
		c.writePair(rp, c.readPair(rp)-1)
		return nil

	case opcode&0xC0 == 0x80: // ALU group: ADD ADC SUB SBB ANA XRA ORA CMP
		op := (opcode >> 3) & 7
		operand := c.readReg(opcode & 7)
		switch op {
		case 0:
			c.add(operand, false)
		case 1:
			c.add(operand, c.CY)
		case 2:
			c.subtract(operand, false, true)
		case 3:
			c.subtract(operand, c.CY, true)
		case 4, 5, 6:
			c.logical(op, operand)
		case 7:
			c.subtract(operand, false, false)
		}
		return nil

	case opcode == 0xFE: // CPI d8
		c.subtract(c.fetch8(), false, false)
		return nil

	case opcode == 0x32: // STA a16
		c.Memory[c.fetch16()] = c.A
		return nil

	case opcode == 0x3A: // LDA a16
		c.A = c.Memory[c.fetch16()]
		return nil

	case opcode == 0x22: // SHLD a16
		addr := c.fetch16()
		c.Memory[addr] = c.L
		c.Memory[addr+1] = c.H
		return nil

	case opcode == 0x2A: // LHLD a16
		addr := c.fetch16()
		c.L = c.Memory[addr]
		c.H = c.Memory[addr+1]
		return nil

	case opcode == 0xC3: // JMP
		c.jumpIf(true)
		return nil
	case opcode == 0xC2: // JNZ
		c.jumpIf(!c.Z)
		return nil
	case opcode == 0xCA: // JZ
		c.jumpIf(c.Z)
		return nil
	case opcode == 0xD2: // JNC
		c.jumpIf(!c.CY)
		return nil
	case opcode == 0xDA: // JC
		c.jumpIf(c.CY)
		return nil

	default:
		return fmt.Errorf("unknown opcode %02XH at %04XH", opcode, c.PC-1)
	}
}

// String renders the register file and flags on one line, for dumps.
func (c *CPU) String() string {
	return fmt.Sprintf(
		"A=%02X B=%02X C=%02X D=%02X E=%02X H=%02X L=%02X  SP=%04X PC=%04X  Z=%t S=%t P=%t CY=%t AC=%t",
		c.A, c.B, c.C, c.D, c.E, c.H, c.L, c.SP, c.PC, c.Z, c.S, c.P, c.CY, c.AC,
	)
}
