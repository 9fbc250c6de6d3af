package cpu

import (
	"fmt"

	"github.com/teodori/go-brick/brick/addr"
	"github.com/teodori/go-brick/brick/bit"
	"github.com/teodori/go-brick/brick/memory"
)

// Flag is one of the 4 possible flags used in the flag register (low part of AF)
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

// interruptDispatchCycles is the cost of servicing an interrupt (5 M-cycles).
const interruptDispatchCycles = 20

// UndefinedOpcodeError is the fatal error produced when the CPU fetches one
// of the eleven unassigned opcodes. CPU state is left as it was at the fetch
// for diagnostics.
type UndefinedOpcodeError struct {
	PC     uint16
	Opcode uint8
}

func (e *UndefinedOpcodeError) Error() string {
	return fmt.Sprintf("undefined opcode 0x%02X at 0x%04X", e.Opcode, e.PC)
}

// CPU holds the SM83 register file and execution state.
type CPU struct {
	memory *memory.MMU

	a, f uint8
	b, c uint8
	d, e uint8
	h, l uint8
	sp   uint16
	pc   uint16

	// interruptsEnabled is the IME master flag. eiDelay implements EI's
	// one-instruction enable delay (2 after EI, enable when it hits 0).
	interruptsEnabled bool
	eiDelay           int

	halted bool

	currentOpcode uint8
	err           error
}

// New returns a CPU wired to the given memory unit, with registers holding
// the post-boot-ROM values (execution starts at 0x0100).
func New(memory *memory.MMU) *CPU {
	c := &CPU{memory: memory}
	c.Reset()
	return c
}

// Reset restores the post-boot register file: AF=0x01B0, BC=0x0013,
// DE=0x00D8, HL=0x014D, SP=0xFFFE, PC=0x0100, IME off.
func (c *CPU) Reset() {
	c.setAF(0x01B0)
	c.setBC(0x0013)
	c.setDE(0x00D8)
	c.setHL(0x014D)
	c.sp = 0xFFFE
	c.pc = 0x0100
	c.interruptsEnabled = false
	c.eiDelay = 0
	c.halted = false
	c.err = nil
}

// Tick services a pending interrupt if possible, otherwise executes one
// instruction. Returns the clock cycles consumed. A fatal error (undefined
// opcode) is returned with CPU state preserved; once failed the CPU stays
// failed.
func (c *CPU) Tick() (int, error) {
	if c.err != nil {
		return 0, c.err
	}

	pending := c.memory.Read(addr.IF) & c.memory.Read(addr.IE) & 0x1F

	// HALT wakes on any enabled pending interrupt even with IME off;
	// dispatch only happens when IME is on.
	if c.halted {
		if pending == 0 {
			return 4, nil
		}
		c.halted = false
	}

	if c.interruptsEnabled && pending != 0 {
		return c.serviceInterrupt(pending), nil
	}

	c.currentOpcode = c.memory.Read(c.pc)
	c.pc++

	var cycles int
	if c.currentOpcode == 0xCB {
		cycles = c.execCB(c.readImmediate())
	} else {
		cycles = opcodeTable[c.currentOpcode](c)
	}

	if c.err != nil {
		return 0, c.err
	}

	if c.eiDelay > 0 {
		c.eiDelay--
		if c.eiDelay == 0 {
			c.interruptsEnabled = true
		}
	}

	return cycles, nil
}

// serviceInterrupt dispatches the lowest-numbered pending source: its IF bit
// is cleared, IME is dropped, PC is pushed and control moves to the vector.
func (c *CPU) serviceInterrupt(pending uint8) int {
	var source addr.Interrupt
	for i := uint8(0); i < 5; i++ {
		if bit.IsSet(i, pending) {
			source = addr.Interrupt(1 << i)
			break
		}
	}

	flags := c.memory.Read(addr.IF) & ^uint8(source)
	c.memory.Write(addr.IF, flags)

	c.interruptsEnabled = false
	c.eiDelay = 0
	c.pushStack(c.pc)
	c.pc = source.Vector()

	return interruptDispatchCycles
}

// Halted reports whether the CPU is suspended waiting for an interrupt.
func (c *CPU) Halted() bool {
	return c.halted
}

func (c *CPU) setFlag(flag Flag) {
	c.f |= uint8(flag)
}

func (c *CPU) resetFlag(flag Flag) {
	c.f &= ^uint8(flag)
}

func (c *CPU) isSetFlag(flag Flag) bool {
	return c.f&uint8(flag) != 0
}

func (c *CPU) setFlagToCondition(flag Flag, condition bool) {
	if condition {
		c.setFlag(flag)
	} else {
		c.resetFlag(flag)
	}
}

// flagToBit returns 1 if the flag is set, 0 otherwise.
func (c *CPU) flagToBit(flag Flag) uint8 {
	if c.isSetFlag(flag) {
		return 1
	}
	return 0
}

// readImmediate consumes the byte at PC.
func (c *CPU) readImmediate() uint8 {
	value := c.memory.Read(c.pc)
	c.pc++
	return value
}

// readImmediateWord consumes a little-endian word at PC.
func (c *CPU) readImmediateWord() uint16 {
	low := c.readImmediate()
	high := c.readImmediate()
	return bit.Combine(high, low)
}

func (c *CPU) getAF() uint16 { return bit.Combine(c.a, c.f) }
func (c *CPU) getBC() uint16 { return bit.Combine(c.b, c.c) }
func (c *CPU) getDE() uint16 { return bit.Combine(c.d, c.e) }
func (c *CPU) getHL() uint16 { return bit.Combine(c.h, c.l) }

// setAF masks the low nibble of F, which does not exist in hardware.
func (c *CPU) setAF(value uint16) {
	c.a = bit.High(value)
	c.f = bit.Low(value) & 0xF0
}

func (c *CPU) setBC(value uint16) {
	c.b = bit.High(value)
	c.c = bit.Low(value)
}

func (c *CPU) setDE(value uint16) {
	c.d = bit.High(value)
	c.e = bit.Low(value)
}

func (c *CPU) setHL(value uint16) {
	c.h = bit.High(value)
	c.l = bit.Low(value)
}

// readReg reads the register selected by a 3-bit encoding:
// 0=B 1=C 2=D 3=E 4=H 5=L 6=(HL) 7=A.
func (c *CPU) readReg(index uint8) uint8 {
	switch index & 0x07 {
	case 0:
		return c.b
	case 1:
		return c.c
	case 2:
		return c.d
	case 3:
		return c.e
	case 4:
		return c.h
	case 5:
		return c.l
	case 6:
		return c.memory.Read(c.getHL())
	default:
		return c.a
	}
}

// writeReg writes the register selected by a 3-bit encoding.
func (c *CPU) writeReg(index uint8, value uint8) {
	switch index & 0x07 {
	case 0:
		c.b = value
	case 1:
		c.c = value
	case 2:
		c.d = value
	case 3:
		c.e = value
	case 4:
		c.h = value
	case 5:
		c.l = value
	case 6:
		c.memory.Write(c.getHL(), value)
	default:
		c.a = value
	}
}

// Exported register access, used by the frame loop and host front ends.

func (c *CPU) PC() uint16 { return c.pc }
func (c *CPU) SP() uint16 { return c.sp }
func (c *CPU) AF() uint16 { return c.getAF() }
func (c *CPU) BC() uint16 { return c.getBC() }
func (c *CPU) DE() uint16 { return c.getDE() }
func (c *CPU) HL() uint16 { return c.getHL() }

func (c *CPU) SetPC(value uint16) { c.pc = value }
func (c *CPU) SetSP(value uint16) { c.sp = value }
func (c *CPU) SetAF(value uint16) { c.setAF(value) }
func (c *CPU) SetBC(value uint16) { c.setBC(value) }
func (c *CPU) SetDE(value uint16) { c.setDE(value) }
func (c *CPU) SetHL(value uint16) { c.setHL(value) }

// IME reports the state of the interrupt master enable flag.
func (c *CPU) IME() bool { return c.interruptsEnabled }
