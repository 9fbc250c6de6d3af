package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teodori/go-brick/brick/memory"
)

func TestCPU_cbRegisterEncoding(t *testing.T) {
	// RLC through the register encoding: operand low bits select
	// B,C,D,E,H,L,(HL),A. H and L hold the (HL) pointer here, so the cases
	// cover B, C, D, E, (HL) and A.
	mmu := memory.New()
	cpu := New(mmu)
	cpu.setHL(0xC000)
	mmu.Write(0xC000, 0x80)

	regs := []struct {
		desc string
		reg  *uint8
	}{
		{desc: "B", reg: &cpu.b},
		{desc: "C", reg: &cpu.c},
		{desc: "D", reg: &cpu.d},
		{desc: "E", reg: &cpu.e},
	}
	for i, tC := range regs {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			*tC.reg = 0x80
			cycles := cpu.execCB(uint8(i)) // RLC r
			assert.Equal(t, uint8(0x01), *tC.reg)
			assert.True(t, cpu.isSetFlag(carryFlag))
			assert.Equal(t, 8, cycles)
		})
	}

	t.Run("(HL)", func(t *testing.T) {
		cpu.f = 0
		cycles := cpu.execCB(0x06) // RLC (HL)
		assert.Equal(t, uint8(0x01), mmu.Read(0xC000))
		assert.Equal(t, 16, cycles)
	})

	t.Run("A", func(t *testing.T) {
		cpu.f = 0
		cpu.a = 0x80
		cycles := cpu.execCB(0x07) // RLC A
		assert.Equal(t, uint8(0x01), cpu.a)
		assert.Equal(t, 8, cycles)
	})
}

func TestCPU_cbBit(t *testing.T) {
	cpu := New(memory.New())

	testCases := []struct {
		desc    string
		operand uint8
		value   uint8
		wantZ   bool
	}{
		{desc: "BIT 0 of a set bit", operand: 0x40, value: 0x01, wantZ: false},
		{desc: "BIT 0 of a clear bit", operand: 0x40, value: 0xFE, wantZ: true},
		{desc: "BIT 7 set", operand: 0x78, value: 0x80, wantZ: false},
		{desc: "BIT 7 clear", operand: 0x78, value: 0x7F, wantZ: true},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = uint8(carryFlag)
			cpu.b = tC.value
			cycles := cpu.execCB(tC.operand)

			assert.Equal(t, tC.wantZ, cpu.isSetFlag(zeroFlag))
			assert.False(t, cpu.isSetFlag(subFlag))
			assert.True(t, cpu.isSetFlag(halfCarryFlag))
			assert.True(t, cpu.isSetFlag(carryFlag), "carry untouched")
			assert.Equal(t, 8, cycles)
		})
	}

	t.Run("BIT (HL) costs 12 cycles", func(t *testing.T) {
		mmu := memory.New()
		cpu := New(mmu)
		cpu.setHL(0xC000)
		cycles := cpu.execCB(0x46) // BIT 0, (HL)
		assert.Equal(t, 12, cycles)
	})
}

func TestCPU_cbResAndSet(t *testing.T) {
	cpu := New(memory.New())

	t.Run("RES clears the bit and nothing else", func(t *testing.T) {
		cpu.f = 0xF0
		cpu.c = 0xFF
		cpu.execCB(0xB9) // RES 7, C
		assert.Equal(t, uint8(0x7F), cpu.c)
		assert.Equal(t, uint8(0xF0), cpu.f, "flags untouched")
	})

	t.Run("SET sets the bit and nothing else", func(t *testing.T) {
		cpu.f = 0
		cpu.c = 0x00
		cpu.execCB(0xF9) // SET 7, C
		assert.Equal(t, uint8(0x80), cpu.c)
		assert.Equal(t, uint8(0), cpu.f)
	})

	t.Run("RES then SET round trips every bit", func(t *testing.T) {
		for b := uint8(0); b < 8; b++ {
			cpu.e = 0xFF
			cpu.execCB(0x83 | b<<3) // RES b, E
			assert.Equal(t, uint8(0xFF)&^(uint8(1)<<b), cpu.e)
			cpu.execCB(0xC3 | b<<3) // SET b, E
			assert.Equal(t, uint8(0xFF), cpu.e)
		}
	})
}

func TestCPU_cbShiftFamilySelection(t *testing.T) {
	// The middle bits of a 00-group operand pick the rotation/shift.
	cpu := New(memory.New())

	testCases := []struct {
		desc    string
		operand uint8 // applied to register B
		input   uint8
		want    uint8
	}{
		{desc: "RLC", operand: 0x00, input: 0x81, want: 0x03},
		{desc: "RRC", operand: 0x08, input: 0x81, want: 0xC0},
		{desc: "RL", operand: 0x10, input: 0x81, want: 0x02},
		{desc: "RR", operand: 0x18, input: 0x81, want: 0x40},
		{desc: "SLA", operand: 0x20, input: 0x81, want: 0x02},
		{desc: "SRA", operand: 0x28, input: 0x81, want: 0xC0},
		{desc: "SWAP", operand: 0x30, input: 0x81, want: 0x18},
		{desc: "SRL", operand: 0x38, input: 0x81, want: 0x40},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			cpu.f = 0
			cpu.b = tC.input
			cpu.execCB(tC.operand)
			assert.Equal(t, tC.want, cpu.b)
		})
	}
}
