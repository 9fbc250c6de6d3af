package memory

import (
	"fmt"
	"log/slog"

	"github.com/teodori/go-brick/brick/addr"
	"github.com/teodori/go-brick/brick/bit"
)

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionIO
)

// MMU owns the 64 KiB address space and dispatches reads and writes to the
// cartridge, RAM regions and memory mapped I/O. The CPU, timer, joypad and
// PPU are all views over state hosted here.
type MMU struct {
	cart      *Cartridge
	extRAM    []byte
	memory    []byte
	joypad    *Joypad
	timer     Timer
	regionMap [256]memRegion
}

// New creates a memory unit with no cartridge loaded, equivalent to
// powering on the console with the slot empty.
func New() *MMU {
	mmu := &MMU{
		memory: make([]byte, 0x10000),
		cart:   NewCartridge(),
		joypad: NewJoypad(),
	}
	mmu.timer.InterruptHandler = func() { mmu.RequestInterrupt(addr.TimerInterrupt) }
	mmu.initRegionMap()
	mmu.initRegisters()
	return mmu
}

// NewWithCartridge creates a memory unit with the provided cartridge mapped
// into the ROM region.
func NewWithCartridge(cart *Cartridge) *MMU {
	mmu := New()
	mmu.cart = cart
	if cart.RAMSize() != 0 {
		mmu.extRAM = make([]byte, 0x2000)
	}
	return mmu
}

func (m *MMU) initRegionMap() {
	for i := 0x00; i <= 0x7F; i++ {
		m.regionMap[i] = regionROM
	}
	for i := 0x80; i <= 0x9F; i++ {
		m.regionMap[i] = regionVRAM
	}
	for i := 0xA0; i <= 0xBF; i++ {
		m.regionMap[i] = regionExtRAM
	}
	for i := 0xC0; i <= 0xDF; i++ {
		m.regionMap[i] = regionWRAM
	}
	for i := 0xE0; i <= 0xFD; i++ {
		m.regionMap[i] = regionEcho
	}
	m.regionMap[0xFE] = regionOAM
	m.regionMap[0xFF] = regionIO
}

// initRegisters seeds the I/O registers with the published post-boot-ROM
// values, since no boot ROM is emulated.
func (m *MMU) initRegisters() {
	m.memory[addr.LCDC] = 0x91
	m.memory[addr.STAT] = 0x85
	m.memory[addr.BGP] = 0xFC
	m.memory[addr.OBP0] = 0xFF
	m.memory[addr.OBP1] = 0xFF
	m.memory[addr.IF] = 0xE1
}

// Cartridge returns the currently mapped cartridge.
func (m *MMU) Cartridge() *Cartridge {
	return m.cart
}

// Tick advances any memory mapped I/O that needs a clock, i.e. the timer.
func (m *MMU) Tick(cycles int) {
	m.timer.Tick(cycles)
}

// SetTimerSeed initializes the internal timer divider and DIV with it.
func (m *MMU) SetTimerSeed(seed uint16) {
	m.timer.SetSeed(seed)
}

// RequestInterrupt sets the IF bit of the chosen interrupt source.
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	m.memory[addr.IF] |= uint8(interrupt) | 0xE0
}

// ReadBit reads a single bit of the byte at the given address.
func (m *MMU) ReadBit(index uint8, address uint16) bool {
	return bit.IsSet(index, m.Read(address))
}

func (m *MMU) Read(address uint16) byte {
	switch m.regionMap[address>>8] {
	case regionROM:
		return m.cart.Read(address)
	case regionVRAM, regionWRAM:
		return m.memory[address]
	case regionExtRAM:
		if m.extRAM == nil {
			return 0xFF
		}
		return m.extRAM[address-0xA000]
	case regionEcho:
		return m.memory[address-0x2000]
	case regionOAM:
		if address <= addr.OAMEnd {
			return m.memory[address]
		}
		// 0xFEA0-0xFEFF is unusable and reads as open bus.
		return 0xFF
	case regionIO:
		switch {
		case address == addr.P1:
			return m.joypad.Read()
		case address >= addr.DIV && address <= addr.TAC:
			return m.timer.Read(address)
		case address == addr.IF:
			// The upper 3 bits are unused and always read as 1.
			return m.memory[address] | 0xE0
		default:
			return m.memory[address]
		}
	default:
		panic(fmt.Sprintf("attempted read at unmapped address: 0x%04X", address))
	}
}

func (m *MMU) Write(address uint16, value byte) {
	switch m.regionMap[address>>8] {
	case regionROM:
		// Writes here are mapper control on banked cartridges. Only the
		// flat 32 KiB cartridge is supported, so surface it and move on.
		slog.Warn("Unsupported write to ROM region (mapper control?)",
			"addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
	case regionVRAM, regionWRAM:
		m.memory[address] = value
	case regionExtRAM:
		if m.extRAM != nil {
			m.extRAM[address-0xA000] = value
		}
	case regionEcho:
		m.memory[address-0x2000] = value
	case regionOAM:
		if address <= addr.OAMEnd {
			m.memory[address] = value
		}
		// Writes to 0xFEA0-0xFEFF are dropped.
	case regionIO:
		switch {
		case address == addr.P1:
			m.joypad.Write(value)
		case address >= addr.DIV && address <= addr.TAC:
			m.timer.Write(address, value)
		case address == addr.IF:
			m.memory[address] = value | 0xE0
		case address == addr.LY:
			// Writing to LY resets the scanline counter.
			m.memory[address] = 0
		case address == addr.DMA:
			m.doDMATransfer(value)
		default:
			m.memory[address] = value
		}
	default:
		panic(fmt.Sprintf("attempted write at unmapped address: 0x%04X", address))
	}
}

// ReadWord reads a little-endian word: low byte at the lower address.
func (m *MMU) ReadWord(address uint16) uint16 {
	return bit.Combine(m.Read(address+1), m.Read(address))
}

// WriteWord writes a little-endian word: low byte at the lower address.
func (m *MMU) WriteWord(address uint16, value uint16) {
	m.Write(address, bit.Low(value))
	m.Write(address+1, bit.High(value))
}

// SetLY updates LY on behalf of the PPU. The PPU owns the scanline counter,
// so this bypasses the reset-on-write behavior CPU writes get.
func (m *MMU) SetLY(value byte) {
	m.memory[addr.LY] = value
}

// doDMATransfer copies 160 bytes from value<<8 into OAM. The copy is
// treated as atomic; the cycle cost is charged by the instruction that
// performed the register write.
func (m *MMU) doDMATransfer(value byte) {
	sourceAddr := uint16(value) << 8
	for i := uint16(0); i < 160; i++ {
		m.memory[addr.OAMStart+i] = m.Read(sourceAddr + i)
	}
	m.memory[addr.DMA] = value
}

// HandleKeyPress records a button press and raises the Joypad interrupt on
// a high to low line transition.
func (m *MMU) HandleKeyPress(key JoypadKey) {
	if m.joypad.Press(key) {
		m.RequestInterrupt(addr.JoypadInterrupt)
	}
}

// HandleKeyRelease records a button release.
func (m *MMU) HandleKeyRelease(key JoypadKey) {
	m.joypad.Release(key)
}
