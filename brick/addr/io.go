package addr

// video registers
const (
	// LCD Control register.
	LCDC uint16 = 0xFF40
	// LCDC Status register.
	STAT uint16 = 0xFF41
	// Scroll Y (SCY) register.
	SCY uint16 = 0xFF42
	// Scroll X (SCX) register.
	SCX uint16 = 0xFF43
	// LCDC Y-Coordinate register. Writing to it resets it to 0.
	LY uint16 = 0xFF44
	// LY Compare register.
	LYC uint16 = 0xFF45
	// DMA Transfer and Start register.
	DMA uint16 = 0xFF46
	// BG Palette register.
	BGP uint16 = 0xFF47
	// Object Palette 0 register.
	OBP0 uint16 = 0xFF48
	// Object Palette 1 register.
	OBP1 uint16 = 0xFF49
	// Window Y Position register.
	WY uint16 = 0xFF4A
	// Window X Position register.
	WX uint16 = 0xFF4B
)

// OAM (Object Attribute Memory) - sprite descriptors
const (
	// OAMStart is the start of OAM memory (40 sprites * 4 bytes each)
	OAMStart uint16 = 0xFE00
	// OAMEnd is the end of OAM memory
	OAMEnd uint16 = 0xFE9F
)

// tile data and tile maps
const (
	// TileData0 is the start of unsigned tile data (tiles 0-255)
	TileData0 uint16 = 0x8000
	// TileData1 is the start of the signed tile data region (tiles -128 to -1)
	TileData1 uint16 = 0x8800
	// TileData2 is the base used for signed tile indexing (tiles 0-127)
	TileData2 uint16 = 0x9000

	// TileMap0 is background/window tile map 0
	TileMap0 uint16 = 0x9800
	// TileMap1 is background/window tile map 1
	TileMap1 uint16 = 0x9C00
)

// interrupts
const (
	// IF is the address for the Interrupt Flags register.
	IF uint16 = 0xFF0F
	// IE is the address for the Interrupt Enable register.
	IE uint16 = 0xFFFF
)

// joypad
const (
	// P1 is used to read the Joypad state.
	P1 uint16 = 0xFF00
)

// timers
const (
	// DIV is the divider register. Increments at 16384 Hz, writing to it resets it.
	DIV uint16 = 0xFF04
	// TIMA is the timer counter register. Requests an interrupt when it overflows.
	TIMA uint16 = 0xFF05
	// TMA is the timer modulo register. Loaded into TIMA on overflow.
	TMA uint16 = 0xFF06
	// TAC is the timer control register. Enables the timer and selects its clock.
	TAC uint16 = 0xFF07
)

// audio register block. The core carries no APU; these bytes pass
// through the MMU as plain storage so games polling them keep running.
const (
	AudioStart uint16 = 0xFF10
	AudioEnd   uint16 = 0xFF3F
)

// Interrupt is an enum that represents one of the possible interrupt sources.
// The value is the source's bit in the IF/IE registers.
type Interrupt uint8

const (
	// VBlankInterrupt is fired when the PPU completes a frame (line 144).
	VBlankInterrupt Interrupt = 1
	// LCDSTATInterrupt is fired based on one of the conditions in the STAT register.
	LCDSTATInterrupt Interrupt = 1 << 1
	// TimerInterrupt is fired when TIMA overflows from 0xFF to 0x00.
	TimerInterrupt Interrupt = 1 << 2
	// SerialInterrupt is fired when a serial transfer completes. Unused by this
	// core, but the vector and bit exist and software may trigger it via IF.
	SerialInterrupt Interrupt = 1 << 3
	// JoypadInterrupt is fired when any selected joypad line goes from high to low.
	JoypadInterrupt Interrupt = 1 << 4
)

// Vector returns the fixed dispatch address for the interrupt.
func (i Interrupt) Vector() uint16 {
	switch i {
	case VBlankInterrupt:
		return 0x40
	case LCDSTATInterrupt:
		return 0x48
	case TimerInterrupt:
		return 0x50
	case SerialInterrupt:
		return 0x58
	case JoypadInterrupt:
		return 0x60
	}
	return 0
}
