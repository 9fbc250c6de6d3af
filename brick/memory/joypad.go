package memory

import "github.com/teodori/go-brick/brick/bit"

// JoypadKey represents one of the eight physical buttons.
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

// Joypad models the P1 register: a selector (bits 4-5, active low) routing
// one of the two button groups onto bits 0-3. Everything is active low,
// so 1 means released and 0 means pressed.
type Joypad struct {
	buttons  uint8 // A, B, Select, Start on bits 0-3
	dpad     uint8 // Right, Left, Up, Down on bits 0-3
	selector uint8 // last written selection bits (4-5)
}

// NewJoypad creates a Joypad with every button released and both groups
// selected, which is the post-boot state (P1 reads back 0xCF).
func NewJoypad() *Joypad {
	return &Joypad{
		buttons: 0x0F,
		dpad:    0x0F,
	}
}

// Read computes the P1 register value from the selection bits and the
// button matrix. Bits 6-7 always read as 1. When both groups are selected
// the hardware ANDs them together; with no selection the low bits float high.
func (j *Joypad) Read() uint8 {
	result := uint8(0b11000000)
	result |= j.selector

	selectDpad := !bit.IsSet(4, j.selector)
	selectButtons := !bit.IsSet(5, j.selector)

	switch {
	case selectButtons && !selectDpad:
		result |= j.buttons & 0x0F
	case selectDpad && !selectButtons:
		result |= j.dpad & 0x0F
	case selectButtons && selectDpad:
		result |= j.buttons & j.dpad & 0x0F
	default:
		result |= 0x0F
	}

	return result
}

// Write stores the selection bits. Only bits 4-5 are writable.
func (j *Joypad) Write(value uint8) {
	j.selector = value & 0b00110000
}

// Press marks a key as held. Returns true when one of the lines currently
// read through P1 (bits 0-3 under the selection) made a high to low
// transition, which is the condition for raising the Joypad interrupt.
func (j *Joypad) Press(key JoypadKey) bool {
	before := j.Read() & 0x0F

	switch key {
	case JoypadRight:
		j.dpad = bit.Reset(0, j.dpad)
	case JoypadLeft:
		j.dpad = bit.Reset(1, j.dpad)
	case JoypadUp:
		j.dpad = bit.Reset(2, j.dpad)
	case JoypadDown:
		j.dpad = bit.Reset(3, j.dpad)
	case JoypadA:
		j.buttons = bit.Reset(0, j.buttons)
	case JoypadB:
		j.buttons = bit.Reset(1, j.buttons)
	case JoypadSelect:
		j.buttons = bit.Reset(2, j.buttons)
	case JoypadStart:
		j.buttons = bit.Reset(3, j.buttons)
	}

	after := j.Read() & 0x0F
	return before&^after != 0
}

// Release marks a key as no longer held.
func (j *Joypad) Release(key JoypadKey) {
	switch key {
	case JoypadRight:
		j.dpad = bit.Set(0, j.dpad)
	case JoypadLeft:
		j.dpad = bit.Set(1, j.dpad)
	case JoypadUp:
		j.dpad = bit.Set(2, j.dpad)
	case JoypadDown:
		j.dpad = bit.Set(3, j.dpad)
	case JoypadA:
		j.buttons = bit.Set(0, j.buttons)
	case JoypadB:
		j.buttons = bit.Set(1, j.buttons)
	case JoypadSelect:
		j.buttons = bit.Set(2, j.buttons)
	case JoypadStart:
		j.buttons = bit.Set(3, j.buttons)
	}
}
