package memory

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
)

const titleLength = 16

const (
	logoAddress           = 0x0104
	titleAddress          = 0x0134
	cartridgeTypeAddress  = 0x0147
	romSizeAddress        = 0x0148
	ramSizeAddress        = 0x0149
	versionNumberAddress  = 0x014C
	headerChecksumAddress = 0x014D
	headerStart           = 0x0134
	headerEnd             = 0x014C
	minimumROMSize        = 0x0150
)

// nintendoLogo is the 48-byte bitmap at 0x0104 that the boot ROM compares
// against before handing control to the cartridge. An image without it is
// not a valid ROM.
var nintendoLogo = []byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B, 0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E, 0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC, 0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

// LoadReason identifies why a ROM image was rejected.
type LoadReason uint8

const (
	LoadTooShort LoadReason = iota
	LoadLogoMismatch
	LoadBadChecksum
	LoadUnsupportedType
)

func (r LoadReason) String() string {
	switch r {
	case LoadTooShort:
		return "image too short"
	case LoadLogoMismatch:
		return "logo mismatch"
	case LoadBadChecksum:
		return "header checksum mismatch"
	case LoadUnsupportedType:
		return "unsupported cartridge type"
	}
	return "unknown"
}

// LoadError is returned when a ROM image fails header validation.
type LoadError struct {
	Reason LoadReason
	Detail string
}

func (e *LoadError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("bad ROM: %s", e.Reason)
	}
	return fmt.Sprintf("bad ROM: %s (%s)", e.Reason, e.Detail)
}

// Cartridge holds a loaded ROM image and its parsed header metadata.
// The data is mapped read-only into the 0x0000-0x7FFF region.
type Cartridge struct {
	data     []byte
	title    string
	cartType uint8
	romSize  uint8
	ramSize  uint8
	version  uint8
}

// NewCartridge creates an empty cartridge, equivalent to powering on the
// console with nothing inserted. Reads return zeroes; useful for tests.
func NewCartridge() *Cartridge {
	return &Cartridge{
		data: make([]byte, 0x8000),
	}
}

// NewCartridgeWithData validates a raw ROM image and wraps it in a Cartridge.
// Validation follows the boot sequence: size, logo bytes, header checksum,
// then the cartridge type (only the flat 32 KiB type 0x00 is supported).
func NewCartridgeWithData(raw []byte) (*Cartridge, error) {
	if len(raw) < minimumROMSize {
		return nil, &LoadError{Reason: LoadTooShort, Detail: fmt.Sprintf("%d bytes", len(raw))}
	}

	if !bytes.Equal(raw[logoAddress:logoAddress+len(nintendoLogo)], nintendoLogo) {
		return nil, &LoadError{Reason: LoadLogoMismatch}
	}

	if got, want := HeaderChecksum(raw), raw[headerChecksumAddress]; got != want {
		return nil, &LoadError{
			Reason: LoadBadChecksum,
			Detail: fmt.Sprintf("computed 0x%02X, header says 0x%02X", got, want),
		}
	}

	cartType := raw[cartridgeTypeAddress]
	if cartType != 0x00 {
		return nil, &LoadError{Reason: LoadUnsupportedType, Detail: fmt.Sprintf("type 0x%02X", cartType)}
	}

	cart := &Cartridge{
		data:     make([]byte, len(raw)),
		title:    cleanTitle(raw[titleAddress : titleAddress+titleLength]),
		cartType: cartType,
		romSize:  raw[romSizeAddress],
		ramSize:  raw[ramSizeAddress],
		version:  raw[versionNumberAddress],
	}
	copy(cart.data, raw)

	return cart, nil
}

// Title returns the cleaned up ASCII title from the header.
func (c *Cartridge) Title() string {
	return c.title
}

// Type returns the cartridge type byte (always 0x00 for a loaded cart).
func (c *Cartridge) Type() uint8 {
	return c.cartType
}

// ROMSize returns the size in bytes encoded by the header's ROM size code.
func (c *Cartridge) ROMSize() int {
	return 0x8000 << c.romSize
}

// RAMSize returns the header's RAM size code.
func (c *Cartridge) RAMSize() uint8 {
	return c.ramSize
}

// Read reads a byte from the ROM image. Addresses past the end of the
// image read as open bus (0xFF).
func (c *Cartridge) Read(address uint16) uint8 {
	if int(address) >= len(c.data) {
		return 0xFF
	}
	return c.data[address]
}

// HeaderChecksum computes the checksum over the header bytes
// 0x0134-0x014C the way the boot ROM does: x = x - byte - 1.
func HeaderChecksum(raw []byte) uint8 {
	var sum uint8
	for address := headerStart; address <= headerEnd; address++ {
		sum = sum - raw[address] - 1
	}
	return sum
}

// cleanTitle turns the raw header title bytes into printable ASCII,
// dropping null padding.
func cleanTitle(titleBytes []byte) string {
	runes := make([]rune, 0, len(titleBytes))
	for _, b := range titleBytes {
		r := rune(b)
		if r == 0 {
			r = ' '
		} else if !unicode.IsPrint(r) {
			r = '?'
		}
		runes = append(runes, r)
	}

	return strings.TrimSpace(string(runes))
}
