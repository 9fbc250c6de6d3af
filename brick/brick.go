package brick

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/teodori/go-brick/brick/cpu"
	"github.com/teodori/go-brick/brick/memory"
	"github.com/teodori/go-brick/brick/video"
)

const (
	// ClockSpeed is the nominal CPU clock in Hz.
	ClockSpeed = 4194304
	// CyclesPerFrame is one full LCD refresh: 154 scanlines of 456 cycles.
	CyclesPerFrame = 70224
)

// DMG is the root aggregate: it owns the memory unit and the CPU and PPU
// views over it, and drives them from a shared cycle budget. All state is
// confined here, so independent instances are fully isolated.
type DMG struct {
	cpu *cpu.CPU
	gpu *video.GPU
	mem *memory.MMU

	instructionCount uint64
	frameCount       uint64
}

// New creates an emulator with no cartridge, equivalent to powering on
// the console with the slot empty. Mostly useful for tests.
func New() *DMG {
	return fromMMU(memory.New())
}

// NewWithData creates an emulator from a raw ROM image. The image is
// validated (size, logo, header checksum, cartridge type) before anything
// starts; a validation failure means the emulator never runs.
func NewWithData(data []byte) (*DMG, error) {
	cart, err := memory.NewCartridgeWithData(data)
	if err != nil {
		return nil, err
	}

	slog.Debug("Loaded ROM", "title", cart.Title(), "size", cart.ROMSize())

	return fromMMU(memory.NewWithCartridge(cart)), nil
}

// NewWithFile creates an emulator and loads the ROM file into it.
func NewWithFile(path string) (*DMG, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ROM: %w", err)
	}

	return NewWithData(data)
}

func fromMMU(mem *memory.MMU) *DMG {
	d := &DMG{
		cpu: cpu.New(mem),
		gpu: video.NewGpu(mem),
		mem: mem,
	}
	d.mem.SetTimerSeed(0xABCC)
	return d
}

// RunUntilFrame executes instructions until one frame's worth of cycles
// has elapsed. Timer and PPU state advance after each instruction, never
// during it; interrupts are only serviced at instruction boundaries.
func (d *DMG) RunUntilFrame() error {
	if err := d.RunCycles(CyclesPerFrame); err != nil {
		return err
	}
	d.frameCount++
	return nil
}

// RunCycles advances the emulation by at least the given cycle budget.
// This is the wall-clock entry point: a host converts its frame delta to
// cycles via ClockSpeed and hands them over.
func (d *DMG) RunCycles(budget int) error {
	for budget > 0 {
		cycles, err := d.cpu.Tick()
		if err != nil {
			return err
		}

		d.mem.Tick(cycles)
		d.gpu.Tick(cycles)
		d.instructionCount++
		budget -= cycles
	}
	return nil
}

// RunFor advances the emulation by a wall-clock delta.
func (d *DMG) RunFor(dt time.Duration) error {
	return d.RunCycles(int(dt.Seconds() * ClockSpeed))
}

// GetCurrentFrame returns the visible framebuffer. The host must only
// read it between run calls.
func (d *DMG) GetCurrentFrame() *video.FrameBuffer {
	return d.gpu.GetFrameBuffer()
}

// RenderTileMap renders the full 256x256 background surface.
func (d *DMG) RenderTileMap() *video.FrameBuffer {
	return video.RenderTileMap(d.mem)
}

// HandleKeyPress forwards a button press to the joypad.
func (d *DMG) HandleKeyPress(key memory.JoypadKey) {
	d.mem.HandleKeyPress(key)
}

// HandleKeyRelease forwards a button release to the joypad.
func (d *DMG) HandleKeyRelease(key memory.JoypadKey) {
	d.mem.HandleKeyRelease(key)
}

// CPU exposes the processor for front ends and tests.
func (d *DMG) CPU() *cpu.CPU {
	return d.cpu
}

// MMU exposes the memory unit for front ends and tests.
func (d *DMG) MMU() *memory.MMU {
	return d.mem
}

func (d *DMG) InstructionCount() uint64 { return d.instructionCount }
func (d *DMG) FrameCount() uint64       { return d.frameCount }
