package video

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teodori/go-brick/brick/addr"
	"github.com/teodori/go-brick/brick/memory"
)

// newTestGpu wires a GPU with the LCD and background on, identity palette
// (index N renders as shade N) and no scroll.
func newTestGpu() (*GPU, *memory.MMU) {
	mmu := memory.New()
	gpu := NewGpu(mmu)

	mmu.Write(addr.LCDC, 0x91) // LCD on, unsigned tile data, BG on
	mmu.Write(addr.BGP, 0xE4)  // identity palette: 11 10 01 00
	mmu.Write(addr.SCX, 0)
	mmu.Write(addr.SCY, 0)

	return gpu, mmu
}

// writeTile stores 16 bytes of tile data at the given tile slot.
func writeTile(mmu *memory.MMU, base uint16, tile int, data []byte) {
	for i, b := range data {
		mmu.Write(base+uint16(tile*16+i), b)
	}
}

func solidTile(low, high byte) []byte {
	data := make([]byte, 16)
	for i := 0; i < 16; i += 2 {
		data[i] = low
		data[i+1] = high
	}
	return data
}

func TestGPU_zeroTileRendersShadeZero(t *testing.T) {
	gpu, _ := newTestGpu()

	// VRAM is zeroed: tile 0 is all zero bytes, the whole line is color 0.
	gpu.line = 0
	gpu.drawScanline()

	for x := 0; x < FramebufferWidth; x++ {
		assert.Equal(t, White, gpu.framebuffer.GetPixel(x, 0))
	}
}

func TestGPU_solidTileRendersShadeThree(t *testing.T) {
	gpu, mmu := newTestGpu()

	writeTile(mmu, addr.TileData0, 0, solidTile(0xFF, 0xFF))

	// The tilemap is zeroed, so every cell points at tile 0.
	gpu.line = 0
	gpu.drawScanline()

	for x := 0; x < FramebufferWidth; x++ {
		assert.Equal(t, Black, gpu.framebuffer.GetPixel(x, 0))
	}
}

func TestGPU_bitplaneDecoding(t *testing.T) {
	gpu, mmu := newTestGpu()

	// Row bytes 0xAA/0x00: pixels alternate color 1, 0 starting from the
	// MSB (leftmost). 0x00/0xAA gives color 2, 0. 0xAA/0xAA gives 3, 0.
	writeTile(mmu, addr.TileData0, 0, solidTile(0xAA, 0x00))

	gpu.line = 0
	gpu.drawScanline()

	assert.Equal(t, LightGray, gpu.framebuffer.GetPixel(0, 0))
	assert.Equal(t, White, gpu.framebuffer.GetPixel(1, 0))
	assert.Equal(t, LightGray, gpu.framebuffer.GetPixel(2, 0))

	writeTile(mmu, addr.TileData0, 0, solidTile(0x00, 0xAA))
	gpu.drawScanline()
	assert.Equal(t, DarkGray, gpu.framebuffer.GetPixel(0, 0))

	writeTile(mmu, addr.TileData0, 0, solidTile(0xAA, 0xAA))
	gpu.drawScanline()
	assert.Equal(t, Black, gpu.framebuffer.GetPixel(0, 0))
}

func TestGPU_paletteRemapping(t *testing.T) {
	gpu, mmu := newTestGpu()

	// Inverted palette: color 0 renders black, color 3 renders white.
	mmu.Write(addr.BGP, 0x1B) // 00 01 10 11

	writeTile(mmu, addr.TileData0, 0, solidTile(0xFF, 0xFF))

	gpu.line = 0
	gpu.drawScanline()

	assert.Equal(t, White, gpu.framebuffer.GetPixel(0, 0), "color 3 through inverted palette")

	writeTile(mmu, addr.TileData0, 0, solidTile(0x00, 0x00))
	gpu.drawScanline()
	assert.Equal(t, Black, gpu.framebuffer.GetPixel(0, 0), "color 0 through inverted palette")
}

func TestGPU_signedTileAddressing(t *testing.T) {
	gpu, mmu := newTestGpu()

	mmu.Write(addr.LCDC, 0x81) // LCD on, BG on, signed tile data mode

	// Tile index 0x80 is -128 in signed mode: 0x9000 - 128*16 = 0x8800.
	writeTile(mmu, addr.TileData1, 0, solidTile(0xFF, 0xFF))
	mmu.Write(addr.TileMap0, 0x80)

	gpu.line = 0
	gpu.drawScanline()

	assert.Equal(t, Black, gpu.framebuffer.GetPixel(0, 0))
	assert.Equal(t, White, gpu.framebuffer.GetPixel(8, 0), "neighboring cells still use tile 0 at 0x9000")
}

func TestGPU_scrollWrapsAround(t *testing.T) {
	gpu, mmu := newTestGpu()

	// Mark the tilemap cell at the bottom-right corner of the 256x256
	// surface and scroll so it lands at the screen origin.
	writeTile(mmu, addr.TileData0, 1, solidTile(0xFF, 0xFF))
	mmu.Write(addr.TileMap0+31*32+31, 0x01)

	mmu.Write(addr.SCX, 248)
	mmu.Write(addr.SCY, 248)

	gpu.line = 0
	gpu.drawScanline()

	assert.Equal(t, Black, gpu.framebuffer.GetPixel(0, 0), "corner tile visible at origin")
	assert.Equal(t, White, gpu.framebuffer.GetPixel(8, 0), "wrapped back to column 0 of the map (cell (0,31))")
}

func TestGPU_backgroundDisabledShowsColorZero(t *testing.T) {
	gpu, mmu := newTestGpu()

	writeTile(mmu, addr.TileData0, 0, solidTile(0xFF, 0xFF))
	mmu.Write(addr.LCDC, 0x90) // BG off

	gpu.line = 0
	gpu.drawScanline()

	assert.Equal(t, White, gpu.framebuffer.GetPixel(0, 0))
}

func TestGPU_windowOverlaysBackground(t *testing.T) {
	gpu, mmu := newTestGpu()

	// Background uses tile 0 (white). Window uses tilemap 1 with tile 1
	// (black), positioned at WX=7+80 so it covers the right half.
	writeTile(mmu, addr.TileData0, 1, solidTile(0xFF, 0xFF))
	for i := uint16(0); i < 32; i++ {
		mmu.Write(addr.TileMap1+i, 0x01)
	}

	mmu.Write(addr.LCDC, 0x91|1<<5|1<<6) // window on, window map 1
	mmu.Write(addr.WY, 0)
	mmu.Write(addr.WX, 87)

	gpu.line = 0
	gpu.drawScanline()

	assert.Equal(t, White, gpu.framebuffer.GetPixel(79, 0), "left of the window")
	assert.Equal(t, Black, gpu.framebuffer.GetPixel(80, 0), "window starts at WX-7")
	assert.Equal(t, Black, gpu.framebuffer.GetPixel(159, 0))
}

func TestGPU_windowBelowWYDoesNotRender(t *testing.T) {
	gpu, mmu := newTestGpu()

	writeTile(mmu, addr.TileData0, 1, solidTile(0xFF, 0xFF))
	for i := uint16(0); i < 32; i++ {
		mmu.Write(addr.TileMap1+i, 0x01)
	}

	mmu.Write(addr.LCDC, 0x91|1<<5|1<<6)
	mmu.Write(addr.WY, 10)
	mmu.Write(addr.WX, 7)

	gpu.line = 5
	gpu.drawScanline()

	assert.Equal(t, White, gpu.framebuffer.GetPixel(0, 5))
}

func TestGPU_lyProgressionAndVBlankInterrupt(t *testing.T) {
	mmu := memory.New()
	gpu := NewGpu(mmu)
	mmu.Write(addr.LCDC, 0x91)
	mmu.Write(addr.IF, 0)

	// The GPU starts at the top of VBlank; run a full frame so it passes
	// through the visible lines and reenters VBlank.
	sawVisible := false
	for i := 0; i < (frameCycles+scanlineCycles)/4; i++ {
		gpu.Tick(4)
		if gpu.line < FramebufferHeight {
			sawVisible = true
		}
	}

	assert.True(t, sawVisible, "LY went through the visible range")
	assert.NotZero(t, mmu.Read(addr.IF)&uint8(addr.VBlankInterrupt), "VBlank was requested at line 144")
}

func TestGPU_lycCoincidenceSetsStatAndInterrupt(t *testing.T) {
	mmu := memory.New()
	gpu := NewGpu(mmu)
	mmu.Write(addr.LCDC, 0x91)
	mmu.Write(addr.LYC, 42)
	mmu.Write(addr.STAT, 1<<uint8(statLycIrq))
	mmu.Write(addr.IF, 0)

	gpu.setLY(42)

	assert.NotZero(t, mmu.Read(addr.STAT)&(1<<uint8(statLycCondition)))
	assert.NotZero(t, mmu.Read(addr.IF)&uint8(addr.LCDSTATInterrupt))

	mmu.Write(addr.IF, 0)
	gpu.setLY(43)
	assert.Zero(t, mmu.Read(addr.STAT)&(1<<uint8(statLycCondition)))
	assert.Zero(t, mmu.Read(addr.IF)&uint8(addr.LCDSTATInterrupt))
}

func TestGPU_lcdDisabledForcesLYZero(t *testing.T) {
	mmu := memory.New()
	gpu := NewGpu(mmu)
	mmu.Write(addr.LCDC, 0x91)

	gpu.setLY(100)
	mmu.Write(addr.LCDC, 0x11) // LCD off

	gpu.Tick(4)

	assert.Equal(t, uint8(0), mmu.Read(addr.LY))
	assert.Equal(t, 0, gpu.line)
}
