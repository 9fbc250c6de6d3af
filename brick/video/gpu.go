package video

import (
	"github.com/teodori/go-brick/brick/addr"
	"github.com/teodori/go-brick/brick/bit"
	"github.com/teodori/go-brick/brick/memory"
)

// GpuMode represents the PPU's current rendering stage.
// These values match the STAT register bits 1-0.
type GpuMode int

const (
	// hblankMode (Mode 0): horizontal blank, CPU can access VRAM/OAM
	hblankMode GpuMode = 0
	// vblankMode (Mode 1): vertical blank, lines 144-153
	vblankMode GpuMode = 1
	// oamReadMode (Mode 2): PPU is scanning OAM
	oamReadMode GpuMode = 2
	// vramReadMode (Mode 3): PPU is reading VRAM and pushing pixels
	vramReadMode GpuMode = 3
)

const (
	oamScanCycles  = 80
	vramReadCycles = 172
	hblankCycles   = 204
	scanlineCycles = oamScanCycles + vramReadCycles + hblankCycles

	vblankLines = 10
	frameCycles = scanlineCycles * (FramebufferHeight + vblankLines)
)

// LCDC bit positions.
type lcdcFlag uint8

const (
	lcdDisplayEnable       lcdcFlag = 7
	windowTileMapSelect    lcdcFlag = 6
	windowDisplayEnable    lcdcFlag = 5
	bgWindowTileDataSelect lcdcFlag = 4
	bgTileMapSelect        lcdcFlag = 3
	spriteSize             lcdcFlag = 2
	spriteDisplayEnable    lcdcFlag = 1
	bgDisplay              lcdcFlag = 0
)

// STAT bit positions.
type statFlag uint8

const (
	statLycIrq       statFlag = 6
	statOamIrq       statFlag = 5
	statVblankIrq    statFlag = 4
	statHblankIrq    statFlag = 3
	statLycCondition statFlag = 2
)

// GPU renders the background, window and sprite layers one scanline at a
// time, driving LY, the STAT mode bits and the VBlank/STAT interrupts.
type GPU struct {
	memory         *memory.MMU
	framebuffer    *FrameBuffer
	bgIndexBuffer  []uint8 // BG/window color index per pixel, for sprite priority
	spritePriority SpritePriorityBuffer

	mode           GpuMode
	line           int  // current scanline (LY), 0-153
	cycles         int  // cycle counter within the current mode
	modeCounterAux int  // auxiliary counter for VBlank line stepping
	vBlankLine     int  // which VBlank line we're on (0-9)
	windowLine     int  // internal window line counter
	scanlineDrawn  bool // whether the current scanline has been rendered
}

// NewGpu creates a GPU starting at the top of VBlank, matching the
// post-boot state.
func NewGpu(memory *memory.MMU) *GPU {
	g := &GPU{
		memory:        memory,
		framebuffer:   NewFrameBuffer(),
		bgIndexBuffer: make([]uint8, FramebufferSize),
		mode:          vblankMode,
		line:          FramebufferHeight,
	}
	memory.SetLY(byte(g.line))
	return g
}

// GetFrameBuffer returns the visible 160x144 screen.
func (g *GPU) GetFrameBuffer() *FrameBuffer {
	return g.framebuffer
}

// Tick advances the PPU state machine by the given number of clock cycles.
// LY advances every 456 cycles; the VBlank interrupt fires at the 143->144
// transition.
func (g *GPU) Tick(cycles int) {
	if g.readLCDCFlag(lcdDisplayEnable) == 0 {
		// LCD off: LY is forced to 0 and nothing renders.
		if g.line != 0 {
			g.line = 0
			g.cycles = 0
			g.windowLine = 0
			g.mode = hblankMode
			g.memory.SetLY(0)
		}
		return
	}

	g.cycles += cycles

	switch g.mode {
	case oamReadMode:
		if g.cycles >= oamScanCycles {
			g.cycles -= oamScanCycles
			g.scanlineDrawn = false
			g.setMode(vramReadMode)
		}
	case vramReadMode:
		if !g.scanlineDrawn {
			g.drawScanline()
			g.scanlineDrawn = true
		}

		if g.cycles >= vramReadCycles {
			g.cycles -= vramReadCycles
			g.setMode(hblankMode)

			if g.memory.ReadBit(uint8(statHblankIrq), addr.STAT) {
				g.memory.RequestInterrupt(addr.LCDSTATInterrupt)
			}
		}
	case hblankMode:
		if g.cycles < hblankCycles {
			break
		}
		g.cycles -= hblankCycles
		g.setLY(g.line + 1)

		if g.line == FramebufferHeight {
			g.setMode(vblankMode)
			g.vBlankLine = 0
			g.modeCounterAux = g.cycles
			g.windowLine = 0

			g.memory.RequestInterrupt(addr.VBlankInterrupt)

			if g.memory.ReadBit(uint8(statVblankIrq), addr.STAT) {
				g.memory.RequestInterrupt(addr.LCDSTATInterrupt)
			}
		} else {
			g.setMode(oamReadMode)
			if g.memory.ReadBit(uint8(statOamIrq), addr.STAT) {
				g.memory.RequestInterrupt(addr.LCDSTATInterrupt)
			}
		}
	case vblankMode:
		g.modeCounterAux += cycles

		if g.modeCounterAux >= scanlineCycles {
			g.modeCounterAux -= scanlineCycles
			g.vBlankLine++

			if g.vBlankLine <= vblankLines-1 {
				g.setLY(g.line + 1)
			}
		}

		if g.cycles >= scanlineCycles*vblankLines {
			g.cycles -= scanlineCycles * vblankLines
			g.setLY(0)
			g.setMode(oamReadMode)
			if g.memory.ReadBit(uint8(statOamIrq), addr.STAT) {
				g.memory.RequestInterrupt(addr.LCDSTATInterrupt)
			}
		}
	}
}

func (g *GPU) drawScanline() {
	g.drawBackground()
	g.drawWindow()
	g.drawSprites()
}

// shadeFor maps a 2-bit color index through a palette register.
func shadeFor(palette uint8, index uint8) Shade {
	return Shade((palette >> (2 * index)) & 0x03)
}

// tileRowAddr resolves the VRAM address of a tile's row using the LCDC
// tile-data addressing mode: unsigned from 0x8000 or signed around 0x9000.
func tileRowAddr(useSigned bool, tileIndex uint8, row int) uint16 {
	if useSigned {
		return uint16(int(addr.TileData2) + int(int8(tileIndex))*16 + row*2)
	}
	return addr.TileData0 + uint16(tileIndex)*16 + uint16(row)*2
}

// pixelIndexAt extracts the 2-bit color index of pixel x (0 = leftmost)
// from a tile row's two bitplane bytes.
func pixelIndexAt(low, high uint8, x int) uint8 {
	mask := uint8(7 - x)
	return bit.GetBitValue(mask, low) | bit.GetBitValue(mask, high)<<1
}

func (g *GPU) drawBackground() {
	lineWidth := g.line * FramebufferWidth
	palette := g.memory.Read(addr.BGP)

	if g.readLCDCFlag(bgDisplay) == 0 {
		// With the background disabled the line shows color 0 of BGP.
		shade := shadeFor(palette, 0)
		for i := 0; i < FramebufferWidth; i++ {
			g.framebuffer.pixels[lineWidth+i] = shade
			g.bgIndexBuffer[lineWidth+i] = 0
		}
		return
	}

	useSigned := g.readLCDCFlag(bgWindowTileDataSelect) == 0

	tileMapAddr := addr.TileMap0
	if g.readLCDCFlag(bgTileMapSelect) == 1 {
		tileMapAddr = addr.TileMap1
	}

	scrollX := int(g.memory.Read(addr.SCX))
	scrollY := int(g.memory.Read(addr.SCY))

	mapPixelY := (g.line + scrollY) & 0xFF // wraps at 256
	tileRow := mapPixelY % 8
	mapTileY := mapPixelY / 8

	for screenPixelX := 0; screenPixelX < FramebufferWidth; screenPixelX++ {
		mapPixelX := (screenPixelX + scrollX) & 0xFF
		mapTileX := mapPixelX / 8

		tileIndex := g.memory.Read(tileMapAddr + uint16(mapTileY*32+mapTileX))
		rowAddr := tileRowAddr(useSigned, tileIndex, tileRow)
		low := g.memory.Read(rowAddr)
		high := g.memory.Read(rowAddr + 1)

		index := pixelIndexAt(low, high, mapPixelX%8)

		g.framebuffer.pixels[lineWidth+screenPixelX] = shadeFor(palette, index)
		g.bgIndexBuffer[lineWidth+screenPixelX] = index
	}
}

func (g *GPU) drawWindow() {
	if g.readLCDCFlag(windowDisplayEnable) == 0 {
		return
	}
	if g.windowLine > FramebufferHeight-1 {
		return
	}

	wy := int(g.memory.Read(addr.WY))
	wx := int(g.memory.Read(addr.WX)) - 7

	if wy > g.line || wx > FramebufferWidth-1 {
		return
	}

	useSigned := g.readLCDCFlag(bgWindowTileDataSelect) == 0

	tileMapAddr := addr.TileMap0
	if g.readLCDCFlag(windowTileMapSelect) == 1 {
		tileMapAddr = addr.TileMap1
	}

	palette := g.memory.Read(addr.BGP)
	lineWidth := g.line * FramebufferWidth
	tileRow := g.windowLine % 8
	mapTileY := g.windowLine / 8

	startX := wx
	if startX < 0 {
		startX = 0
	}

	for screenPixelX := startX; screenPixelX < FramebufferWidth; screenPixelX++ {
		windowPixelX := screenPixelX - wx
		mapTileX := windowPixelX / 8

		tileIndex := g.memory.Read(tileMapAddr + uint16(mapTileY*32+mapTileX))
		rowAddr := tileRowAddr(useSigned, tileIndex, tileRow)
		low := g.memory.Read(rowAddr)
		high := g.memory.Read(rowAddr + 1)

		index := pixelIndexAt(low, high, windowPixelX%8)

		g.framebuffer.pixels[lineWidth+screenPixelX] = shadeFor(palette, index)
		g.bgIndexBuffer[lineWidth+screenPixelX] = index
	}

	g.windowLine++
}

func (g *GPU) drawSprites() {
	if g.readLCDCFlag(spriteDisplayEnable) == 0 {
		return
	}

	spriteHeight := 8
	if g.readLCDCFlag(spriteSize) == 1 {
		spriteHeight = 16
	}

	lineWidth := g.line * FramebufferWidth

	// OAM selection: scan in OAM order comparing LY to each sprite's Y
	// span. Only the first 10 hits count, regardless of X visibility.
	var spritesToDraw []int
	for sprite := 0; sprite < 40; sprite++ {
		oamAddr := addr.OAMStart + uint16(sprite*4)
		spriteY := int(g.memory.Read(oamAddr)) - 16

		if spriteY > g.line || spriteY+spriteHeight <= g.line {
			continue
		}
		spritesToDraw = append(spritesToDraw, sprite)
		if len(spritesToDraw) >= 10 {
			break
		}
	}

	// Pixel ownership pass: smaller X wins, OAM order breaks ties.
	g.spritePriority.Clear()
	for _, sprite := range spritesToDraw {
		oamAddr := addr.OAMStart + uint16(sprite*4)
		spriteX := int(g.memory.Read(oamAddr+1)) - 8

		for pixelOffset := 0; pixelOffset < 8; pixelOffset++ {
			g.spritePriority.TryClaimPixel(spriteX+pixelOffset, sprite, spriteX)
		}
	}

	for _, sprite := range spritesToDraw {
		oamAddr := addr.OAMStart + uint16(sprite*4)
		spriteY := int(g.memory.Read(oamAddr)) - 16
		spriteX := int(g.memory.Read(oamAddr+1)) - 8
		tileIndex := g.memory.Read(oamAddr + 2)
		attributes := g.memory.Read(oamAddr + 3)

		paletteAddr := addr.OBP0
		if bit.IsSet(4, attributes) {
			paletteAddr = addr.OBP1
		}
		palette := g.memory.Read(paletteAddr)

		flipX := bit.IsSet(5, attributes)
		flipY := bit.IsSet(6, attributes)
		behindBG := bit.IsSet(7, attributes)

		pixelY := g.line - spriteY
		if flipY {
			pixelY = spriteHeight - 1 - pixelY
		}

		// Tall sprites span two tiles; the index's low bit is forced to 0
		// for the top half and to 1 for the bottom.
		if spriteHeight == 16 {
			if pixelY >= 8 {
				tileIndex |= 0x01
				pixelY -= 8
			} else {
				tileIndex &= 0xFE
			}
		}

		rowAddr := addr.TileData0 + uint16(tileIndex)*16 + uint16(pixelY)*2
		low := g.memory.Read(rowAddr)
		high := g.memory.Read(rowAddr + 1)

		for pixelX := 0; pixelX < 8; pixelX++ {
			bufferX := spriteX + pixelX
			if bufferX < 0 || bufferX >= FramebufferWidth {
				continue
			}
			if g.spritePriority.GetOwner(bufferX) != sprite {
				continue
			}

			tilePixelX := pixelX
			if flipX {
				tilePixelX = 7 - pixelX
			}

			index := pixelIndexAt(low, high, tilePixelX)
			// Color index 0 is transparent for sprites, whatever the palette.
			if index == 0 {
				continue
			}

			position := lineWidth + bufferX
			if behindBG && g.bgIndexBuffer[position] != 0 {
				continue
			}

			g.framebuffer.pixels[position] = shadeFor(palette, index)
		}
	}
}

func (g *GPU) readLCDCFlag(flag lcdcFlag) byte {
	return bit.GetBitValue(uint8(flag), g.memory.Read(addr.LCDC))
}

// compareLYToLYC maintains the coincidence bit and its STAT interrupt.
func (g *GPU) compareLYToLYC() {
	ly := g.memory.Read(addr.LY)
	lyc := g.memory.Read(addr.LYC)
	stat := g.memory.Read(addr.STAT)

	if ly == lyc {
		stat = bit.Set(uint8(statLycCondition), stat)
		if bit.IsSet(uint8(statLycIrq), stat) {
			g.memory.RequestInterrupt(addr.LCDSTATInterrupt)
		}
	} else {
		stat = bit.Reset(uint8(statLycCondition), stat)
	}

	g.memory.Write(addr.STAT, stat)
}

// setMode stores the mode in STAT bits 1-0.
func (g *GPU) setMode(mode GpuMode) {
	g.mode = mode
	stat := g.memory.Read(addr.STAT)
	g.memory.Write(addr.STAT, stat&0xFC|byte(mode))
}

// setLY updates the scanline counter and runs the LYC comparison.
func (g *GPU) setLY(line int) {
	g.line = line
	g.memory.SetLY(byte(line))
	g.compareLYToLYC()
}
