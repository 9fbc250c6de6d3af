package video

import (
	"github.com/teodori/go-brick/brick/addr"
	"github.com/teodori/go-brick/brick/memory"
)

// RenderTileMap renders the full 256x256 background surface: the 32x32
// tile grid selected by LCDC bit 3, through the current BGP palette and
// tile-data addressing mode. The visible screen is the 160x144 window of
// this surface starting at (SCX, SCY), wrapping on both axes. Front ends
// use it to show the whole map around the viewport.
func RenderTileMap(mem *memory.MMU) *FrameBuffer {
	fb := NewFrameBufferSized(TileMapWidth, TileMapWidth)

	lcdc := mem.Read(addr.LCDC)
	useSigned := lcdc&(1<<uint8(bgWindowTileDataSelect)) == 0

	tileMapAddr := addr.TileMap0
	if lcdc&(1<<uint8(bgTileMapSelect)) != 0 {
		tileMapAddr = addr.TileMap1
	}

	palette := mem.Read(addr.BGP)

	for mapTileY := 0; mapTileY < 32; mapTileY++ {
		for mapTileX := 0; mapTileX < 32; mapTileX++ {
			tileIndex := mem.Read(tileMapAddr + uint16(mapTileY*32+mapTileX))

			for row := 0; row < 8; row++ {
				rowAddr := tileRowAddr(useSigned, tileIndex, row)
				low := mem.Read(rowAddr)
				high := mem.Read(rowAddr + 1)

				for x := 0; x < 8; x++ {
					index := pixelIndexAt(low, high, x)
					fb.SetPixel(mapTileX*8+x, mapTileY*8+row, shadeFor(palette, index))
				}
			}
		}
	}

	return fb
}
