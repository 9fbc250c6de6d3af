package backend

import (
	"strings"

	"github.com/teodori/go-brick/brick/video"
)

// RenderFrameToHalfBlocks converts a framebuffer into text lines, two pixel
// rows per line, using the upper/lower half-block characters. Shades 2 and
// 3 count as ink. Used by snapshot files and as a plain-text fallback.
func RenderFrameToHalfBlocks(frame *video.FrameBuffer) []string {
	width := frame.Width()
	height := frame.Height()

	lines := make([]string, 0, height/2)
	var b strings.Builder

	for y := 0; y < height; y += 2 {
		b.Reset()
		for x := 0; x < width; x++ {
			top := frame.GetPixel(x, y) >= video.DarkGray
			bottom := y+1 < height && frame.GetPixel(x, y+1) >= video.DarkGray

			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteRune(' ')
			}
		}
		lines = append(lines, b.String())
	}

	return lines
}
