package backend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teodori/go-brick/brick/video"
)

func TestRenderFrameToHalfBlocks(t *testing.T) {
	frame := video.NewFrameBuffer()

	// Top-left pixel dark, the one below it too: a full block. A lone top
	// or bottom pixel renders a half block.
	frame.SetPixel(0, 0, video.Black)
	frame.SetPixel(0, 1, video.Black)
	frame.SetPixel(1, 0, video.DarkGray)
	frame.SetPixel(2, 1, video.Black)

	lines := RenderFrameToHalfBlocks(frame)

	assert.Len(t, lines, video.FramebufferHeight/2)

	first := []rune(lines[0])
	assert.Equal(t, '█', first[0])
	assert.Equal(t, '▀', first[1])
	assert.Equal(t, '▄', first[2])
	assert.Equal(t, ' ', first[3])

	// Light shades count as paper, not ink.
	frame.SetPixel(4, 0, video.LightGray)
	lines = RenderFrameToHalfBlocks(frame)
	assert.Equal(t, ' ', []rune(lines[0])[4])

	for _, line := range lines[1:] {
		assert.Equal(t, strings.Repeat(" ", video.FramebufferWidth), line)
	}
}
