//go:build sdl2

package backend

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/teodori/go-brick/brick/memory"
	"github.com/teodori/go-brick/brick/video"
)

// SDL2Backend renders into an SDL window. Building it requires the SDL2
// development libraries; default builds use the stub instead (build tag
// sdl2 selects this file).
type SDL2Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	scale    int
	pixels   []byte
}

func NewSDL2Backend() *SDL2Backend {
	return &SDL2Backend{}
}

func (s *SDL2Backend) Init(config Config) error {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return err
	}

	s.scale = config.Scale
	if s.scale <= 0 {
		s.scale = 4
	}

	window, err := sdl.CreateWindow(config.Title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(video.FramebufferWidth*s.scale), int32(video.FramebufferHeight*s.scale),
		sdl.WINDOW_SHOWN)
	if err != nil {
		return err
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return err
	}
	s.renderer = renderer

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGBA32,
		sdl.TEXTUREACCESS_STREAMING, video.FramebufferWidth, video.FramebufferHeight)
	if err != nil {
		return err
	}
	s.texture = texture
	s.pixels = make([]byte, video.FramebufferSize*4)

	return nil
}

func (s *SDL2Backend) Update(frame *video.FrameBuffer) ([]InputEvent, bool, error) {
	var inputs []InputEvent
	quit := false

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch event := event.(type) {
		case *sdl.QuitEvent:
			quit = true
		case *sdl.KeyboardEvent:
			if event.Keysym.Sym == sdl.K_ESCAPE {
				quit = true
				break
			}
			if key, ok := mapScancode(event.Keysym.Sym); ok {
				inputs = append(inputs, InputEvent{Key: key, Pressed: event.Type == sdl.KEYDOWN})
			}
		}
	}

	for i, shade := range frame.ToSlice() {
		rgba := shade.RGBA()
		s.pixels[i*4] = byte(rgba >> 24)
		s.pixels[i*4+1] = byte(rgba >> 16)
		s.pixels[i*4+2] = byte(rgba >> 8)
		s.pixels[i*4+3] = byte(rgba)
	}

	if err := s.texture.Update(nil, s.pixels, video.FramebufferWidth*4); err != nil {
		return inputs, quit, err
	}
	if err := s.renderer.Copy(s.texture, nil, nil); err != nil {
		return inputs, quit, err
	}
	s.renderer.Present()

	return inputs, quit, nil
}

func mapScancode(sym sdl.Keycode) (memory.JoypadKey, bool) {
	switch sym {
	case sdl.K_UP:
		return memory.JoypadUp, true
	case sdl.K_DOWN:
		return memory.JoypadDown, true
	case sdl.K_LEFT:
		return memory.JoypadLeft, true
	case sdl.K_RIGHT:
		return memory.JoypadRight, true
	case sdl.K_z:
		return memory.JoypadA, true
	case sdl.K_x:
		return memory.JoypadB, true
	case sdl.K_RETURN:
		return memory.JoypadStart, true
	case sdl.K_SPACE:
		return memory.JoypadSelect, true
	}
	return 0, false
}

func (s *SDL2Backend) Cleanup() error {
	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()
	return nil
}
