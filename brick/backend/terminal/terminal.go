package terminal

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/teodori/go-brick/brick/backend"
	"github.com/teodori/go-brick/brick/memory"
	"github.com/teodori/go-brick/brick/video"
)

// keyHoldDuration is how long a key counts as held after its last event.
// Terminals only deliver key-down, so releases are synthesized when the
// autorepeat stream stops.
const keyHoldDuration = 150 * time.Millisecond

// Backend renders the framebuffer in a terminal with tcell, two pixel rows
// per character cell using the upper half-block glyph.
type Backend struct {
	screen tcell.Screen
	events chan tcell.Event
	held   map[memory.JoypadKey]time.Time
	config backend.Config
}

func New() *Backend {
	return &Backend{
		events: make(chan tcell.Event, 64),
		held:   make(map[memory.JoypadKey]time.Time),
	}
}

func (t *Backend) Init(config backend.Config) error {
	t.config = config

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	screen.HideCursor()
	t.screen = screen

	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case t.events <- ev:
			default:
				// Drop events rather than block the pump.
			}
		}
	}()

	return nil
}

func (t *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, bool, error) {
	var inputs []backend.InputEvent
	quit := false

	for {
		select {
		case ev := <-t.events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' {
					quit = true
					break
				}
				if key, ok := mapKey(ev); ok {
					if _, alreadyHeld := t.held[key]; !alreadyHeld {
						inputs = append(inputs, backend.InputEvent{Key: key, Pressed: true})
					}
					t.held[key] = time.Now()
				}
			case *tcell.EventResize:
				t.screen.Sync()
			}
		default:
			t.flushReleases(&inputs)
			t.draw(frame)
			return inputs, quit, nil
		}
	}
}

// flushReleases synthesizes release events for keys whose autorepeat
// stream has gone quiet.
func (t *Backend) flushReleases(inputs *[]backend.InputEvent) {
	now := time.Now()
	for key, last := range t.held {
		if now.Sub(last) > keyHoldDuration {
			delete(t.held, key)
			*inputs = append(*inputs, backend.InputEvent{Key: key, Pressed: false})
		}
	}
}

func mapKey(ev *tcell.EventKey) (memory.JoypadKey, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return memory.JoypadUp, true
	case tcell.KeyDown:
		return memory.JoypadDown, true
	case tcell.KeyLeft:
		return memory.JoypadLeft, true
	case tcell.KeyRight:
		return memory.JoypadRight, true
	case tcell.KeyEnter:
		return memory.JoypadStart, true
	}

	switch ev.Rune() {
	case 'z':
		return memory.JoypadA, true
	case 'x':
		return memory.JoypadB, true
	case ' ':
		return memory.JoypadSelect, true
	}

	return 0, false
}

var shadeColors = [4]tcell.Color{
	tcell.NewRGBColor(0xFF, 0xFF, 0xFF),
	tcell.NewRGBColor(0x98, 0x98, 0x98),
	tcell.NewRGBColor(0x4C, 0x4C, 0x4C),
	tcell.NewRGBColor(0x00, 0x00, 0x00),
}

// draw paints two pixel rows per terminal row: the upper half-block glyph
// takes the top pixel as foreground and the bottom one as background.
func (t *Backend) draw(frame *video.FrameBuffer) {
	for y := 0; y < frame.Height(); y += 2 {
		for x := 0; x < frame.Width(); x++ {
			top := frame.GetPixel(x, y)
			bottom := video.White
			if y+1 < frame.Height() {
				bottom = frame.GetPixel(x, y+1)
			}

			style := tcell.StyleDefault.
				Foreground(shadeColors[top]).
				Background(shadeColors[bottom])
			t.screen.SetContent(x, y/2, '▀', nil, style)
		}
	}
	t.screen.Show()
}

func (t *Backend) Cleanup() error {
	if t.screen != nil {
		t.screen.Fini()
	}
	return nil
}
