package backend

import (
	"github.com/teodori/go-brick/brick/memory"
	"github.com/teodori/go-brick/brick/video"
)

// InputEvent is a button state change captured by a backend.
type InputEvent struct {
	Key     memory.JoypadKey
	Pressed bool
}

// Config holds the options shared by all backends.
type Config struct {
	Title string
	Scale int
}

// Backend is a complete host platform: it renders frames to its output and
// captures input. The emulation loop calls Update once per frame with the
// framebuffer produced at VBlank.
type Backend interface {
	// Init configures the backend. Required before calling Update.
	Init(config Config) error

	// Update renders the frame and returns the input events collected
	// since the previous call. quit reports that the host wants to stop.
	Update(frame *video.FrameBuffer) (events []InputEvent, quit bool, err error)

	// Cleanup releases resources when shutting down.
	Cleanup() error
}
