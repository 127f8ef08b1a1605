package backend

import (
	"time"

	"github.com/valerio/go-chip8/chip8/audio"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

// Backend is a host platform (rendering + input + audio) driving a session.
// Backends are responsible for:
// - Rendering frames to their specific output (terminal, SDL window, etc.)
// - Translating platform key events through the InputManager
// - Playing the buzzer when they have an audio device
type Backend interface {
	// Init configures the backend. It is called once before Update.
	Init(config BackendConfig) error

	// Update polls platform events and renders the frame. Events the
	// backend cannot route through the InputManager itself, such as a
	// signal or the end of a headless run, are returned to the caller.
	Update(frame *video.Frame) ([]InputEvent, error)

	// Cleanup releases platform resources.
	Cleanup() error
}

// InputEvent is an action raised by a backend outside of the input manager.
type InputEvent struct {
	Action action.Action
	Type   event.Type
}

// BackendConfig holds configuration for backends
type BackendConfig struct {
	Title   string
	Scale   int
	Palette debug.Palette

	InputManager *input.Manager // translates platform keys for the session
	Audio        audio.Provider // buzzer samples, nil for silence
	Status       func() Status  // session state shown by backends with a status line
}

// Status is the host side view of the session shown by backends.
type Status struct {
	Paused   bool
	Sounding bool
	Frames   int
}

const (
	// FrameInterval is the host render cadence.
	FrameInterval = time.Second / 60
	// DefaultScale is the window pixel size of one CHIP-8 pixel.
	DefaultScale = 10
)
