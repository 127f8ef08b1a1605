//go:build sdl2

package sdl2

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/valerio/go-chip8/chip8/audio"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/log"
	"github.com/valerio/go-chip8/chip8/video"
)

const (
	bytesPerPixel = 4

	audioFormat = sdl.AUDIO_S16LSB
	// queued audio is kept around two frames ahead of playback
	audioLead = audio.SampleRate / 30
)

// Backend implements the Backend interface using SDL2 bindings
// Note: building this requires SDL2 development libraries installed.
// Default builds skip this and use a stubbed renderer, see build tags (sdl2)
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	pixels   []byte
	on, off  [4]byte // ABGR

	audioDev sdl.AudioDeviceID
	config   backend.BackendConfig
	events   []backend.InputEvent
}

// New creates a new SDL2 backend
func New() *Backend {
	return &Backend{}
}

// Init initializes the SDL2 backend
func (s *Backend) Init(config backend.BackendConfig) error {
	s.config = config
	s.on = abgr(config.Palette.On, 0xFF)
	s.off = abgr(config.Palette.Off, 0x00)

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS | sdl.INIT_AUDIO); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %v", err)
	}

	scale := int32(max(config.Scale, 1))
	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		video.FramebufferWidth*scale,
		video.FramebufferHeight*scale,
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %v", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create renderer: %v", err)
	}
	s.renderer = renderer

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGBA8888,
		sdl.TEXTUREACCESS_STREAMING,
		video.FramebufferWidth,
		video.FramebufferHeight,
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create texture: %v", err)
	}
	s.texture = texture
	s.pixels = make([]byte, video.FramebufferWidth*video.FramebufferHeight*bytesPerPixel)

	if config.Audio != nil {
		s.openAudio()
	}

	log.ModEmu.Info("SDL2 backend initialized")
	return nil
}

// openAudio starts the buzzer output. A missing audio device only
// disables sound.
func (s *Backend) openAudio() {
	spec := &sdl.AudioSpec{
		Freq:     audio.SampleRate,
		Format:   audioFormat,
		Channels: 1,
		Samples:  1024,
	}
	var obtained sdl.AudioSpec
	dev, err := sdl.OpenAudioDevice("", false, spec, &obtained, 0)
	if err != nil {
		log.ModEmu.WithError(err).Warn("no audio device, sound disabled")
		return
	}
	s.audioDev = dev
	sdl.PauseAudioDevice(dev, false)
}

// Update renders a frame and processes events
func (s *Backend) Update(frame *video.Frame) ([]backend.InputEvent, error) {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		s.handleEvent(ev)
	}

	s.queueAudio()
	if err := s.renderFrame(frame); err != nil {
		return nil, err
	}

	events := s.events
	s.events = nil
	return events, nil
}

// Cleanup cleans up SDL2 resources
func (s *Backend) Cleanup() error {
	log.ModEmu.Info("cleaning up SDL2 backend")

	if s.audioDev != 0 {
		sdl.CloseAudioDevice(s.audioDev)
	}
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

func (s *Backend) handleEvent(ev sdl.Event) {
	switch e := ev.(type) {
	case *sdl.QuitEvent:
		s.events = append(s.events, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})

	case *sdl.KeyboardEvent:
		// SDL reports real key-ups, no need for expiry; repeats are dropped
		if e.Repeat != 0 || s.config.InputManager == nil {
			return
		}
		name := keyName(e.Keysym.Sym)
		if name == "" {
			return
		}
		switch e.Type {
		case sdl.KEYDOWN:
			s.config.InputManager.HandleKey(name, event.Press)
		case sdl.KEYUP:
			s.config.InputManager.HandleKey(name, event.Release)
		}
	}
}

var sdlKeyNames = map[sdl.Keycode]string{
	sdl.K_ESCAPE: "Escape",
	sdl.K_SPACE:  "Space",
	sdl.K_RETURN: "Enter",
	sdl.K_TAB:    "Tab",
	sdl.K_UP:     "Up",
	sdl.K_DOWN:   "Down",
	sdl.K_LEFT:   "Left",
	sdl.K_RIGHT:  "Right",
}

// keyName maps a keycode to the names used by bindings: lower case for
// single characters, SDL names ("F5") for the rest.
func keyName(sym sdl.Keycode) string {
	if name, ok := sdlKeyNames[sym]; ok {
		return name
	}
	name := sdl.GetKeyName(sym)
	if len(name) == 1 {
		return strings.ToLower(name)
	}
	return name
}

func (s *Backend) renderFrame(frame *video.Frame) error {
	for y := range frame {
		for x, lit := range frame[y] {
			px := s.off
			if lit {
				px = s.on
			}
			copy(s.pixels[(y*video.FramebufferWidth+x)*bytesPerPixel:], px[:])
		}
	}

	if err := s.texture.Update(nil, unsafe.Pointer(&s.pixels[0]), video.FramebufferWidth*bytesPerPixel); err != nil {
		return fmt.Errorf("texture update: %w", err)
	}

	s.renderer.SetDrawColor(s.off[3], s.off[2], s.off[1], 0xFF)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
	return nil
}

func (s *Backend) queueAudio() {
	if s.audioDev == 0 {
		return
	}
	queued := int(sdl.GetQueuedAudioSize(s.audioDev)) / 2
	if queued >= audioLead {
		return
	}

	samples := s.config.Audio.GetSamples(audioLead - queued)
	buf := make([]byte, len(samples)*2)
	for i, v := range samples {
		buf[2*i] = byte(v)
		buf[2*i+1] = byte(uint16(v) >> 8)
	}
	if err := sdl.QueueAudio(s.audioDev, buf); err != nil {
		log.ModEmu.WithError(err).Debug("failed to queue audio buffer")
	}
}
