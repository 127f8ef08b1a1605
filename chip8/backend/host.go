package backend

import (
	"context"
	"time"

	"github.com/valerio/go-chip8/chip8/audio"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/log"
	"github.com/valerio/go-chip8/chip8/timing"
	"github.com/valerio/go-chip8/chip8/video"
)

// Session is the part of a running machine the host loop drives.
type Session interface {
	input.KeySink
	PollDraw() bool
	FrameBuffer() *video.FrameBuffer
	Pause() error
	Unpause() error
	Save(path string) error
	Sounding() bool
	Done() <-chan struct{}
	Shutdown() error
}

type HostConfig struct {
	Backend  BackendConfig
	Bindings *input.Bindings

	// StatePath is where the save state control writes, empty disables it.
	StatePath string
	// ScreenshotDir receives PNG screenshots, empty is the working directory.
	ScreenshotDir string
	// FrameInterval overrides FrameInterval when positive.
	FrameInterval time.Duration
}

// Host renders a session through a backend at a fixed frame rate and
// routes the emulator controls.
type Host struct {
	session Session
	backend Backend
	config  HostConfig
	manager *input.Manager

	frame  video.Frame
	frames int
	paused bool
	quit   bool
}

func NewHost(s Session, b Backend, config HostConfig) *Host {
	if config.FrameInterval <= 0 {
		config.FrameInterval = FrameInterval
	}
	if config.Backend.Scale < 1 {
		config.Backend.Scale = DefaultScale
	}
	if config.Backend.Palette.On == nil || config.Backend.Palette.Off == nil {
		config.Backend.Palette = debug.DefaultPalette
	}

	h := &Host{
		session: s,
		backend: b,
		config:  config,
		manager: input.NewManager(s, config.Bindings),
	}
	h.manager.On(action.EmulatorPauseToggle, h.togglePause)
	h.manager.On(action.EmulatorSaveState, h.saveState)
	h.manager.On(action.EmulatorSnapshot, h.screenshot)
	h.manager.On(action.EmulatorQuit, func() { h.quit = true })
	return h
}

// InputManager returns the manager routing platform keys to the session.
func (h *Host) InputManager() *input.Manager {
	return h.manager
}

// Run drives the backend until it quits, ctx is cancelled or the machine
// halts. The session is always shut down on return; its fault, if any, is
// returned.
func (h *Host) Run(ctx context.Context) error {
	cfg := h.config.Backend
	cfg.InputManager = h.manager
	if cfg.Audio == nil {
		cfg.Audio = audio.NewBeeper(h.session.Sounding)
	}
	cfg.Status = h.status

	if err := h.backend.Init(cfg); err != nil {
		_ = h.session.Shutdown()
		return err
	}
	defer func() {
		if err := h.backend.Cleanup(); err != nil {
			log.ModEmu.WithError(err).Warn("backend cleanup failed")
		}
	}()

	ticker := timing.NewFrameTicker(h.config.FrameInterval)
	defer ticker.Stop()

	h.frame = h.session.FrameBuffer().Copy()
	for !h.quit {
		select {
		case <-ctx.Done():
			log.ModEmu.Info("host cancelled")
			return h.session.Shutdown()
		case <-h.session.Done():
			err := h.session.Shutdown()
			if err != nil {
				log.ModEmu.WithError(err).Error("machine halted")
			}
			return err
		case <-ticker.C():
		}

		if err := h.update(); err != nil {
			_ = h.session.Shutdown()
			return err
		}
	}

	log.ModEmu.WithField("frames", h.frames).Info("quit")
	return h.session.Shutdown()
}

func (h *Host) update() error {
	if h.session.PollDraw() {
		h.frame = h.session.FrameBuffer().Copy()
	}
	h.frames++

	events, err := h.backend.Update(&h.frame)
	if err != nil {
		return err
	}
	for _, ev := range events {
		h.manager.Trigger(ev.Action, ev.Type)
	}
	return nil
}

func (h *Host) status() Status {
	return Status{
		Paused:   h.paused,
		Sounding: h.session.Sounding(),
		Frames:   h.frames,
	}
}

func (h *Host) togglePause() {
	var err error
	if h.paused {
		err = h.session.Unpause()
	} else {
		err = h.session.Pause()
	}
	if err != nil {
		log.ModEmu.WithError(err).Warn("pause toggle not delivered")
		return
	}
	h.paused = !h.paused
	log.ModEmu.WithField("paused", h.paused).Info("pause toggled")
}

func (h *Host) saveState() {
	if h.config.StatePath == "" {
		log.ModEmu.Warn("no state file configured, save ignored")
		return
	}
	if err := h.session.Save(h.config.StatePath); err != nil {
		log.ModEmu.WithError(err).Warn("save not delivered")
	}
}

func (h *Host) screenshot() {
	cfg := h.config.Backend
	if _, err := debug.SaveFramePNGToDir(&h.frame, "chip8", h.config.ScreenshotDir, cfg.Scale, cfg.Palette); err != nil {
		log.ModVideo.WithError(err).Error("screenshot failed")
	}
}
