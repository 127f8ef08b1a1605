package chip8

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/valerio/go-chip8/chip8/events"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/log"
	"github.com/valerio/go-chip8/chip8/snapshot"
	"github.com/valerio/go-chip8/chip8/video"
)

var (
	// ErrEmptyROM is returned when starting a session without a program.
	ErrEmptyROM = errors.New("empty ROM")
	// ErrSessionClosed is returned by commands sent after the emulation
	// goroutine stopped.
	ErrSessionClosed = errors.New("session closed")
)

// LoadError reports a ROM or save state that could not be loaded. No
// session is started when one is returned.
type LoadError struct {
	Op   string
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Session is the host handle on a running machine. The machine runs on its
// own goroutine; the host talks to it through commands and shares only the
// frame buffer and key matrix with it.
type Session struct {
	link     *events.Link
	fb       *video.FrameBuffer
	keys     *input.KeyMatrix
	sounding atomic.Bool

	done chan struct{}
	err  error
}

var _ input.KeySink = (*Session)(nil)

// Start runs rom in a new session.
func Start(ctx context.Context, rom []byte, opts Options) (*Session, error) {
	if len(rom) == 0 {
		return nil, &LoadError{Op: "load rom", Err: ErrEmptyROM}
	}
	opts = opts.withDefaults()
	fb := video.NewFrameBuffer()
	keys := input.NewKeyMatrix()
	return start(ctx, NewMachine(rom, fb, keys, opts.Seed), fb, keys, opts), nil
}

// StartFile reads the ROM at path and runs it.
func StartFile(ctx context.Context, path string, opts Options) (*Session, error) {
	rom, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Op: "read rom", Path: path, Err: err}
	}
	log.ModEmu.WithField("path", path).Infof("loaded %d bytes of ROM data", len(rom))

	s, err := Start(ctx, rom, opts)
	if err != nil {
		var lerr *LoadError
		if errors.As(err, &lerr) {
			lerr.Path = path
		}
		return nil, err
	}
	return s, nil
}

// Restore resumes the machine saved in blob. The new session is always
// running, whether or not the saved one was paused.
func Restore(ctx context.Context, blob []byte, opts Options) (*Session, error) {
	state, err := snapshot.Decode(blob)
	if err != nil {
		return nil, &LoadError{Op: "decode state", Err: err}
	}
	return restore(ctx, state, opts), nil
}

// RestoreFile resumes the machine saved at path.
func RestoreFile(ctx context.Context, path string, opts Options) (*Session, error) {
	state, err := snapshot.Load(path)
	if err != nil {
		return nil, &LoadError{Op: "load state", Path: path, Err: err}
	}
	return restore(ctx, state, opts), nil
}

func restore(ctx context.Context, state *snapshot.State, opts Options) *Session {
	opts = opts.withDefaults()
	fb := video.NewFrameBuffer()
	keys := input.NewKeyMatrix()
	return start(ctx, NewMachineFromState(state, fb, keys, opts.Seed), fb, keys, opts)
}

func start(ctx context.Context, m *Machine, fb *video.FrameBuffer, keys *input.KeyMatrix, opts Options) *Session {
	host, emu := events.NewDuplex()
	s := &Session{
		link: host,
		fb:   fb,
		keys: keys,
		done: make(chan struct{}),
	}

	sched := newScheduler(m, emu, opts, &s.sounding)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.run(gctx)
	})

	go func() {
		s.err = g.Wait()
		close(s.done)
	}()
	return s
}

// PressKey marks k as held.
func (s *Session) PressKey(k input.Key) {
	s.keys.Press(k)
}

// ReleaseKey marks k as released and notifies the machine, which hands
// the key to a pending Fx0A.
func (s *Session) ReleaseKey(k input.Key) {
	s.keys.Release(k)
	if err := s.send(events.Message{Type: events.KeyReleased, Key: k}); err != nil {
		log.ModInput.Debugf("key %s release not delivered: %v", k, err)
	}
}

func (s *Session) Pause() error {
	return s.send(events.Message{Type: events.Pause})
}

func (s *Session) Unpause() error {
	return s.send(events.Message{Type: events.Unpause})
}

// Save asks the machine to write its state to path. The write happens on
// the emulation goroutine; failures are logged, not reported back.
func (s *Session) Save(path string) error {
	return s.send(events.Message{Type: events.Save, Path: path})
}

// Snapshot returns the encoded machine state. It blocks until the
// emulation goroutine answers, between two instructions.
func (s *Session) Snapshot() ([]byte, error) {
	reply := make(chan []byte, 1)
	if err := s.send(events.Message{Type: events.Snapshot, Reply: reply}); err != nil {
		return nil, err
	}
	select {
	case blob := <-reply:
		return blob, nil
	case <-s.done:
		// the answer may have raced with the shutdown
		select {
		case blob := <-reply:
			return blob, nil
		default:
			return nil, ErrSessionClosed
		}
	}
}

// PollDraw reports whether the screen changed since the last call. It
// never blocks and consumes every pending notification.
func (s *Session) PollDraw() bool {
	return s.link.Drain(events.Draw) > 0
}

// Shutdown stops the machine and waits for its goroutine to exit. It
// returns the fault that halted the machine, if any.
func (s *Session) Shutdown() error {
	_ = s.send(events.Message{Type: events.Shutdown})
	return s.Wait()
}

// Wait blocks until the emulation goroutine exits.
func (s *Session) Wait() error {
	<-s.done
	return s.err
}

// Done is closed when the emulation goroutine exits.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the fault that halted the session, nil while it is running
// or when it stopped normally.
func (s *Session) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// FrameBuffer returns the screen shared with the machine.
func (s *Session) FrameBuffer() *video.FrameBuffer {
	return s.fb
}

// Sounding reports whether the sound timer is running.
func (s *Session) Sounding() bool {
	return s.sounding.Load()
}

func (s *Session) send(m events.Message) error {
	if err := s.link.Send(m); err != nil {
		return ErrSessionClosed
	}
	return nil
}
