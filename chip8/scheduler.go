package chip8

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/valerio/go-chip8/chip8/config"
	"github.com/valerio/go-chip8/chip8/events"
	"github.com/valerio/go-chip8/chip8/log"
	"github.com/valerio/go-chip8/chip8/snapshot"
	"github.com/valerio/go-chip8/chip8/timing"
)

// pausedPoll is how long the loop sleeps between command checks while paused.
const pausedPoll = time.Millisecond

// scheduler owns a Machine and drives it at two cadences: one instruction
// per instruction interval and one timer decay per timer interval, both
// measured in wall-clock time. Between ticks it polls the command queue.
type scheduler struct {
	machine  *Machine
	link     *events.Link
	pacer    timing.Limiter
	timers   *timing.TimerClock
	policy   config.FaultPolicy
	sounding *atomic.Bool

	paused       bool
	instructions uint64
}

func newScheduler(m *Machine, link *events.Link, opts Options, sounding *atomic.Bool) *scheduler {
	return &scheduler{
		machine:  m,
		link:     link,
		pacer:    timing.NewPacer(opts.Clock, opts.InstructionInterval),
		timers:   timing.NewTimerClock(opts.Clock, opts.TimerInterval),
		policy:   opts.FaultPolicy,
		sounding: sounding,
	}
}

// run loops until shutdown, the host going away, ctx being cancelled or,
// under the halt policy, a fault. Only the fault is returned as an error.
func (s *scheduler) run(ctx context.Context) error {
	defer s.link.Close()

	log.ModSched.WithFields(log.Fields{
		"policy": s.policy,
		"pc":     s.machine.CPU().PC(),
	}).Info("emulation started")

	for {
		select {
		case <-ctx.Done():
			log.ModSched.Info("emulation cancelled")
			return nil
		default:
		}

		done, err := s.step()
		if done {
			log.ModSched.WithField("instructions", s.instructions).Info("emulation stopped")
			return err
		}
		if s.paused {
			time.Sleep(pausedPoll)
		}
	}
}

// step runs one loop iteration: drain commands, then, unless paused, one
// instruction and the timers if due.
func (s *scheduler) step() (done bool, err error) {
	if s.handleCommands() {
		return true, nil
	}
	if s.paused {
		return false, nil
	}

	s.pacer.Wait()
	drew, err := s.machine.Step()
	s.instructions++
	if err != nil {
		if err = s.fault(err); err != nil {
			return true, err
		}
	}
	if drew {
		// the host may be gone already, the next command poll notices
		_ = s.link.Send(events.Message{Type: events.Draw})
	}

	if s.timers.Due() {
		s.machine.TickTimers()
	}
	s.sounding.Store(s.machine.Sounding())
	return false, nil
}

// fault applies the fault policy. It returns the error when the session
// must halt.
func (s *scheduler) fault(err error) error {
	log.ModSched.WithError(err).WithField("policy", s.policy).Error("instruction fault")
	if s.policy == config.FaultSkip {
		return nil
	}
	return err
}

// handleCommands applies every pending command and reports whether the
// loop must stop.
func (s *scheduler) handleCommands() bool {
	for {
		msg, ok, err := s.link.TryReceive()
		if errors.Is(err, events.ErrDisconnected) {
			log.ModSched.Info("host disconnected")
			return true
		}
		if !ok {
			return false
		}

		log.ModSched.Debugf("command: %s", msg)
		switch msg.Type {
		case events.Pause:
			s.pause()
		case events.Unpause:
			s.unpause()
		case events.KeyReleased:
			if !s.paused {
				s.machine.KeyReleased(msg.Key)
			}
		case events.Save:
			if err := snapshot.Save(msg.Path, s.machine.State()); err != nil {
				log.ModSched.WithError(err).WithField("path", msg.Path).Error("save failed")
			}
		case events.Snapshot:
			s.reply(msg.Reply)
		case events.Shutdown:
			return true
		default:
			log.ModSched.Warnf("unexpected command %s", msg)
		}
	}
}

func (s *scheduler) pause() {
	if s.paused {
		return
	}
	s.paused = true
	s.timers.Pause()
	log.ModSched.Info("paused")
}

func (s *scheduler) unpause() {
	if !s.paused {
		return
	}
	s.paused = false
	s.timers.Resume()
	s.pacer.Reset()
	log.ModSched.Info("resumed")
}

func (s *scheduler) reply(ch chan<- []byte) {
	if ch == nil {
		return
	}
	select {
	case ch <- snapshot.Encode(s.machine.State()):
	default:
		log.ModSched.Warn("snapshot reply channel full, dropped")
	}
}
