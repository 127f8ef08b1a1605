package timing

import "time"

// TimerClock decides when the 60Hz timers are due, measured in elapsed
// wall-clock time since the last update rather than in instructions.
//
// Pausing keeps the time elapsed before the pause, so a resumed timer
// continues where it left off instead of firing for the paused window.
type TimerClock struct {
	clock      Clock
	interval   time.Duration
	last       time.Time
	pauseDelta time.Duration
	paused     bool
}

func NewTimerClock(clock Clock, interval time.Duration) *TimerClock {
	return &TimerClock{
		clock:    clock,
		interval: interval,
		last:     clock.Now(),
	}
}

// Due reports whether a timer tick is due and, if so, restarts the
// interval from now. It is never due while paused.
func (t *TimerClock) Due() bool {
	if t.paused {
		return false
	}
	now := t.clock.Now()
	if now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	return true
}

// Pause records how far into the current interval the timer was.
func (t *TimerClock) Pause() {
	if t.paused {
		return
	}
	t.pauseDelta = t.clock.Now().Sub(t.last)
	t.paused = true
}

// Resume restarts the interval so that the elapsed time equals the time
// recorded at Pause.
func (t *TimerClock) Resume() {
	if !t.paused {
		return
	}
	t.last = t.clock.Now().Add(-t.pauseDelta)
	t.paused = false
}

func (t *TimerClock) Paused() bool {
	return t.paused
}

// Reset starts a fresh interval from now.
func (t *TimerClock) Reset() {
	t.last = t.clock.Now()
	t.pauseDelta = 0
	t.paused = false
}
