package timing

import (
	"time"

	"github.com/valerio/go-chip8/chip8/log"
)

// Pacer spaces instructions at a fixed minimum interval. Short waits are
// busy-waits for accuracy, longer ones sleep first.
type Pacer struct {
	clock    Clock
	interval time.Duration
	next     time.Time
	ticks    int64
}

// NewPacer returns a Limiter for the instruction cadence. A non-positive
// interval disables pacing.
func NewPacer(clock Clock, interval time.Duration) Limiter {
	if interval <= 0 {
		return NewNoOpLimiter()
	}
	return &Pacer{
		clock:    clock,
		interval: interval,
		next:     clock.Now(),
	}
}

func (p *Pacer) Wait() {
	now := p.clock.Now()
	wait := p.next.Sub(now)

	if wait > 0 {
		if wait >= 2*time.Millisecond {
			time.Sleep(wait - time.Millisecond)
		}
		for p.clock.Now().Before(p.next) {
			// busy-wait the remainder, higher accuracy.
		}
	} else if wait < -5*p.interval {
		// too far behind, don't try to catch up
		p.next = now
	}

	p.next = p.next.Add(p.interval)
	p.ticks++

	if p.ticks%1000 == 0 && log.ModSched.Enabled(log.DebugLevel) {
		log.ModSched.WithField("lag", p.clock.Now().Sub(p.next)).Debugf("%d instructions paced", p.ticks)
	}
}

func (p *Pacer) Reset() {
	p.next = p.clock.Now()
	p.ticks = 0
}
