package timing

import "time"

// Limiter paces a loop to a fixed interval.
type Limiter interface {
	// Wait blocks until the next interval starts.
	// Returns immediately if timing is behind schedule.
	Wait()

	// Reset restarts the schedule from now, useful after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) Wait()  {}
func (n *noOpLimiter) Reset() {}

const (
	// InstructionInterval is the default time between two instructions.
	InstructionInterval = 2 * time.Millisecond
	// TimerFrequency is the rate of the delay and sound timers.
	TimerFrequency = 60
)

// TimerInterval returns the period of the delay and sound timers.
func TimerInterval() time.Duration {
	return time.Second / TimerFrequency
}
