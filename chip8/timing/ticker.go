package timing

import "time"

// FrameTicker drives host side render loops at a fixed frame rate.
// Less accurate than Pacer but it doesn't burn a core.
type FrameTicker struct {
	ticker   *time.Ticker
	interval time.Duration
}

func NewFrameTicker(interval time.Duration) *FrameTicker {
	return &FrameTicker{
		ticker:   time.NewTicker(interval),
		interval: interval,
	}
}

// C delivers one value per frame.
func (t *FrameTicker) C() <-chan time.Time {
	return t.ticker.C
}

func (t *FrameTicker) Wait() {
	<-t.ticker.C
}

func (t *FrameTicker) Reset() {
	t.ticker.Reset(t.interval)
}

func (t *FrameTicker) Stop() {
	t.ticker.Stop()
}
