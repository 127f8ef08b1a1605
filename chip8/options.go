package chip8

import (
	"time"

	"github.com/valerio/go-chip8/chip8/config"
	"github.com/valerio/go-chip8/chip8/timing"
)

// Options configures a session.
type Options struct {
	// InstructionInterval is the minimum time between two instructions,
	// zero runs unthrottled.
	InstructionInterval time.Duration
	// TimerInterval is the period of the delay and sound timers.
	TimerInterval time.Duration
	FaultPolicy   config.FaultPolicy
	// Seed for the RND instruction, 0 picks one from the current time.
	Seed uint64
	// Clock defaults to the system clock.
	Clock timing.Clock
}

func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig takes the [emulation] section of cfg.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		InstructionInterval: cfg.Emulation.InstructionInterval.Duration,
		TimerInterval:       cfg.Emulation.TimerInterval.Duration,
		FaultPolicy:         cfg.Emulation.FaultPolicy,
		Seed:                cfg.Emulation.Seed,
	}
}

func (o Options) withDefaults() Options {
	if o.TimerInterval <= 0 {
		o.TimerInterval = timing.TimerInterval()
	}
	if !o.FaultPolicy.Valid() {
		o.FaultPolicy = config.FaultHalt
	}
	if o.Seed == 0 {
		o.Seed = uint64(time.Now().UnixNano())
	}
	if o.Clock == nil {
		o.Clock = timing.SystemClock{}
	}
	return o
}
