package audio

const (
	// SampleRate is the output rate in Hz.
	SampleRate = 44100
	// ToneFrequency is the pitch of the buzzer in Hz.
	ToneFrequency = 440
	// Volume is the square wave amplitude.
	Volume = 6000
)

// Beeper generates a square wave whenever the sound timer is running.
// CHIP-8 has a single fixed tone; the ROM only controls its duration.
type Beeper struct {
	sounding func() bool
	period   float64 // samples per cycle
	phase    float64
}

// NewBeeper returns a Beeper that polls sounding on every GetSamples call.
func NewBeeper(sounding func() bool) *Beeper {
	return &Beeper{
		sounding: sounding,
		period:   float64(SampleRate) / ToneFrequency,
	}
}

// GetSamples returns count samples, silence when the timer is off.
func (b *Beeper) GetSamples(count int) []int16 {
	samples := make([]int16, count)
	if b.sounding == nil || !b.sounding() {
		// restart the wave so each beep starts the same
		b.phase = 0
		return samples
	}

	for i := range samples {
		if b.phase < b.period/2 {
			samples[i] = Volume
		} else {
			samples[i] = -Volume
		}
		b.phase++
		if b.phase >= b.period {
			b.phase -= b.period
		}
	}
	return samples
}
