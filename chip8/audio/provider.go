package audio

type Provider interface {
	// GetSamples retrieves mono audio samples for playback
	GetSamples(count int) []int16
}

var _ Provider = (*Beeper)(nil)
