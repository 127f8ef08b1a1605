package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
)

type recordingSink struct {
	pressed  []Key
	released []Key
}

func (r *recordingSink) PressKey(k Key)   { r.pressed = append(r.pressed, k) }
func (r *recordingSink) ReleaseKey(k Key) { r.released = append(r.released, k) }

func newTestManager(sink KeySink) (*Manager, *time.Time) {
	m := NewManager(sink, nil)
	now := time.Unix(0, 0)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestManager_keypad(t *testing.T) {
	sink := &recordingSink{}
	m, _ := newTestManager(sink)

	assert.True(t, m.HandleKey("x", event.Press))
	assert.True(t, m.HandleKey("x", event.Press), "keypad keys are not debounced")
	assert.True(t, m.HandleKey("v", event.Release))
	assert.False(t, m.HandleKey("F1", event.Press))

	assert.Equal(t, []Key{Key0, Key0}, sink.pressed)
	assert.Equal(t, []Key{KeyF}, sink.released)
}

func TestManager_controlsDebounced(t *testing.T) {
	tests := []struct {
		name        string
		timeBetween time.Duration
		wantCalls   int
	}{
		{name: "rapid press is debounced", timeBetween: 100 * time.Millisecond, wantCalls: 1},
		{name: "slow press goes through", timeBetween: 400 * time.Millisecond, wantCalls: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, now := newTestManager(nil)
			calls := 0
			m.On(action.EmulatorPauseToggle, func() { calls++ })

			m.HandleKey("p", event.Press)
			*now = now.Add(tt.timeBetween)
			m.HandleKey("Space", event.Press)
			m.HandleKey("p", event.Release)

			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestManager_bindingsTakePrecedence(t *testing.T) {
	sink := &recordingSink{}
	m, _ := newTestManager(sink)
	m.Bindings().Remap(Key1, "p")

	quit := false
	m.On(action.EmulatorQuit, func() { quit = true })
	paused := false
	m.On(action.EmulatorPauseToggle, func() { paused = true })

	m.HandleKey("p", event.Press)
	m.HandleKey("Escape", event.Press)

	assert.False(t, paused)
	assert.True(t, quit)
	assert.Equal(t, []Key{Key1}, sink.pressed)
}
