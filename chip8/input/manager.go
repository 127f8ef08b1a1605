package input

import (
	"time"

	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/log"
)

const (
	// debounceDuration is the minimum time between two presses of the same
	// emulator control
	debounceDuration = 300 * time.Millisecond
)

// KeySink receives keypad state changes, typically a running session.
type KeySink interface {
	PressKey(k Key)
	ReleaseKey(k Key)
}

// Manager turns physical key events into keypad presses and emulator
// control callbacks. It is meant to be driven from the host goroutine only.
type Manager struct {
	handlers      map[action.Action][]func()
	lastTriggered map[action.Action]time.Time
	bindings      *Bindings
	sink          KeySink
	now           func() time.Time
}

func NewManager(sink KeySink, bindings *Bindings) *Manager {
	if bindings == nil {
		bindings = DefaultBindings()
	}
	return &Manager{
		handlers:      make(map[action.Action][]func()),
		lastTriggered: make(map[action.Action]time.Time),
		bindings:      bindings,
		sink:          sink,
		now:           time.Now,
	}
}

// SetSink changes where keypad events go, e.g. after a session restart.
func (m *Manager) SetSink(sink KeySink) {
	m.sink = sink
}

// Bindings returns the keypad bindings in use.
func (m *Manager) Bindings() *Bindings {
	return m.bindings
}

// On registers a callback for an emulator control, fired on press.
func (m *Manager) On(act action.Action, callback func()) {
	m.handlers[act] = append(m.handlers[act], callback)
}

// Resolve returns the action a physical key name triggers.
func (m *Manager) Resolve(name string) (action.Action, bool) {
	if k, ok := m.bindings.Key(name); ok {
		return action.Keypad(uint8(k)), true
	}
	return GetDefaultControl(name)
}

// HandleKey resolves and triggers a physical key event. It reports whether
// the key was mapped to anything.
func (m *Manager) HandleKey(name string, evt event.Type) bool {
	act, ok := m.Resolve(name)
	if !ok {
		return false
	}
	m.Trigger(act, evt)
	return true
}

// Trigger handles the given action and event type.
func (m *Manager) Trigger(act action.Action, evt event.Type) {
	// keypad, written straight through to the sink
	if k, ok := act.Key(); ok {
		if m.sink == nil {
			return
		}
		switch evt {
		case event.Press:
			m.sink.PressKey(Key(k))
		case event.Release:
			m.sink.ReleaseKey(Key(k))
		}
		return
	}

	// emulator controls fire once per press
	if evt != event.Press {
		return
	}
	now := m.now()
	if last, ok := m.lastTriggered[act]; ok && now.Sub(last) < debounceDuration {
		log.ModInput.Debugf("debounced %s", action.GetInfo(act).Description)
		return
	}
	m.lastTriggered[act] = now

	for _, callback := range m.handlers[act] {
		callback()
	}
}
