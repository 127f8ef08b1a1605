package input

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/valerio/go-chip8/chip8/addr"
)

// Key identifies one of the 16 keys of the hex keypad.
type Key uint8

const (
	Key0 Key = iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
)

// Valid reports whether k names a key on the keypad.
func (k Key) Valid() bool {
	return int(k) < addr.KeyCount
}

func (k Key) String() string {
	return fmt.Sprintf("%X", uint8(k))
}

// ParseKey parses a single hex digit, as found in config files.
func ParseKey(s string) (Key, error) {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil || v >= addr.KeyCount {
		return 0, fmt.Errorf("invalid keypad key %q", s)
	}
	return Key(v), nil
}

// KeyMatrix holds the pressed state of the 16 keys. The host writes it on
// key down/up, the emulation goroutine reads it.
type KeyMatrix struct {
	mu      sync.Mutex
	pressed [addr.KeyCount]bool
}

func NewKeyMatrix() *KeyMatrix {
	return &KeyMatrix{}
}

// IsPressed reports the state of k. Invalid keys are never pressed.
func (m *KeyMatrix) IsPressed(k Key) bool {
	if !k.Valid() {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pressed[k]
}

func (m *KeyMatrix) Press(k Key) {
	m.set(k, true)
}

func (m *KeyMatrix) Release(k Key) {
	m.set(k, false)
}

func (m *KeyMatrix) set(k Key, pressed bool) {
	if !k.Valid() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pressed[k] = pressed
}

// Bits returns the matrix with bit n set when key n is pressed.
func (m *KeyMatrix) Bits() uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var bits uint16
	for k, pressed := range m.pressed {
		if pressed {
			bits |= 1 << k
		}
	}
	return bits
}

// LoadBits replaces the whole matrix from a value produced by Bits.
func (m *KeyMatrix) LoadBits(bits uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.pressed {
		m.pressed[k] = bits&(1<<k) != 0
	}
}
