package events

import (
	"fmt"

	"github.com/valerio/go-chip8/chip8/input"
)

// Type identifies a message on the duplex channel.
type Type int

const (
	// Draw is the only message sent from the emulation loop to the host:
	// the frame buffer changed.
	Draw Type = iota

	// Commands from the host to the emulation loop.
	Pause
	Unpause
	KeyReleased
	Save
	Snapshot
	Shutdown
)

var typeNames = [...]string{
	Draw:        "draw",
	Pause:       "pause",
	Unpause:     "unpause",
	KeyReleased: "key released",
	Save:        "save",
	Snapshot:    "snapshot",
	Shutdown:    "shutdown",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Message is a single event or command. Only the field matching Type is set.
type Message struct {
	Type Type

	// Key is the released key for KeyReleased.
	Key input.Key
	// Path is the save state destination for Save.
	Path string
	// Reply receives the encoded save state for Snapshot. It must be
	// buffered, the emulation loop never blocks on it.
	Reply chan<- []byte
}

func (m Message) String() string {
	switch m.Type {
	case KeyReleased:
		return fmt.Sprintf("%s %s", m.Type, m.Key)
	case Save:
		return fmt.Sprintf("%s %q", m.Type, m.Path)
	}
	return m.Type.String()
}
