package snapshot

import (
	"github.com/valerio/go-chip8/chip8/addr"
	"github.com/valerio/go-chip8/chip8/video"
)

// State is a point in time copy of the whole machine. Field order is the
// on-disk order, every field is fixed size and big-endian.
type State struct {
	V     [addr.RegisterCount]uint8
	I     uint16
	Stack [addr.StackDepth]uint16
	PC    uint16
	SP    uint8
	DT    uint8
	ST    uint8

	Memory [addr.MemorySize]byte
	// Screen holds one bit per pixel, row-major, most significant bit first.
	Screen [video.PackedSize]byte
	// Keys has bit n set when key n is held.
	Keys uint16

	// HasPendingKey is set when a key release was not consumed yet.
	HasPendingKey bool
	PendingKey    uint8

	// Awaiting is set when the CPU is blocked on Fx0A into AwaitReg.
	Awaiting bool
	AwaitReg uint8
}
