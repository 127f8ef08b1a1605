package chip8

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/video"
)

// program assembles opcodes into a ROM image.
func program(ops ...uint16) []byte {
	rom := make([]byte, 0, len(ops)*2)
	for _, op := range ops {
		rom = append(rom, byte(op>>8), byte(op))
	}
	return rom
}

func newTestMachine(ops ...uint16) *Machine {
	return NewMachine(program(ops...), video.NewFrameBuffer(), input.NewKeyMatrix(), 1)
}

func stepN(t *testing.T, m *Machine, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := m.Step()
		require.NoError(t, err)
	}
}

func TestMachine_stateRoundTrip(t *testing.T) {
	m := newTestMachine(
		0x6A12, // LD VA, $12
		0xA050, // LD I, font
		0x6305, // LD V3, 5
		0xD335, // DRW V3, V3, 5
		0xF315, // LD DT, V3
		0x2300, // CALL $300
	)
	require.NoError(t, m.mem.Write(0x300, 0xF4))
	require.NoError(t, m.mem.Write(0x301, 0x0A)) // LD V4, K
	stepN(t, m, 7)
	m.keys.Press(input.Key7)
	m.KeyReleased(input.KeyC)

	want := m.State()
	assert.True(t, want.Awaiting)
	assert.Equal(t, uint8(4), want.AwaitReg)
	assert.True(t, want.HasPendingKey)
	assert.Equal(t, uint8(1), want.SP)

	fb := video.NewFrameBuffer()
	keys := input.NewKeyMatrix()
	restored := NewMachineFromState(want, fb, keys, 2)

	if diff := cmp.Diff(want, restored.State()); diff != "" {
		t.Errorf("restored state mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, m.fb.Copy(), fb.Copy())
	assert.True(t, keys.IsPressed(input.Key7))

	// the pending key completes the saved Fx0A
	_, err := restored.Step()
	require.NoError(t, err)
	assert.Equal(t, cpu.Running, restored.CPU().State())
	assert.Equal(t, uint8(0xC), restored.CPU().V(4))
}

func TestMachine_pendingKeyConsumedOnce(t *testing.T) {
	m := newTestMachine(0x6001, 0xF20A)

	// released while running: dropped by the next step
	m.KeyReleased(input.Key3)
	stepN(t, m, 2)
	assert.Equal(t, cpu.AwaitingKey, m.CPU().State())

	stepN(t, m, 3)
	assert.Equal(t, cpu.AwaitingKey, m.CPU().State())

	m.KeyReleased(input.Key9)
	stepN(t, m, 1)
	assert.Equal(t, cpu.Running, m.CPU().State())
	assert.Equal(t, uint8(9), m.CPU().V(2))
	assert.False(t, m.State().HasPendingKey)
}
