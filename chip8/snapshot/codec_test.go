package snapshot

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testState() *State {
	s := &State{
		I:             0x0ABC,
		PC:            0x0246,
		SP:            2,
		DT:            42,
		ST:            7,
		Keys:          0x8001,
		HasPendingKey: true,
		PendingKey:    0xE,
		Awaiting:      true,
		AwaitReg:      0x3,
	}
	for n := range s.V {
		s.V[n] = uint8(n * 3)
	}
	s.Stack[0] = 0x0202
	s.Stack[1] = 0x0310
	for n := range s.Memory {
		s.Memory[n] = byte(n)
	}
	s.Screen[0] = 0x80
	s.Screen[255] = 0x01
	return s
}

func TestSize(t *testing.T) {
	assert.Equal(t, 4413, Size)
	assert.Len(t, Encode(&State{}), Size)
}

func TestRoundTrip(t *testing.T) {
	want := testState()
	got, err := Decode(Encode(want))
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_layout(t *testing.T) {
	data := Encode(testState())

	// V registers first, then I big-endian
	assert.Equal(t, byte(3), data[1])
	assert.Equal(t, []byte{0x0A, 0xBC}, data[16:18])
	// stack then PC
	assert.Equal(t, []byte{0x02, 0x02}, data[18:20])
	assert.Equal(t, []byte{0x02, 0x46}, data[50:52])
	assert.Equal(t, []byte{2, 42, 7}, data[52:55])
	// memory, screen, keys, pending key and await state at the end
	assert.Equal(t, byte(0xFF), data[55+0xFF])
	assert.Equal(t, byte(0x80), data[55+4096])
	assert.Equal(t, []byte{0x80, 0x01, 1, 0xE, 1, 0x3}, data[Size-6:])
}

func TestDecode_errors(t *testing.T) {
	valid := Encode(testState())

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{name: "empty", data: nil, wantErr: ErrTruncated},
		{name: "short", data: valid[:Size-1], wantErr: ErrTruncated},
		{name: "trailing bytes", data: append(bytes.Clone(valid), 0), wantErr: ErrInvalid},
		{name: "stack pointer", data: patch(valid, 52, 17), wantErr: ErrInvalid},
		{name: "pending key", data: patch(valid, Size-3, 0x10), wantErr: ErrInvalid},
		{name: "await register", data: patch(valid, Size-1, 0x10), wantErr: ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func patch(data []byte, offset int, value byte) []byte {
	out := bytes.Clone(data)
	out[offset] = value
	return out
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.state")
	want := testState()

	require.NoError(t, Save(path, want))
	got, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.state"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, testState()))

	var got struct {
		V          []int  `json:"v"`
		PC         int    `json:"pc"`
		Stack      []int  `json:"stack"`
		PendingKey *int   `json:"pending_key"`
		Memory     []byte `json:"memory"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Len(t, got.V, 16)
	assert.Equal(t, 0x0246, got.PC)
	assert.Equal(t, []int{0x0202, 0x0310}, got.Stack)
	require.NotNil(t, got.PendingKey)
	assert.Equal(t, 0xE, *got.PendingKey)
	assert.Len(t, got.Memory, 4096)

	s := testState()
	s.HasPendingKey = false
	buf.Reset()
	require.NoError(t, WriteJSON(&buf, s))
	assert.Contains(t, buf.String(), `"pending_key":null`)
}
