package chip8

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-chip8/chip8/config"
	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/snapshot"
)

const (
	waitFor = 2 * time.Second
	tick    = time.Millisecond
)

// counter increments V0 forever.
var counter = []uint16{0x7001, 0x1200}

func testOptions() Options {
	return Options{
		InstructionInterval: 50 * time.Microsecond,
		TimerInterval:       time.Second / 60,
		FaultPolicy:         config.FaultHalt,
		Seed:                1,
	}
}

func startTest(t *testing.T, opts Options, ops ...uint16) *Session {
	t.Helper()
	s, err := Start(context.Background(), program(ops...), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown() })
	return s
}

func state(t *testing.T, s *Session) *snapshot.State {
	t.Helper()
	blob, err := s.Snapshot()
	require.NoError(t, err)
	st, err := snapshot.Decode(blob)
	require.NoError(t, err)
	return st
}

func TestSession_drawAndShutdown(t *testing.T) {
	s := startTest(t, testOptions(), 0xA050, 0xD015, 0x1204)

	require.Eventually(t, s.PollDraw, waitFor, tick)
	assert.False(t, s.PollDraw(), "notifications are drained")
	frame := s.FrameBuffer().Copy()
	assert.Equal(t, 14, frame.Lit())

	require.NoError(t, s.Shutdown())
	assert.NoError(t, s.Shutdown(), "shutdown is idempotent")
	assert.ErrorIs(t, s.Pause(), ErrSessionClosed)
	_, err := s.Snapshot()
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSession_pause(t *testing.T) {
	s := startTest(t, testOptions(), counter...)

	require.NoError(t, s.Pause())
	// the pause is applied before the snapshot, both go through the queue
	before := state(t, s)
	time.Sleep(20 * time.Millisecond)
	after := state(t, s)
	assert.Equal(t, before.V[0], after.V[0])

	require.NoError(t, s.Unpause())
	require.Eventually(t, func() bool {
		return state(t, s).V[0] != before.V[0]
	}, waitFor, tick)
}

func TestSession_restoreAlwaysRuns(t *testing.T) {
	s := startTest(t, testOptions(), counter...)
	require.NoError(t, s.Pause())
	blob, err := s.Snapshot()
	require.NoError(t, err)
	require.NoError(t, s.Shutdown())

	saved, err := snapshot.Decode(blob)
	require.NoError(t, err)

	restored, err := Restore(context.Background(), blob, testOptions())
	require.NoError(t, err)
	defer restored.Shutdown()

	require.Eventually(t, func() bool {
		return state(t, restored).V[0] != saved.V[0]
	}, waitFor, tick)
}

func TestSession_restoreIsIdentical(t *testing.T) {
	// sets a few registers, draws, then spins at 0x206
	s := startTest(t, testOptions(), 0x6A12, 0xA050, 0xD015, 0x1206)
	require.Eventually(t, func() bool { return state(t, s).PC == 0x206 }, waitFor, tick)
	s.PressKey(input.Key3)

	require.NoError(t, s.Pause())
	want := state(t, s)

	restored, err := Restore(context.Background(), snapshot.Encode(want), testOptions())
	require.NoError(t, err)
	defer restored.Shutdown()

	got := state(t, restored)
	assert.Equal(t, want.V, got.V)
	assert.Equal(t, want.I, got.I)
	assert.Equal(t, want.Memory, got.Memory)
	assert.Equal(t, want.Screen, got.Screen)
	assert.Equal(t, want.Keys, got.Keys)
	assert.Equal(t, s.FrameBuffer().Copy(), restored.FrameBuffer().Copy())
}

func TestSession_awaitKey(t *testing.T) {
	s := startTest(t, testOptions(), 0xF50A, 0x1202)

	require.Eventually(t, func() bool { return state(t, s).Awaiting }, waitFor, tick)

	// pausing and shutdown stay responsive while awaiting
	require.NoError(t, s.Pause())
	s.ReleaseKey(input.KeyA)
	require.NoError(t, s.Unpause())
	assert.True(t, state(t, s).Awaiting)

	s.PressKey(input.KeyB)
	s.ReleaseKey(input.KeyB)
	require.Eventually(t, func() bool {
		st := state(t, s)
		return !st.Awaiting && st.V[5] == 0xB
	}, waitFor, tick)

	done := make(chan error)
	go func() { done <- s.Shutdown() }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("shutdown did not return")
	}
}

func TestSession_faultHalts(t *testing.T) {
	s := startTest(t, testOptions(), 0x00EE)

	select {
	case <-s.Done():
	case <-time.After(waitFor):
		t.Fatal("session did not halt")
	}

	err := s.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, cpu.ErrStackUnderflow)
	var fault *cpu.Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, uint16(0x200), fault.PC)
	assert.ErrorIs(t, s.Shutdown(), cpu.ErrStackUnderflow)
}

func TestSession_faultSkipped(t *testing.T) {
	opts := testOptions()
	opts.FaultPolicy = config.FaultSkip
	s := startTest(t, opts, 0x00EE, 0x6A07, 0x1204)

	require.Eventually(t, func() bool { return state(t, s).V[0xA] == 7 }, waitFor, tick)
	assert.NoError(t, s.Err())
}

func TestSession_save(t *testing.T) {
	s := startTest(t, testOptions(), 0x6A42, 0x1202)
	path := filepath.Join(t.TempDir(), "game.state")

	require.Eventually(t, func() bool { return state(t, s).V[0xA] == 0x42 }, waitFor, tick)
	require.NoError(t, s.Save(path))
	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, waitFor, tick)

	restored, err := RestoreFile(context.Background(), path, testOptions())
	require.NoError(t, err)
	defer restored.Shutdown()
	assert.Equal(t, uint8(0x42), state(t, restored).V[0xA])
}

func TestSession_sounding(t *testing.T) {
	s := startTest(t, testOptions(), 0x6010, 0xF018, 0x1204)
	require.Eventually(t, s.Sounding, waitFor, tick)
	require.Eventually(t, func() bool { return !s.Sounding() }, waitFor, tick)
}

func TestSession_cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, err := Start(ctx, program(counter...), testOptions())
	require.NoError(t, err)

	cancel()
	select {
	case <-s.Done():
	case <-time.After(waitFor):
		t.Fatal("session ignored cancellation")
	}
	assert.NoError(t, s.Err())
}

func TestSession_loadErrors(t *testing.T) {
	ctx := context.Background()
	var lerr *LoadError

	_, err := Start(ctx, nil, testOptions())
	require.True(t, errors.As(err, &lerr))
	assert.ErrorIs(t, err, ErrEmptyROM)

	missing := filepath.Join(t.TempDir(), "missing.ch8")
	_, err = StartFile(ctx, missing, testOptions())
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, missing, lerr.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Restore(ctx, []byte{1, 2, 3}, testOptions())
	assert.ErrorIs(t, err, snapshot.ErrTruncated)

	bad := filepath.Join(t.TempDir(), "bad.state")
	require.NoError(t, os.WriteFile(bad, make([]byte, snapshot.Size+1), 0o644))
	_, err = RestoreFile(ctx, bad, testOptions())
	require.True(t, errors.As(err, &lerr))
	assert.ErrorIs(t, err, snapshot.ErrInvalid)
}

func TestSession_startFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rom.ch8")
	require.NoError(t, os.WriteFile(path, program(0x6A33, 0x1202), 0o644))

	s, err := StartFile(context.Background(), path, testOptions())
	require.NoError(t, err)
	defer s.Shutdown()
	require.Eventually(t, func() bool { return state(t, s).V[0xA] == 0x33 }, waitFor, tick)
}
