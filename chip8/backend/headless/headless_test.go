package headless_test

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

func TestHeadlessBackend(t *testing.T) {
	t.Run("normal operation", func(t *testing.T) {
		h := headless.New(3, headless.SnapshotConfig{})
		require.NoError(t, h.Init(backend.BackendConfig{Title: "Test"}))

		var frame video.Frame
		for i := 0; i < 3; i++ {
			events, err := h.Update(&frame)
			assert.NoError(t, err)

			if i < 2 {
				assert.Empty(t, events)
			} else {
				require.Len(t, events, 1)
				assert.Equal(t, action.EmulatorQuit, events[0].Action)
				assert.Equal(t, event.Press, events[0].Type)
			}
		}
		assert.Equal(t, 3, h.Frames())
		assert.NoError(t, h.Cleanup())
	})

	t.Run("zero frames", func(t *testing.T) {
		h := headless.New(0, headless.SnapshotConfig{})
		assert.Error(t, h.Init(backend.BackendConfig{}))
	})
}

func TestHeadlessSnapshots(t *testing.T) {
	dir := t.TempDir()
	cfg, err := headless.CreateSnapshotConfig(2, dir, "/roms/pong.ch8")
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "pong", cfg.ROMName)

	h := headless.New(5, cfg)
	require.NoError(t, h.Init(backend.BackendConfig{Scale: 2}))

	var frame video.Frame
	frame[0][0] = true
	for i := 0; i < 5; i++ {
		_, err := h.Update(&frame)
		require.NoError(t, err)
	}

	// frames 2 and 4, plus the final one
	saved := h.Saved()
	require.Len(t, saved, 3)
	for _, path := range saved {
		assert.Equal(t, dir, filepath.Dir(path))
	}

	f, err := os.Open(saved[0])
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, video.FramebufferWidth*2, img.Bounds().Dx())
	assert.Equal(t, video.FramebufferHeight*2, img.Bounds().Dy())
}

func TestCreateSnapshotConfig(t *testing.T) {
	cfg, err := headless.CreateSnapshotConfig(0, "", "game.ch8")
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
	assert.Empty(t, cfg.Directory)

	nested := filepath.Join(t.TempDir(), "a", "b")
	cfg, err = headless.CreateSnapshotConfig(10, nested, "game.ch8")
	require.NoError(t, err)
	assert.DirExists(t, nested)
	assert.Equal(t, "game", cfg.ROMName)
}

func TestHeadlessImplementsBackend(t *testing.T) {
	var _ backend.Backend = (*headless.Backend)(nil)
}
