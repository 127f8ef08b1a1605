package video

import (
	"sync"

	"github.com/valerio/go-chip8/chip8/addr"
)

const (
	FramebufferWidth  = addr.ScreenWidth
	FramebufferHeight = addr.ScreenHeight

	// PackedSize is the size in bytes of a frame with one bit per pixel.
	PackedSize = addr.ScreenPixels / 8
)

// Frame is a point in time copy of the screen, indexed [y][x].
type Frame [FramebufferHeight][FramebufferWidth]bool

// FrameBuffer is the monochrome screen shared between the emulation
// goroutine, which draws, and the host, which reads it to render.
// The lock is only ever held for a single pixel or whole-frame copy.
type FrameBuffer struct {
	mu     sync.Mutex
	pixels Frame
}

// NewFrameBuffer creates a cleared frame buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// GetPixel reports whether the pixel at x, y is lit. Coordinates outside
// the screen are never lit.
func (fb *FrameBuffer) GetPixel(x, y int) bool {
	if !inBounds(x, y) {
		return false
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.pixels[y][x]
}

// XOR toggles the pixel at x, y if on is set and reports whether the pixel
// went from lit to unlit. Coordinates outside the screen are ignored.
func (fb *FrameBuffer) XOR(x, y int, on bool) (erased bool) {
	if !inBounds(x, y) {
		return false
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()

	old := fb.pixels[y][x]
	fb.pixels[y][x] = old != on
	return old && on
}

// Clear unlights every pixel.
func (fb *FrameBuffer) Clear() {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.pixels = Frame{}
}

// Copy returns a snapshot of the whole screen.
func (fb *FrameBuffer) Copy() Frame {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.pixels
}

// Load replaces the whole screen.
func (fb *FrameBuffer) Load(frame Frame) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.pixels = frame
}

func inBounds(x, y int) bool {
	return x >= 0 && x < FramebufferWidth && y >= 0 && y < FramebufferHeight
}

// Lit returns the number of lit pixels.
func (f *Frame) Lit() int {
	n := 0
	for y := range f {
		for x := range f[y] {
			if f[y][x] {
				n++
			}
		}
	}
	return n
}

// Pack encodes the frame row-major, one bit per pixel, most significant
// bit first.
func (f *Frame) Pack() [PackedSize]byte {
	var out [PackedSize]byte
	for y := range f {
		for x := range f[y] {
			if f[y][x] {
				i := y*FramebufferWidth + x
				out[i/8] |= 0x80 >> (i % 8)
			}
		}
	}
	return out
}

// Unpack decodes a frame produced by Pack.
func Unpack(packed [PackedSize]byte) Frame {
	var f Frame
	for y := range f {
		for x := range f[y] {
			i := y*FramebufferWidth + x
			f[y][x] = packed[i/8]&(0x80>>(i%8)) != 0
		}
	}
	return f
}
