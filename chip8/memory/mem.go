package memory

import (
	"errors"
	"fmt"

	"github.com/valerio/go-chip8/chip8/addr"
	"github.com/valerio/go-chip8/chip8/bit"
	"github.com/valerio/go-chip8/chip8/log"
)

// ErrOutOfBounds is returned for any access at or above addr.MemorySize.
var ErrOutOfBounds = errors.New("out of bounds memory access")

// fontData holds the sixteen 4x5 hex digit glyphs, 0 through F.
var fontData = [16 * addr.FontGlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Memory is the flat 4K address space of the interpreter. It is owned by a
// single goroutine and is not safe for concurrent use.
type Memory struct {
	data [addr.MemorySize]byte
}

// New returns a zeroed memory with the font installed at addr.FontStart.
func New() *Memory {
	m := &Memory{}
	copy(m.data[addr.FontStart:], fontData[:])
	return m
}

// NewFromImage restores memory from a full 4K image, font region included.
func NewFromImage(image [addr.MemorySize]byte) *Memory {
	return &Memory{data: image}
}

// FontAddress returns the address of the glyph for the low nibble of digit.
func FontAddress(digit uint8) uint16 {
	return addr.FontStart + uint16(digit&0x0F)*addr.FontGlyphSize
}

func (m *Memory) Read(address uint16) (byte, error) {
	if int(address) >= addr.MemorySize {
		return 0, fmt.Errorf("%w: read at 0x%04X", ErrOutOfBounds, address)
	}
	return m.data[address], nil
}

func (m *Memory) Write(address uint16, value byte) error {
	if int(address) >= addr.MemorySize {
		return fmt.Errorf("%w: write at 0x%04X", ErrOutOfBounds, address)
	}
	m.data[address] = value
	return nil
}

// ReadWord reads the big-endian 16 bit word at address and address+1.
func (m *Memory) ReadWord(address uint16) (uint16, error) {
	high, err := m.Read(address)
	if err != nil {
		return 0, err
	}
	low, err := m.Read(address + 1)
	if err != nil {
		return 0, err
	}
	return bit.Combine(high, low), nil
}

// LoadROM copies rom into memory starting at addr.ROMStart. Bytes that do
// not fit are discarded. It returns the number of bytes loaded.
func (m *Memory) LoadROM(rom []byte) int {
	n := copy(m.data[addr.ROMStart:], rom)
	if n < len(rom) {
		log.ModMem.WithFields(log.Fields{
			"size":      len(rom),
			"discarded": len(rom) - n,
		}).Warnf("ROM larger than %d bytes, truncated", addr.MaxROMSize)
	}
	log.ModMem.Debugf("loaded %d bytes of ROM data", n)
	return n
}

// Image returns a copy of the whole address space.
func (m *Memory) Image() [addr.MemorySize]byte {
	return m.data
}
