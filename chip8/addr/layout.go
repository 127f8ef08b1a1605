package addr

// Memory layout
const (
	// MemorySize is the size of the addressable memory in bytes.
	MemorySize = 0x1000
	// FontStart is where the built-in hex glyphs are installed.
	FontStart uint16 = 0x050
	// FontGlyphSize is the height in bytes (rows) of each font glyph.
	FontGlyphSize = 5
	// ROMStart is the load address of programs and the initial PC.
	ROMStart uint16 = 0x200
	// MaxROMSize is the number of ROM bytes that fit above ROMStart.
	MaxROMSize = MemorySize - int(ROMStart)
)

// Register file
const (
	// RegisterCount is the number of general purpose V registers.
	RegisterCount = 16
	// VF doubles as the carry, borrow and collision flag.
	VF = 0xF
	// StackDepth is the number of return addresses the stack holds.
	StackDepth = 16
	// KeyCount is the number of keys on the hex keypad.
	KeyCount = 16
)

// Display
const (
	ScreenWidth  = 64
	ScreenHeight = 32
	ScreenPixels = ScreenWidth * ScreenHeight
	// SpriteWidth is the width in pixels of one sprite row.
	SpriteWidth = 8
)
