package sdl2

import "image/color"

// abgr converts c to the byte order of a little-endian RGBA8888 texture.
// A nil color is a gray of the fallback level.
func abgr(c color.Color, fallback byte) [4]byte {
	if c == nil {
		return [4]byte{0xFF, fallback, fallback, fallback}
	}
	r, g, b, a := c.RGBA()
	return [4]byte{byte(a >> 8), byte(b >> 8), byte(g >> 8), byte(r >> 8)}
}
