package hal

import "image/color"

// RGB565 packs an 8-bit-per-channel colour into PixelFormatRGB565.
func RGB565(r, g, b uint8) uint16 {
	return uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b>>3)
}

// ColorRGB565 packs c, ignoring alpha.
func ColorRGB565(c color.RGBA) uint16 { return RGB565(c.R, c.G, c.B) }

// ExpandRGB565 widens a packed pixel to opaque RGBA, copying the high bits of
// each channel into its low bits.
func ExpandRGB565(p uint16) color.RGBA {
	r := uint8(p>>8) & 0xF8
	g := uint8(p>>3) & 0xFC
	b := uint8(p << 3)
	return color.RGBA{R: r | r>>5, G: g | g>>6, B: b | b>>5, A: 0xFF}
}

// PutRGB565 stores p little-endian at buf[off].
func PutRGB565(buf []byte, off int, p uint16) {
	buf[off] = byte(p)
	buf[off+1] = byte(p >> 8)
}
