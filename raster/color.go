package raster

// Color is a packed 24-bit RGB value (0xRRGGBB).
//
// Colors are plain integers so they can be used directly as map keys when
// bucketing pixels; alpha never participates (opacity is binary and tracked
// separately by the grid).
type Color uint32

// PackColor packs the three 8-bit channels into a Color.
func PackColor(r, g, b uint8) Color {
	return Color(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// R returns the red channel.
func (c Color) R() uint8 {
	return uint8(c >> 16)
}

// G returns the green channel.
func (c Color) G() uint8 {
	return uint8(c >> 8)
}

// B returns the blue channel.
func (c Color) B() uint8 {
	return uint8(c)
}

// ChannelDistance returns max(|Δr|, |Δg|, |Δb|) between two colors.
//
// This is the per-pixel change metric of the diff engine: a pixel counts as
// changed when the distance strictly exceeds the configured threshold.
func ChannelDistance(a, b Color) int {
	d := absDiff(a.R(), b.R())
	if g := absDiff(a.G(), b.G()); g > d {
		d = g
	}
	if bl := absDiff(a.B(), b.B()); bl > d {
		d = bl
	}

	return d
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}

	return int(b - a)
}
