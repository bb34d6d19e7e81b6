package raster

// Coord is a packed (x, y) pixel coordinate: x in the low 32 bits, y in the
// high 32 bits. Packed coordinates are used as set members and map keys
// throughout segmentation, merging and occlusion scanning, avoiding struct
// hashing and string formatting on hot paths.
type Coord uint64

// PackCoord packs non-negative x and y into a Coord.
func PackCoord(x, y int) Coord {
	return Coord(uint64(uint32(y))<<32 | uint64(uint32(x)))
}

// X returns the x component.
func (c Coord) X() int {
	return int(uint32(c))
}

// Y returns the y component.
func (c Coord) Y() int {
	return int(uint32(c >> 32))
}
