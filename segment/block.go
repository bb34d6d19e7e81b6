// Package segment groups same-color opaque pixels into maximal 4-connected
// regions (Blocks) and orders them for drawing.
package segment

import "github.com/quarda/blockcast/raster"

// Block is a maximal same-color region: its exact pixel coordinate set, the
// inclusive bounding box around it, and the draw-order key.
//
// Invariants maintained by this package and the optimizer:
//   - Area == len(Pixels); every pixel lies within the bounding box
//   - all pixels are mutually 4-connected through set membership
//   - within one frame, ZIndex values are dense 0..n-1 after each
//     sort/optimize pass; across a video sequence the scheduler offsets them
//     so later frames always compare greater
type Block struct {
	Color  raster.Color
	MinX   int
	MinY   int
	MaxX   int
	MaxY   int
	Area   int
	Pixels map[raster.Coord]struct{}
	ZIndex int
}

// newBlock creates an empty block of the given color with ZIndex 0.
func newBlock(c raster.Color) *Block {
	return &Block{
		Color:  c,
		MinX:   int(^uint(0) >> 1), // max int, shrinks on first addPixel
		MinY:   int(^uint(0) >> 1),
		MaxX:   -1,
		MaxY:   -1,
		Pixels: make(map[raster.Coord]struct{}),
	}
}

// addPixel inserts a coordinate, expanding the bounding box and area.
func (b *Block) addPixel(c raster.Coord) {
	if _, ok := b.Pixels[c]; ok {
		return
	}
	b.Pixels[c] = struct{}{}
	b.Area++

	x, y := c.X(), c.Y()
	if x < b.MinX {
		b.MinX = x
	}
	if x > b.MaxX {
		b.MaxX = x
	}
	if y < b.MinY {
		b.MinY = y
	}
	if y > b.MaxY {
		b.MaxY = y
	}
}

// Width returns the bounding box width (MaxX - MinX + 1).
func (b *Block) Width() int {
	return b.MaxX - b.MinX + 1
}

// Height returns the bounding box height (MaxY - MinY + 1).
func (b *Block) Height() int {
	return b.MaxY - b.MinY + 1
}

// Has reports whether the block contains the given coordinate.
func (b *Block) Has(c raster.Coord) bool {
	_, ok := b.Pixels[c]
	return ok
}

// Covers reports whether every pixel of other is also a pixel of b.
// This is exact coordinate containment, not bounding-box overlap.
func (b *Block) Covers(other *Block) bool {
	if other.Area > b.Area {
		return false
	}
	for c := range other.Pixels {
		if _, ok := b.Pixels[c]; !ok {
			return false
		}
	}

	return true
}

// AdjacentTo reports whether any pixel of b is a direct 4-neighbor of any
// pixel of other. The smaller pixel set is iterated; lookups against the
// larger set are O(1).
func (b *Block) AdjacentTo(other *Block) bool {
	small, large := b, other
	if small.Area > large.Area {
		small, large = large, small
	}

	for c := range small.Pixels {
		x, y := c.X(), c.Y()
		if large.Has(raster.PackCoord(x+1, y)) ||
			large.Has(raster.PackCoord(x, y+1)) {
			return true
		}
		if x > 0 && large.Has(raster.PackCoord(x-1, y)) {
			return true
		}
		if y > 0 && large.Has(raster.PackCoord(x, y-1)) {
			return true
		}
	}

	return false
}

// Merge combines two same-color blocks into a new block: the pixel union,
// the recomputed bounding box, and the smaller of the two z-indices. The
// inputs are left untouched.
func Merge(a, b *Block) *Block {
	merged := newBlock(a.Color)
	for c := range a.Pixels {
		merged.addPixel(c)
	}
	for c := range b.Pixels {
		merged.addPixel(c)
	}

	merged.ZIndex = a.ZIndex
	if b.ZIndex < merged.ZIndex {
		merged.ZIndex = b.ZIndex
	}

	return merged
}
