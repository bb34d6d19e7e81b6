// Package raster provides the decoded pixel grid that feeds the segmentation
// pipeline, plus packed color/coordinate primitives shared by every stage.
//
// A Grid is a plain RGBA buffer with binary opacity: a pixel with alpha 0 is
// transparent and invisible to every downstream component; any other alpha is
// treated as fully opaque. This matches the input contract of the segmenter,
// which ignores transparent pixels entirely.
package raster

import (
	"image"
	"image/draw"
)

// Grid is a decoded frame: an RGBA pixel buffer with its dimensions.
// The buffer layout matches image.RGBA (stride = Width*4, row-major).
type Grid struct {
	Width  int
	Height int
	Pix    []byte
}

// NewGrid creates a fully transparent grid of the given dimensions.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*4),
	}
}

// FromImage copies any image.Image into a Grid anchored at (0, 0).
func FromImage(src image.Image) *Grid {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)

	return &Grid{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    dst.Pix,
	}
}

// At returns the packed color at (x, y) and whether the pixel is opaque.
// Transparent pixels (alpha 0) report an undefined color and false.
func (g *Grid) At(x, y int) (Color, bool) {
	i := (y*g.Width + x) * 4
	if g.Pix[i+3] == 0 {
		return 0, false
	}

	return PackColor(g.Pix[i], g.Pix[i+1], g.Pix[i+2]), true
}

// Set makes the pixel at (x, y) opaque with the given color.
func (g *Grid) Set(x, y int, c Color) {
	i := (y*g.Width + x) * 4
	g.Pix[i] = c.R()
	g.Pix[i+1] = c.G()
	g.Pix[i+2] = c.B()
	g.Pix[i+3] = 0xFF
}

// SetTransparent makes the pixel at (x, y) fully transparent.
func (g *Grid) SetTransparent(x, y int) {
	i := (y*g.Width + x) * 4
	g.Pix[i] = 0
	g.Pix[i+1] = 0
	g.Pix[i+2] = 0
	g.Pix[i+3] = 0
}

// OpaqueCount returns the number of opaque pixels in the grid.
func (g *Grid) OpaqueCount() int {
	count := 0
	for i := 3; i < len(g.Pix); i += 4 {
		if g.Pix[i] != 0 {
			count++
		}
	}

	return count
}

// PixelCount returns Width*Height.
func (g *Grid) PixelCount() int {
	return g.Width * g.Height
}

// ToImage copies the grid into a new image.RGBA, for PNG materialization.
func (g *Grid) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	copy(img.Pix, g.Pix)

	return img
}
