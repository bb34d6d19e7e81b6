// Package diff computes per-pixel change between a reference frame and a
// candidate frame, producing the sparse changed-pixel image that delta
// frames are segmented from.
package diff

import (
	"fmt"

	"github.com/quarda/blockcast/errs"
	"github.com/quarda/blockcast/internal/options"
	"github.com/quarda/blockcast/raster"
)

// DefaultColorThreshold is the per-channel change threshold used when no
// option overrides it.
const DefaultColorThreshold = 10

// Engine compares equally-sized pixel grids. A pixel counts as changed when
// max(|Δr|, |Δg|, |Δb|) strictly exceeds the configured threshold; alpha is
// ignored in the comparison.
type Engine struct {
	threshold int
}

// Option represents a functional option for configuring the Engine.
type Option = options.Option[*Engine]

// WithColorThreshold sets the per-channel change threshold (default 10).
// A threshold of 0 means any channel difference marks the pixel changed.
func WithColorThreshold(threshold int) Option {
	return options.New(func(e *Engine) error {
		if threshold < 0 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidColorThreshold, threshold)
		}
		e.threshold = threshold

		return nil
	})
}

// NewEngine creates a diff engine with the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{threshold: DefaultColorThreshold}
	if err := options.Apply(e, opts...); err != nil {
		return nil, err
	}

	return e, nil
}

// ChangedPixel is one changed coordinate with the candidate frame's color.
type ChangedPixel struct {
	Coord raster.Coord
	Color raster.Color
}

// Result is the sparse outcome of one comparison.
type Result struct {
	// Changed lists every changed pixel in row-major order, carrying the
	// candidate frame's color.
	Changed []ChangedPixel

	// Ratio is changedCount / (width*height), in [0, 1].
	Ratio float64

	width  int
	height int
}

// SparseGrid materializes the diff as an image: changed pixels are opaque
// with the candidate's color, everything else is transparent. Feeding this
// grid to the segmenter yields the delta frame's blocks.
func (r *Result) SparseGrid() *raster.Grid {
	g := raster.NewGrid(r.width, r.height)
	for _, cp := range r.Changed {
		g.Set(cp.Coord.X(), cp.Coord.Y(), cp.Color)
	}

	return g
}

// Diff compares a reference grid against a candidate grid.
//
// Equal dimensions are a hard precondition; a mismatch returns
// errs.ErrDimensionMismatch and the frame must be aborted rather than
// truncated. The comparison reads the raw RGB channels; alpha never
// participates.
func (e *Engine) Diff(ref, cand *raster.Grid) (*Result, error) {
	if ref.Width != cand.Width || ref.Height != cand.Height {
		return nil, fmt.Errorf("%w: reference %dx%d, candidate %dx%d",
			errs.ErrDimensionMismatch, ref.Width, ref.Height, cand.Width, cand.Height)
	}

	res := &Result{width: cand.Width, height: cand.Height}
	for y := 0; y < cand.Height; y++ {
		for x := 0; x < cand.Width; x++ {
			i := (y*cand.Width + x) * 4
			rCol := raster.PackColor(ref.Pix[i], ref.Pix[i+1], ref.Pix[i+2])
			cCol := raster.PackColor(cand.Pix[i], cand.Pix[i+1], cand.Pix[i+2])

			if raster.ChannelDistance(rCol, cCol) > e.threshold {
				res.Changed = append(res.Changed, ChangedPixel{
					Coord: raster.PackCoord(x, y),
					Color: cCol,
				})
			}
		}
	}

	total := cand.PixelCount()
	if total > 0 {
		res.Ratio = float64(len(res.Changed)) / float64(total)
	}

	return res, nil
}

// Threshold returns the configured per-channel threshold.
func (e *Engine) Threshold() int {
	return e.threshold
}
