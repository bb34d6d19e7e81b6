// Package occlude identifies regions from earlier frames of the current
// keyframe group that are now fully hidden behind later-drawn regions, so
// their tags can be dropped from the live output and consumer-side resource
// growth stays bounded.
//
// Coverage is exact: a region is covered only when every one of its pixel
// coordinates is also present in a single later-drawn region's pixel set.
// Partial overlap and bounding-box containment never count.
package occlude

import (
	"fmt"
	"sort"

	"github.com/quarda/blockcast/errs"
	"github.com/quarda/blockcast/internal/options"
	"github.com/quarda/blockcast/segment"
)

// Default scan parameters.
const (
	DefaultWindow   = 10
	DefaultCellSize = 10
)

// Region is one drawn region inside the scan window: its block and the tag
// the consumer knows it by.
type Region struct {
	Tag   string
	Block *segment.Block
}

// Frame is one frame's contribution to the scan window.
type Frame struct {
	Number  int
	Regions []Region
}

// Scanner finds fully covered region tags within a bounded window of recent
// frames. Safe for concurrent use; scans share no state.
type Scanner struct {
	window   int
	cellSize int
}

// Option represents a functional option for configuring the Scanner.
type Option = options.Option[*Scanner]

// WithWindow bounds the scan to the most recent n frames of the keyframe
// group (default 10). Older frames in the group are assumed already
// resolved and are not rescanned.
func WithWindow(n int) Option {
	return options.New(func(s *Scanner) error {
		if n <= 0 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidWindow, n)
		}
		s.window = n

		return nil
	})
}

// WithCellSize sets the uniform spatial grid cell size in pixels (default 10).
func WithCellSize(n int) Option {
	return options.New(func(s *Scanner) error {
		if n <= 0 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidCellSize, n)
		}
		s.cellSize = n

		return nil
	})
}

// NewScanner creates a Scanner with the given options.
func NewScanner(opts ...Option) (*Scanner, error) {
	s := &Scanner{
		window:   DefaultWindow,
		cellSize: DefaultCellSize,
	}
	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	return s, nil
}

// Window returns the configured frame window.
func (s *Scanner) Window() int {
	return s.window
}

type cellKey struct {
	cx, cy int
}

// Scan returns the set of tags whose regions are fully covered by a
// later-drawn (strictly greater z-index) region within the window.
//
// Only the last Window frames of the input are considered; callers pass the
// frames of the current keyframe group in order.
func (s *Scanner) Scan(frames []Frame) map[string]struct{} {
	if len(frames) > s.window {
		frames = frames[len(frames)-s.window:]
	}

	var regions []Region
	for _, f := range frames {
		regions = append(regions, f.Regions...)
	}
	if len(regions) < 2 {
		return map[string]struct{}{}
	}

	// Ascending z-order: targets are examined earliest-drawn first, and a
	// candidate can only cover targets below it.
	sort.Slice(regions, func(i, j int) bool {
		return regions[i].Block.ZIndex < regions[j].Block.ZIndex
	})

	// Uniform grid keyed by bounding-box origin cell.
	grid := make(map[cellKey][]Region)
	for _, r := range regions {
		key := cellKey{r.Block.MinX / s.cellSize, r.Block.MinY / s.cellSize}
		grid[key] = append(grid[key], r)
	}

	covered := make(map[string]struct{})
	for _, target := range regions {
		b := target.Block
		// Every cell the target's bounding box spans can hold a candidate
		// whose origin falls inside it.
		x0, x1 := b.MinX/s.cellSize, b.MaxX/s.cellSize
		y0, y1 := b.MinY/s.cellSize, b.MaxY/s.cellSize

	search:
		for cy := y0; cy <= y1; cy++ {
			for cx := x0; cx <= x1; cx++ {
				for _, cand := range grid[cellKey{cx, cy}] {
					if cand.Block.ZIndex <= b.ZIndex {
						continue
					}
					if cand.Block.Covers(b) {
						covered[target.Tag] = struct{}{}
						break search
					}
				}
			}
		}
	}

	return covered
}
