// Package optimize reduces a frame's block count without losing pixel
// fidelity, by merging adjacent same-color blocks.
//
// Two deterministic phases run in sequence:
//
//  1. Greedy merge: repeatedly find the first mergeable same-color pair and
//     merge it, restarting the scan, until a full scan finds none.
//  2. Local search: a bounded hill-climb over the block-list cost
//     cost = 100*count - 0.1*Σarea, alternating a merge move (even
//     iterations) with a split-exploration move (odd iterations). Candidate
//     lists are accepted only on strictly lower cost.
//
// The union of all pixels is identical before and after optimization, and
// the block count never increases.
package optimize

import (
	"fmt"

	"github.com/quarda/blockcast/errs"
	"github.com/quarda/blockcast/format"
	"github.com/quarda/blockcast/internal/options"
	"github.com/quarda/blockcast/raster"
	"github.com/quarda/blockcast/segment"
)

// DefaultMaxIterations bounds the phase-2 local search.
const DefaultMaxIterations = 1000

// Optimizer merges blocks. The zero value is not usable; construct with New.
type Optimizer struct {
	maxIterations int
	split         SplitStrategy
}

// Option represents a functional option for configuring the Optimizer.
type Option = options.Option[*Optimizer]

// WithMaxIterations sets the phase-2 iteration budget (default 1000).
func WithMaxIterations(n int) Option {
	return options.New(func(o *Optimizer) error {
		if n <= 0 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidIterations, n)
		}
		o.maxIterations = n

		return nil
	})
}

// WithSplitStrategy replaces the split-exploration move used on odd
// phase-2 iterations. The default strategy proposes nothing.
func WithSplitStrategy(s SplitStrategy) Option {
	return options.NoError(func(o *Optimizer) {
		if s == nil {
			s = noopSplit{}
		}
		o.split = s
	})
}

// New creates an Optimizer with the given options.
func New(opts ...Option) (*Optimizer, error) {
	o := &Optimizer{
		maxIterations: DefaultMaxIterations,
		split:         noopSplit{},
	}
	if err := options.Apply(o, opts...); err != nil {
		return nil, err
	}

	return o, nil
}

// Optimize returns a reduced block list covering exactly the same pixels.
//
// The input list is not modified; the result contains newly built merged
// blocks alongside untouched survivors. Z-indices are reassigned densely by
// final list order.
func (o *Optimizer) Optimize(blocks []*segment.Block) []*segment.Block {
	current := make([]*segment.Block, len(blocks))
	copy(current, blocks)

	// Phase 1: greedy merge to a fixed point.
	for {
		next, merged := mergeOnce(current)
		if !merged {
			break
		}
		current = next
	}

	// Phase 2: bounded local search over the cost function.
	currentCost := cost(current)
	for i := 0; i < o.maxIterations; i++ {
		var candidate []*segment.Block
		var changed bool
		if i%2 == 0 {
			candidate, changed = mergeOnce(current)
		} else {
			candidate, changed = o.split.Split(current)
		}
		if !changed {
			continue
		}
		if c := cost(candidate); c < currentCost {
			current = candidate
			currentCost = c
		}
	}

	segment.AssignZIndexes(current)

	return current
}

// cost scores a block list; fewer, larger blocks score lower.
func cost(blocks []*segment.Block) float64 {
	total := 0
	for _, b := range blocks {
		total += b.Area
	}

	return 100*float64(len(blocks)) - 0.1*float64(total)
}

// mergeOnce performs a single greedy merge step: scan color groups for the
// first pair of adjacent same-color blocks, merge it, and return the new
// list. Scan order is color-group map iteration order on the outside and
// ascending pair indices on the inside; since at most one pair is merged per
// call and the process runs to a fixed point, the fixed point itself is
// independent of map order.
func mergeOnce(blocks []*segment.Block) ([]*segment.Block, bool) {
	groups := make(map[raster.Color][]int)
	for i, b := range blocks {
		groups[b.Color] = append(groups[b.Color], i)
	}

	for _, indices := range groups {
		if len(indices) < 2 {
			continue
		}
		for i := 0; i < len(indices); i++ {
			for j := i + 1; j < len(indices); j++ {
				a, b := blocks[indices[i]], blocks[indices[j]]
				if !a.AdjacentTo(b) {
					continue
				}

				merged := segment.Merge(a, b)
				next := make([]*segment.Block, 0, len(blocks)-1)
				for k, blk := range blocks {
					if k == indices[i] || k == indices[j] {
						continue
					}
					next = append(next, blk)
				}
				next = append(next, merged)

				return next, true
			}
		}
	}

	return blocks, false
}

// SortAndIndex is a convenience wrapper used after optimization when the
// caller wants a specific draw order: sort, then reassign dense z-indices.
func SortAndIndex(blocks []*segment.Block, order format.SortOrder) {
	segment.SortBlocks(blocks, order)
	segment.AssignZIndexes(blocks)
}
