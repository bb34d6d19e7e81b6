package optimize

import "github.com/quarda/blockcast/segment"

// SplitStrategy is the extension point for the phase-2 split-exploration
// move. Implementations propose an alternative block list (for example,
// splitting a ragged block into rectangles) and report whether they produced
// a candidate; the optimizer accepts the candidate only if it scores a
// strictly lower cost.
//
// The default strategy is inert: no splitting heuristic is currently
// defined, so odd iterations never produce a candidate.
type SplitStrategy interface {
	Split(blocks []*segment.Block) ([]*segment.Block, bool)
}

type noopSplit struct{}

func (noopSplit) Split(blocks []*segment.Block) ([]*segment.Block, bool) {
	return blocks, false
}
