package segment

import (
	"sort"

	"github.com/quarda/blockcast/format"
)

// SortBlocks orders blocks in place according to the given order:
//
//   - format.SortByArea: pixel area descending, insertion order as the
//     stable tie-break
//   - format.SortByPosition: (MinY, MinX) ascending, top-left first
//
// Unknown orders leave the slice untouched.
func SortBlocks(blocks []*Block, order format.SortOrder) {
	switch order {
	case format.SortByArea:
		sort.SliceStable(blocks, func(i, j int) bool {
			return blocks[i].Area > blocks[j].Area
		})
	case format.SortByPosition:
		sort.SliceStable(blocks, func(i, j int) bool {
			if blocks[i].MinY != blocks[j].MinY {
				return blocks[i].MinY < blocks[j].MinY
			}

			return blocks[i].MinX < blocks[j].MinX
		})
	}
}

// AssignZIndexes sets each block's ZIndex to its rank in the current list
// order, densely from 0.
func AssignZIndexes(blocks []*Block) {
	for i, b := range blocks {
		b.ZIndex = i
	}
}
