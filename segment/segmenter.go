package segment

import "github.com/quarda/blockcast/raster"

// Segment partitions the grid's opaque pixels into maximal 4-connected
// same-color blocks.
//
// Pixels are bucketed by exact packed color, then each bucket is traversed
// breadth-first from any unvisited pixel, expanding to 4-neighbors present in
// the same bucket. Each traversal yields one block with ZIndex 0; callers
// order the result with SortBlocks and AssignZIndexes.
//
// Transparent pixels never enter any block. A grid with no opaque pixels
// yields an empty list.
func Segment(g *raster.Grid) []*Block {
	// Bucket coordinates by color. The insertion-ordered coordinate slice
	// drives deterministic seed selection; the set side gives O(1) neighbor
	// membership tests during traversal.
	order := make([]raster.Coord, 0, g.Width*g.Height)
	buckets := make(map[raster.Color]map[raster.Coord]struct{})

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c, opaque := g.At(x, y)
			if !opaque {
				continue
			}
			coord := raster.PackCoord(x, y)
			order = append(order, coord)
			set, ok := buckets[c]
			if !ok {
				set = make(map[raster.Coord]struct{})
				buckets[c] = set
			}
			set[coord] = struct{}{}
		}
	}

	var blocks []*Block
	visited := make(map[raster.Coord]struct{}, len(order))
	queue := make([]raster.Coord, 0, 64)

	for _, seed := range order {
		if _, seen := visited[seed]; seen {
			continue
		}

		color, _ := g.At(seed.X(), seed.Y())
		bucket := buckets[color]

		block := newBlock(color)
		queue = queue[:0]
		queue = append(queue, seed)
		visited[seed] = struct{}{}

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			block.addPixel(cur)

			x, y := cur.X(), cur.Y()
			for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= g.Width || ny >= g.Height {
					continue
				}
				n := raster.PackCoord(nx, ny)
				if _, seen := visited[n]; seen {
					continue
				}
				if _, same := bucket[n]; !same {
					continue
				}
				visited[n] = struct{}{}
				queue = append(queue, n)
			}
		}

		blocks = append(blocks, block)
	}

	return blocks
}
