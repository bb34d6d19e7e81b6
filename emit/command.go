package emit

import (
	"fmt"
	"sort"

	"github.com/quarda/blockcast/internal/hash"
	"github.com/quarda/blockcast/raster"
	"github.com/quarda/blockcast/segment"
)

// Opcode identifies a scene-script command.
type Opcode uint8

const (
	// CmdClear instructs the consumer to discard everything drawn so far.
	// Emitted as the first command of every keyframe.
	CmdClear Opcode = 0x1
	// CmdSpawn draws one region.
	CmdSpawn Opcode = 0x2
	// CmdKill drops a fully occluded region by tag.
	CmdKill Opcode = 0x3
)

func (o Opcode) String() string {
	switch o {
	case CmdClear:
		return "Clear"
	case CmdSpawn:
		return "Spawn"
	case CmdKill:
		return "Kill"
	default:
		return "Unknown"
	}
}

// Command is one decoded scene-script command. Only Spawn populates the
// region fields; Kill carries just the tag.
type Command struct {
	Op     Opcode
	Tag    string
	Color  raster.Color
	ZIndex int
	MinX   int
	MinY   int
	MaxX   int
	MaxY   int
	Pixels []raster.Coord
}

// RegionTag derives the stable tag for the ordinal-th region of a frame.
// Tags are unique per retained region and stable across runs for the same
// (frame, ordinal) pair.
func RegionTag(frameNumber, ordinal int) string {
	return fmt.Sprintf("r%016x", hash.RegionID(frameNumber, ordinal))
}

// sortedCoords returns the block's pixel coordinates in ascending packed
// order, which is row-major scan order. Delta encoding depends on it.
func sortedCoords(b *segment.Block) []raster.Coord {
	coords := make([]raster.Coord, 0, len(b.Pixels))
	for c := range b.Pixels {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool { return coords[i] < coords[j] })

	return coords
}
