package hash

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// RegionID computes the stable 64-bit identifier for a region: the xxHash64
// of "frameNumber:ordinal". Deterministic across runs for identical inputs.
func RegionID(frameNumber, ordinal int) uint64 {
	return xxhash.Sum64String(strconv.Itoa(frameNumber) + ":" + strconv.Itoa(ordinal))
}
