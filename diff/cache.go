package diff

import (
	"github.com/quarda/blockcast/internal/hash"
	"github.com/quarda/blockcast/raster"
)

// ReferenceCache holds decoded reference grids keyed by the xxHash64 of
// their source identifier (typically the frame's file path), so a reference
// used by many delta frames is decoded once.
//
// The cache is an explicit object owned by the enclosing video run — never a
// package-level singleton. It is written only by the sequential pipeline
// stage and must be cleared at run end to bound memory.
type ReferenceCache struct {
	entries map[uint64]*raster.Grid
}

// NewReferenceCache creates an empty cache.
func NewReferenceCache() *ReferenceCache {
	return &ReferenceCache{entries: make(map[uint64]*raster.Grid)}
}

// GetOrLoad returns the cached grid for id, invoking loader and caching its
// result on a miss. The loader runs at most once per distinct id between
// Clear calls.
func (rc *ReferenceCache) GetOrLoad(id string, loader func() (*raster.Grid, error)) (*raster.Grid, error) {
	key := hash.ID(id)
	if g, ok := rc.entries[key]; ok {
		return g, nil
	}

	g, err := loader()
	if err != nil {
		return nil, err
	}
	rc.entries[key] = g

	return g, nil
}

// Promote installs an already-decoded grid for id, typically the candidate
// frame that just became the new diff reference.
func (rc *ReferenceCache) Promote(id string, g *raster.Grid) {
	rc.entries[hash.ID(id)] = g
}

// Len returns the number of cached references.
func (rc *ReferenceCache) Len() int {
	return len(rc.entries)
}

// Clear drops every entry. Called at the end of a video run.
func (rc *ReferenceCache) Clear() {
	rc.entries = make(map[uint64]*raster.Grid)
}
