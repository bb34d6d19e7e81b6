// Package blockcast segments raster images and video frames into flat-color
// pixel regions ("Blocks") and emits them as a compact binary scene script
// of spawn/kill commands with strictly increasing draw order.
//
// # Core Features
//
//   - Exact 4-connected, same-color region segmentation
//   - Greedy + local-search block merging that never loses pixel fidelity
//   - Keyframe/delta temporal pipeline with per-pixel frame diffing
//   - Occlusion scanning that reports fully hidden regions for eviction
//   - Binary scene-script output with optional compression (Zstd, S2, LZ4)
//   - Hash-based region tags (64-bit xxHash64) stable across runs
//
// # Basic Usage
//
// Processing a single image into an ordered block list:
//
//	import "github.com/quarda/blockcast"
//
//	blocks, err := blockcast.ProcessImage("sprite.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, b := range blocks {
//	    fmt.Printf("color=%06x area=%d z=%d\n", b.Color, b.Area, b.ZIndex)
//	}
//
// Processing a video into per-frame scene scripts:
//
//	video, _ := blockcast.NewVideo(
//	    pipeline.WithOutputDir("out"),
//	    pipeline.WithScriptCompression(format.CompressionZstd),
//	)
//	frames, err := video.Run(ctx, "clip.mp4")
//
// Batch-processing independent images across CPU cores:
//
//	pool, _ := blockcast.NewPool()
//	defer pool.Close()
//	ch, _ := pool.Submit(ctx, "sprite.png")
//	res := <-ch
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the component
// packages, simplifying the most common use cases. For fine-grained control,
// use raster, segment, optimize, diff, schedule, occlude, emit, and pipeline
// directly.
package blockcast

import (
	"github.com/quarda/blockcast/emit"
	"github.com/quarda/blockcast/format"
	"github.com/quarda/blockcast/internal/options"
	"github.com/quarda/blockcast/optimize"
	"github.com/quarda/blockcast/pipeline"
	"github.com/quarda/blockcast/raster"
	"github.com/quarda/blockcast/segment"
)

type processConfig struct {
	sortOrder format.SortOrder
	optOpts   []optimize.Option
}

// ProcessOption represents a functional option for configuring single-image
// processing.
type ProcessOption = options.Option[*processConfig]

// WithSortOrder sets the final draw order of the block list (default
// SortByArea, largest regions first).
func WithSortOrder(order format.SortOrder) ProcessOption {
	return options.NoError(func(c *processConfig) {
		c.sortOrder = order
	})
}

// WithOptimizerOptions forwards options to the block merge optimizer.
func WithOptimizerOptions(opts ...optimize.Option) ProcessOption {
	return options.NoError(func(c *processConfig) {
		c.optOpts = append(c.optOpts, opts...)
	})
}

// ProcessImage decodes the image at path and returns its optimized, ordered
// block list: maximal same-color 4-connected regions, merged where adjacent,
// sorted, with dense z-indices.
//
// Supported formats: png, jpeg, gif, bmp, tiff, webp.
//
// Example:
//
//	blocks, err := blockcast.ProcessImage("sprite.png",
//	    blockcast.WithSortOrder(format.SortByPosition),
//	)
func ProcessImage(path string, opts ...ProcessOption) ([]*segment.Block, error) {
	grid, err := raster.Decode(path)
	if err != nil {
		return nil, err
	}

	return ProcessGrid(grid, opts...)
}

// ProcessGrid is ProcessImage for an already decoded pixel grid. Use it when
// frames arrive from a custom decoder or are synthesized in memory.
func ProcessGrid(grid *raster.Grid, opts ...ProcessOption) ([]*segment.Block, error) {
	cfg := &processConfig{sortOrder: format.SortByArea}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	optimizer, err := optimize.New(cfg.optOpts...)
	if err != nil {
		return nil, err
	}

	blocks := optimizer.Optimize(segment.Segment(grid))
	optimize.SortAndIndex(blocks, cfg.sortOrder)

	return blocks, nil
}

// NewPool creates a bounded worker pool for batch-processing independent
// images. See pipeline.NewPool for the available options.
//
// Example:
//
//	pool, err := blockcast.NewPool(pipeline.WithWorkers(8))
//	defer pool.Close()
func NewPool(opts ...pipeline.PoolOption) (*pipeline.Pool, error) {
	return pipeline.NewPool(opts...)
}

// NewVideo creates the stateful per-video pipeline: frame extraction,
// keyframe/delta classification, segmentation, occlusion scanning, and
// scene-script emission. See pipeline.NewVideo for the available options.
//
// Example:
//
//	video, err := blockcast.NewVideo(
//	    pipeline.WithFPS(15),
//	    pipeline.WithOutputDir("out"),
//	)
//	frames, err := video.Run(ctx, "clip.mp4")
func NewVideo(opts ...pipeline.VideoOption) (*pipeline.Video, error) {
	return pipeline.NewVideo(opts...)
}

// NewEmitter creates a scene-script emitter for callers that drive script
// assembly themselves instead of going through the video pipeline.
func NewEmitter(opts ...emit.Option) (*emit.Emitter, error) {
	return emit.NewEmitter(opts...)
}

// DecodeScript parses a binary scene script back into frames and commands.
func DecodeScript(data []byte) (*emit.Script, error) {
	return emit.Decode(data)
}

// RegionTag derives the stable wire tag for the ordinal-th region of a
// frame.
//
// Blockcast uses xxHash64 to derive fixed-size tags so that:
//   - The same (frame, ordinal) pair always yields the same tag
//   - Tags are unique per retained region for practical purposes
//   - Consumers can key entities directly by tag
//
// Example:
//
//	tag := blockcast.RegionTag(0, 3) // fourth region of the first frame
func RegionTag(frameNumber, ordinal int) string {
	return emit.RegionTag(frameNumber, ordinal)
}
