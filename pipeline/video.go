package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/quarda/blockcast/compress"
	"github.com/quarda/blockcast/diff"
	"github.com/quarda/blockcast/emit"
	"github.com/quarda/blockcast/errs"
	"github.com/quarda/blockcast/format"
	"github.com/quarda/blockcast/internal/options"
	"github.com/quarda/blockcast/occlude"
	"github.com/quarda/blockcast/optimize"
	"github.com/quarda/blockcast/raster"
	"github.com/quarda/blockcast/schedule"
	"github.com/quarda/blockcast/segment"
)

// DefaultFPS is the default frame extraction rate.
const DefaultFPS = 30

// FrameInfo is one processed frame: its classification, blocks with their
// wire tags, and the tags newly reported as covered at this frame. Immutable
// after the occlusion scan; retained only for the duration of the current
// keyframe group.
type FrameInfo struct {
	FrameNumber int
	Type        format.FrameType
	DiffRatio   float64
	Blocks      []*segment.Block
	Tags        []string
	CoveredTags map[string]struct{}
}

// Video is the stateful per-video pipeline. Frames are processed in strict
// index order: each frame's classification depends on the previous keyframe
// reference, the running z-index offset, and the reference cache. Script
// writes for completed frames run in the background and are joined before
// Run returns; everything else is single-threaded.
type Video struct {
	scheduler *schedule.Scheduler
	engine    *diff.Engine
	optimizer *optimize.Optimizer
	scanner   *occlude.Scanner
	cache     *diff.ReferenceCache

	extractor   FrameExtractor
	sink        Sink
	logger      *slog.Logger
	sortOrder   format.SortOrder
	compression format.CompressionType
	fps         int
	outDir      string
}

// VideoOption represents a functional option for configuring the Video
// pipeline.
type VideoOption = options.Option[*Video]

// WithScheduler replaces the keyframe scheduler.
func WithScheduler(s *schedule.Scheduler) VideoOption {
	return options.NoError(func(v *Video) { v.scheduler = s })
}

// WithDiffEngine replaces the frame diff engine.
func WithDiffEngine(e *diff.Engine) VideoOption {
	return options.NoError(func(v *Video) { v.engine = e })
}

// WithOptimizer replaces the block merge optimizer.
func WithOptimizer(o *optimize.Optimizer) VideoOption {
	return options.NoError(func(v *Video) { v.optimizer = o })
}

// WithScanner replaces the occlusion scanner.
func WithScanner(s *occlude.Scanner) VideoOption {
	return options.NoError(func(v *Video) { v.scanner = s })
}

// WithExtractor replaces the frame extraction collaborator (default ffmpeg).
func WithExtractor(e FrameExtractor) VideoOption {
	return options.NoError(func(v *Video) { v.extractor = e })
}

// WithSink replaces the script write destination (default local filesystem).
func WithSink(s Sink) VideoOption {
	return options.NoError(func(v *Video) { v.sink = s })
}

// WithLogger attaches a logger for per-frame progress. The pipeline is
// silent by default.
func WithLogger(l *slog.Logger) VideoOption {
	return options.NoError(func(v *Video) { v.logger = l })
}

// WithSortOrder sets the per-frame draw order (default SortByArea).
func WithSortOrder(order format.SortOrder) VideoOption {
	return options.NoError(func(v *Video) { v.sortOrder = order })
}

// WithScriptCompression sets the scene-script payload compression.
func WithScriptCompression(ct format.CompressionType) VideoOption {
	return options.New(func(v *Video) error {
		if _, err := compress.GetCodec(ct); err != nil {
			return err
		}
		v.compression = ct

		return nil
	})
}

// WithFPS sets the frame extraction rate (default 30).
func WithFPS(fps int) VideoOption {
	return options.New(func(v *Video) error {
		if fps <= 0 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidFPS, fps)
		}
		v.fps = fps

		return nil
	})
}

// WithOutputDir sets the directory scripts and extraction scratch space are
// written under (default "blockcast_out").
func WithOutputDir(dir string) VideoOption {
	return options.NoError(func(v *Video) { v.outDir = dir })
}

// NewVideo creates a video pipeline with the given options.
func NewVideo(opts ...VideoOption) (*Video, error) {
	v := &Video{
		cache:       diff.NewReferenceCache(),
		extractor:   &FFmpegExtractor{},
		sink:        OSSink{},
		logger:      slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(127)})),
		sortOrder:   format.SortByArea,
		compression: format.CompressionNone,
		fps:         DefaultFPS,
		outDir:      "blockcast_out",
	}
	if err := options.Apply(v, opts...); err != nil {
		return nil, err
	}

	var err error
	if v.scheduler == nil {
		if v.scheduler, err = schedule.New(); err != nil {
			return nil, err
		}
	}
	if v.engine == nil {
		if v.engine, err = diff.NewEngine(); err != nil {
			return nil, err
		}
	}
	if v.optimizer == nil {
		if v.optimizer, err = optimize.New(); err != nil {
			return nil, err
		}
	}
	if v.scanner == nil {
		if v.scanner, err = occlude.NewScanner(); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// Run extracts frames from videoPath and processes them in order. See
// RunFrames for the per-frame behavior.
func (v *Video) Run(ctx context.Context, videoPath string) ([]*FrameInfo, error) {
	runID := uuid.NewString()
	scratch := filepath.Join(v.outDir, "frames-"+runID)

	v.logger.Info("extracting frames",
		slog.String("run_id", runID),
		slog.String("video", videoPath),
		slog.Int("fps", v.fps))

	paths, err := v.extractor.Extract(ctx, videoPath, scratch, v.fps)
	if err != nil {
		return nil, err
	}

	return v.runFrames(runID, paths)
}

// RunFrames processes an already extracted, ordered frame sequence. It
// returns one FrameInfo per frame; the run aborts on the first unhandled
// error, leaving prior frames' completed script writes intact. The
// reference cache is cleared when the run ends, on success or failure.
func (v *Video) RunFrames(paths []string) ([]*FrameInfo, error) {
	return v.runFrames(uuid.NewString(), paths)
}

func (v *Video) runFrames(runID string, paths []string) ([]*FrameInfo, error) {
	defer v.cache.Clear()

	log := v.logger.With(slog.String("run_id", runID))

	var (
		writeWG  sync.WaitGroup
		writeMu  sync.Mutex
		writeErr error
	)
	defer writeWG.Wait()

	frames := make([]*FrameInfo, 0, len(paths))
	killed := make(map[string]struct{})
	refPath := ""

	for idx, path := range paths {
		writeMu.Lock()
		err := writeErr
		writeMu.Unlock()
		if err != nil {
			return frames, err
		}

		info, grid, err := v.processFrame(idx, path, refPath)
		if err != nil {
			return frames, err
		}

		if info.Type == format.FrameKeyframe {
			v.scheduler.MarkKeyframe(idx)
			v.cache.Promote(path, grid)
			refPath = path
			// The consumer discards everything before a keyframe, so
			// pending kills are moot and the scan window restarts.
			killed = make(map[string]struct{})
		} else if v.scheduler.Mode() == schedule.RefPrevious {
			v.cache.Promote(path, grid)
			refPath = path
		}

		frames = append(frames, info)
		v.scanWindow(frames, info)

		log.Debug("frame processed",
			slog.Int("frame", idx),
			slog.String("type", info.Type.String()),
			slog.Float64("diff_ratio", info.DiffRatio),
			slog.Int("blocks", len(info.Blocks)),
			slog.Int("covered", len(info.CoveredTags)))

		script, err := v.buildScript(info, killed)
		if err != nil {
			return frames, err
		}

		dest := filepath.Join(v.outDir, fmt.Sprintf("frame_%05d.bcsc", idx))
		writeWG.Add(1)
		go func() {
			defer writeWG.Done()
			if err := v.sink.WriteFile(dest, script); err != nil {
				writeMu.Lock()
				if writeErr == nil {
					writeErr = err
				}
				writeMu.Unlock()
			}
		}()
	}

	writeWG.Wait()
	writeMu.Lock()
	err := writeErr
	writeMu.Unlock()
	if err != nil {
		return frames, err
	}

	log.Info("run complete", slog.Int("frames", len(frames)))

	return frames, nil
}

// processFrame decodes, classifies, and segments one frame, returning its
// FrameInfo and decoded grid.
func (v *Video) processFrame(idx int, path, refPath string) (*FrameInfo, *raster.Grid, error) {
	grid, err := raster.Decode(path)
	if err != nil {
		return nil, nil, err
	}

	ratio := 0.0
	var diffRes *diff.Result
	if !v.scheduler.ForcedKeyframe(idx) {
		ref, err := v.cache.GetOrLoad(refPath, func() (*raster.Grid, error) {
			return raster.Decode(refPath)
		})
		if err != nil {
			return nil, nil, err
		}
		if diffRes, err = v.engine.Diff(ref, grid); err != nil {
			return nil, nil, err
		}
		ratio = diffRes.Ratio
	}

	ftype := v.scheduler.Classify(idx, ratio)

	var blocks []*segment.Block
	if ftype == format.FrameKeyframe {
		blocks = segment.Segment(grid)
	} else {
		blocks = segment.Segment(diffRes.SparseGrid())
	}
	blocks = v.optimizer.Optimize(blocks)
	optimize.SortAndIndex(blocks, v.sortOrder)
	v.scheduler.OffsetBlocks(blocks)

	tags := make([]string, len(blocks))
	for i := range blocks {
		tags[i] = emit.RegionTag(idx, i)
	}

	return &FrameInfo{
		FrameNumber: idx,
		Type:        ftype,
		DiffRatio:   ratio,
		Blocks:      blocks,
		Tags:        tags,
	}, grid, nil
}

// scanWindow runs the occlusion scan over the current keyframe group and
// stores the result on the newest frame. The scan is a deterministic
// post-pass over materialized frames, never entangled with script writes.
func (v *Video) scanWindow(frames []*FrameInfo, newest *FrameInfo) {
	groupStart := v.scheduler.GroupStart()

	var window []occlude.Frame
	for _, f := range frames {
		if f.FrameNumber < groupStart {
			continue
		}
		of := occlude.Frame{Number: f.FrameNumber}
		for i, b := range f.Blocks {
			of.Regions = append(of.Regions, occlude.Region{Tag: f.Tags[i], Block: b})
		}
		window = append(window, of)
	}

	newest.CoveredTags = v.scanner.Scan(window)
}

// buildScript serializes one frame: spawn commands for its blocks, then
// kill commands for tags newly covered at this frame. killed accumulates
// across the keyframe group so a tag is killed at most once.
func (v *Video) buildScript(info *FrameInfo, killed map[string]struct{}) ([]byte, error) {
	e, err := emit.NewEmitter(emit.WithCompression(v.compression))
	if err != nil {
		return nil, err
	}
	if err := e.BeginFrame(info.FrameNumber, info.Type); err != nil {
		return nil, err
	}
	for i, b := range info.Blocks {
		if err := e.Spawn(info.Tags[i], b); err != nil {
			return nil, err
		}
	}
	for tag := range info.CoveredTags {
		if _, done := killed[tag]; done {
			continue
		}
		killed[tag] = struct{}{}
		if err := e.Kill(tag); err != nil {
			return nil, err
		}
	}
	if err := e.EndFrame(); err != nil {
		return nil, err
	}

	return e.Finish()
}
