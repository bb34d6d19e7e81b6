// Package schedule decides, per video frame, whether the frame is emitted as
// a full keyframe or a sparse delta, and keeps draw order strictly
// increasing across the whole sequence.
package schedule

import (
	"fmt"

	"github.com/quarda/blockcast/errs"
	"github.com/quarda/blockcast/format"
	"github.com/quarda/blockcast/internal/options"
	"github.com/quarda/blockcast/segment"
)

// RefMode selects the governing reference for delta-frame diffs.
type RefMode uint8

const (
	// RefKeyframe diffs every candidate against the last keyframe.
	RefKeyframe RefMode = 0x1
	// RefPrevious diffs every candidate against the immediately preceding frame.
	RefPrevious RefMode = 0x2
)

func (m RefMode) String() string {
	switch m {
	case RefKeyframe:
		return "Keyframe"
	case RefPrevious:
		return "Previous"
	default:
		return "Unknown"
	}
}

// Default scheduling parameters.
const (
	DefaultInterval      = 30
	DefaultDiffThreshold = 0.5
)

// Scheduler is the per-frame keyframe/delta state machine.
//
// It is stateful and must observe frames in strict index order: each
// decision depends on whether a reference exists yet, and OffsetBlocks
// depends on the running z-index maximum. Not safe for concurrent use.
type Scheduler struct {
	interval      int
	diffThreshold float64
	mode          RefMode

	hasRef     bool
	groupStart int // frame index where the current keyframe group began
	nextZ      int // running offset: max(ZIndex)+1 seen so far
}

// Option represents a functional option for configuring the Scheduler.
type Option = options.Option[*Scheduler]

// WithInterval sets the forced keyframe interval I: every frame index that
// is a multiple of I is a keyframe regardless of diff (default 30).
func WithInterval(i int) Option {
	return options.New(func(s *Scheduler) error {
		if i <= 0 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidInterval, i)
		}
		s.interval = i

		return nil
	})
}

// WithDiffThreshold sets the promotion threshold: a candidate whose diff
// ratio meets or exceeds it becomes a keyframe (default 0.5).
func WithDiffThreshold(t float64) Option {
	return options.New(func(s *Scheduler) error {
		if t < 0 || t > 1 {
			return fmt.Errorf("%w: %g", errs.ErrInvalidDiffThreshold, t)
		}
		s.diffThreshold = t

		return nil
	})
}

// WithRefMode selects the diff reference mode (default RefKeyframe).
func WithRefMode(m RefMode) Option {
	return options.NoError(func(s *Scheduler) {
		s.mode = m
	})
}

// New creates a Scheduler with the given options.
func New(opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		interval:      DefaultInterval,
		diffThreshold: DefaultDiffThreshold,
		mode:          RefKeyframe,
	}
	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	return s, nil
}

// ForcedKeyframe reports whether the frame must be a keyframe before any
// diff is computed: frame 0, any multiple of the interval, or no reference
// established yet.
func (s *Scheduler) ForcedKeyframe(frameIndex int) bool {
	return frameIndex == 0 || frameIndex%s.interval == 0 || !s.hasRef
}

// Classify decides the frame type. ratio is the diff ratio against the
// governing reference; it is ignored for forced keyframes, so callers may
// skip the diff entirely when ForcedKeyframe is true and pass 0.
//
// Callers must follow a Keyframe classification with MarkKeyframe before
// processing the next frame.
func (s *Scheduler) Classify(frameIndex int, ratio float64) format.FrameType {
	if s.ForcedKeyframe(frameIndex) {
		return format.FrameKeyframe
	}
	if ratio >= s.diffThreshold {
		return format.FrameKeyframe
	}

	return format.FrameDelta
}

// MarkKeyframe records that frameIndex was emitted as a keyframe: it becomes
// the reference (in RefKeyframe mode) and resets the keyframe-group window
// origin for occlusion scanning.
func (s *Scheduler) MarkKeyframe(frameIndex int) {
	s.hasRef = true
	s.groupStart = frameIndex
}

// GroupStart returns the frame index where the current keyframe group began.
func (s *Scheduler) GroupStart() int {
	return s.groupStart
}

// Mode returns the configured reference mode.
func (s *Scheduler) Mode() RefMode {
	return s.mode
}

// OffsetBlocks shifts every block's ZIndex by the running offset so that
// draw order strictly increases across the sequence, then advances the
// offset past the largest index produced. Blocks are expected to carry
// dense per-frame indices (0..n-1) on entry.
func (s *Scheduler) OffsetBlocks(blocks []*segment.Block) {
	if len(blocks) == 0 {
		return
	}

	maxZ := s.nextZ
	for _, b := range blocks {
		b.ZIndex += s.nextZ
		if b.ZIndex >= maxZ {
			maxZ = b.ZIndex + 1
		}
	}
	s.nextZ = maxZ
}
