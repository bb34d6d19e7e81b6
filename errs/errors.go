// Package errs defines the sentinel errors shared across blockcast packages.
//
// Call sites wrap these with fmt.Errorf("%w: ...") to attach context while
// keeping errors.Is checks stable for callers.
package errs

import "errors"

var (
	// ErrDecodeFailed indicates the external image decoder could not produce
	// a pixel grid for the given input.
	ErrDecodeFailed = errors.New("image decode failed")

	// ErrDimensionMismatch indicates a diff was requested between two grids
	// of different dimensions. Equal dimensions are a hard precondition of
	// the diff engine; the frame is aborted rather than silently truncated.
	ErrDimensionMismatch = errors.New("reference and candidate dimensions differ")

	// ErrWorkerFailed indicates a parallel image job failed. The failure is
	// delivered only to that job's submitter; other jobs are unaffected.
	ErrWorkerFailed = errors.New("worker job failed")

	// ErrPoolClosed indicates a job was submitted to a pool that has already
	// been shut down.
	ErrPoolClosed = errors.New("worker pool closed")

	// ErrExtractFailed indicates the external frame-extraction collaborator
	// returned an error or produced no frames.
	ErrExtractFailed = errors.New("frame extraction failed")

	// ErrInvalidPoolConfig indicates a non-positive worker count or a
	// negative queue size.
	ErrInvalidPoolConfig = errors.New("invalid worker pool configuration")

	// ErrInvalidFPS indicates a non-positive frame extraction rate.
	ErrInvalidFPS = errors.New("invalid extraction fps")

	// ErrInvalidColorThreshold indicates a negative per-channel color
	// threshold was configured for the diff engine.
	ErrInvalidColorThreshold = errors.New("invalid color threshold")

	// ErrInvalidDiffThreshold indicates a keyframe promotion threshold
	// outside [0, 1].
	ErrInvalidDiffThreshold = errors.New("invalid diff ratio threshold")

	// ErrInvalidInterval indicates a non-positive keyframe interval.
	ErrInvalidInterval = errors.New("invalid keyframe interval")

	// ErrInvalidIterations indicates a non-positive optimizer iteration budget.
	ErrInvalidIterations = errors.New("invalid iteration budget")

	// ErrInvalidWindow indicates a non-positive occlusion scan window.
	ErrInvalidWindow = errors.New("invalid scan window")

	// ErrInvalidCellSize indicates a non-positive spatial grid cell size.
	ErrInvalidCellSize = errors.New("invalid grid cell size")

	// ErrInvalidCompression indicates an unknown compression type.
	ErrInvalidCompression = errors.New("invalid compression type")

	// ErrInvalidScript indicates scene-script bytes that fail header or
	// structural validation during decoding.
	ErrInvalidScript = errors.New("invalid scene script")

	// ErrTagTooLong indicates a region tag longer than the wire format's
	// uint8 length prefix can carry.
	ErrTagTooLong = errors.New("region tag exceeds 255 bytes")
)
