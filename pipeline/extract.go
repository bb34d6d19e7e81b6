package pipeline

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/quarda/blockcast/errs"
)

// FrameExtractor turns a video file into an ordered list of frame image
// paths. Video decoding is an external collaborator; the pipeline never
// touches container formats itself.
type FrameExtractor interface {
	Extract(ctx context.Context, videoPath, outDir string, fps int) ([]string, error)
}

// Sink writes a finished frame's scene script. The default is os-backed;
// tests inject in-memory fakes.
type Sink interface {
	WriteFile(path string, data []byte) error
}

// FFmpegExtractor shells out to ffmpeg to dump frames as numbered PNGs.
type FFmpegExtractor struct {
	// Binary overrides the ffmpeg executable name, for hosts where it is
	// not on PATH.
	Binary string
}

// Extract runs ffmpeg with an fps filter and returns the produced frame
// paths in frame order. All failures wrap errs.ErrExtractFailed.
func (f *FFmpegExtractor) Extract(ctx context.Context, videoPath, outDir string, fps int) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrExtractFailed, err)
	}

	bin := f.Binary
	if bin == "" {
		bin = "ffmpeg"
	}

	pattern := filepath.Join(outDir, "frame_%05d.png")
	cmd := exec.CommandContext(ctx, bin,
		"-hide_banner", "-loglevel", "error",
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=%d", fps),
		pattern,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w: %s", errs.ErrExtractFailed, videoPath, err, out)
	}

	paths, err := filepath.Glob(filepath.Join(outDir, "frame_*.png"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrExtractFailed, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s produced no frames", errs.ErrExtractFailed, videoPath)
	}
	sort.Strings(paths)

	return paths, nil
}

// OSSink writes scripts to the local filesystem, creating parent
// directories as needed.
type OSSink struct{}

func (OSSink) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
