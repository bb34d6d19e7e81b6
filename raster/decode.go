package raster

import (
	"fmt"
	"image"
	"image/png"
	"os"

	// Stdlib decoders registered for image.Decode.
	_ "image/gif"
	_ "image/jpeg"

	// Extended formats from golang.org/x/image.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/quarda/blockcast/errs"
	"github.com/quarda/blockcast/internal/pool"
)

// Decode reads and decodes the image at path into a Grid.
//
// Supported formats: png, jpeg, gif (stdlib) and bmp, tiff, webp
// (golang.org/x/image). Failures wrap errs.ErrDecodeFailed.
func Decode(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrDecodeFailed, path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrDecodeFailed, path, err)
	}

	return FromImage(img), nil
}

// EncodePNG encodes the grid as PNG bytes.
//
// Only needed when materializing a sparse diff image to feed back into the
// segmenter or to persist for inspection. Encoding goes through the shared
// frame-buffer pool; the returned slice is a private copy owned by the
// caller.
func EncodePNG(g *Grid) ([]byte, error) {
	buf := pool.GetFrameBuffer()
	defer pool.PutFrameBuffer(buf)

	// Size hint: a PNG of a flat-color frame lands well under one byte per
	// pixel.
	buf.Grow(g.Width * g.Height)

	if err := png.Encode(buf, g.ToImage()); err != nil {
		return nil, err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, nil
}
