package diff

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quarda/blockcast/errs"
	"github.com/quarda/blockcast/raster"
)

func solidGrid(w, h int, c raster.Color) *raster.Grid {
	g := raster.NewGrid(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.Set(x, y, c)
		}
	}

	return g
}

func mustEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(opts...)
	require.NoError(t, err)

	return e
}

func TestNewEngine(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		e := mustEngine(t)
		require.Equal(t, DefaultColorThreshold, e.Threshold())
	})

	t.Run("ZeroThresholdValid", func(t *testing.T) {
		e := mustEngine(t, WithColorThreshold(0))
		require.Equal(t, 0, e.Threshold())
	})

	t.Run("NegativeThresholdRejected", func(t *testing.T) {
		_, err := NewEngine(WithColorThreshold(-1))
		require.ErrorIs(t, err, errs.ErrInvalidColorThreshold)
	})
}

func TestDiffIdenticalFrames(t *testing.T) {
	// Identical frames yield ratio 0 and an empty diff set for any
	// threshold >= 0.
	for _, threshold := range []int{0, 1, 10, 255} {
		e := mustEngine(t, WithColorThreshold(threshold))
		g := solidGrid(4, 3, raster.PackColor(120, 33, 7))

		res, err := e.Diff(g, g)
		require.NoError(t, err)
		require.Empty(t, res.Changed, "threshold %d", threshold)
		require.Zero(t, res.Ratio)
	}
}

func TestDiffSinglePixelChange(t *testing.T) {
	// White frame, one pixel turned black: ratio = 1/(w*h), diff set holds
	// exactly that black pixel.
	white := raster.PackColor(255, 255, 255)
	black := raster.PackColor(0, 0, 0)

	ref := solidGrid(4, 4, white)
	cand := solidGrid(4, 4, white)
	cand.Set(2, 1, black)

	e := mustEngine(t, WithColorThreshold(10))
	res, err := e.Diff(ref, cand)
	require.NoError(t, err)

	require.Len(t, res.Changed, 1)
	require.Equal(t, raster.PackCoord(2, 1), res.Changed[0].Coord)
	require.Equal(t, black, res.Changed[0].Color)
	require.InDelta(t, 1.0/16.0, res.Ratio, 1e-12)
}

func TestDiffThresholdStrictness(t *testing.T) {
	// Change equal to the threshold is NOT a change; strictly greater is.
	base := solidGrid(1, 1, raster.PackColor(100, 100, 100))

	atThreshold := solidGrid(1, 1, raster.PackColor(110, 100, 100))
	above := solidGrid(1, 1, raster.PackColor(111, 100, 100))

	e := mustEngine(t, WithColorThreshold(10))

	res, err := e.Diff(base, atThreshold)
	require.NoError(t, err)
	require.Empty(t, res.Changed)

	res, err = e.Diff(base, above)
	require.NoError(t, err)
	require.Len(t, res.Changed, 1)
}

func TestDiffRatioMonotonicInThreshold(t *testing.T) {
	// Lowering the threshold never decreases the ratio for a fixed pair.
	ref := raster.NewGrid(8, 8)
	cand := raster.NewGrid(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			ref.Set(x, y, raster.PackColor(uint8(x*16), uint8(y*16), 0))
			cand.Set(x, y, raster.PackColor(uint8(x*16+x), uint8(y*16), uint8(y)))
		}
	}

	prev := -1.0
	for threshold := 255; threshold >= 0; threshold-- {
		e := mustEngine(t, WithColorThreshold(threshold))
		res, err := e.Diff(ref, cand)
		require.NoError(t, err)
		require.GreaterOrEqual(t, res.Ratio, prev,
			"ratio decreased when threshold lowered to %d", threshold)
		prev = res.Ratio
	}
}

func TestDiffDimensionMismatch(t *testing.T) {
	e := mustEngine(t)
	_, err := e.Diff(raster.NewGrid(2, 2), raster.NewGrid(3, 2))
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.ErrDimensionMismatch))
}

func TestSparseGrid(t *testing.T) {
	white := raster.PackColor(255, 255, 255)
	black := raster.PackColor(0, 0, 0)

	ref := solidGrid(3, 3, white)
	cand := solidGrid(3, 3, white)
	cand.Set(0, 0, black)
	cand.Set(2, 2, black)

	e := mustEngine(t, WithColorThreshold(10))
	res, err := e.Diff(ref, cand)
	require.NoError(t, err)

	sparse := res.SparseGrid()
	require.Equal(t, 3, sparse.Width)
	require.Equal(t, 3, sparse.Height)
	require.Equal(t, 2, sparse.OpaqueCount())

	c, opaque := sparse.At(0, 0)
	require.True(t, opaque)
	require.Equal(t, black, c)

	_, opaque = sparse.At(1, 1)
	require.False(t, opaque, "unchanged pixels are transparent in the sparse grid")
}

func TestReferenceCache(t *testing.T) {
	t.Run("LoaderRunsOncePerID", func(t *testing.T) {
		rc := NewReferenceCache()
		loads := 0
		loader := func() (*raster.Grid, error) {
			loads++
			return raster.NewGrid(2, 2), nil
		}

		g1, err := rc.GetOrLoad("frames/0001.png", loader)
		require.NoError(t, err)
		g2, err := rc.GetOrLoad("frames/0001.png", loader)
		require.NoError(t, err)
		require.Same(t, g1, g2)
		require.Equal(t, 1, loads)
		require.Equal(t, 1, rc.Len())
	})

	t.Run("LoaderErrorNotCached", func(t *testing.T) {
		rc := NewReferenceCache()
		boom := errors.New("decode blew up")
		_, err := rc.GetOrLoad("bad.png", func() (*raster.Grid, error) {
			return nil, boom
		})
		require.ErrorIs(t, err, boom)
		require.Equal(t, 0, rc.Len())
	})

	t.Run("PromoteInstallsGrid", func(t *testing.T) {
		rc := NewReferenceCache()
		g := raster.NewGrid(1, 1)
		rc.Promote("frames/0005.png", g)

		got, err := rc.GetOrLoad("frames/0005.png", func() (*raster.Grid, error) {
			t.Fatal("loader must not run for promoted entry")
			return nil, nil
		})
		require.NoError(t, err)
		require.Same(t, g, got)
	})

	t.Run("Clear", func(t *testing.T) {
		rc := NewReferenceCache()
		rc.Promote("a", raster.NewGrid(1, 1))
		rc.Promote("b", raster.NewGrid(1, 1))
		require.Equal(t, 2, rc.Len())
		rc.Clear()
		require.Equal(t, 0, rc.Len())
	})
}
