package emit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quarda/blockcast/endian"
	"github.com/quarda/blockcast/errs"
	"github.com/quarda/blockcast/format"
	"github.com/quarda/blockcast/raster"
	"github.com/quarda/blockcast/segment"
)

func solidBlocks(t *testing.T, w, h int, c raster.Color) []*segment.Block {
	t.Helper()

	g := raster.NewGrid(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.Set(x, y, c)
		}
	}
	blocks := segment.Segment(g)
	segment.AssignZIndexes(blocks)

	return blocks
}

func TestRegionTag(t *testing.T) {
	tag := RegionTag(3, 0)
	require.Len(t, tag, 17)
	require.Equal(t, byte('r'), tag[0])

	// Stable and unique per (frame, ordinal).
	require.Equal(t, tag, RegionTag(3, 0))
	require.NotEqual(t, tag, RegionTag(3, 1))
	require.NotEqual(t, tag, RegionTag(4, 0))
}

func TestEmitterRoundTrip(t *testing.T) {
	red := raster.PackColor(255, 0, 0)
	blocks := solidBlocks(t, 2, 2, red)
	require.Len(t, blocks, 1)

	e, err := NewEmitter()
	require.NoError(t, err)

	require.NoError(t, e.BeginFrame(0, format.FrameKeyframe))
	require.NoError(t, e.Spawn(RegionTag(0, 0), blocks[0]))
	require.NoError(t, e.EndFrame())

	require.NoError(t, e.BeginFrame(1, format.FrameDelta))
	require.NoError(t, e.Kill(RegionTag(0, 0)))
	require.NoError(t, e.EndFrame())

	script, err := e.Finish()
	require.NoError(t, err)

	s, err := Decode(script)
	require.NoError(t, err)
	require.Equal(t, Version, s.Version)
	require.Equal(t, format.CompressionNone, s.Compression)
	require.False(t, s.BigEndian)
	require.Len(t, s.Frames, 2)

	key := s.Frames[0]
	require.Equal(t, uint32(0), key.Number)
	require.Equal(t, format.FrameKeyframe, key.Type)
	require.Len(t, key.Commands, 2)
	require.Equal(t, CmdClear, key.Commands[0].Op, "keyframe leads with clear")

	spawn := key.Commands[1]
	require.Equal(t, CmdSpawn, spawn.Op)
	require.Equal(t, RegionTag(0, 0), spawn.Tag)
	require.Equal(t, red, spawn.Color)
	require.Equal(t, 0, spawn.ZIndex)
	require.Equal(t, 0, spawn.MinX)
	require.Equal(t, 0, spawn.MinY)
	require.Equal(t, 1, spawn.MaxX)
	require.Equal(t, 1, spawn.MaxY)
	require.Len(t, spawn.Pixels, 4)
	for _, c := range spawn.Pixels {
		require.True(t, blocks[0].Has(c))
	}

	delta := s.Frames[1]
	require.Equal(t, format.FrameDelta, delta.Type)
	require.Len(t, delta.Commands, 1)
	require.Equal(t, CmdKill, delta.Commands[0].Op)
	require.Equal(t, RegionTag(0, 0), delta.Commands[0].Tag)
}

func TestEmitterCompressionRoundTrip(t *testing.T) {
	for _, ct := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		t.Run(ct.String(), func(t *testing.T) {
			blocks := solidBlocks(t, 16, 16, raster.PackColor(10, 200, 30))

			e, err := NewEmitter(WithCompression(ct))
			require.NoError(t, err)
			require.NoError(t, e.BeginFrame(0, format.FrameKeyframe))
			for i, b := range blocks {
				require.NoError(t, e.Spawn(RegionTag(0, i), b))
			}
			require.NoError(t, e.EndFrame())

			script, err := e.Finish()
			require.NoError(t, err)

			s, err := Decode(script)
			require.NoError(t, err)
			require.Equal(t, ct, s.Compression)
			require.Len(t, s.Frames, 1)
			require.Len(t, s.Frames[0].Commands, len(blocks)+1)
		})
	}
}

func TestEmitterBigEndian(t *testing.T) {
	e, err := NewEmitter(WithBigEndian())
	require.NoError(t, err)
	require.NoError(t, e.BeginFrame(7, format.FrameKeyframe))
	require.NoError(t, e.EndFrame())

	script, err := e.Finish()
	require.NoError(t, err)

	s, err := Decode(script)
	require.NoError(t, err)
	require.True(t, s.BigEndian)
	require.Equal(t, uint32(7), s.Frames[0].Number)
}

func TestEmitterInvalidCompression(t *testing.T) {
	_, err := NewEmitter(WithCompression(format.CompressionType(0xf)))
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
}

func TestEmitterStateErrors(t *testing.T) {
	t.Run("SpawnOutsideFrame", func(t *testing.T) {
		e, err := NewEmitter()
		require.NoError(t, err)
		err = e.Spawn("x", solidBlocks(t, 1, 1, raster.PackColor(1, 2, 3))[0])
		require.ErrorIs(t, err, errs.ErrInvalidScript)

		// Sticky: later calls report the same failure.
		require.ErrorIs(t, e.BeginFrame(0, format.FrameKeyframe), errs.ErrInvalidScript)
		_, err = e.Finish()
		require.ErrorIs(t, err, errs.ErrInvalidScript)
	})

	t.Run("DoubleBeginFrame", func(t *testing.T) {
		e, err := NewEmitter()
		require.NoError(t, err)
		require.NoError(t, e.BeginFrame(0, format.FrameKeyframe))
		require.ErrorIs(t, e.BeginFrame(1, format.FrameDelta), errs.ErrInvalidScript)
	})

	t.Run("FinishWithOpenFrame", func(t *testing.T) {
		e, err := NewEmitter()
		require.NoError(t, err)
		require.NoError(t, e.BeginFrame(0, format.FrameKeyframe))
		_, err = e.Finish()
		require.ErrorIs(t, err, errs.ErrInvalidScript)
	})

	t.Run("ReuseAfterFinish", func(t *testing.T) {
		e, err := NewEmitter()
		require.NoError(t, err)
		require.NoError(t, e.BeginFrame(0, format.FrameKeyframe))
		require.NoError(t, e.EndFrame())

		_, err = e.Finish()
		require.NoError(t, err)

		// A finished emitter fails cleanly instead of touching its
		// released buffer.
		_, err = e.Finish()
		require.ErrorIs(t, err, errs.ErrInvalidScript)
		require.ErrorIs(t, e.BeginFrame(1, format.FrameDelta), errs.ErrInvalidScript)
	})

	t.Run("TagTooLong", func(t *testing.T) {
		e, err := NewEmitter()
		require.NoError(t, err)
		require.NoError(t, e.BeginFrame(0, format.FrameDelta))

		long := make([]byte, MaxTagLen+1)
		require.ErrorIs(t, e.Kill(string(long)), errs.ErrTagTooLong)
	})
}

func TestDecodeInvalidScripts(t *testing.T) {
	t.Run("TooShort", func(t *testing.T) {
		_, err := Decode([]byte("BCS"))
		require.ErrorIs(t, err, errs.ErrInvalidScript)
	})

	t.Run("BadMagic", func(t *testing.T) {
		_, err := Decode([]byte("NOPE\x01\x01\x00\x00\x00\x00"))
		require.ErrorIs(t, err, errs.ErrInvalidScript)
	})

	t.Run("BadVersion", func(t *testing.T) {
		_, err := Decode([]byte("BCSC\xff\x01\x00\x00\x00\x00"))
		require.ErrorIs(t, err, errs.ErrInvalidScript)
	})

	t.Run("TruncatedPayload", func(t *testing.T) {
		e, err := NewEmitter()
		require.NoError(t, err)
		require.NoError(t, e.BeginFrame(0, format.FrameKeyframe))
		require.NoError(t, e.EndFrame())
		script, err := e.Finish()
		require.NoError(t, err)

		_, err = Decode(script[:len(script)-2])
		require.ErrorIs(t, err, errs.ErrInvalidScript)
	})

	t.Run("TrailingGarbage", func(t *testing.T) {
		e, err := NewEmitter()
		require.NoError(t, err)
		require.NoError(t, e.BeginFrame(0, format.FrameKeyframe))
		require.NoError(t, e.EndFrame())
		script, err := e.Finish()
		require.NoError(t, err)

		_, err = Decode(append(script, 0xaa, 0xbb))
		require.ErrorIs(t, err, errs.ErrInvalidScript)
	})
}

// rawScript wraps a hand-built little-endian payload in a valid
// uncompressed header claiming frameCount frames.
func rawScript(frameCount uint32, payload []byte) []byte {
	script := append([]byte(MagicNumber), Version, uint8(format.CompressionNone))
	script = endian.GetLittleEndianEngine().AppendUint32(script, frameCount)

	return append(script, payload...)
}

func TestDecodeHostileCounts(t *testing.T) {
	// Counts are attacker-controlled; a tiny script claiming billions of
	// frames, commands, or pixels must fail validation instead of trying to
	// allocate for them.
	le := endian.GetLittleEndianEngine()

	t.Run("FrameCount", func(t *testing.T) {
		script := rawScript(math.MaxUint32, nil)
		require.NotPanics(t, func() {
			_, err := Decode(script)
			require.ErrorIs(t, err, errs.ErrInvalidScript)
		})
	})

	t.Run("CommandCount", func(t *testing.T) {
		w := NewWireWriter(le)
		defer w.Release()
		w.WriteUint32(0)                    // frame number
		w.WriteUint8(uint8(format.FrameKeyframe))
		w.WriteUint32(math.MaxUint32)       // command count
		script := rawScript(1, w.Bytes())

		require.NotPanics(t, func() {
			_, err := Decode(script)
			require.ErrorIs(t, err, errs.ErrInvalidScript)
		})
	})

	t.Run("PixelCount", func(t *testing.T) {
		w := NewWireWriter(le)
		defer w.Release()
		w.WriteUint32(0)
		w.WriteUint8(uint8(format.FrameDelta))
		w.WriteUint32(1) // one spawn command
		w.WriteUint8(uint8(CmdSpawn))
		require.NoError(t, w.WriteTag("r0000000000000000"))
		w.WriteUint32(0xff0000)        // color
		for i := 0; i < 5; i++ {
			w.WriteUvarint(0) // zIndex and bbox
		}
		w.WriteUvarint(1 << 62) // pixel count
		script := rawScript(1, w.Bytes())

		require.NotPanics(t, func() {
			_, err := Decode(script)
			require.ErrorIs(t, err, errs.ErrInvalidScript)
		})
	})
}

func TestWireTagRoundTrip(t *testing.T) {
	w := NewWireWriter(endian.GetLittleEndianEngine())
	require.NoError(t, w.WriteTag("region-1"))
	require.NoError(t, w.WriteTag("")) // empty tags are legal on the wire
	w.WriteUvarint(1 << 40)

	r := NewWireReader(endian.GetLittleEndianEngine(), w.Bytes())
	tag, err := r.ReadTag()
	require.NoError(t, err)
	require.Equal(t, "region-1", tag)

	tag, err = r.ReadTag()
	require.NoError(t, err)
	require.Empty(t, tag)

	v, err := r.ReadUvarint()
	require.NoError(t, err)
	require.Equal(t, uint64(1)<<40, v)
	require.Zero(t, r.Remaining())

	w.Release()
}
