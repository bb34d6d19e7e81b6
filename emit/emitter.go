package emit

import (
	"fmt"

	"github.com/quarda/blockcast/compress"
	"github.com/quarda/blockcast/endian"
	"github.com/quarda/blockcast/errs"
	"github.com/quarda/blockcast/format"
	"github.com/quarda/blockcast/internal/options"
	"github.com/quarda/blockcast/segment"
)

const (
	// MagicNumber identifies a blockcast scene script.
	MagicNumber = "BCSC"
	// Version is the current script format version.
	Version uint8 = 1
	// HeaderSize is the fixed byte size of the uncompressed header.
	HeaderSize = 10

	flagBigEndian       = 0x80
	flagCompressionMask = 0x0f
)

// Emitter builds one scene script. Frames are appended in order with
// BeginFrame/Spawn/Kill/EndFrame; Finish compresses the payload and returns
// the complete script.
//
// The emitter is sticky on error: after any call fails, subsequent calls
// return the same error and Finish reports it. Not safe for concurrent use.
type Emitter struct {
	engine      endian.EndianEngine
	compression format.CompressionType

	w          *WireWriter
	frameCount uint32
	inFrame    bool
	cmdCount   uint32
	countPos   int
	err        error
}

// Option represents a functional option for configuring the Emitter.
type Option = options.Option[*Emitter]

// WithCompression sets the payload compression type (default None). The
// type is validated against the built-in codecs.
func WithCompression(ct format.CompressionType) Option {
	return options.New(func(e *Emitter) error {
		if _, err := compress.GetCodec(ct); err != nil {
			return err
		}
		e.compression = ct

		return nil
	})
}

// WithLittleEndian encodes fixed-width integers little-endian (the default).
func WithLittleEndian() Option {
	return options.NoError(func(e *Emitter) {
		e.engine = endian.GetLittleEndianEngine()
	})
}

// WithBigEndian encodes fixed-width integers big-endian, for consumers that
// expect network byte order.
func WithBigEndian() Option {
	return options.NoError(func(e *Emitter) {
		e.engine = endian.GetBigEndianEngine()
	})
}

// NewEmitter creates an Emitter with the given options.
func NewEmitter(opts ...Option) (*Emitter, error) {
	e := &Emitter{
		engine:      endian.GetLittleEndianEngine(),
		compression: format.CompressionNone,
	}
	if err := options.Apply(e, opts...); err != nil {
		return nil, err
	}
	e.w = NewWireWriter(e.engine)

	return e, nil
}

// BeginFrame opens a frame. Keyframes automatically lead with CmdClear so
// the consumer discards everything drawn before them.
func (e *Emitter) BeginFrame(number int, ftype format.FrameType) error {
	if e.err != nil {
		return e.err
	}
	if e.inFrame {
		return e.fail(fmt.Errorf("%w: BeginFrame inside open frame %d", errs.ErrInvalidScript, number))
	}

	e.inFrame = true
	e.cmdCount = 0
	e.w.WriteUint32(uint32(number))
	e.w.WriteUint8(uint8(ftype))
	e.countPos = e.w.Len()
	e.w.WriteUint32(0) // patched by EndFrame

	if ftype == format.FrameKeyframe {
		e.w.WriteUint8(uint8(CmdClear))
		e.cmdCount++
	}

	return nil
}

// Spawn appends a draw command for one region.
func (e *Emitter) Spawn(tag string, b *segment.Block) error {
	if e.err != nil {
		return e.err
	}
	if !e.inFrame {
		return e.fail(fmt.Errorf("%w: Spawn outside frame", errs.ErrInvalidScript))
	}

	e.w.WriteUint8(uint8(CmdSpawn))
	if err := e.w.WriteTag(tag); err != nil {
		return e.fail(err)
	}
	e.w.WriteUint32(uint32(b.Color))
	e.w.WriteUvarint(uint64(b.ZIndex))
	e.w.WriteUvarint(uint64(b.MinX))
	e.w.WriteUvarint(uint64(b.MinY))
	e.w.WriteUvarint(uint64(b.MaxX))
	e.w.WriteUvarint(uint64(b.MaxY))

	coords := sortedCoords(b)
	e.w.WriteUvarint(uint64(len(coords)))
	prev := uint64(0)
	for i, c := range coords {
		if i == 0 {
			e.w.WriteUvarint(uint64(c))
		} else {
			e.w.WriteUvarint(uint64(c) - prev)
		}
		prev = uint64(c)
	}
	e.cmdCount++

	return nil
}

// Kill appends a drop command for a fully occluded region.
func (e *Emitter) Kill(tag string) error {
	if e.err != nil {
		return e.err
	}
	if !e.inFrame {
		return e.fail(fmt.Errorf("%w: Kill outside frame", errs.ErrInvalidScript))
	}

	e.w.WriteUint8(uint8(CmdKill))
	if err := e.w.WriteTag(tag); err != nil {
		return e.fail(err)
	}
	e.cmdCount++

	return nil
}

// EndFrame closes the open frame and backfills its command count.
func (e *Emitter) EndFrame() error {
	if e.err != nil {
		return e.err
	}
	if !e.inFrame {
		return e.fail(fmt.Errorf("%w: EndFrame without open frame", errs.ErrInvalidScript))
	}

	e.w.PatchUint32(e.countPos, e.cmdCount)
	e.inFrame = false
	e.frameCount++

	return nil
}

// Finish compresses the payload, prepends the header, and returns the
// complete script. The emitter's buffer is released; any later call on the
// emitter fails with errs.ErrInvalidScript.
func (e *Emitter) Finish() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.inFrame {
		return nil, e.fail(fmt.Errorf("%w: Finish with open frame", errs.ErrInvalidScript))
	}

	codec, err := compress.GetCodec(e.compression)
	if err != nil {
		return nil, e.fail(err)
	}
	payload, err := codec.Compress(e.w.Bytes())
	if err != nil {
		return nil, e.fail(err)
	}

	flag := uint8(e.compression) & flagCompressionMask
	if e.engine == endian.GetBigEndianEngine() {
		flag |= flagBigEndian
	}

	script := make([]byte, 0, HeaderSize+len(payload))
	script = append(script, MagicNumber...)
	script = append(script, Version, flag)
	script = e.engine.AppendUint32(script, e.frameCount)
	script = append(script, payload...)

	e.w.Release()
	e.w = nil
	// The buffer is gone; any further use reports a state error instead of
	// dereferencing the released writer.
	e.err = fmt.Errorf("%w: emitter already finished", errs.ErrInvalidScript)

	return script, nil
}

func (e *Emitter) fail(err error) error {
	e.err = err
	return err
}
