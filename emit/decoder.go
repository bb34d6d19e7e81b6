package emit

import (
	"bytes"
	"fmt"

	"github.com/quarda/blockcast/compress"
	"github.com/quarda/blockcast/endian"
	"github.com/quarda/blockcast/errs"
	"github.com/quarda/blockcast/format"
	"github.com/quarda/blockcast/raster"
)

// Frame is one decoded frame of a scene script.
type Frame struct {
	Number   uint32
	Type     format.FrameType
	Commands []Command
}

// Script is a fully decoded scene script.
type Script struct {
	Version     uint8
	Compression format.CompressionType
	BigEndian   bool
	Frames      []Frame
}

// Decode parses a complete scene script. All structural failures wrap
// errs.ErrInvalidScript; payload corruption surfaces as the codec's
// decompression error.
func Decode(data []byte) (*Script, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, want header of %d", errs.ErrInvalidScript, len(data), HeaderSize)
	}
	if !bytes.Equal(data[:4], []byte(MagicNumber)) {
		return nil, fmt.Errorf("%w: bad magic %q", errs.ErrInvalidScript, data[:4])
	}
	version := data[4]
	if version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", errs.ErrInvalidScript, version)
	}

	flag := data[5]
	s := &Script{
		Version:     version,
		Compression: format.CompressionType(flag & flagCompressionMask),
		BigEndian:   flag&flagBigEndian != 0,
	}

	engine := endian.GetLittleEndianEngine()
	if s.BigEndian {
		engine = endian.GetBigEndianEngine()
	}
	frameCount := engine.Uint32(data[6:HeaderSize])

	codec, err := compress.GetCodec(s.Compression)
	if err != nil {
		return nil, err
	}
	payload, err := codec.Decompress(data[HeaderSize:])
	if err != nil {
		return nil, err
	}

	// Counts come from untrusted input; bound them by the bytes actually
	// present before allocating. The smallest frame is number + type +
	// command count.
	const minFrameSize = 9
	if uint64(frameCount)*minFrameSize > uint64(len(payload)) {
		return nil, fmt.Errorf("%w: frame count %d exceeds %d payload bytes",
			errs.ErrInvalidScript, frameCount, len(payload))
	}

	r := NewWireReader(engine, payload)
	s.Frames = make([]Frame, 0, frameCount)
	for i := uint32(0); i < frameCount; i++ {
		frame, err := decodeFrame(r)
		if err != nil {
			return nil, err
		}
		s.Frames = append(s.Frames, frame)
	}
	if r.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", errs.ErrInvalidScript, r.Remaining())
	}

	return s, nil
}

func decodeFrame(r *WireReader) (Frame, error) {
	var f Frame

	number, err := r.ReadUint32()
	if err != nil {
		return f, err
	}
	ftype, err := r.ReadUint8()
	if err != nil {
		return f, err
	}
	cmdCount, err := r.ReadUint32()
	if err != nil {
		return f, err
	}

	// Every command carries at least its opcode byte.
	if uint64(cmdCount) > uint64(r.Remaining()) {
		return f, fmt.Errorf("%w: command count %d exceeds %d remaining bytes",
			errs.ErrInvalidScript, cmdCount, r.Remaining())
	}

	f.Number = number
	f.Type = format.FrameType(ftype)
	f.Commands = make([]Command, 0, cmdCount)
	for i := uint32(0); i < cmdCount; i++ {
		cmd, err := decodeCommand(r)
		if err != nil {
			return f, err
		}
		f.Commands = append(f.Commands, cmd)
	}

	return f, nil
}

func decodeCommand(r *WireReader) (Command, error) {
	var cmd Command

	op, err := r.ReadUint8()
	if err != nil {
		return cmd, err
	}
	cmd.Op = Opcode(op)

	switch cmd.Op {
	case CmdClear:
		return cmd, nil

	case CmdKill:
		cmd.Tag, err = r.ReadTag()
		return cmd, err

	case CmdSpawn:
		return decodeSpawn(r, cmd)

	default:
		return cmd, fmt.Errorf("%w: unknown opcode 0x%x", errs.ErrInvalidScript, op)
	}
}

func decodeSpawn(r *WireReader, cmd Command) (Command, error) {
	var err error
	if cmd.Tag, err = r.ReadTag(); err != nil {
		return cmd, err
	}

	color, err := r.ReadUint32()
	if err != nil {
		return cmd, err
	}
	cmd.Color = raster.Color(color)

	fields := []*int{&cmd.ZIndex, &cmd.MinX, &cmd.MinY, &cmd.MaxX, &cmd.MaxY}
	for _, field := range fields {
		v, err := r.ReadUvarint()
		if err != nil {
			return cmd, err
		}
		*field = int(v)
	}

	count, err := r.ReadUvarint()
	if err != nil {
		return cmd, err
	}
	// Every pixel delta occupies at least one varint byte.
	if count > uint64(r.Remaining()) {
		return cmd, fmt.Errorf("%w: pixel count %d exceeds %d remaining bytes",
			errs.ErrInvalidScript, count, r.Remaining())
	}

	cmd.Pixels = make([]raster.Coord, 0, count)
	acc := uint64(0)
	for i := uint64(0); i < count; i++ {
		delta, err := r.ReadUvarint()
		if err != nil {
			return cmd, err
		}
		if i == 0 {
			acc = delta
		} else {
			acc += delta
		}
		cmd.Pixels = append(cmd.Pixels, raster.Coord(acc))
	}

	return cmd, nil
}
