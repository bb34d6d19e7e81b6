package emit

import (
	"encoding/binary"
	"fmt"

	"github.com/quarda/blockcast/endian"
	"github.com/quarda/blockcast/errs"
	"github.com/quarda/blockcast/internal/pool"
)

// MaxTagLen is the longest tag the wire format can carry; tags are
// uint8-length-prefixed.
const MaxTagLen = 255

// WireWriter appends scene-script primitives to a pooled byte buffer using a
// configurable byte order. Call Release when done to return the buffer to
// the pool.
type WireWriter struct {
	engine endian.EndianEngine
	buf    *pool.ByteBuffer
}

// NewWireWriter creates a writer backed by a pooled script buffer.
func NewWireWriter(engine endian.EndianEngine) *WireWriter {
	return &WireWriter{
		engine: engine,
		buf:    pool.GetScriptBuffer(),
	}
}

// Bytes returns the accumulated bytes. The slice is only valid until the
// next write or Release.
func (w *WireWriter) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written so far.
func (w *WireWriter) Len() int {
	return w.buf.Len()
}

// Release returns the underlying buffer to the pool. The writer must not be
// used afterwards.
func (w *WireWriter) Release() {
	pool.PutScriptBuffer(w.buf)
	w.buf = nil
}

// WriteUint8 appends a single byte.
func (w *WireWriter) WriteUint8(v uint8) {
	w.buf.B = append(w.buf.B, v)
}

// WriteUint32 appends a fixed-width uint32 in the writer's byte order.
func (w *WireWriter) WriteUint32(v uint32) {
	w.buf.B = w.engine.AppendUint32(w.buf.B, v)
}

// WriteUvarint appends an unsigned varint.
func (w *WireWriter) WriteUvarint(v uint64) {
	w.buf.B = binary.AppendUvarint(w.buf.B, v)
}

// WriteBytes appends raw bytes.
func (w *WireWriter) WriteBytes(data []byte) {
	w.buf.B = append(w.buf.B, data...)
}

// WriteTag appends a uint8-length-prefixed string.
func (w *WireWriter) WriteTag(tag string) error {
	if len(tag) > MaxTagLen {
		return fmt.Errorf("%w: %d bytes", errs.ErrTagTooLong, len(tag))
	}
	w.buf.B = append(w.buf.B, uint8(len(tag)))
	w.buf.B = append(w.buf.B, tag...)

	return nil
}

// PatchUint32 overwrites a previously written uint32 at the given offset.
// Used to backfill per-frame command counts once a frame is closed.
func (w *WireWriter) PatchUint32(offset int, v uint32) {
	w.engine.PutUint32(w.buf.B[offset:offset+4], v)
}

// WireReader consumes scene-script primitives from a byte slice. All read
// failures wrap errs.ErrInvalidScript.
type WireReader struct {
	engine endian.EndianEngine
	data   []byte
	off    int
}

// NewWireReader creates a reader over data using the given byte order.
func NewWireReader(engine endian.EndianEngine, data []byte) *WireReader {
	return &WireReader{engine: engine, data: data}
}

// Remaining returns the number of unread bytes.
func (r *WireReader) Remaining() int {
	return len(r.data) - r.off
}

// ReadUint8 consumes a single byte.
func (r *WireReader) ReadUint8() (uint8, error) {
	if r.Remaining() < 1 {
		return 0, fmt.Errorf("%w: truncated at byte %d", errs.ErrInvalidScript, r.off)
	}
	v := r.data[r.off]
	r.off++

	return v, nil
}

// ReadUint32 consumes a fixed-width uint32 in the reader's byte order.
func (r *WireReader) ReadUint32() (uint32, error) {
	if r.Remaining() < 4 {
		return 0, fmt.Errorf("%w: truncated at byte %d", errs.ErrInvalidScript, r.off)
	}
	v := r.engine.Uint32(r.data[r.off : r.off+4])
	r.off += 4

	return v, nil
}

// ReadUvarint consumes an unsigned varint.
func (r *WireReader) ReadUvarint() (uint64, error) {
	v, n := binary.Uvarint(r.data[r.off:])
	if n <= 0 {
		return 0, fmt.Errorf("%w: bad varint at byte %d", errs.ErrInvalidScript, r.off)
	}
	r.off += n

	return v, nil
}

// ReadTag consumes a uint8-length-prefixed string.
func (r *WireReader) ReadTag() (string, error) {
	n, err := r.ReadUint8()
	if err != nil {
		return "", err
	}
	if r.Remaining() < int(n) {
		return "", fmt.Errorf("%w: truncated tag at byte %d", errs.ErrInvalidScript, r.off)
	}
	tag := string(r.data[r.off : r.off+int(n)])
	r.off += int(n)

	return tag, nil
}
