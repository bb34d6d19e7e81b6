// Package compress provides compression and decompression codecs for blockcast
// scene-script payloads.
//
// A scene script is a binary stream of spawn/kill commands whose pixel
// coordinate runs are highly repetitive (varint deltas over mostly-contiguous
// regions), so general-purpose compression on top of the wire encoding
// typically shrinks keyframe payloads by another 2-5x. The script header is
// never compressed; only the frame payload that follows it is.
//
// # Architecture
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// # Supported Algorithms
//
//   - None (format.CompressionNone): pass-through, zero overhead. Use for
//     debugging scripts with a hex viewer or when the transport compresses.
//   - Zstd (format.CompressionZstd): best ratio, moderate speed. The default
//     for scripts written to disk. Built on klauspost/compress/zstd; a cgo
//     variant backed by valyala/gozstd is selected by the build tag
//     blockcast_cgo_zstd.
//   - S2 (format.CompressionS2): balanced ratio and speed, good for live
//     streaming of delta frames.
//   - LZ4 (format.CompressionLZ4): fastest decompression, for consumers that
//     decode scripts on every rendered frame.
//
// # Thread Safety
//
// All codec implementations are stateless values or use internal pooling and
// are safe for concurrent use.
package compress
