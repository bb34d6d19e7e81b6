package compress

// ZstdCompressor provides Zstandard compression for scene-script payloads.
//
// Zstd is the default codec for scripts persisted to disk: keyframe payloads
// carry long runs of near-identical spawn commands that compress 3-5x, and
// the consumer decompresses each script only once at load time.
//
// Two implementations exist behind build tags:
//   - default: pure-Go klauspost/compress/zstd with pooled encoder/decoder
//   - blockcast_cgo_zstd: valyala/gozstd bindings to libzstd, for hosts where
//     the native library outruns the pure-Go one on large keyframes
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
