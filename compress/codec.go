package compress

import (
	"fmt"

	"github.com/quarda/blockcast/errs"
	"github.com/quarda/blockcast/format"
)

// Compressor compresses scene-script frame payloads.
//
// The input is a complete wire-encoded payload (everything after the script
// header). Implementations must not modify the input slice; the returned
// slice is owned by the caller.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a payload previously produced by the matching
// Compressor.
//
// Implementations validate the data format and return an error if the data
// is corrupted or was compressed with an incompatible algorithm. The returned
// slice is owned by the caller.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
//
// Script writers use the Compressor side, script readers the Decompressor
// side; implementations that share internal state across both satisfy Codec.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the built-in Codec for the specified compression type.
//
// Codecs are shared instances; they pool their internal encoder and
// decoder state and are safe for concurrent use. Unknown types return
// errs.ErrInvalidCompression.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrInvalidCompression, compressionType)
}
