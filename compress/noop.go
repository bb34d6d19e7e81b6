package compress

// NoOpCompressor is a pass-through codec that bypasses data without compression.
//
// Useful when inspecting scripts with external tooling, when the transport
// layer already compresses, or as a baseline in benchmarks.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation compressor that bypasses data.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns the input data directly without copying.
//
// The returned slice shares the same underlying memory as the input; callers
// must not modify the input afterwards if they use the returned slice.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns the input data directly without copying.
//
// The returned slice shares the same underlying memory as the input; callers
// must not modify the input afterwards if they use the returned slice.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
