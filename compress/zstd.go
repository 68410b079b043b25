package compress

// ZstdCompressor provides Zstandard compression for snapshot bodies.
//
// Zstd gives the best ratio of the built-in codecs and is the default for
// cached analyses, whose float columns and repeated treatment names compress
// well.
//
// The pure-Go implementation (klauspost/compress) is used unless the module
// is built with cgo and the gozstd build tag, which switches to the libzstd
// binding.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
//
// Example:
//
//	compressor := NewZstdCompressor()
//	compressed, err := compressor.Compress(body)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
