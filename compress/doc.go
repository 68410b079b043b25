// Package compress provides the codecs that compress encoded analysis
// snapshots.
//
// # Overview
//
// A snapshot is written in two stages:
//
//  1. **Encoding**: the snapshot package lays results out as varints,
//     length-prefixed strings and fixed-width float64 columns
//  2. **Compression**: the encoded body is compressed by one of the codecs
//     in this package
//
// The codec is recorded in the snapshot header as a CompressionType byte, so
// a reader always knows how to decompress a body regardless of how the writer
// was configured.
//
// # Supported Algorithms
//
//   - CompressionNone: no compression, the body is stored as-is
//   - CompressionZstd: best ratio, the default for cached analyses
//   - CompressionS2: fast with a moderate ratio
//   - CompressionLZ4: fastest decompression
//
// Built-in codecs are stateless values backed by pooled encoders and are safe
// for concurrent use:
//
//	codec, err := compress.GetCodec(compress.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	compressed, err := codec.Compress(body)
//
// CompressWithStats also reports the compression ratio, which the cache logs
// when it stores a snapshot.
//
// # Build tags
//
// Zstd uses the pure-Go klauspost/compress implementation by default. Building
// with cgo and the gozstd tag switches to the libzstd binding:
//
//	go build -tags gozstd ./...
//
// Both produce standard Zstandard frames and can read each other's output.
package compress
