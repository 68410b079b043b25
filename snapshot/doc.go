// Package snapshot encodes analysis outputs into a compact, self-describing
// binary form.
//
// A snapshot holds the growth-rate results, the AUC rows and the mean/sd
// summary of one analysis. It is the payload format of the cache package and
// the only byte format the module defines.
//
// # Layout
//
// Every snapshot starts with an 8-byte header:
//
//	offset  size  field
//	0       4     magic "ODYS"
//	4       1     format version (currently 1)
//	5       1     flags (bit 0: body is big-endian; other bits reserved)
//	6       1     compress.CompressionType of the body
//	7       1     reserved, must be zero
//
// The header is followed by the compressed body. The body stores each of the
// three tables as a uvarint row count followed by the rows. Strings are
// uvarint length-prefixed, integers are zigzag varints and floats are their
// fixed-width IEEE-754 bits in the byte order recorded in the header, so NaN
// values round trip unchanged.
//
// # Usage
//
//	data, err := snapshot.Encode(&snapshot.Snapshot{Results: results, AUCs: aucs},
//	    snapshot.WithCompression(compress.CompressionS2),
//	)
//	if err != nil {
//	    return err
//	}
//
//	snap, err := snapshot.Decode(data)
//
// Decode never trusts the input: a wrong magic, an unknown version or codec,
// set reserved bits and truncated or oversized rows all return errors wrapping
// the sentinels in this package.
package snapshot
