// Package compress declares the byte-buffer compressor contract the region
// package consumes, plus a concrete Zstandard implementation.
package compress

// Compressor is the collaborator contract consumed by region.Region for
// blob payload compression. It is deliberately narrow: the region format
// does not depend on any codec-specific detail beyond bound/compress/
// decompress.
type Compressor interface {
	// CompressBound returns an upper bound on the compressed size of a
	// srcLen-byte input, for pre-sizing a destination buffer.
	CompressBound(srcLen int) int
	// Compress appends the compressed form of src to dst and returns the
	// resulting slice.
	Compress(dst, src []byte) (out []byte, err error)
	// Decompress appends the decompressed form of src, whose decompressed
	// length is srcLen, to dst and returns the resulting slice.
	Decompress(dst, src []byte, srcLen int) ([]byte, error)
}
