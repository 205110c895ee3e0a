package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// DefaultLevel is the spec's canonical compression level.
const DefaultLevel = 3

// levelToSpeed maps the spec's [1,22] integer level range onto the pure-Go
// encoder's four discrete speed buckets, since klauspost/compress does not
// expose 22 distinct levels the way the reference ZSTD library does.
func levelToSpeed(level int) zstd.EncoderLevel {
	switch {
	case level <= 1:
		return zstd.SpeedFastest
	case level <= 6:
		return zstd.SpeedDefault
	case level <= 12:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

// ZstdCompressor implements Compressor with pooled klauspost/compress/zstd
// encoders and decoders; EncodeAll/DecodeAll are stateless so a pooled
// codec can be shared across concurrent callers without synchronisation
// beyond the pool itself.
type ZstdCompressor struct {
	level    int
	encoders sync.Pool
	decoders sync.Pool
}

// NewZstdCompressor builds a compressor at the given level; a level
// outside [1, 22] is replaced by DefaultLevel.
func NewZstdCompressor(level int) *ZstdCompressor {
	if level < 1 || level > 22 {
		level = DefaultLevel
	}
	z := &ZstdCompressor{level: level}
	speed := levelToSpeed(level)
	z.encoders.New = func() any {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(speed))
		if err != nil {
			panic(fmt.Sprintf("compress: failed to create zstd encoder: %v", err))
		}
		return enc
	}
	z.decoders.New = func() any {
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			panic(fmt.Sprintf("compress: failed to create zstd decoder: %v", err))
		}
		return dec
	}
	return z
}

// CompressBound returns srcLen + srcLen/255 + 16, used to pre-size the
// destination buffer. This is not the reference library's
// ZSTD_compressBound formula; Compress appends, so the buffer still grows
// if the output exceeds it.
func (z *ZstdCompressor) CompressBound(srcLen int) int {
	return srcLen + srcLen/255 + 16
}

// Compress appends the zstd-compressed form of src onto dst.
func (z *ZstdCompressor) Compress(dst, src []byte) ([]byte, error) {
	enc := z.encoders.Get().(*zstd.Encoder)
	defer z.encoders.Put(enc)
	return enc.EncodeAll(src, dst), nil
}

// Decompress appends the zstd-decompressed form of src onto dst. srcLen is
// the expected decompressed length; a mismatch is a corruption error
// surfaced by the caller, not by this method.
func (z *ZstdCompressor) Decompress(dst, src []byte, srcLen int) ([]byte, error) {
	dec := z.decoders.Get().(*zstd.Decoder)
	defer z.decoders.Put(dec)
	out, err := dec.DecodeAll(src, dst)
	if err != nil {
		return nil, fmt.Errorf("compress: zstd decode failed: %w", err)
	}
	return out, nil
}
