package region

import (
	"github.com/hytale-tools/hytalestore/errs"
	"github.com/hytale-tools/hytalestore/palette2d"
	"github.com/hytale-tools/hytalestore/section"
)

// ChunkColumn is the conventional document shape produced by decoding a
// blob payload: ten vertical sections plus the little-endian block-chunk
// fields (needsPhysics, heightmap, tint) carried alongside them. Each
// section carries a block palette (Sections) and, structurally parallel
// to it, a fluid palette (FluidPalette) under the same SP framing.
type ChunkColumn struct {
	NeedsPhysics  bool
	Sections      [10]*section.Section
	FluidPalette  [10]*section.Section
	HeightPalette *palette2d.HeightGrid
	TintPalette   *palette2d.TintGrid
}

// DocumentDecoder is the external collaborator contract for turning a
// decompressed blob payload into a ChunkColumn. No BSON implementation is
// provided here; this is an interface boundary only, matching the
// document decoder's explicit out-of-scope status.
type DocumentDecoder interface {
	Decode(blob []byte) (ChunkColumn, error)
}

// ReadChunk reads and decodes the chunk column stored at k, consulting
// (and populating) the decoded-object cache when one is configured. The
// cache is a pure memoization layer: a miss always falls back to
// ReadBlob plus Decoder.Decode, and a cached entry can never outlive the
// blob it was parsed from because WriteBlob/RemoveBlob invalidate it by
// key on every successful call.
func (r *Region) ReadChunk(k uint32) (ChunkColumn, bool, error) {
	errs.CondPanic(r.decoder == nil, errs.ErrNoDecoder)

	if r.cache != nil {
		if v := r.cache.Get(k); v != nil {
			if doc, ok := v.(ChunkColumn); ok {
				return doc, true, nil
			}
		}
	}

	raw, ok, err := r.ReadBlob(k)
	if err != nil || !ok {
		return ChunkColumn{}, ok, err
	}

	doc, err := r.decoder.Decode(raw)
	if err != nil {
		return ChunkColumn{}, false, err
	}

	if r.cache != nil {
		r.cache.Put(k, doc)
	}
	return doc, true, nil
}
