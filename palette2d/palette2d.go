// Package palette2d implements the dictionary-compressed 32x32 grid codec
// used for the heightmap and biome-tint layers carried in a chunk column's
// block-chunk data, alongside its sections. Both variants share the same bit-packed index layout (B=10,
// N=1024) and little-endian framing; they differ only in entry width and
// interpretation.
//
// In memory a grid keeps a plain dense array of its Cells values as the
// source of truth: Get/Set read and write it directly, and Serialise
// rebuilds the insertion-ordered palette and the BPI from whatever values
// are live at that moment. This gives recompaction (spec §4.2: "walk the
// live grid, rebuild palette retaining only values actually referenced")
// for free — every Serialise call is already a from-scratch rebuild.
package palette2d

import (
	"encoding/binary"

	"github.com/hytale-tools/hytalestore/bitindex"
	"github.com/hytale-tools/hytalestore/errs"
)

const (
	// Width is the grid's side length; flat index is x + Width*z.
	Width = 32
	// Cells is Width*Width, the number of addressable grid positions.
	Cells = Width * Width
	// maxPaletteSize is the hard ceiling on distinct values: the smaller
	// of the BPI's addressable space (2^10) and the int16 range.
	maxPaletteSize = 1024
)

func flatIndex(x, z int) int {
	return (x & (Width - 1)) + Width*(z&(Width-1))
}

// grid32 is the shared dense-array core both HeightGrid and TintGrid
// build on; it is not exported, callers only see the typed wrappers.
type grid32 struct {
	values [Cells]uint32
}

func (g *grid32) get(x, z int) uint32 {
	return g.values[flatIndex(x, z)]
}

func (g *grid32) set(x, z int, v uint32) {
	g.values[flatIndex(x, z)] = v
}

// build assigns 10-bit indices to the distinct values currently present,
// in first-seen (stable insertion) order, and packs them into a BPI.
func (g *grid32) build() (entries []uint32, bpi *bitindex.Array) {
	index := make(map[uint32]uint16, 64)
	bpi = bitindex.New(10, Cells)
	for pos, v := range g.values {
		idx, ok := index[v]
		if !ok {
			errs.CondPanic(len(entries) >= maxPaletteSize, errs.ErrPalette2DFull)
			idx = uint16(len(entries))
			index[v] = idx
			entries = append(entries, v)
		}
		bpi.Set(pos, uint32(idx))
	}
	return entries, bpi
}

func decodeGrid32(buf []byte, entryWidth int) (*grid32, int) {
	count := int(binary.LittleEndian.Uint16(buf[0:2]))
	off := 2
	entries := make([]uint32, count)
	for i := 0; i < count; i++ {
		switch entryWidth {
		case 2:
			entries[i] = uint32(binary.LittleEndian.Uint16(buf[off : off+2]))
			off += 2
		case 4:
			entries[i] = binary.LittleEndian.Uint32(buf[off : off+4])
			off += 4
		}
	}
	packedLen := int(binary.LittleEndian.Uint32(buf[off : off+4]))
	off += 4
	packed := buf[off : off+packedLen]
	off += packedLen

	bpi := bitindex.Wrap(packed, 10, Cells)
	g := &grid32{}
	for pos := 0; pos < Cells; pos++ {
		idx := bpi.Get(pos)
		errs.CondPanic(int(idx) >= len(entries), errs.ErrCorruptBlob)
		g.values[pos] = entries[idx]
	}
	return g, off
}

func encodeGrid32(g *grid32, entryWidth int) []byte {
	entries, bpi := g.build()
	packed := bpi.Bytes()
	size := 2 + len(entries)*entryWidth + 4 + len(packed)
	buf := make([]byte, size)

	binary.LittleEndian.PutUint16(buf[0:2], uint16(len(entries)))
	off := 2
	for _, v := range entries {
		switch entryWidth {
		case 2:
			binary.LittleEndian.PutUint16(buf[off:off+2], uint16(v))
			off += 2
		case 4:
			binary.LittleEndian.PutUint32(buf[off:off+4], v)
			off += 4
		}
	}
	binary.LittleEndian.PutUint32(buf[off:off+4], uint32(len(packed)))
	off += 4
	copy(buf[off:], packed)
	return buf
}

// HeightGrid is the P2D<short> variant used for heightmaps.
type HeightGrid struct{ g grid32 }

// NewHeightGrid builds a HeightGrid from a dense row-major 32x32 array
// addressed as values[x + 32*z].
func NewHeightGrid(values []uint16) *HeightGrid {
	errs.CondPanic(len(values) != Cells, errs.ErrCorruptBlob)
	h := &HeightGrid{}
	for i, v := range values {
		h.g.values[i] = uint32(v)
	}
	return h
}

// DeserialiseHeightGrid parses a P2D<short> payload as framed in spec §3.
func DeserialiseHeightGrid(buf []byte) *HeightGrid {
	g, _ := decodeGrid32(buf, 2)
	return &HeightGrid{g: *g}
}

// Serialise emits the P2D<short> payload, recompacting the palette to
// only values currently referenced by the grid.
func (h *HeightGrid) Serialise() []byte { return encodeGrid32(&h.g, 2) }

// Get returns the height at (x, z).
func (h *HeightGrid) Get(x, z int) uint16 { return uint16(h.g.get(x, z)) }

// Set stores a height at (x, z).
func (h *HeightGrid) Set(x, z int, v uint16) { h.g.set(x, z, uint32(v)) }

// TintGrid is the P2D<int> variant used for biome tints, each palette
// entry a packed 24-bit RGB value.
type TintGrid struct{ g grid32 }

// NewTintGrid builds a TintGrid from a dense row-major 32x32 array of
// 24-bit RGB values packed as (R<<16)|(G<<8)|B.
func NewTintGrid(values []uint32) *TintGrid {
	errs.CondPanic(len(values) != Cells, errs.ErrCorruptBlob)
	t := &TintGrid{}
	copy(t.g.values[:], values)
	return t
}

// DeserialiseTintGrid parses a P2D<int> payload.
func DeserialiseTintGrid(buf []byte) *TintGrid {
	g, _ := decodeGrid32(buf, 4)
	return &TintGrid{g: *g}
}

// Serialise emits the P2D<int> payload, recompacting the palette to only
// values currently referenced by the grid.
func (t *TintGrid) Serialise() []byte { return encodeGrid32(&t.g, 4) }

// Get returns the packed 24-bit RGB tint at (x, z).
func (t *TintGrid) Get(x, z int) uint32 { return t.g.get(x, z) }

// Set stores a packed 24-bit RGB tint at (x, z).
func (t *TintGrid) Set(x, z int, v uint32) { t.g.set(x, z, v) }

// RGB decodes a packed tint value into its red, green, and blue channels.
func RGB(v uint32) (r, g, b uint8) {
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}
