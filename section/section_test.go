package section

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsEmptyAllAir(t *testing.T) {
	s := New()
	assert.Equal(t, TagEmpty, s.Tag())
	assert.Equal(t, AirName, s.Get(0, 0, 0))
	assert.Equal(t, AirName, s.Get(31, 31, 31))
}

func TestSerialiseDeserialiseIdentity(t *testing.T) {
	s := New()
	s.Set(1, 2, 3, "Stone")
	s.Set(4, 5, 6, "Dirt")
	s.Set(7, 8, 9, "Stone")

	buf := s.Serialise()
	got := Deserialise(buf)

	for _, p := range [][3]int{{0, 0, 0}, {1, 2, 3}, {4, 5, 6}, {7, 8, 9}} {
		assert.Equal(t, s.Get(p[0], p[1], p[2]), got.Get(p[0], p[1], p[2]))
	}
	assert.Equal(t, s.Tag(), got.Tag())
}

// Spec end-to-end scenario: a section half air and half a single other
// block name promotes to HalfByte, with a 16384-byte voxel array.
func TestHalfAirHalfStoneIsHalfByte(t *testing.T) {
	s := New()
	for y := 0; y < Side; y++ {
		for z := 0; z < Side; z++ {
			for x := 0; x < Side; x++ {
				if FlatIndex(x, y, z)%2 == 0 {
					s.Set(x, y, z, "Stone")
				}
			}
		}
	}
	assert.Equal(t, TagHalfByte, s.Tag())

	buf := s.Serialise()
	assert.Equal(t, byte(TagHalfByte), buf[4])
	got := Deserialise(buf)
	assert.Equal(t, 16384, len(got.voxels))

	assert.Equal(t, "Stone", got.Get(0, 0, 0))
	assert.Equal(t, AirName, got.Get(1, 0, 0))
}

// Spec end-to-end scenario: Air plus 15 other names fill HalfByte's 16
// internal IDs; introducing a 17th distinct block name forces promotion
// from HalfByte to Byte, with existing voxel mappings preserved.
func TestSeventeenDistinctNamesPromotesToByte(t *testing.T) {
	s := New()
	names := make([]string, 15)
	for i := 0; i < 15; i++ {
		names[i] = fmt.Sprintf("Block%d", i)
		s.Set(i, 0, 0, names[i])
	}
	assert.Equal(t, TagHalfByte, s.Tag())

	before := make([]string, 15)
	for i := 0; i < 15; i++ {
		before[i] = s.Get(i, 0, 0)
	}

	s.Set(15, 0, 0, "Block15")
	assert.Equal(t, TagByte, s.Tag())
	assert.Equal(t, 32768, len(s.voxels))

	for i := 0; i < 15; i++ {
		assert.Equal(t, before[i], s.Get(i, 0, 0))
	}
	assert.Equal(t, "Block15", s.Get(15, 0, 0))
}

func TestPromotesToShortPastByteCapacity(t *testing.T) {
	s := New()
	for i := 0; i < 300; i++ {
		s.Set(i%Side, (i/Side)%Side, i/(Side*Side), fmt.Sprintf("Block%d", i))
	}
	assert.Equal(t, TagShort, s.Tag())
	assert.Equal(t, 65536, len(s.voxels))
}

func TestCompactDemotesAfterRemovingNames(t *testing.T) {
	s := New()
	for i := 0; i < 20; i++ {
		s.Set(i%Side, 0, 0, fmt.Sprintf("Block%d", i))
	}
	assert.Equal(t, TagByte, s.Tag())

	// Overwrite everything but one distinct name back to air, leaving only
	// Air and Block0 live.
	for i := 1; i < 20; i++ {
		s.Set(i%Side, 0, 0, AirName)
	}
	s.Compact()

	assert.Equal(t, TagHalfByte, s.Tag())
	assert.Equal(t, "Block0", s.Get(0, 0, 0))
	assert.Equal(t, AirName, s.Get(1, 0, 0))
}

func TestCompactReturnsToEmptyWhenAllAir(t *testing.T) {
	s := New()
	s.Set(0, 0, 0, "Stone")
	assert.NotEqual(t, TagEmpty, s.Tag())

	s.Set(0, 0, 0, AirName)
	s.Compact()

	assert.Equal(t, TagEmpty, s.Tag())
	assert.Equal(t, AirName, s.Get(0, 0, 0))
}

func TestCompactKeepsHalfByteAtFourteenNames(t *testing.T) {
	s := New()
	for i := 0; i < 100; i++ {
		s.Set(i%Side, (i/Side)%Side, 0, fmt.Sprintf("Block%d", i%14))
	}
	assert.Equal(t, TagHalfByte, s.Tag())
	s.Compact()
	assert.Equal(t, TagHalfByte, s.Tag())
}

func TestHalfByteNibbleAddressingIsIndependent(t *testing.T) {
	s := New()
	s.Set(0, 0, 0, "A") // flat index 0, low nibble
	s.Set(1, 0, 0, "B") // flat index 1, high nibble of same byte
	assert.Equal(t, "A", s.Get(0, 0, 0))
	assert.Equal(t, "B", s.Get(1, 0, 0))
}

func TestGetOnCorruptIDReturnsMissingSentinel(t *testing.T) {
	s := New()
	s.Set(0, 0, 0, "Stone")
	delete(s.palette, s.names["Stone"])
	assert.Equal(t, MissingSentinel, s.Get(0, 0, 0))
}

func TestFlatIndexIsYMajor(t *testing.T) {
	assert.Equal(t, 0, FlatIndex(0, 0, 0))
	assert.Equal(t, 1, FlatIndex(1, 0, 0))
	assert.Equal(t, Side, FlatIndex(0, 0, 1))
	assert.Equal(t, Side*Side, FlatIndex(0, 1, 0))
}
