package palette2d

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeightRoundTripCheckerboard(t *testing.T) {
	heights := []uint16{60, 64, 72}
	values := make([]uint16, Cells)
	for z := 0; z < Width; z++ {
		for x := 0; x < Width; x++ {
			values[x+Width*z] = heights[(x+z)%len(heights)]
		}
	}

	grid := NewHeightGrid(values)
	payload := grid.Serialise()

	assert.Equal(t, uint16(3), leU16(payload[0:2]))
	packedLen := leU32(payload[2+3*2 : 2+3*2+4])
	assert.Equal(t, 1280, int(packedLen))

	decoded := DeserialiseHeightGrid(payload)
	for z := 0; z < Width; z++ {
		for x := 0; x < Width; x++ {
			assert.Equal(t, values[x+Width*z], decoded.Get(x, z))
		}
	}
}

func TestTintRoundTrip(t *testing.T) {
	values := make([]uint32, Cells)
	for i := range values {
		values[i] = uint32(i%5) * 0x010101
	}
	grid := NewTintGrid(values)
	payload := grid.Serialise()
	decoded := DeserialiseTintGrid(payload)
	for z := 0; z < Width; z++ {
		for x := 0; x < Width; x++ {
			assert.Equal(t, values[x+Width*z], decoded.Get(x, z))
		}
	}
}

func TestTintRGBDecode(t *testing.T) {
	v := uint32(0x10<<16 | 0x20<<8 | 0x30)
	r, g, b := RGB(v)
	assert.Equal(t, uint8(0x10), r)
	assert.Equal(t, uint8(0x20), g)
	assert.Equal(t, uint8(0x30), b)
}

func TestSetMutatesLiveGrid(t *testing.T) {
	values := make([]uint16, Cells)
	grid := NewHeightGrid(values)
	grid.Set(3, 4, 99)
	assert.Equal(t, uint16(99), grid.Get(3, 4))

	payload := grid.Serialise()
	decoded := DeserialiseHeightGrid(payload)
	assert.Equal(t, uint16(99), decoded.Get(3, 4))
	assert.Equal(t, uint16(0), decoded.Get(0, 0))
}

func TestFullCapacityGridRoundTrips(t *testing.T) {
	// Cells == maxPaletteSize, so a grid with every cell distinct sits
	// exactly at the palette ceiling; it must still serialise cleanly.
	values := make([]uint16, Cells)
	for i := range values {
		values[i] = uint16(i)
	}
	grid := NewHeightGrid(values)
	payload := grid.Serialise()
	decoded := DeserialiseHeightGrid(payload)
	for i := range values {
		assert.Equal(t, values[i], decoded.Get(i%Width, i/Width))
	}
}

func leU16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func leU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
