package bitindex

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentity(t *testing.T) {
	for _, b := range []uint{1, 2, 3, 7, 8, 9, 10, 15, 16} {
		n := 37
		a := New(b, n)
		want := make([]uint32, n)
		mask := uint32(1)<<b - 1
		for i := 0; i < n; i++ {
			v := uint32(rand.Intn(1<<b)) & mask
			want[i] = v
			a.Set(i, v)
		}
		for i := 0; i < n; i++ {
			assert.Equal(t, want[i], a.Get(i), "b=%d i=%d", b, i)
		}
	}
}

func TestB10N1024BufferSize(t *testing.T) {
	a := New(10, 1024)
	assert.Equal(t, 1280, len(a.Bytes()))
}

func TestSetOverwritesNeighbours(t *testing.T) {
	a := New(10, 4)
	a.Set(0, 1023)
	a.Set(1, 0)
	a.Set(2, 512)
	assert.Equal(t, uint32(1023), a.Get(0))
	assert.Equal(t, uint32(0), a.Get(1))
	assert.Equal(t, uint32(512), a.Get(2))
}

func TestWrapReadsExistingBuffer(t *testing.T) {
	a := New(10, 1024)
	a.Set(5, 777)
	w := Wrap(a.Bytes(), 10, 1024)
	assert.Equal(t, uint32(777), w.Get(5))
}

func TestSetRejectsOverflow(t *testing.T) {
	a := New(4, 4)
	assert.Panics(t, func() { a.Set(0, 16) })
}
