package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRUReplacerEvictsLeastRecentlyUsed(t *testing.T) {
	lru := NewLRUReplacer(5)
	for i := uint32(0); i < 5; i++ {
		lru.Put(i, i)
	}
	lru.Put(1, uint32(11))
	lru.Put(6, 6)

	assert.Nil(t, lru.Get(0))
	assert.Equal(t, uint32(11), lru.Get(1))
}

func TestSectionCacheMissReturnsNil(t *testing.T) {
	c := NewSectionCache(8)
	assert.Nil(t, c.Get(42))
}

func TestSectionCacheRoundTripsPutGet(t *testing.T) {
	c := NewSectionCache(8)
	c.Put(7, "decoded-section-7")
	assert.Equal(t, "decoded-section-7", c.Get(7))
}

func TestSectionCacheInvalidateClearsEntry(t *testing.T) {
	c := NewSectionCache(8)
	c.Put(7, "decoded-section-7")
	c.Invalidate(7)
	assert.Nil(t, c.Get(7))
}

func TestWinTinyLFURoundTripsAndOverwrites(t *testing.T) {
	w := NewWinTinyLFU(100)
	w.Put(1, "a")
	w.Put(2, "b")

	assert.Equal(t, "a", w.Get(1))
	assert.Equal(t, "b", w.Get(2))

	w.Put(1, "a-updated")
	assert.Equal(t, "a-updated", w.Get(1))
	assert.Nil(t, w.Get(999))
}

func TestWinTinyLFUWindowEvictionAdmitsIntoProbation(t *testing.T) {
	// capacity 200 gives a 2-entry window and plenty of probation room, so
	// the third insert evicts key 1 out of the window into probation.
	w := NewWinTinyLFU(200)
	w.Put(1, "a")
	w.Put(2, "b")
	w.Put(3, "c")

	node, ok := w.data[1]
	assert.True(t, ok)
	assert.Equal(t, PROBATION, node.status)

	w.Get(1)
	assert.Equal(t, PROTECTED, w.data[1].status)
}
