package cache

import (
	"sync"
)

// SectionCache is a read-through/write-through memo of decoded blob
// payloads keyed by blob index, exactly the role the teacher's block/table
// cache plays for sstable data blocks: it never bears on correctness, only
// on avoiding repeat decode work. A miss always falls back to reading and
// decoding the blob from the region file; a successful write or remove
// must invalidate the corresponding key so a stale decode can never
// outlive the bytes it was parsed from.
type SectionCache struct {
	entries Replacer
	lock    sync.RWMutex
}

// NewSectionCache builds a cache admitting up to capacity decoded values
// under W-TinyLFU eviction, the same policy the teacher uses for its block
// cache.
func NewSectionCache(capacity int) *SectionCache {
	return &SectionCache{entries: NewWinTinyLFU(capacity)}
}

// Get returns the cached decode for blobIndex, or nil on a miss.
func (c *SectionCache) Get(blobIndex uint32) interface{} {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.entries.Get(blobIndex)
}

// Put stores a freshly decoded value for blobIndex.
func (c *SectionCache) Put(blobIndex uint32, value interface{}) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.entries.Put(blobIndex, value)
}

// Invalidate drops any cached decode for blobIndex. Callers invoke this on
// every successful writeBlob/removeBlob before releasing the slot lock.
func (c *SectionCache) Invalidate(blobIndex uint32) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.entries.Put(blobIndex, nil)
}
