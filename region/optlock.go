package region

import (
	"sync"
	"sync/atomic"
)

// slotLock is the optimistic per-index-slot lock described in spec §5: a
// sequence counter, even while quiescent and odd while a writer holds the
// slot, paired with the sync.RWMutex a reader falls back to when its
// stamped read is invalidated.
type slotLock struct {
	mu  sync.RWMutex
	seq uint64
}

// tryStamp returns the current sequence and whether it is safe to attempt
// an optimistic (lock-free) read: false while a writer is mid-update.
func (s *slotLock) tryStamp() (uint64, bool) {
	stamp := atomic.LoadUint64(&s.seq)
	return stamp, stamp%2 == 0
}

// validate reports whether the sequence is unchanged since stamp was
// taken, meaning the optimistic read did not race a writer.
func (s *slotLock) validate(stamp uint64) bool {
	return atomic.LoadUint64(&s.seq) == stamp
}

// beginWrite takes the slot's write lock and marks the sequence odd.
func (s *slotLock) beginWrite() {
	s.mu.Lock()
	atomic.AddUint64(&s.seq, 1)
}

// endWrite marks the sequence even again and releases the write lock.
func (s *slotLock) endWrite() {
	atomic.AddUint64(&s.seq, 1)
	s.mu.Unlock()
}
