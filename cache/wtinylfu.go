package cache

import (
	"encoding/binary"

	"github.com/dgryski/go-metro"
)

const (
	WINDOW = iota
	PROBATION
	PROTECTED
)

// WinTinyLFU is a window-TinyLFU admission cache: a small recency window
// feeds a segmented LRU (probation/protected), and entries evicted from
// the window only displace a resident segmentedLRU entry when the
// count-min sketch says they've been read more often recently. This is
// the eviction policy SectionCache is built on.
type WinTinyLFU struct {
	data            map[uint32]*sNode
	winLRU          *List
	slru            *segmentedLRU
	cmSketch        *cmSketch
	winCap, slruCap int
	winSize         int
	w               int
	threshold       int
}

// NewWinTinyLFU builds a WinTinyLFU admitting up to capacity blob-index
// entries, with a recency window of capacity - capacity/100*99 entries
// ahead of the segmented LRU: 1% of capacity when it is a multiple of 100,
// and the whole capacity (leaving the segmented LRU empty) below 100. A
// window that would come to less than one entry is set to 10.
func NewWinTinyLFU(capacity int) *WinTinyLFU {
	slruCap := capacity / 100 * 99
	winCap := capacity - slruCap
	if winCap < 1 {
		winCap = 10
	}
	return &WinTinyLFU{
		data:      make(map[uint32]*sNode),
		winLRU:    newList(),
		slru:      newSLRU(slruCap),
		cmSketch:  newCmSketch(int64(capacity)),
		winCap:    winCap,
		slruCap:   slruCap,
		threshold: capacity,
	}
}

func (w *WinTinyLFU) Get(key uint32) interface{} {
	sn, ok := w.data[key]
	if !ok {
		return nil
	}
	w.cmSketch.Increment(keyToHash(key))
	switch sn.status {
	case WINDOW:
		w.winLRU.move2Head(sn.node)
	case PROBATION:
		w.slru.remove(sn.node, PROBATION)
		sn.status = PROTECTED
		if evicted := w.slru.evict(PROTECTED); evicted != nil {
			w.slru.put2Head(sn.node, PROTECTED)
			w.slru.put2Head(evicted, PROBATION)
			w.data[evicted.key].status = PROBATION
		} else {
			w.slru.put2Head(sn.node, PROTECTED)
		}
	case PROTECTED:
		w.slru.protected.move2Head(sn.node)
	}
	return sn.node.value
}

func (w *WinTinyLFU) Put(key uint32, value interface{}) {
	w.w++
	if w.w == w.threshold {
		w.cmSketch.Reset()
		w.w = 0
	}
	if sn, ok := w.data[key]; ok {
		sn.node.value = value
		switch sn.status {
		case WINDOW:
			w.winLRU.move2Head(sn.node)
		case PROBATION:
			w.slru.probation.move2Head(sn.node)
		case PROTECTED:
			w.slru.protected.move2Head(sn.node)
		}
		return
	}

	newEntry := &sNode{node: &Node{key: key, value: value}, status: WINDOW}
	var windowEvicted *sNode
	if w.winSize == w.winCap {
		windowEvicted = &sNode{node: w.winLRU.RemoveLast()}
		w.winSize--
	}
	w.winLRU.Put2Head(newEntry.node)
	w.data[key] = newEntry
	w.winSize++

	if windowEvicted == nil {
		return
	}
	slruEvicted := w.slru.evict(PROBATION)
	if slruEvicted == nil {
		// room in probation: the window loser is admitted outright
		windowEvicted.status = PROBATION
		w.slru.add(windowEvicted.node)
		w.data[windowEvicted.node.key] = windowEvicted
		return
	}
	if w.deservesAdmission(windowEvicted.node, slruEvicted) {
		w.slru.remove(slruEvicted, PROBATION)
		delete(w.data, slruEvicted.key)
		windowEvicted.status = PROBATION
		w.slru.add(windowEvicted.node)
		w.data[windowEvicted.node.key] = windowEvicted
	} else {
		delete(w.data, windowEvicted.node.key)
	}
}

// deservesAdmission reports whether the window's loser has been read more
// often recently than the segmented LRU's probation-tier loser, per the
// sketch's frequency estimate.
func (w *WinTinyLFU) deservesAdmission(candidate, incumbent *Node) bool {
	return w.cmSketch.Estimate(keyToHash(candidate.key)) > w.cmSketch.Estimate(keyToHash(incumbent.key))
}

// keyToHash hashes a blob index for the count-min sketch. Blob indices are
// fixed-width, so they're hashed as 4 raw bytes rather than formatted to a
// string first.
func keyToHash(key uint32) uint64 {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], key)
	return metro.Hash64(buf[:], 0)
}
