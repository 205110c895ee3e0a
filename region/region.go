// Package region implements the indexed region file (IRF): a fixed-size
// file holding a memory-mapped blob-index table and a contiguous
// segment-addressed storage area, giving CRUD of opaque ZSTD-compressed
// byte blobs keyed by integer index. It owns the one-shot v0-to-v1
// migration of the legacy chained-segment layout.
package region

import (
	"encoding/binary"
	"os"
	"sync"

	"github.com/hytale-tools/hytalestore/cache"
	"github.com/hytale-tools/hytalestore/compress"
	"github.com/hytale-tools/hytalestore/errs"
	"github.com/hytale-tools/hytalestore/file"
)

// OpenMode controls how Open treats a missing or empty path.
type OpenMode int

const (
	// OpenExisting requires the file to already exist and be non-empty.
	OpenExisting OpenMode = iota
	// OpenCreate creates the file if it does not exist or is empty,
	// otherwise opens it as-is.
	OpenCreate
	// OpenCreateNew requires the file not to exist yet.
	OpenCreateNew
)

// Options controls Region.Open. BlobCount and SegmentSize only take
// effect when a brand-new file is created; an existing file's header is
// always authoritative.
type Options struct {
	BlobCount        uint32
	SegmentSize      uint32
	Mode             OpenMode
	FlushOnWrite     bool
	CompressionLevel int
	Compressor       compress.Compressor
	Cache            *cache.SectionCache
	Decoder          DocumentDecoder
}

func (o Options) withDefaults() Options {
	if o.BlobCount == 0 {
		o.BlobCount = defaultBlobCount
	}
	if o.SegmentSize == 0 {
		o.SegmentSize = defaultSegmentSize
	}
	if o.CompressionLevel == 0 {
		o.CompressionLevel = compress.DefaultLevel
	}
	return o
}

// Region is an open indexed region file.
type Region struct {
	f            *os.File
	path         string
	mmapData     []byte
	blobCount    uint32
	segmentSize  uint32
	segmentsBase int64
	slots        []slotLock
	segments     *segmentSet
	growMu       sync.Mutex
	compressor   compress.Compressor
	cache        *cache.SectionCache
	decoder      DocumentDecoder
	flushOnWrite bool
}

// Open opens (creating and/or migrating as needed) the region file at
// path, per the §4.4 open protocol.
func Open(path string, opts Options) (*Region, error) {
	opts = opts.withDefaults()

	flag := os.O_RDWR
	switch opts.Mode {
	case OpenCreateNew:
		flag |= os.O_CREATE | os.O_EXCL
	case OpenCreate:
		flag |= os.O_CREATE
	}

	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, errs.Wrap(err, "region: open")
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errs.Wrap(err, "region: stat")
	}

	if info.Size() == 0 && opts.Mode != OpenExisting {
		if err := initialiseEmpty(f, opts.BlobCount, opts.SegmentSize); err != nil {
			f.Close()
			return nil, err
		}
	}

	h, err := readHeader(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	if h.version == versionV0 {
		return migrateV0ToV1(f, path, h, opts)
	}
	return openV1(f, path, h, opts)
}

func openV1(f *os.File, path string, h header, opts Options) (*Region, error) {
	mapSize := int64(headerSize) + int64(h.blobCount)*4

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errs.Wrap(err, "region: stat")
	}
	if info.Size() < mapSize {
		if err := f.Truncate(mapSize); err != nil {
			f.Close()
			return nil, errs.Wrap(err, "region: truncate index table")
		}
		info, err = f.Stat()
		if err != nil {
			f.Close()
			return nil, errs.Wrap(err, "region: stat")
		}
	}

	data, err := file.Mmap(f, true, mapSize)
	if err != nil {
		f.Close()
		return nil, errs.Wrap(err, "region: mmap index table")
	}

	compressor := opts.Compressor
	if compressor == nil {
		compressor = compress.NewZstdCompressor(opts.CompressionLevel)
	}

	segCount := 0
	if info.Size() > mapSize {
		segCount = int((info.Size() - mapSize) / int64(h.segmentSize))
	}

	r := &Region{
		f:            f,
		path:         path,
		mmapData:     data,
		blobCount:    h.blobCount,
		segmentSize:  h.segmentSize,
		segmentsBase: mapSize,
		slots:        make([]slotLock, h.blobCount),
		segments:     newSegmentSet(segCount),
		compressor:   compressor,
		cache:        opts.Cache,
		decoder:      opts.Decoder,
		flushOnWrite: opts.FlushOnWrite,
	}

	if err := r.reconstructUsedSegments(); err != nil {
		file.Munmap(data)
		f.Close()
		return nil, err
	}

	return r, nil
}

// reconstructUsedSegments walks the index table on open, marking the
// segment ranges backing every non-empty slot, per §4.4 step 6.
func (r *Region) reconstructUsedSegments() error {
	for k := uint32(0); k < r.blobCount; k++ {
		s := r.loadIndexRaw(k)
		if s == 0 {
			continue
		}
		_, compLen, err := r.readBlobHeader(int(s))
		if err != nil {
			return err
		}
		need := segmentsNeeded(compLen, r.segmentSize)
		if end := int(s) - 1 + need; end > r.segments.Capacity() {
			r.segments.Grow(end - r.segments.Capacity())
		}
		r.segments.MarkUsed(int(s), need)
	}
	return nil
}

func (r *Region) segmentPos(seg int) int64 {
	return r.segmentsBase + int64(seg-1)*int64(r.segmentSize)
}

func (r *Region) loadIndexRaw(k uint32) uint32 {
	off := headerSize + 4*k
	return binary.BigEndian.Uint32(r.mmapData[off : off+4])
}

func (r *Region) storeIndexRaw(k uint32, v uint32) {
	off := headerSize + 4*k
	binary.BigEndian.PutUint32(r.mmapData[off:off+4], v)
}

// readIndexEntry is the optimistic stamped read of slot k: a lock-free
// read validated against the slot's sequence counter, falling back to a
// real read lock only when a writer raced it.
func (r *Region) readIndexEntry(k uint32) uint32 {
	lock := &r.slots[k]
	if stamp, ok := lock.tryStamp(); ok {
		v := r.loadIndexRaw(k)
		if lock.validate(stamp) {
			return v
		}
	}
	lock.mu.RLock()
	defer lock.mu.RUnlock()
	return r.loadIndexRaw(k)
}

func (r *Region) readBlobHeader(seg int) (srcLen, compLen uint32, err error) {
	buf := make([]byte, 8)
	if _, err := r.f.ReadAt(buf, r.segmentPos(seg)); err != nil {
		return 0, 0, errs.Wrap(err, "region: read blob header")
	}
	return binary.BigEndian.Uint32(buf[0:4]), binary.BigEndian.Uint32(buf[4:8]), nil
}

// ReadBlob returns the decompressed bytes stored at k, and false if the
// slot is empty.
func (r *Region) ReadBlob(k uint32) ([]byte, bool, error) {
	errs.CondPanic(k >= r.blobCount, errs.ErrBlobOutOfRange)

	s := r.readIndexEntry(k)
	if s == 0 {
		return nil, false, nil
	}

	srcLen, compLen, err := r.readBlobHeader(int(s))
	if err != nil {
		return nil, false, err
	}

	comp := make([]byte, compLen)
	if _, err := r.f.ReadAt(comp, r.segmentPos(int(s))+8); err != nil {
		return nil, false, errs.Wrap(err, "region: read blob payload")
	}

	out, err := r.compressor.Decompress(make([]byte, 0, srcLen), comp, int(srcLen))
	if err != nil {
		return nil, false, errs.Wrap(err, "region: decompress blob")
	}
	if uint32(len(out)) != srcLen {
		return nil, false, errs.ErrCorruptBlob
	}
	return out, true, nil
}

// allocateSegments finds a contiguous free run of need segments,
// extending the file and the free-segment bitset at the tail and
// retrying if none currently fits (the Capacity failure-model entry).
func (r *Region) allocateSegments(need int) (int, error) {
	for {
		if start, ok := r.segments.Allocate(need); ok {
			return start, nil
		}
		if err := r.growSegments(need); err != nil {
			return 0, err
		}
	}
}

func (r *Region) growSegments(extra int) error {
	r.growMu.Lock()
	defer r.growMu.Unlock()

	newCount := r.segments.Capacity() + extra
	newSize := r.segmentsBase + int64(newCount)*int64(r.segmentSize)
	info, err := r.f.Stat()
	if err != nil {
		return errs.Wrap(err, "region: stat before extend")
	}
	if info.Size() < newSize {
		if err := r.f.Truncate(newSize); err != nil {
			return errs.Wrap(err, "region: extend file")
		}
	}
	r.segments.Grow(extra)
	return nil
}

// WriteBlob compresses src and stores it at k, allocating a fresh
// contiguous segment run, then atomically flipping the index entry and
// freeing the slot's previous range.
func (r *Region) WriteBlob(k uint32, src []byte) error {
	errs.CondPanic(k >= r.blobCount, errs.ErrBlobOutOfRange)

	bound := r.compressor.CompressBound(len(src))
	compBuf, err := r.compressor.Compress(make([]byte, 0, bound), src)
	if err != nil {
		return errs.Wrap(err, "region: compress blob")
	}
	compLen := uint32(len(compBuf))
	need := segmentsNeeded(compLen, r.segmentSize)

	lock := &r.slots[k]
	lock.beginWrite()
	defer lock.endWrite()

	oldS := r.loadIndexRaw(k)

	newS, err := r.allocateSegments(need)
	if err != nil {
		return err
	}

	frame := make([]byte, 8+len(compBuf))
	binary.BigEndian.PutUint32(frame[0:4], uint32(len(src)))
	binary.BigEndian.PutUint32(frame[4:8], compLen)
	copy(frame[8:], compBuf)

	if _, err := r.f.WriteAt(frame, r.segmentPos(newS)); err != nil {
		r.segments.Release(newS, need)
		return errs.Wrap(err, "region: write blob payload")
	}
	if r.flushOnWrite {
		if err := r.f.Sync(); err != nil {
			return errs.Wrap(err, "region: sync blob payload")
		}
	}

	r.storeIndexRaw(k, uint32(newS))
	if r.flushOnWrite {
		if err := file.Msync(r.mmapData); err != nil {
			return errs.Wrap(err, "region: msync index")
		}
	}

	if oldS != 0 {
		if _, oldCompLen, err := r.readBlobHeader(int(oldS)); err == nil {
			r.segments.Release(int(oldS), segmentsNeeded(oldCompLen, r.segmentSize))
		}
	}

	if r.cache != nil {
		r.cache.Invalidate(k)
	}
	return nil
}

// RemoveBlob zeroes k's index entry and returns its segments to the free
// set. Existing bytes are not zeroed.
func (r *Region) RemoveBlob(k uint32) error {
	errs.CondPanic(k >= r.blobCount, errs.ErrBlobOutOfRange)

	lock := &r.slots[k]
	lock.beginWrite()
	defer lock.endWrite()

	oldS := r.loadIndexRaw(k)
	if oldS == 0 {
		return nil
	}
	_, compLen, err := r.readBlobHeader(int(oldS))
	if err != nil {
		return err
	}
	need := segmentsNeeded(compLen, r.segmentSize)

	r.storeIndexRaw(k, 0)
	if r.flushOnWrite {
		if err := file.Msync(r.mmapData); err != nil {
			return errs.Wrap(err, "region: msync index")
		}
	}
	r.segments.Release(int(oldS), need)

	if r.cache != nil {
		r.cache.Invalidate(k)
	}
	return nil
}

// Keys returns a best-effort snapshot of the currently non-empty slots.
// Individual entries are read with optimistic validation, but the set as
// a whole offers no cross-slot atomicity.
func (r *Region) Keys() []uint32 {
	keys := make([]uint32, 0)
	for k := uint32(0); k < r.blobCount; k++ {
		if r.readIndexEntry(k) != 0 {
			keys = append(keys, k)
		}
	}
	return keys
}

// Force flushes the file's payload region, and the index mapping too
// when metaData is true.
func (r *Region) Force(metaData bool) error {
	if err := r.f.Sync(); err != nil {
		return errs.Wrap(err, "region: sync file")
	}
	if metaData {
		if err := file.Msync(r.mmapData); err != nil {
			return errs.Wrap(err, "region: msync index")
		}
	}
	return nil
}

// Close unmaps the index table and closes the underlying file.
func (r *Region) Close() error {
	if err := file.Munmap(r.mmapData); err != nil {
		return errs.Wrap(err, "region: munmap")
	}
	return r.f.Close()
}

// BlobCount returns the fixed number of index slots.
func (r *Region) BlobCount() uint32 { return r.blobCount }

// SegmentSize returns the fixed per-segment byte size.
func (r *Region) SegmentSize() uint32 { return r.segmentSize }
