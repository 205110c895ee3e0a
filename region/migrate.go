package region

import (
	"encoding/binary"
	"log"
	"os"

	"github.com/hytale-tools/hytalestore/errs"
)

// v0ChainEnd is INT_MIN, the legacy chain terminator.
const v0ChainEnd = int32(-2147483648)

// v0Reader reads blobs out of a legacy chained-segment file. It never
// mutates the source; migrateV0ToV1 is the only caller.
type v0Reader struct {
	f            *os.File
	blobCount    uint32
	segmentSize  uint32
	segmentsBase int64
}

func openV0Reader(path string, h header) (*v0Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(err, "region: open v0 source")
	}
	return &v0Reader{
		f:            f,
		blobCount:    h.blobCount,
		segmentSize:  h.segmentSize,
		segmentsBase: int64(headerSize) + int64(h.blobCount)*8,
	}, nil
}

// tempIndexEntry reads the legacy "temp" index table that sits right
// after the primary table. The primary table is always authoritative for
// migration (Open Question (a)); this is only consulted to warn on
// disagreement, never to decide which segment to read.
func (v *v0Reader) tempIndexEntry(k uint32) (uint32, error) {
	buf := make([]byte, 4)
	off := int64(headerSize) + int64(v.blobCount)*4 + int64(k)*4
	if _, err := v.f.ReadAt(buf, off); err != nil {
		return 0, errs.Wrap(err, "region: read v0 temp index entry")
	}
	return binary.BigEndian.Uint32(buf), nil
}

// warnIfTempIndexDisagrees logs a warning for every slot where the legacy
// temp index table disagrees with the primary one; it never changes
// migration behaviour.
func (v *v0Reader) warnIfTempIndexDisagrees() {
	for k := uint32(0); k < v.blobCount; k++ {
		primary, err := v.indexEntry(k)
		if err != nil {
			continue
		}
		temp, err := v.tempIndexEntry(k)
		if err != nil {
			continue
		}
		if primary != temp {
			log.Printf("region: v0 migration: slot %d primary index %d disagrees with temp index %d, trusting primary", k, primary, temp)
		}
	}
}

func (v *v0Reader) Close() error { return v.f.Close() }

func (v *v0Reader) segmentPos(seg int) int64 {
	return v.segmentsBase + int64(seg-1)*int64(v.segmentSize)
}

func (v *v0Reader) indexEntry(k uint32) (uint32, error) {
	buf := make([]byte, 4)
	if _, err := v.f.ReadAt(buf, int64(headerSize)+int64(k)*4); err != nil {
		return 0, errs.Wrap(err, "region: read v0 index entry")
	}
	return binary.BigEndian.Uint32(buf), nil
}

// readChainedBlob follows the nextSeg chain for slot k, concatenating the
// compressed payload across (possibly non-contiguous) segments. The first
// segment carries (srcLen, compLen) at offset 4; every segment carries
// data starting at offset 4, except the first, whose data starts at
// offset 12 (after nextSeg, srcLen, compLen).
func (v *v0Reader) readChainedBlob(k uint32) (srcLen uint32, compressed []byte, ok bool, err error) {
	seg, err := v.indexEntry(k)
	if err != nil {
		return 0, nil, false, err
	}
	if seg == 0 {
		return 0, nil, false, nil
	}

	segBuf := make([]byte, v.segmentSize)
	if _, err := v.f.ReadAt(segBuf, v.segmentPos(int(seg))); err != nil {
		return 0, nil, false, errs.Wrap(err, "region: read v0 first segment")
	}
	nextSeg := int32(binary.BigEndian.Uint32(segBuf[0:4]))
	srcLen = binary.BigEndian.Uint32(segBuf[4:8])
	compLen := binary.BigEndian.Uint32(segBuf[8:12])

	compressed = make([]byte, 0, compLen)
	compressed = append(compressed, segBuf[12:]...)

	for nextSeg != v0ChainEnd {
		if nextSeg == 0 {
			return 0, nil, false, errs.ErrCorruptBlob
		}
		if _, err := v.f.ReadAt(segBuf, v.segmentPos(int(nextSeg))); err != nil {
			return 0, nil, false, errs.Wrap(err, "region: read v0 chain segment")
		}
		nextSeg = int32(binary.BigEndian.Uint32(segBuf[0:4]))
		compressed = append(compressed, segBuf[4:]...)
	}

	switch {
	case uint32(len(compressed)) > compLen:
		compressed = compressed[:compLen]
	case uint32(len(compressed)) < compLen:
		return 0, nil, false, errs.ErrCorruptBlob
	}
	return srcLen, compressed, true, nil
}

// migrateV0ToV1 runs the one-shot §4.4.M migration: rename the v0 source
// aside, build a fresh v1 file, replay every blob through writeBlob (which
// re-compresses and contiguously allocates), then delete the backup. Any
// failure leaves the `.old` file untouched as a recovery artifact.
func migrateV0ToV1(f *os.File, path string, h header, opts Options) (*Region, error) {
	if err := f.Close(); err != nil {
		return nil, errs.Wrap(err, "region: close v0 file before migration")
	}

	oldPath := path + ".old"
	if err := os.Rename(path, oldPath); err != nil {
		return nil, errs.Wrap(err, "region: rename v0 file aside")
	}

	v0, err := openV0Reader(oldPath, h)
	if err != nil {
		return nil, err
	}
	defer v0.Close()
	v0.warnIfTempIndexDisagrees()

	nf, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, errs.Wrap(err, "region: create v1 migration target")
	}
	if err := initialiseEmpty(nf, h.blobCount, h.segmentSize); err != nil {
		nf.Close()
		return nil, errs.Wrap(err, "region: initialise v1 migration target")
	}

	migrated, err := openV1(nf, path, header{version: versionV1, blobCount: h.blobCount, segmentSize: h.segmentSize}, opts)
	if err != nil {
		return nil, errs.Wrap(err, "region: open v1 migration target")
	}

	for k := uint32(0); k < h.blobCount; k++ {
		srcLen, compressed, ok, err := v0.readChainedBlob(k)
		if err != nil {
			migrated.Close()
			return nil, errs.Wrap(err, "region: read v0 blob during migration")
		}
		if !ok {
			continue
		}

		decompressed, err := migrated.compressor.Decompress(make([]byte, 0, srcLen), compressed, int(srcLen))
		if err != nil || uint32(len(decompressed)) != srcLen {
			migrated.Close()
			return nil, errs.ErrMigrationFailed
		}

		if err := migrated.WriteBlob(k, decompressed); err != nil {
			migrated.Close()
			return nil, errs.Wrap(err, "region: rewrite blob during migration")
		}
	}

	if err := os.Remove(oldPath); err != nil {
		return nil, errs.Wrap(err, "region: remove v0 backup after migration")
	}
	return migrated, nil
}
