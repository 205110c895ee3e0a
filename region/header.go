package region

import (
	"bytes"
	"encoding/binary"
	"os"

	"github.com/hytale-tools/hytalestore/errs"
)

const (
	magicString = "HytaleIndexedStorage"
	headerSize  = 32

	versionV0 = uint32(0)
	versionV1 = uint32(1)

	defaultBlobCount   = uint32(1024)
	defaultSegmentSize = uint32(4096)
)

var magicBytes = []byte(magicString)

type header struct {
	version     uint32
	blobCount   uint32
	segmentSize uint32
}

func writeHeader(f *os.File, h header) error {
	buf := make([]byte, headerSize)
	copy(buf[0:20], magicBytes)
	binary.BigEndian.PutUint32(buf[20:24], h.version)
	binary.BigEndian.PutUint32(buf[24:28], h.blobCount)
	binary.BigEndian.PutUint32(buf[28:32], h.segmentSize)
	if _, err := f.WriteAt(buf, 0); err != nil {
		return errs.Wrap(err, "region: write header")
	}
	return nil
}

func readHeader(f *os.File) (header, error) {
	buf := make([]byte, headerSize)
	if _, err := f.ReadAt(buf, 0); err != nil {
		return header{}, errs.Wrap(err, "region: read header")
	}
	if !bytes.Equal(buf[0:20], magicBytes) {
		return header{}, errs.ErrBadMagic
	}
	h := header{
		version:     binary.BigEndian.Uint32(buf[20:24]),
		blobCount:   binary.BigEndian.Uint32(buf[24:28]),
		segmentSize: binary.BigEndian.Uint32(buf[28:32]),
	}
	if h.version != versionV0 && h.version != versionV1 {
		return header{}, errs.ErrBadVersion
	}
	return h, nil
}

// initialiseEmpty writes the header and an all-zero index table to a
// brand-new file, per the open protocol's CREATE_NEW/CREATE-on-empty step.
func initialiseEmpty(f *os.File, blobCount, segmentSize uint32) error {
	size := int64(headerSize) + int64(blobCount)*4
	if err := f.Truncate(size); err != nil {
		return errs.Wrap(err, "region: truncate new file")
	}
	return writeHeader(f, header{version: versionV1, blobCount: blobCount, segmentSize: segmentSize})
}

func segmentsNeeded(compLen, segmentSize uint32) int {
	total := uint64(8) + uint64(compLen)
	return int((total + uint64(segmentSize) - 1) / uint64(segmentSize))
}
