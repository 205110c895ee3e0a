// Package errs collects the sentinel errors used across the storage
// engine and the two small panic helpers the rest of the code leans on
// for programming-error invariants.
package errs

import "github.com/pkg/errors"

var (
	// ErrBlobNotFound is returned by Region.ReadBlob when the slot is empty.
	ErrBlobNotFound = errors.New("region: blob not found")
	// ErrBlobOutOfRange is a Programming error: k is outside [0, blobCount).
	ErrBlobOutOfRange = errors.New("region: blob key out of range")
	// ErrBadMagic means the file's first 20 bytes do not match the magic.
	ErrBadMagic = errors.New("region: bad magic")
	// ErrBadVersion means the header version is not 0 or 1.
	ErrBadVersion = errors.New("region: unsupported version")
	// ErrCorruptBlob covers EOF-mid-blob and decompressed-length mismatches.
	ErrCorruptBlob = errors.New("region: corrupt blob")
	// ErrNoSpace means no contiguous free run of segments exists and the
	// caller has disallowed growing the file.
	ErrNoSpace = errors.New("region: no contiguous free segment run")
	// ErrMigrationFailed wraps any error raised mid v0->v1 migration.
	ErrMigrationFailed = errors.New("region: v0 to v1 migration failed")

	// ErrPaletteFull is raised by section.Section.Set when an internal ID
	// would have to exceed the Short tag's 65536-entry ceiling.
	ErrPaletteFull = errors.New("section: palette exceeds maximum capacity")
	// ErrPalette2DFull is raised when a 2D grid needs more than
	// min(1024, 32767) distinct values.
	ErrPalette2DFull = errors.New("palette2d: distinct value count exceeds capacity")

	// ErrNoDecoder is a Programming error: ReadChunk was called on a
	// Region opened without a DocumentDecoder.
	ErrNoDecoder = errors.New("region: no document decoder configured")
)

// Err panics if err is non-nil. Reserved for invariants the caller has
// already guaranteed hold; never used for ordinary I/O failures.
func Err(err error) {
	if err != nil {
		panic(err)
	}
}

// CondPanic panics with err when condition is true.
func CondPanic(condition bool, err error) {
	if condition {
		panic(err)
	}
}

// Wrap attaches msg to err via pkg/errors, preserving a stack trace at the
// surface boundary. Returns nil unchanged.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}
