package persistence

import (
	"errors"
	"fmt"
	"hash/crc32"
)

// The body checksum is CRC32 (IEEE). It detects accidental corruption of a
// stored snapshot, not tampering.

// CalculateChecksum returns the CRC32 (IEEE) checksum of data.
func CalculateChecksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// ChecksumMismatchError is returned by Decode when the body does not match
// the stored trailer.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}

// Unwrap lets callers match a mismatch with errors.Is(err, ErrCorrupt).
func (e *ChecksumMismatchError) Unwrap() error { return ErrCorrupt }

// IsChecksumMismatch returns true if err is a checksum mismatch error.
func IsChecksumMismatch(err error) bool {
	var target *ChecksumMismatchError
	return errors.As(err, &target)
}

func verifyChecksum(data []byte, expected uint32) error {
	if actual := CalculateChecksum(data); actual != expected {
		return &ChecksumMismatchError{Expected: expected, Actual: actual}
	}
	return nil
}
