// Package persistence serializes built index snapshots and manages them in a
// blobstore.Store.
//
// # Snapshot Format
//
//	header   magic "SSKD" | format version (u16) | compression (u8) |
//	         codec name length (u8) | codec name
//	body     uncompressed length (u32) | stored length (u32) | stored bytes
//	trailer  CRC32 (IEEE) of the uncompressed body (u32)
//
// The uncompressed body holds the codec-encoded schema descriptor, the
// dimension, the entry count and, per entry, the identifier followed by the
// vector as little-endian float32 values. Entries are written in identifier
// order. All integers are little-endian.
//
// # Manifest
//
// Manager writes each snapshot to snapshots/<sequence>.sskd and then points
// the CURRENT blob at it. CURRENT holds a codec-encoded Manifest. A reader
// therefore sees either the previous or the new snapshot, never a partial
// one.
package persistence
