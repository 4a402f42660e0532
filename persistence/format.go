package persistence

import (
	"errors"
	"fmt"
)

const (
	// Magic identifies snapshot blobs.
	Magic = "SSKD"

	// FormatVersion is the current snapshot format version.
	FormatVersion uint16 = 1

	// magic, version, compression, codec name length
	headerFixedSize = 4 + 2 + 1 + 1
)

var (
	ErrInvalidMagic       = errors.New("invalid magic number")
	ErrInvalidVersion     = errors.New("unsupported format version")
	ErrUnknownCompression = errors.New("unknown compression")
	ErrUnknownCodec       = errors.New("unknown codec")
	ErrCorrupt            = errors.New("corrupt snapshot")
)

// Compression selects the body compression of a snapshot.
type Compression uint8

const (
	// CompressionNone stores the body as is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses zstd (better ratio).
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression resolves a compression name as printed by String.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none", "":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, name)
	}
}
